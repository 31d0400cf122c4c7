package browser

const consentScript = `(function () {
  const selectors = [
    'button[aria-label="Accept all"]',
    'button[aria-label="I agree"]',
    'button[aria-label="Alles akzeptieren"]',
    'form[action*="consent"] button'
  ];
  for (const sel of selectors) {
    const btn = document.querySelector(sel);
    if (btn) {
      btn.click();
      return true;
    }
  }
  return false;
})();`

// scrollScript takes the scroll distance in pixels.
const scrollScript = `(function () {
  const feed = document.querySelector('div[role="feed"]');
  if (feed) {
    feed.scrollBy(0, %d);
  } else {
    window.scrollBy(0, %[1]d);
  }
  return true;
})();`

const snapshotScript = `(function () {
  const feed = document.querySelector('div[role="feed"]');
  return (feed || document.body).outerHTML;
})();`
