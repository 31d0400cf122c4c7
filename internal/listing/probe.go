package listing

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	itemSelector     = `div[role="article"]`
	nameLinkSelector = `a.hfpxzc`
	nameTextSelector = `.qBF1Pd`
	detailSelector   = `.W4Efsd`
	detailSeparator  = "·"
)

var (
	ratingSelectors = []string{`.MW4T7d`, `.MW4etd`}

	websiteSelectors = []string{
		`a[data-value="Website"]`,
		`a[aria-label*="Website"]`,
	}

	digitRegex       = regexp.MustCompile(`\d+`)
	phoneDigitsRegex = regexp.MustCompile(`^\d{5,}`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

type detailField int

const (
	fieldAddress detailField = iota
	fieldPhone
)

// fragmentRules classify auxiliary text fragments. Rules are tried in order,
// a rule is skipped once its field is filled, and the first rule that fires
// consumes the fragment. A fragment holding both a comma and a "+" is an
// address unless the address is already known.
var fragmentRules = []struct {
	field detailField
	match func(string) bool
}{
	{fieldAddress, func(s string) bool { return strings.Contains(s, ",") }},
	{fieldPhone, looksLikePhone},
	{fieldAddress, func(s string) bool { return digitRegex.MatchString(s) }},
}

// Probe extracts every record visible in the snapshot, in feed order.
// Items without a resolvable name are dropped.
func Probe(snap Snapshot) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	items := doc.Find(itemSelector)
	records := make([]Record, 0, items.Length())
	items.Each(func(_ int, item *goquery.Selection) {
		name := resolveName(item)
		if name == "" {
			return
		}
		address, phone := assignFragments(detailFragments(item))
		records = append(records, Record{
			Name:    name,
			Rating:  valueOrDefault(resolveRating(item), NoRating),
			Address: valueOrDefault(address, NoAddress),
			Phone:   valueOrDefault(phone, NoPhone),
			Website: valueOrDefault(resolveWebsite(item), NoWebsite),
		})
	})
	return records, nil
}

func resolveName(item *goquery.Selection) string {
	if label, ok := item.Find(nameLinkSelector).First().Attr("aria-label"); ok {
		if label = strings.TrimSpace(label); label != "" {
			return label
		}
	}
	return cleanText(item.Find(nameTextSelector).First().Text())
}

func resolveRating(item *goquery.Selection) string {
	for _, sel := range ratingSelectors {
		if text := cleanText(item.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// detailFragments returns the text pieces of the innermost detail rows,
// split on the feed's middle-dot separator.
func detailFragments(item *goquery.Selection) []string {
	var fragments []string
	item.Find(detailSelector).Each(func(_ int, row *goquery.Selection) {
		if row.Find(detailSelector).Length() > 0 {
			return
		}
		for _, part := range strings.Split(row.Text(), detailSeparator) {
			if part = cleanText(part); part != "" {
				fragments = append(fragments, part)
			}
		}
	})
	return fragments
}

func assignFragments(fragments []string) (address, phone string) {
	assigned := make(map[detailField]string, 2)
	for _, fragment := range fragments {
		for _, rule := range fragmentRules {
			if _, taken := assigned[rule.field]; taken || !rule.match(fragment) {
				continue
			}
			assigned[rule.field] = fragment
			break
		}
	}
	return assigned[fieldAddress], assigned[fieldPhone]
}

func looksLikePhone(s string) bool {
	compact := whitespaceRegex.ReplaceAllString(s, "")
	return strings.HasPrefix(compact, "+") || phoneDigitsRegex.MatchString(compact)
}

func resolveWebsite(item *goquery.Selection) string {
	for _, sel := range websiteSelectors {
		if href, ok := item.Find(sel).First().Attr("href"); ok {
			if href = normalizeWebsiteURL(href); href != "" {
				return href
			}
		}
	}

	var website string
	item.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = normalizeWebsiteURL(href)
		if isOutboundLink(href) {
			website = href
			return false
		}
		return true
	})
	return website
}

// isOutboundLink reports whether href is an absolute http(s) link that does
// not point at the maps provider.
func isOutboundLink(href string) bool {
	parsed, err := url.Parse(href)
	if err != nil || parsed.Host == "" {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return !isProviderHost(parsed.Hostname())
}

func isProviderHost(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	return strings.HasPrefix(host, "google.") || strings.Contains(host, ".google.")
}

// normalizeWebsiteURL unwraps the provider's /url?q= redirector.
func normalizeWebsiteURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if isProviderHost(parsed.Hostname()) && parsed.Path == "/url" {
		if target := parsed.Query().Get("q"); target != "" {
			return target
		}
	}
	return raw
}

func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
