package listing

import (
	"reflect"
	"testing"
)

const fullItem = `
<div role="article">
  <a class="hfpxzc" aria-label="St. Mary Hospital" href="https://www.google.com/maps/place/st-mary"></a>
  <div class="qBF1Pd">St. Mary (display)</div>
  <span class="MW4T7d">4.5</span>
  <div class="W4Efsd">
    <div class="W4Efsd"><span>Hospital</span><span> · </span><span>12 Main St, Springfield</span></div>
    <div class="W4Efsd"><span>Open 24 hours</span><span> · </span><span>+1 555-123-4567</span></div>
  </div>
  <a data-value="Website" href="https://stmary.example.org/">Website</a>
</div>`

func wrapFeed(items ...string) Snapshot {
	html := `<html><body><div role="feed">`
	for _, item := range items {
		html += item
	}
	html += `</div></body></html>`
	return Snapshot{HTML: html}
}

func TestProbeResolvesAllFields(t *testing.T) {
	records, err := Probe(wrapFeed(fullItem))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	want := []Record{{
		Name:    "St. Mary Hospital",
		Rating:  "4.5",
		Address: "12 Main St, Springfield",
		Phone:   "+1 555-123-4567",
		Website: "https://stmary.example.org/",
	}}
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("records = %#v, want %#v", records, want)
	}
}

func TestProbeDropsNamelessItems(t *testing.T) {
	nameless := `<div role="article"><div class="W4Efsd">12 Side Rd, Town</div></div>`
	records, err := Probe(wrapFeed(nameless, fullItem, nameless))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if len(records) != 1 || records[0].Name != "St. Mary Hospital" {
		t.Fatalf("expected only the named item, got %#v", records)
	}
}

func TestProbeFillsSentinels(t *testing.T) {
	bare := `<div role="article"><div class="qBF1Pd">  Corner   Clinic </div></div>`
	records, err := Probe(wrapFeed(bare))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	want := Record{Name: "Corner Clinic", Rating: NoRating, Address: NoAddress, Phone: NoPhone, Website: NoWebsite}
	if len(records) != 1 || records[0] != want {
		t.Fatalf("records = %#v, want %#v", records, want)
	}
}

func TestProbeWebsiteResolutionOrder(t *testing.T) {
	tests := []struct {
		name  string
		links string
		want  string
	}{
		{
			name:  "aria label",
			links: `<a href="https://other.example.com/">x</a><a aria-label="Website: clinic" href="https://clinic.example.com/">w</a>`,
			want:  "https://clinic.example.com/",
		},
		{
			name:  "outbound link skips provider",
			links: `<a href="/maps/place/x">p</a><a href="https://www.google.com/maps/place/x">p</a><a href="https://dental.example.net/home">d</a>`,
			want:  "https://dental.example.net/home",
		},
		{
			name:  "redirector unwrapped",
			links: `<a href="https://www.google.com/url?q=https://vet.example.com/&amp;sa=U">v</a>`,
			want:  "https://vet.example.com/",
		},
		{
			name:  "only provider links",
			links: `<a href="https://www.google.com/maps/dir/x">route</a><a href="https://maps.google.com/?cid=12345">map</a><a href="https://www.google.com/search?q=dentist">search</a><a href="tel:+15551234">call</a>`,
			want:  NoWebsite,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := `<div role="article"><a class="hfpxzc" aria-label="Place"></a>` + tt.links + `</div>`
			records, err := Probe(wrapFeed(item))
			if err != nil {
				t.Fatalf("Probe: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("expected one record, got %d", len(records))
			}
			if records[0].Website != tt.want {
				t.Fatalf("website = %q, want %q", records[0].Website, tt.want)
			}
		})
	}
}

func TestAssignFragments(t *testing.T) {
	tests := []struct {
		name        string
		fragments   []string
		wantAddress string
		wantPhone   string
	}{
		{"comma beats plus", []string{"+41 Bahnhofstrasse 1, Zurich"}, "+41 Bahnhofstrasse 1, Zurich", ""},
		{"phone before address", []string{"0800 123 456", "221B Baker Street"}, "221B Baker Street", "0800 123 456"},
		{"first address wins", []string{"Dentist", "4 Elm Rd", "9 Oak Ave"}, "4 Elm Rd", ""},
		{"filled address lets a later fragment reach the phone rule", []string{"1 High St, Leeds", "12345 Long Rd, York"}, "1 High St, Leeds", "12345 Long Rd, York"},
		{"filled phone lets a plus fragment become the address", []string{"+44 20 7946 0000", "+1 Main St"}, "+1 Main St", "+44 20 7946 0000"},
		{"no matches", []string{"Pharmacy", "Closed"}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			address, phone := assignFragments(tt.fragments)
			if address != tt.wantAddress || phone != tt.wantPhone {
				t.Fatalf("got (%q, %q), want (%q, %q)", address, phone, tt.wantAddress, tt.wantPhone)
			}
		})
	}
}

func TestProbeIsIdempotentAndOrdered(t *testing.T) {
	snap := feedSnapshot(6)
	first, err := Probe(snap)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	second, err := Probe(snap)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("probe output changed between calls")
	}
	for i, rec := range first {
		if want := placeName(i); rec.Name != want {
			t.Fatalf("record %d = %q, want %q", i, rec.Name, want)
		}
	}
}
