package listing

import "testing"

func TestPaginate(t *testing.T) {
	records, _ := Probe(feedSnapshot(9))

	tests := []struct {
		name      string
		offset    int
		limit     int
		wantFirst string
		wantCount int
	}{
		{"first page", 0, 5, placeName(0), 5},
		{"tail clamped", 8, 10, placeName(8), 1},
		{"offset at end", 9, 5, "", 0},
		{"offset past end", 50, 5, "", 0},
		{"zero limit", 0, 0, "", 0},
		{"negative offset treated as zero", -3, 2, placeName(0), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(records, tt.offset, tt.limit)
			if page.TotalFound != 9 {
				t.Fatalf("total = %d, want 9", page.TotalFound)
			}
			if page.Items == nil {
				t.Fatal("items must never be nil")
			}
			if len(page.Items) != tt.wantCount {
				t.Fatalf("count = %d, want %d", len(page.Items), tt.wantCount)
			}
			if tt.wantCount > 0 && page.Items[0].Name != tt.wantFirst {
				t.Fatalf("first = %q, want %q", page.Items[0].Name, tt.wantFirst)
			}
			if page.Limit != tt.limit || page.Offset != tt.offset {
				t.Fatalf("page echoes (%d, %d), want (%d, %d)", page.Limit, page.Offset, tt.limit, tt.offset)
			}
		})
	}
}

func TestPaginateCopiesItems(t *testing.T) {
	records, _ := Probe(feedSnapshot(3))
	page := Paginate(records, 0, 3)
	page.Items[0].Name = "changed"
	if records[0].Name == "changed" {
		t.Fatal("page must not alias the accumulated records")
	}
}
