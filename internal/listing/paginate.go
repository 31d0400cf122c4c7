package listing

// Page is the slice of converged records returned to the caller.
type Page struct {
	TotalFound int
	Items      []Record
	Limit      int
	Offset     int
}

// Paginate returns records[offset:offset+limit] clamped to the slice bounds.
// It never fails; an offset past the end yields an empty page.
func Paginate(records []Record, offset, limit int) Page {
	page := Page{TotalFound: len(records), Items: []Record{}, Limit: limit, Offset: offset}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(records) {
		return page
	}
	end := offset + limit
	if end > len(records) || end < offset {
		end = len(records)
	}
	page.Items = append(page.Items, records[offset:end]...)
	return page
}
