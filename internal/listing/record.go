package listing

import "time"

// Placeholders used for fields the probe could not resolve. Every record
// carries all five fields.
const (
	NoRating  = "No Rating"
	NoAddress = "No Address"
	NoPhone   = "No Phone"
	NoWebsite = "No Website"
)

// Record is one business listing as rendered in the result feed.
type Record struct {
	Name    string `json:"name"`
	Rating  string `json:"rating"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

// Snapshot is the rendered markup of the feed captured at one instant.
type Snapshot struct {
	HTML    string
	TakenAt time.Time
}

// Query is the validated search request.
type Query struct {
	Text   string
	Limit  int
	Offset int
}

// Target is the number of records the feed has to reveal to fill the page.
func (q Query) Target() int {
	return q.Offset + q.Limit
}
