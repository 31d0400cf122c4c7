package leads

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDecodeInputs(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr string
	}{
		{name: "single object", body: `{"name":"Acme Dental"}`, want: 1},
		{name: "array", body: ` [{"name":"A"},{"name":"B","rating":"4.1"}]`, want: 2},
		{name: "empty body", body: "  ", wantErr: "Request body is required"},
		{name: "empty array", body: `[]`, wantErr: "At least one lead is required"},
		{name: "scalar", body: `"lead"`, wantErr: "lead object or an array"},
		{name: "numeric name", body: `{"name":42}`, wantErr: nameRequiredMessage},
		{name: "numeric phone", body: `[{"name":"A","phoneNumber":5551234}]`, wantErr: "phoneNumber must be a string"},
		{name: "broken json", body: `{"name":`, wantErr: "Malformed JSON"},
		{name: "array of numbers", body: `[1]`, wantErr: "Each lead must be an object"},
		{name: "array of strings", body: `["x"]`, wantErr: "Each lead must be an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs, err := DecodeInputs([]byte(tt.body))
			if tt.wantErr != "" {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if !strings.Contains(verr.Message, tt.wantErr) {
					t.Fatalf("message %q does not contain %q", verr.Message, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeInputs: %v", err)
			}
			if len(inputs) != tt.want {
				t.Fatalf("got %d inputs, want %d", len(inputs), tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	name := "  Acme Dental  "
	blank := "   "
	site := "https://acme.example.com"

	lead, err := Input{Name: &name, Rating: &blank, WebsiteLink: &site}.Validate(now)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if lead.Name != "Acme Dental" {
		t.Fatalf("name = %q", lead.Name)
	}
	if lead.Rating != nil || lead.Address != nil || lead.PhoneNumber != nil {
		t.Fatal("blank and missing optional fields must be null")
	}
	if lead.WebsiteLink == nil || *lead.WebsiteLink != site {
		t.Fatalf("website = %v", lead.WebsiteLink)
	}
	if lead.ID == "" || !lead.CreatedAt.Equal(now) || !lead.UpdatedAt.Equal(now) {
		t.Fatalf("lead not stamped: %+v", lead)
	}

	for _, in := range []Input{{}, {Name: &blank}} {
		if _, err := in.Validate(now); err == nil || err.Error() != nameRequiredMessage {
			t.Fatalf("expected name error, got %v", err)
		}
	}
}

func TestPrepareRejectsWholeBatch(t *testing.T) {
	a, empty := "A", ""
	_, err := Prepare([]Input{{Name: &a}, {Name: &empty}}, time.Now())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.HasPrefix(verr.Message, "lead 1:") {
		t.Fatalf("message should name the failing index: %q", verr.Message)
	}

	leads, err := Prepare([]Input{{Name: &a}, {Name: &a}}, time.Now())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if leads[0].ID == leads[1].ID {
		t.Fatal("lead ids must be unique")
	}
}
