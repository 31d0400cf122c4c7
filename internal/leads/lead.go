package leads

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const nameRequiredMessage = "Name is required and must be a non-empty string"

// ValidationError is returned for payloads that fail the lead shape rules.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Lead is a persisted lead.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Rating      *string   `json:"rating"`
	Address     *string   `json:"address"`
	PhoneNumber *string   `json:"phoneNumber"`
	WebsiteLink *string   `json:"websiteLink"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Input is the client-supplied shape of a lead.
type Input struct {
	Name        *string `json:"name"`
	Rating      *string `json:"rating"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phoneNumber"`
	WebsiteLink *string `json:"websiteLink"`
}

// DecodeInputs accepts a single lead object or an array of them.
func DecodeInputs(body []byte) ([]Input, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, invalid("Request body is required")
	}

	var inputs []Input
	var err error
	switch body[0] {
	case '[':
		err = json.Unmarshal(body, &inputs)
	case '{':
		var one Input
		err = json.Unmarshal(body, &one)
		inputs = []Input{one}
	default:
		return nil, invalid("Request body must be a lead object or an array of leads")
	}
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			switch typeErr.Field {
			case "":
				return nil, invalid("Each lead must be an object")
			case "name":
				return nil, invalid(nameRequiredMessage)
			}
			return nil, invalid("%s must be a string", typeErr.Field)
		}
		return nil, invalid("Malformed JSON body: %v", err)
	}
	if len(inputs) == 0 {
		return nil, invalid("At least one lead is required")
	}
	return inputs, nil
}

// Validate checks the required fields and returns a lead stamped with an
// id and timestamps. Blank optional fields become null.
func (in Input) Validate(now time.Time) (Lead, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return Lead{}, invalid(nameRequiredMessage)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Lead{}, fmt.Errorf("generate lead id: %w", err)
	}
	return Lead{
		ID:          id.String(),
		Name:        strings.TrimSpace(*in.Name),
		Rating:      nullable(in.Rating),
		Address:     nullable(in.Address),
		PhoneNumber: nullable(in.PhoneNumber),
		WebsiteLink: nullable(in.WebsiteLink),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Prepare validates every input. The batch fails as a whole on the first
// invalid lead.
func Prepare(inputs []Input, now time.Time) ([]Lead, error) {
	out := make([]Lead, 0, len(inputs))
	for i, in := range inputs {
		lead, err := in.Validate(now)
		if err != nil {
			var verr *ValidationError
			if len(inputs) > 1 && errors.As(err, &verr) {
				return nil, invalid("lead %d: %s", i, verr.Message)
			}
			return nil, err
		}
		out = append(out, lead)
	}
	return out, nil
}

func nullable(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	v := *value
	return &v
}
