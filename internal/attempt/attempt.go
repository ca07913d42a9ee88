package attempt

import (
	"encoding/json"
	"fmt"
)

// Well-known field names produced by the status table columns.
const (
	FieldID          = "id"
	FieldDate        = "date"
	FieldCoder       = "coder"
	FieldProblem     = "problem"
	FieldProblemName = "problem_name"
	FieldLanguage    = "language"
	FieldVerdict     = "verdict"
	FieldTest        = "test"
	FieldRuntime     = "runtime"
	FieldMemory      = "memory"

	acceptedKey = "accepted"
)

// Attempt represents a single submission row from the status page
type Attempt struct {
	Fields   map[string]string
	Accepted *bool
}

// New creates an empty Attempt
func New() *Attempt {
	return &Attempt{Fields: make(map[string]string)}
}

// Get returns the value of a field, or "" when the field is absent
func (a *Attempt) Get(field string) string {
	if a == nil || a.Fields == nil {
		return ""
	}
	return a.Fields[field]
}

// Has reports whether a field holds a non-empty value
func (a *Attempt) Has(field string) bool {
	return a.Get(field) != ""
}

// Set overwrites a field value
func (a *Attempt) Set(field, value string) {
	if a.Fields == nil {
		a.Fields = make(map[string]string)
	}
	a.Fields[field] = value
}

// Append concatenates text onto the current value of a field
func (a *Attempt) Append(field, text string) {
	a.Set(field, a.Get(field)+text)
}

// SetAccepted records the verdict outcome
func (a *Attempt) SetAccepted(accepted bool) {
	a.Accepted = &accepted
}

// IsAccepted reports whether the attempt was explicitly marked accepted.
// An unset flag counts as not accepted.
func (a *Attempt) IsAccepted() bool {
	return a != nil && a.Accepted != nil && *a.Accepted
}

// ID returns the submission id, or "" when the row had no id cell
func (a *Attempt) ID() string {
	return a.Get(FieldID)
}

// IsEmpty reports whether nothing at all was captured for the row
func (a *Attempt) IsEmpty() bool {
	return a == nil || (len(a.Fields) == 0 && a.Accepted == nil)
}

// Clone returns a deep copy
func (a *Attempt) Clone() *Attempt {
	c := New()
	for k, v := range a.Fields {
		c.Fields[k] = v
	}
	if a.Accepted != nil {
		c.SetAccepted(*a.Accepted)
	}
	return c
}

// MarshalJSON encodes the attempt as a flat object of its fields, adding
// "accepted" only when the flag is set.
func (a *Attempt) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(a.Fields)+1)
	for k, v := range a.Fields {
		flat[k] = v
	}
	if a.Accepted != nil {
		flat[acceptedKey] = *a.Accepted
	}
	return json.Marshal(flat)
}

// UnmarshalJSON decodes the flat object form written by MarshalJSON
func (a *Attempt) UnmarshalJSON(data []byte) error {
	var flat map[string]interface{}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	a.Fields = make(map[string]string, len(flat))
	a.Accepted = nil
	for k, v := range flat {
		switch val := v.(type) {
		case bool:
			if k != acceptedKey {
				return fmt.Errorf("field %q: unexpected boolean", k)
			}
			a.SetAccepted(val)
		case string:
			a.Fields[k] = val
		case nil:
			// null values carry nothing
		default:
			return fmt.Errorf("field %q: unexpected type %T", k, v)
		}
	}
	return nil
}

// Chronological returns the attempts in reverse order. The status page lists
// the newest submission first, so the result runs oldest to newest.
func Chronological(attempts []*Attempt) []*Attempt {
	out := make([]*Attempt, len(attempts))
	for i, a := range attempts {
		out[len(attempts)-1-i] = a
	}
	return out
}
