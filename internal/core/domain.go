package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Date is a calendar date with no time-of-day semantics. It marshals
	// as YYYY-MM-DD and must round-trip through that form without
	// timezone drift, so it is always anchored to UTC midnight.
	Date struct {
		time.Time
	}

	// Expense is the central persisted record. ID is the stable identity
	// assigned by the store on creation; it is empty for records that
	// have not been persisted yet.
	Expense struct {
		ID         string `json:"id,omitempty"`
		Name       string `json:"name"`
		OccurredOn Date   `json:"occurredOn"`
		Amount     Money  `json:"amount"`
		Attachment string `json:"attachment,omitempty"`
	}
)

var (
	ErrMalformedDate   = errors.New("malformed date")
	ErrMalformedAmount = errors.New("malformed amount")
	ErrEmptyName       = errors.New("empty name")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date anchored to UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary instant to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a textual calendar date. It accepts the canonical
// YYYY-MM-DD form and, for imported data, a full RFC 3339 timestamp whose
// date part is kept. Anything else fails with ErrMalformedDate.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (e Expense) Validate() error {
	if e.OccurredOn.IsZero() {
		return fmt.Errorf("%w: missing occurredOn", ErrMalformedDate)
	}
	if len(strings.TrimSpace(e.Name)) == 0 {
		return ErrEmptyName
	}
	if len(e.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	return nil
}
