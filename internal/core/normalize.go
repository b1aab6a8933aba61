package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// RawRecord is an expense record as it arrives from the outside: a JSON
// import file or a submitted form. Date and amount are deliberately
// untyped; Normalize is the only way such data becomes an Expense.
type RawRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OccurredOn any    `json:"occurredOn"`
	Amount     any    `json:"amount"`
	Attachment string `json:"attachment"`
}

// Normalize coerces one raw record into a canonical Expense. It is a pure
// transformation: a failure affects only the record it was given.
//
// Dates that are already structured pass through unchanged; textual dates
// are parsed as calendar dates. Amounts that are already numeric pass
// through; strings have commas normalized to periods and are parsed as
// signed decimals.
func Normalize(r RawRecord) (Expense, error) {
	occurredOn, err := coerceDate(r.OccurredOn)
	if err != nil {
		return Expense{}, err
	}
	amount, err := coerceAmount(r.Amount)
	if err != nil {
		return Expense{}, err
	}
	return Expense{
		ID:         r.ID,
		Name:       r.Name,
		OccurredOn: occurredOn,
		Amount:     amount,
		Attachment: r.Attachment,
	}, nil
}

func coerceDate(v any) (Date, error) {
	switch d := v.(type) {
	case Date:
		return d, nil
	case time.Time:
		return DateOf(d), nil
	case string:
		return ParseDate(d)
	case nil:
		return Date{}, fmt.Errorf("%w: missing date", ErrMalformedDate)
	default:
		return Date{}, fmt.Errorf("%w: unsupported type %T", ErrMalformedDate, v)
	}
}

func coerceAmount(v any) (Money, error) {
	switch a := v.(type) {
	case Money:
		return a, nil
	case float64:
		// encoding/json decodes every JSON number into float64.
		return MoneyFromFloat(a)
	case int:
		return Money{Cents: int64(a) * 100}, nil
	case int64:
		return Money{Cents: a * 100}, nil
	case json.Number:
		return ParseAmount(a.String())
	case string:
		return ParseAmount(a)
	case nil:
		return Money{}, fmt.Errorf("%w: missing amount", ErrMalformedAmount)
	default:
		return Money{}, fmt.Errorf("%w: unsupported type %T", ErrMalformedAmount, v)
	}
}
