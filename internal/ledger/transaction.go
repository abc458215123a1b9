// Package ledger holds the transaction model accepted by the /add endpoint.
// The spreadsheet is the system of record; a Transaction only lives for the
// duration of one request.
package ledger

import (
	"fmt"
	"time"
)

// Transaction is one ledger row as submitted by the client. Amount is a
// pointer so a missing field can be told apart from a literal zero.
type Transaction struct {
	Date        string   `json:"date"`
	Amount      *float64 `json:"amount"`
	Currency    string   `json:"currency"`
	Description string   `json:"description"`
	Purpose     string   `json:"purpose"`
	Account     string   `json:"account"`
}

// ValidationError names the first request field that is missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// Validate checks every required field. Date must be a bare ISO calendar date
// with no time component. Description may be empty; it is free text.
func (t *Transaction) Validate() error {
	if t.Date == "" {
		return &ValidationError{Field: "date", Reason: "required"}
	}
	if _, err := time.Parse("2006-01-02", t.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	if t.Amount == nil {
		return &ValidationError{Field: "amount", Reason: "required"}
	}
	if t.Currency == "" {
		return &ValidationError{Field: "currency", Reason: "required"}
	}
	if t.Purpose == "" {
		return &ValidationError{Field: "purpose", Reason: "required"}
	}
	if t.Account == "" {
		return &ValidationError{Field: "account", Reason: "required"}
	}
	return nil
}

// Cells renders the transaction as one spreadsheet row. The amount stays
// numeric so the backend stores it as a number rather than a string.
func (t *Transaction) Cells() []any {
	return []any{t.Date, *t.Amount, t.Currency, t.Description, t.Purpose, t.Account}
}
