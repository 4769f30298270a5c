package ledger

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidItem is wrapped by every ValidationError.
	ErrInvalidItem = errors.New("ledger: invalid item")
	// ErrIDCollision is returned when no unused id could be generated.
	ErrIDCollision = errors.New("ledger: could not allocate a unique item id")
)

// Reason codes reported per field in a ValidationError.
const (
	ReasonRequired       = "required"
	ReasonNotANumber     = "not_a_number"
	ReasonMustBePositive = "must_be_positive"
	ReasonNegative       = "must_not_be_negative"
	ReasonOutOfRange     = "out_of_range"
)

// ValidationError lists the rejected fields of an add request together with
// a reason code for each. The ledger is never modified when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrInvalidItem.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidItem }

// Reason returns the reason recorded for field, or "".
func (e *ValidationError) Reason(field string) string {
	return e.Fields[field]
}
