package export

import "errors"

// DefaultFailureMessage is shown when a failed export carries no message of
// its own.
const DefaultFailureMessage = "Failed to generate PDF"

var (
	// ErrEmptyInvoice is returned when there is nothing to export.
	ErrEmptyInvoice = errors.New("export: invoice has no items")
	// ErrExportFailed is matched by every *Failure.
	ErrExportFailed = errors.New("export: generation failed")
	// ErrUnknownFormat is returned for an unsupported format name.
	ErrUnknownFormat = errors.New("export: unknown format")
)

// Failure is the error reported to the user when a document could not be
// produced. The ledger is left untouched when one is returned.
type Failure struct {
	Message string
	Err     error
}

// NewFailure wraps err, using its text as the message when it has one.
func NewFailure(err error) *Failure {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = DefaultFailureMessage
	}
	return &Failure{Message: msg, Err: err}
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// Is makes errors.Is(f, ErrExportFailed) true.
func (f *Failure) Is(target error) bool { return target == ErrExportFailed }
