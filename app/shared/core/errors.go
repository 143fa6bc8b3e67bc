package core

import "errors"

var (
	// ErrNotFound is the kind of all rejections caused by a barcode or loan that does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrIneligibleState is the kind of all rejections caused by a record that exists but does not allow the operation.
	ErrIneligibleState = errors.New("ineligible state")

	// ErrInvalidInput is the kind of all rejections caused by malformed attributes of a new or changed record.
	ErrInvalidInput = errors.New("invalid input")
)

// Rejection is a business rule violation.
// Its message is the human-readable reason, its kind is one of the sentinel errors above.
type Rejection struct {
	Kind   error
	Reason string
}

// Reject creates a Rejection of the given kind.
func Reject(kind error, reason string) error {
	return Rejection{Kind: kind, Reason: reason}
}

func (r Rejection) Error() string {
	return r.Reason
}

// Unwrap exposes the kind for errors.Is.
func (r Rejection) Unwrap() error {
	return r.Kind
}

// IsRejection reports whether err is a business rule violation rather than an infrastructure failure.
func IsRejection(err error) bool {
	var rejection Rejection
	return errors.As(err, &rejection)
}
