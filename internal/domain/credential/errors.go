package credential

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBadEncoding   = errors.New("credential blob is not valid TREKKER~ wire encoding")
	ErrBadJSON       = errors.New("credential payload is not valid JSON")
	ErrMissingFields = errors.New("credential payload is missing required fields")
	ErrNoPhone       = errors.New("could not extract a phone number from the credential payload")
	ErrPhoneMismatch = errors.New("extracted phone does not match the declared phone")
	ErrTenantUnknown = errors.New("target tenant does not exist")
)

// MissingFieldsError names the specific required keys absent from a
// credential payload, so the registration response can report a precise
// one-line reason instead of the bare ErrMissingFields message.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFields, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

// missingFields builds the error normalize() returns when one or more
// requiredKeys are absent from a payload.
func missingFields(fields []string) error {
	return &MissingFieldsError{Fields: fields}
}

// CrossCheckResult enumerates the outcome of comparing an extracted phone
// against the global registry.
type CrossCheckResult int

const (
	ResultAvailable CrossCheckResult = iota
	ResultDuplicateOnThisTenant
	ResultDuplicateOnOtherTenant
	ResultInconsistentLocalBot
)

func (r CrossCheckResult) String() string {
	switch r {
	case ResultAvailable:
		return "available"
	case ResultDuplicateOnThisTenant:
		return "duplicate_on_this_tenant"
	case ResultDuplicateOnOtherTenant:
		return "duplicate_on_other_tenant"
	case ResultInconsistentLocalBot:
		return "inconsistent_local_bot"
	default:
		return "unknown"
	}
}
