package types

import (
	"errors"
	"fmt"
)

// Operation names, as exposed on the call surface.
const (
	OpRegisterCredit       = "register_credit"
	OpCreateLoanRequest    = "create_loan_request"
	OpProveCreditThreshold = "prove_credit_threshold"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrVerification = errors.New("verification error")

	ErrInvalidLength = errors.New("invalid length")
	ErrOutOfRange    = errors.New("value out of range")
	ErrInvalidType   = errors.New("invalid argument type")
	ErrArgCount      = errors.New("wrong number of arguments")
)

// ValidationError reports an argument that does not fit its declared shape.
// It is raised before any mutation.
type ValidationError struct {
	Op         string
	Arg        string // argument name, empty for argument count errors
	Constraint string // e.g. "Bytes<32>", "Uint<0..65535>"
	Err        error
}

func (e *ValidationError) Error() string {
	if e.Arg == "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%s: argument %s: expected %s: %v", e.Op, e.Arg, e.Constraint, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// VerificationError reports a failed threshold proof. The ledger is unchanged.
type VerificationError struct {
	Op     string
	Reason string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *VerificationError) Is(target error) bool { return target == ErrVerification }

func NewValidationError(op, arg, constraint string, err error) *ValidationError {
	return &ValidationError{Op: op, Arg: arg, Constraint: constraint, Err: err}
}
