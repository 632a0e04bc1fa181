package post

import (
	"errors"
	"fmt"
)

// ErrContractViolation is matched by every *ContractViolation.
var ErrContractViolation = errors.New("contract violation")

// ContractViolation reports a caller error: a position or range outside the
// post, a malformed tree, or a transaction method called out of sequence.
// The core never recovers from it.
type ContractViolation struct {
	Op     string
	Reason string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("post: %s: %s", e.Op, e.Reason)
}

func (e *ContractViolation) Is(target error) bool {
	return target == ErrContractViolation
}

func violation(op, format string, args ...any) error {
	return &ContractViolation{Op: op, Reason: fmt.Sprintf(format, args...)}
}
