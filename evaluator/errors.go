package evaluator

import (
	"fmt"

	cerrors "harmonichain/core/errors"
)

func errUnknownEntity(kind, ref string) error {
	return fmt.Errorf("evaluator: unknown %s %q: %w", kind, ref, cerrors.ErrUnknownEntity)
}

func errInsufficientFunds(account string) error {
	return fmt.Errorf("evaluator: %s has insufficient funds: %w", account, cerrors.ErrInsufficientFunds)
}

func errInvariant(msg string) error {
	return fmt.Errorf("evaluator: %s: %w", msg, cerrors.ErrInvariantViolation)
}

func errUnsupportedOperation(tag fmt.Stringer) error {
	return fmt.Errorf("evaluator: no evaluator registered for operation %s: %w", tag, cerrors.ErrInvariantViolation)
}
