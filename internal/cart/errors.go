package cart

import (
	"errors"
	"fmt"
)

// Failure kinds returned by Service. Callers match them with errors.Is;
// the wrapped message carries the detail.
var (
	ErrInvalidInput   = errors.New("invalid input data")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidAddress = errors.New("invalid address ID")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrCartClosed     = errors.New("cart is already checked out")
	ErrStorageFault   = errors.New("storage fault")
)

// ErrNotFound is returned by Datastore point reads when no row matches.
var ErrNotFound = errors.New("not found")

var kinds = []error{
	ErrInvalidInput,
	ErrUnauthorized,
	ErrInvalidAddress,
	ErrEmptyCart,
	ErrCartClosed,
	ErrStorageFault,
}

// Kind returns the failure kind err belongs to, or nil for foreign errors.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func storageFault(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageFault, op, err)
}

// classify passes failure kinds through and turns anything else into a
// storage fault.
func classify(op string, err error) error {
	if err == nil || Kind(err) != nil {
		return err
	}
	return storageFault(op, err)
}
