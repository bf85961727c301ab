package pos

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptySale         = errors.New("no items added")
	ErrPersistence       = errors.New("persistence failure")
)

// InsufficientStockError reports the quantity still on hand. It matches
// ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// HTTPStatus maps an error kind to the status the dashboard answers with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, ErrEmptySale):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Details returns extra fields worth showing to the caller, if any.
func Details(err error) map[string]any {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return map[string]any{"product_id": ise.ProductID, "available": ise.Available}
	}
	return nil
}
