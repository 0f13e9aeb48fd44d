package entity

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
	ErrNegativeMoney     = errors.New("money amount cannot be negative")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrIngredientAbsent  = errors.New("ingredient not in recipe")
	ErrRecipeAbsent      = errors.New("recipe not in product")
	ErrItemAbsent        = errors.New("item not in order")
)

// ValidationError reports a single invalid field. It unwraps to ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
