package lots

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation agrupa todos los *ValidationError (errors.Is).
	ErrValidation = errors.New("validation error")
	// ErrNotFound agrupa todos los *NotFoundError (errors.Is).
	ErrNotFound = errors.New("lot not found")
)

// Errores de storage. Los repositorios devuelven estos (opcionalmente envueltos)
// y el Service los traduce a errores de dominio.
var (
	ErrLotExists       = errors.New("storage: lot already exists")
	ErrLotNotFound     = errors.New("storage: lot not found")
	ErrHistoryRewrite  = errors.New("storage: history is append-only")
	ErrImmutableChange = errors.New("storage: immutable lot field changed")
)

// ValidationError es un input de creación o registro mal formado.
// El estado del ledger no cambia.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError referencia un lote inexistente.
type NotFoundError struct {
	LotID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("lot %q not found", e.LotID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
