package services

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError
var ErrNotFound = errors.New("registro no encontrado")

// Resources reported by NotFoundError
const (
	ResourceGym      = "gym"
	ResourceClient   = "client"
	ResourcePlan     = "plan"
	ResourceContract = "contract"
)

var resourceLabels = map[string]string{
	ResourceGym:      "Gimnasio",
	ResourceClient:   "Cliente",
	ResourcePlan:     "Plan de membresía",
	ResourceContract: "Contrato",
}

// NotFoundError reports a referenced record that does not exist or is not
// visible to the caller. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	label, ok := resourceLabels[e.Resource]
	if !ok {
		label = e.Resource
	}
	return fmt.Sprintf("%s no encontrado", label)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError builds a NotFoundError for the given resource
func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

// BusinessError is a client-correctable domain rule violation.
// Two BusinessErrors match with errors.Is when their codes are equal.
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

func (e *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of the error carrying a more specific message
func (e *BusinessError) WithMessage(format string, args ...any) *BusinessError {
	return &BusinessError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Contract lifecycle rule violations
var (
	ErrDuplicateActiveContract = &BusinessError{Code: "duplicate_active_contract", Message: "el cliente ya tiene un contrato activo"}
	ErrCannotRenewCancelled    = &BusinessError{Code: "cannot_renew_cancelled", Message: "no se puede renovar un contrato cancelado"}
	ErrInvalidFreezeRange      = &BusinessError{Code: "invalid_freeze_range", Message: "la fecha final del congelamiento debe ser posterior a la fecha inicial"}
	ErrFreezeTooLong           = &BusinessError{Code: "freeze_too_long", Message: "el congelamiento excede el máximo permitido"}
	ErrAlreadyCancelled        = &BusinessError{Code: "already_cancelled", Message: "el contrato ya está cancelado"}
	ErrContractNotActive       = &BusinessError{Code: "contract_not_active", Message: "solo se pueden congelar contratos activos"}
)

// IsBusinessError reports whether err is (or wraps) a BusinessError
func IsBusinessError(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}
