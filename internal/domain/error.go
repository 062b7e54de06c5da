package domain

import (
	"errors"
	"fmt"
)

var (
	// Business-rule violations. Every mutating operation checks all of its
	// preconditions before touching any state, so a returned violation
	// guarantees the aggregate is unchanged.
	ErrTarifAlreadyActive = errors.New("service already has an active tarif")
	ErrNoActiveTarif      = errors.New("service has no active tarif")
	ErrTarifGroupMismatch = errors.New("tarif group does not match service group")
	ErrTarifIncompatible  = errors.New("tarif is not compatible with the current one")
	ErrCreditNotAllowed   = errors.New("credit access cannot be granted")

	// Common infrastructure errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrLockNotAcquired    = errors.New("could not acquire lock")
)

// DomainLogicError attaches the offending service id to a business-rule
// violation. errors.Is still matches the wrapped sentinel.
type DomainLogicError struct {
	ServiceID int64
	Err       error
}

func (e *DomainLogicError) Error() string {
	return fmt.Sprintf("service %d: %v", e.ServiceID, e.Err)
}

func (e *DomainLogicError) Unwrap() error { return e.Err }

func NewDomainLogicError(serviceID int64, err error) *DomainLogicError {
	return &DomainLogicError{ServiceID: serviceID, Err: err}
}
