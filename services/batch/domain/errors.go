package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the batch domain. Use errors.Is() to check these.
var (
	// ErrBatchNotFound indicates the requested batch does not exist.
	ErrBatchNotFound = errors.New("batch not found")

	// ErrBatchAlreadyExists indicates a batch with the same batch ID is already registered.
	ErrBatchAlreadyExists = errors.New("batch already exists")

	// ErrBatchNotActive indicates a ledger operation against a SOLD_OUT or BLOCKED batch.
	ErrBatchNotActive = errors.New("batch is not active")

	// ErrInsufficientBalance indicates the actor holds fewer units than requested.
	// The concrete error is *InsufficientBalanceError.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidUnitCount indicates a unit count outside the allowed range.
	ErrInvalidUnitCount = errors.New("invalid unit count")

	// ErrUnauthorizedActor indicates the actor holds no units of the batch.
	ErrUnauthorizedActor = errors.New("actor holds no units of this batch")

	// ErrInvalidBatch indicates batch registration data violates domain constraints.
	ErrInvalidBatch = errors.New("invalid batch")

	// ErrInvalidParty indicates a malformed party identity or a self-transfer.
	ErrInvalidParty = errors.New("invalid party")

	// ErrRoleNotPermitted indicates the actor's role may not perform the operation.
	ErrRoleNotPermitted = errors.New("role not permitted")
)

// InsufficientBalanceError reports the balance an operation was checked against.
type InsufficientBalanceError struct {
	Available int
	Requested int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %d, requested %d", e.Available, e.Requested)
}

// Is makes errors.Is(err, ErrInsufficientBalance) match.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}
