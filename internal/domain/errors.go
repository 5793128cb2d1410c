package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrCapacityExceeded  = errors.New("LIMIT_REACHED")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrSyncFailure       = errors.New("sync failure")
	ErrInvalidInput      = errors.New("invalid input")
)

// NotFoundError reports an id that is absent from the current snapshot. In a
// shared last-writer-wins document this is usually a lost race.
type NotFoundError struct {
	Kind string
	ID   string
}

func NewNotFound(kind string, id any) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: fmt.Sprint(id)}
}

func (e *NotFoundError) Error() string        { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func NewInvalidTransition(entity string, id any, from, to fmt.Stringer) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, ID: fmt.Sprint(id), From: from.String(), To: to.String()}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s: cannot go from %s to %s", e.Entity, e.ID, e.From, e.To)
}
func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

type CapacityExceededError struct {
	StaffID string
	Active  int
	Limit   int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("LIMIT_REACHED: staff %s already holds %d of %d tables", e.StaffID, e.Active, e.Limit)
}
func (e *CapacityExceededError) Is(target error) bool { return target == ErrCapacityExceeded }

type UnauthorizedError struct {
	TableID int
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("table %d: session token mismatch", e.TableID)
}
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// SyncFailureError wraps a failed whole-document write. Callers retry
// explicitly; nothing is resubmitted automatically.
type SyncFailureError struct {
	Op  string
	Err error
}

func (e *SyncFailureError) Error() string        { return fmt.Sprintf("sync %s: %v", e.Op, e.Err) }
func (e *SyncFailureError) Unwrap() error        { return e.Err }
func (e *SyncFailureError) Is(target error) bool { return target == ErrSyncFailure }

func (s TableStatus) String() string { return string(s) }
func (s ItemStatus) String() string  { return string(s) }
