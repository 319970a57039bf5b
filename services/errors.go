package services

import "fmt"

// One error type per failure class. Controllers map each to its own HTTP
// status; nothing in here is ever swallowed on the way up.

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type InsufficientStockError struct {
	ItemCode  string
	Location  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s at %s: requested %d, available %d",
		e.ItemCode, e.Location, e.Requested, e.Available)
}

type CapacityExceededError struct {
	Location  string
	Requested int
	Free      int
	Blocked   bool
}

func (e *CapacityExceededError) Error() string {
	if e.Blocked {
		return fmt.Sprintf("location %s is blocked and rejects stock increases", e.Location)
	}
	return fmt.Sprintf("capacity exceeded at %s: requested %d, free %d", e.Location, e.Requested, e.Free)
}

type InvalidStateTransitionError struct {
	Entity string
	Ref    string
	From   string
	To     string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s %s: transition %s -> %s is not allowed", e.Entity, e.Ref, e.From, e.To)
}

type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Ref)
}

type ConcurrencyConflictError struct {
	Msg string
}

func (e *ConcurrencyConflictError) Error() string { return e.Msg }
