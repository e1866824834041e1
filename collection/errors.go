package collection

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage matches every *StorageError. Absence of a row is never reported
	// through it.
	ErrStorage = errors.New("collection: storage failure")

	// ErrNotAuthenticated is returned by session operations that need a user.
	ErrNotAuthenticated = errors.New("collection: no authenticated user")

	// ErrNoSelection is returned when an operation needs a selected copy.
	ErrNoSelection = errors.New("collection: no copy selected")

	// ErrCopyNotOwned is returned when selecting a copy outside the working set.
	ErrCopyNotOwned = errors.New("collection: copy not in the owned list")
)

// StorageError wraps a fault raised by the storage endpoint.
type StorageError struct {
	Op    string
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageErr(op, table string, err error) error {
	return &StorageError{Op: op, Table: table, Err: err}
}
