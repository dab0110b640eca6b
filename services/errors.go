package services

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that an explicitly requested record does not exist.
// Handlers translate it into a redirect, never into an error dialog.
var ErrNotFound = errors.New("not found")

// DataSourceError wraps a storage failure with the operation that hit it.
// Strict callers handle it; the safe tier swallows it and falls back.
type DataSourceError struct {
	Op  string
	Err error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source: %s: %v", e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

func dataSourceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DataSourceError{Op: op, Err: err}
}
