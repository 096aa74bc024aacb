package model

import (
	"errors"
	"fmt"
)

// ErrEmptySeries is returned when a feed produced no rows.
var ErrEmptySeries = errors.New("price series has no rows")

// MissingColumnError reports a required input column that is absent.
type MissingColumnError struct {
	Component string
	Column    Column
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.Component, e.Column)
}

// InvalidDataError reports a required column without a single usable number.
type InvalidDataError struct {
	Component string
	Column    Column
}

func (e *InvalidDataError) Error() string {
	return fmt.Sprintf("%s: column %q contains no valid numeric data", e.Component, e.Column)
}

// InsufficientHistoryError reports a series shorter than a component needs.
type InsufficientHistoryError struct {
	Component string
	Have      int
	Need      int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("%s: series too short (length=%d, required=%d)", e.Component, e.Have, e.Need)
}

// IndexError reports a time index that is not strictly increasing.
type IndexError struct {
	Position int
	Reason   string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("invalid time index at row %d: %s", e.Position, e.Reason)
}
