package postcode

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrEmptyCatalog is returned by FindNearest when no record survived loading.
	ErrEmptyCatalog = eris.New("postcode: catalog is empty")

	// ErrInvalidRadius is returned by radius searches given a negative radius.
	ErrInvalidRadius = eris.New("postcode: radius must not be negative")
)

// InvalidRecordError reports a raw field that could not be parsed into a Record.
type InvalidRecordError struct {
	Row   int // 1-based data row, 0 when not raised while loading
	Field string
	Value string
	Err   error
}

func (e *InvalidRecordError) Error() string {
	msg := fmt.Sprintf("postcode: invalid %s %q", e.Field, e.Value)
	if e.Row > 0 {
		msg = fmt.Sprintf("postcode: row %d: invalid %s %q", e.Row, e.Field, e.Value)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidRecordError) Unwrap() error {
	return e.Err
}

// DatasetLoadError reports a dataset that could not be read at all.
type DatasetLoadError struct {
	Err error
}

func (e *DatasetLoadError) Error() string {
	return "postcode: load dataset: " + e.Err.Error()
}

func (e *DatasetLoadError) Unwrap() error {
	return e.Err
}
