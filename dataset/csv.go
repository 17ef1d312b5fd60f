// Package dataset reads the Australian postcode reference dataset: a CSV
// file with a header row followed by postcode, suburb, state, delivery
// center, type, latitude and longitude columns.
package dataset

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/rotisserie/eris"
)

// Columns is the number of fields in every row, header included.
const Columns = 7

// ErrMissingHeader is returned for a dataset without a header row.
var ErrMissingHeader = eris.New("dataset: missing header row")

// ReadCSV parses a dataset stream and returns its data rows, header stripped.
func ReadCSV(r io.Reader) ([][]string, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = Columns

	if _, err := csvReader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingHeader
		}
		return nil, eris.Wrap(err, "dataset: read header")
	}

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read rows")
	}
	return rows, nil
}
