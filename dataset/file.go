package dataset

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// File is a dataset on the local filesystem, either a CSV file or a zip
// archive holding one.
type File struct {
	Path string
	// Member names the CSV inside a zip archive. Empty picks the first .csv.
	Member string
}

// Rows reads the file. The context is unused; local reads are not cancelled.
func (f File) Rows(context.Context) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(f.Path), ".zip") {
		zr, err := zip.OpenReader(f.Path)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: open archive %s", f.Path)
		}
		defer zr.Close()

		return readZip(&zr.Reader, f.Member)
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", f.Path)
	}
	defer file.Close()

	return ReadCSV(file)
}
