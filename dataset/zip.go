package dataset

import (
	"archive/zip"
	"path"
	"strings"

	"github.com/rotisserie/eris"
)

// readZip reads the dataset out of a zip archive: the member called name,
// or the first .csv member when name is empty.
func readZip(zr *zip.Reader, name string) ([][]string, error) {
	for _, f := range zr.File {
		if name != "" && f.Name != name {
			continue
		}
		if name == "" && !strings.EqualFold(path.Ext(f.Name), ".csv") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: open %s in archive", f.Name)
		}
		defer rc.Close()

		return ReadCSV(rc)
	}

	if name == "" {
		return nil, eris.New("dataset: no .csv file in archive")
	}
	return nil, eris.Errorf("dataset: %s not found in archive", name)
}
