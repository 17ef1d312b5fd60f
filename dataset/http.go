package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/rotisserie/eris"
)

// HTTP is a dataset downloaded on every load, never cached. A body served as
// a zip archive (by content type or a .zip URL) is unpacked first.
type HTTP struct {
	URL string
	// Member names the CSV inside a zip archive. Empty picks the first .csv.
	Member string
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// Rows downloads and parses the dataset.
func (h HTTP) Rows(ctx context.Context) ([][]string, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: build request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: download %s", h.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("dataset: download %s: unexpected status %s", h.URL, resp.Status)
	}

	if !isZip(h.URL, resp.Header.Get("Content-Type")) {
		return ReadCSV(resp.Body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read archive body")
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, eris.Wrap(err, "dataset: unzip response body")
	}
	return readZip(zr, h.Member)
}

func isZip(rawURL, contentType string) bool {
	if strings.HasPrefix(contentType, "application/zip") {
		return true
	}
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.EqualFold(path.Ext(p), ".zip")
}
