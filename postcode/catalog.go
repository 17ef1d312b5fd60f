package postcode

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
)

// DeliveryArea is the dataset type of deliverable localities. Rows with any
// other type are dropped while loading.
const DeliveryArea = "Delivery Area"

// Source supplies raw dataset rows with the header already stripped.
type Source interface {
	Rows(ctx context.Context) ([][]string, error)
}

// Rows is an in-memory Source.
type Rows [][]string

// Rows returns the rows unchanged.
func (r Rows) Rows(context.Context) ([][]string, error) {
	return r, nil
}

// Catalog is a read-only index over the delivery area records of a Source.
// It is built at most once, on Load or on the first query, and is safe for
// concurrent use.
type Catalog struct {
	source Source

	once sync.Once
	err  error

	records    []Record
	byPostcode map[int][]Record
	bySuburb   map[string][]Record
	tree       *spatialIndex
}

// New returns an unloaded Catalog over src.
func New(src Source) *Catalog {
	return &Catalog{source: src}
}

// Load builds the catalog. Only the first call does any work; every call
// returns the outcome of that build.
func (c *Catalog) Load(ctx context.Context) error {
	c.once.Do(func() {
		c.err = c.build(ctx)
	})
	return c.err
}

func (c *Catalog) ready() error {
	return c.Load(context.Background())
}

func (c *Catalog) build(ctx context.Context) error {
	rows, err := c.source.Rows(ctx)
	if err != nil {
		return &DatasetLoadError{Err: err}
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		r, err := NewRecordFromRow(row)
		if err != nil {
			var ire *InvalidRecordError
			if errors.As(err, &ire) {
				ire.Row = i + 1
			}
			return err
		}
		if r.Type != DeliveryArea {
			continue
		}
		records = append(records, r)
	}

	byPostcode := make(map[int][]Record)
	for _, r := range records {
		byPostcode[r.Postcode] = append(byPostcode[r.Postcode], r)
	}

	bySuburb := make(map[string][]Record)
	for _, r := range records {
		key := suburbKey(r.Suburb)
		bySuburb[key] = append(bySuburb[key], r)
	}

	c.records = records
	c.byPostcode = byPostcode
	c.bySuburb = bySuburb
	c.tree = newSpatialIndex(records)
	return nil
}

func suburbKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Len returns the number of loaded records.
func (c *Catalog) Len() (int, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	return len(c.records), nil
}

// FindByPostcode returns every record with the given postcode in dataset order.
func (c *Catalog) FindByPostcode(postcode int) ([]Record, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return slices.Clone(c.byPostcode[postcode]), nil
}

// FindByPostcodeString is FindByPostcode for a raw postcode such as " 3000".
func (c *Catalog) FindByPostcodeString(postcode string) ([]Record, error) {
	code, err := ParsePostcode(postcode)
	if err != nil {
		return nil, err
	}
	return c.FindByPostcode(code)
}

// FindBySuburb returns every record of the named suburb in dataset order.
// Matching ignores case and surrounding whitespace.
func (c *Catalog) FindBySuburb(name string) ([]Record, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return slices.Clone(c.bySuburb[suburbKey(name)]), nil
}

// FindNearest returns the record closest to the given coordinates.
//
// Closeness is the squared Euclidean distance in degrees, not the Haversine
// distance used by DistanceTo, so results can differ from the true nearest
// record away from the equator. The first record in dataset order wins ties.
func (c *Catalog) FindNearest(lat, lon float64) (Record, error) {
	if err := c.ready(); err != nil {
		return Record{}, err
	}
	if len(c.records) == 0 {
		return Record{}, ErrEmptyCatalog
	}

	best := 0
	bestDist := planarDist(lat, lon, c.records[0])
	for i := 1; i < len(c.records); i++ {
		if d := planarDist(lat, lon, c.records[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return c.records[best], nil
}

func planarDist(lat, lon float64, r Record) float64 {
	dLat := lat - r.Latitude
	dLon := lon - r.Longitude
	return dLat*dLat + dLon*dLon
}
