package postcode

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var melbourneRows = Rows{
	{"3000", "Melbourne", "VIC", "MELBOURNE", "Delivery Area", "-37.8136", "144.9631"},
	{"3001", "Melbourne", "VIC", "GPO", "Delivery Area", "-37.8150", "144.9633"},
	{"3002", "East Melbourne", "VIC", "EAST MELBOURNE", "Post Office Boxes", "-37.8163", "144.9879"},
}

// countingSource counts how often the catalog asks for rows.
type countingSource struct {
	calls atomic.Int32
	rows  Rows
	err   error
}

func (s *countingSource) Rows(ctx context.Context) ([][]string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.rows.Rows(ctx)
}

func TestCatalog_FindByPostcode(t *testing.T) {
	c := New(melbourneRows)

	got, err := c.FindByPostcode(3000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MELBOURNE", got[0].DeliveryCenter)
	assert.Equal(t, 3000, got[0].Postcode)
}

func TestCatalog_FindByPostcode_SkipsNonDeliveryAreas(t *testing.T) {
	c := New(melbourneRows)

	got, err := c.FindByPostcode(3002)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalog_FindByPostcode_Miss(t *testing.T) {
	c := New(melbourneRows)

	got, err := c.FindByPostcode(9999)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalog_FindByPostcodeString(t *testing.T) {
	c := New(melbourneRows)

	got, err := c.FindByPostcodeString(" 3001 ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "GPO", got[0].DeliveryCenter)

	_, err = c.FindByPostcodeString("abc")
	var ire *InvalidRecordError
	require.ErrorAs(t, err, &ire)
}

func TestCatalog_FindByPostcode_DatasetOrder(t *testing.T) {
	c := New(Rows{
		{"2000", "Sydney", "NSW", "SYDNEY", "Delivery Area", "-33.8688", "151.2093"},
		{"2000", "Barangaroo", "NSW", "SYDNEY", "Delivery Area", "-33.8615", "151.2010"},
		{"2000", "Dawes Point", "NSW", "SYDNEY", "Delivery Area", "-33.8555", "151.2073"},
		{"2000", "Haymarket", "NSW", "SYDNEY", "Post Office Boxes", "-33.8806", "151.2045"},
	})

	for i := 0; i < 3; i++ {
		got, err := c.FindByPostcode(2000)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "Sydney", got[0].Suburb)
		assert.Equal(t, "Barangaroo", got[1].Suburb)
		assert.Equal(t, "Dawes Point", got[2].Suburb)
	}
}

func TestCatalog_FindBySuburb(t *testing.T) {
	c := New(melbourneRows)

	got, err := c.FindBySuburb("  melbourne  ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3000, got[0].Postcode)
	assert.Equal(t, 3001, got[1].Postcode)

	d := got[0].DistanceTo(got[1])
	assert.Greater(t, d, 0.0)
	assert.Less(t, d, 1.0)
}

func TestCatalog_FindBySuburb_NoFuzzyMatch(t *testing.T) {
	c := New(melbourneRows)

	got, err := c.FindBySuburb("Melb")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = c.FindBySuburb("East Melbourne")
	require.NoError(t, err)
	assert.Empty(t, got, "post office box rows are not indexed")
}

func TestCatalog_ResultsAreCopies(t *testing.T) {
	c := New(melbourneRows)

	got, err := c.FindBySuburb("Melbourne")
	require.NoError(t, err)
	got[0].Suburb = "changed"

	again, err := c.FindBySuburb("Melbourne")
	require.NoError(t, err)
	assert.Equal(t, "Melbourne", again[0].Suburb)
}

func TestCatalog_OnlyDeliveryAreas(t *testing.T) {
	c := New(Rows{
		{"3000", "Melbourne", "VIC", "MELBOURNE", "Delivery Area", "-37.8136", "144.9631"},
		{"3000", "Melbourne", "VIC", "MELBOURNE", "delivery area", "-37.8136", "144.9631"},
		{"3000", "Melbourne", "VIC", "MELBOURNE", "Post Office Boxes", "-37.8136", "144.9631"},
		{"3000", "Melbourne", "VIC", "MELBOURNE", "", "-37.8136", "144.9631"},
	})

	byCode, err := c.FindByPostcode(3000)
	require.NoError(t, err)
	bySuburb, err := c.FindBySuburb("melbourne")
	require.NoError(t, err)

	for _, r := range append(byCode, bySuburb...) {
		assert.Equal(t, DeliveryArea, r.Type)
	}
	assert.Len(t, byCode, 1)
	assert.Len(t, bySuburb, 1)

	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCatalog_FindNearest(t *testing.T) {
	c := New(melbourneRows)

	got, err := c.FindNearest(-37.8149, 144.9633)
	require.NoError(t, err)
	assert.Equal(t, 3001, got.Postcode)

	got, err = c.FindNearest(-37.81, 144.96)
	require.NoError(t, err)
	assert.Equal(t, 3000, got.Postcode)
}

func TestCatalog_FindNearest_TieGoesToFirst(t *testing.T) {
	c := New(Rows{
		{"1001", "West", "NSW", "A", "Delivery Area", "0", "-1"},
		{"1002", "East", "NSW", "B", "Delivery Area", "0", "1"},
	})

	got, err := c.FindNearest(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1001, got.Postcode)
}

func TestCatalog_FindNearest_UsesDegreeSpace(t *testing.T) {
	// At 60°S a degree of longitude is half as long as a degree of latitude.
	// In degrees the northern point is closer; on the sphere the eastern one is.
	c := New(Rows{
		{"1001", "North", "NSW", "A", "Delivery Area", "-59.1", "0"},
		{"1002", "East", "NSW", "B", "Delivery Area", "-60", "1.5"},
	})

	got, err := c.FindNearest(-60, 0)
	require.NoError(t, err)
	assert.Equal(t, 1001, got.Postcode)

	query := Record{Latitude: -60, Longitude: 0}
	north, _ := c.FindByPostcode(1001)
	east, _ := c.FindByPostcode(1002)
	assert.Less(t, query.DistanceTo(east[0]), query.DistanceTo(north[0]))
}

func TestCatalog_FindNearest_Empty(t *testing.T) {
	c := New(Rows{
		{"3002", "East Melbourne", "VIC", "EAST MELBOURNE", "Post Office Boxes", "-37.8163", "144.9879"},
	})

	_, err := c.FindNearest(-37.8, 144.9)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = New(Rows{}).FindNearest(0, 0)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestCatalog_InvalidRowAbortsLoad(t *testing.T) {
	c := New(Rows{
		{"3000", "Melbourne", "VIC", "MELBOURNE", "Delivery Area", "-37.8136", "144.9631"},
		{"abc", "Broken", "VIC", "X", "Delivery Area", "-37.8", "144.9"},
	})

	_, err := c.FindByPostcode(3000)
	var ire *InvalidRecordError
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, 2, ire.Row)
	assert.Contains(t, err.Error(), "row 2")
}

func TestCatalog_SourceFailure(t *testing.T) {
	cause := errors.New("disk on fire")
	src := &countingSource{err: cause}
	c := New(src)

	_, err := c.FindBySuburb("Melbourne")
	var dle *DatasetLoadError
	require.ErrorAs(t, err, &dle)
	assert.ErrorIs(t, err, cause)

	// failure is memoised, not retried
	_, err = c.FindNearest(0, 0)
	require.ErrorAs(t, err, &dle)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCatalog_LoadOnceUnderConcurrency(t *testing.T) {
	src := &countingSource{rows: melbourneRows}
	c := New(src)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.FindBySuburb("Melbourne")
			assert.NoError(t, err)
			assert.Len(t, got, 2)
		}()
	}
	wg.Wait()

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, int32(1), src.calls.Load())
}
