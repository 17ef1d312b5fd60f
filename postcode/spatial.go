package postcode

import (
	"cmp"
	"math"
	"slices"

	"github.com/dhconnelly/rtreego"
)

const (
	// km per degree of latitude on a 6371 km sphere
	kmPerDegree = 6371 * math.Pi / 180
	// records are stored as tiny boxes; rtreego rejects zero-size rects
	pointSize = 1e-9
	// widens the search box so the Haversine check decides the edge cases
	boxMargin = 1.1
)

// spatialItem is a record position stored in the r-tree.
type spatialItem struct {
	rect  rtreego.Rect
	index int
}

func (s *spatialItem) Bounds() rtreego.Rect {
	return s.rect
}

// spatialIndex narrows radius searches to the records inside a bounding box
// before the exact Haversine check.
type spatialIndex struct {
	tree    *rtreego.Rtree
	records []Record
}

func newSpatialIndex(records []Record) *spatialIndex {
	items := make([]rtreego.Spatial, 0, len(records))
	for i, r := range records {
		// x = longitude, y = latitude
		rect, err := rtreego.NewRect(rtreego.Point{r.Longitude, r.Latitude}, []float64{pointSize, pointSize})
		if err != nil {
			continue
		}
		items = append(items, &spatialItem{rect: rect, index: i})
	}
	return &spatialIndex{
		tree:    rtreego.NewTree(2, 25, 50, items...),
		records: records,
	}
}

type match struct {
	index int
	km    float64
}

// within returns the indices of records no further than radiusKm from the
// point, nearest first and in dataset order on equal distance.
func (s *spatialIndex) within(lat, lon, radiusKm float64) []match {
	if len(s.records) == 0 {
		return nil
	}

	box, ok := searchBox(lat, lon, radiusKm)
	if !ok {
		return nil
	}

	var matches []match
	for _, item := range s.tree.SearchIntersect(box) {
		idx := item.(*spatialItem).index
		r := s.records[idx]
		if km := distanceKm(lat, lon, r.Latitude, r.Longitude); km <= radiusKm {
			matches = append(matches, match{index: idx, km: km})
		}
	}

	slices.SortFunc(matches, func(a, b match) int {
		if c := cmp.Compare(a.km, b.km); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})
	return matches
}

// searchBox is a lon/lat rectangle containing every point within radiusKm.
func searchBox(lat, lon, radiusKm float64) (rtreego.Rect, bool) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsNaN(radiusKm) {
		return rtreego.Rect{}, false
	}

	dLat := radiusKm / kmPerDegree * boxMargin
	minLat := math.Max(lat-dLat, -90)
	maxLat := math.Min(lat+dLat, 90)

	minLon, maxLon := -180.0, 180.0
	if cosLat := math.Cos(math.Max(math.Abs(minLat), math.Abs(maxLat)) * math.Pi / 180); cosLat > 1e-6 {
		if dLon := dLat / cosLat; dLon < 180 {
			minLon, maxLon = lon-dLon, lon+dLon
		}
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{minLon, minLat},
		[]float64{math.Max(maxLon-minLon, pointSize), math.Max(maxLat-minLat, pointSize)},
	)
	if err != nil {
		return rtreego.Rect{}, false
	}
	return rect, true
}
