// Package postcode indexes the Australian postcode reference dataset and
// answers lookups by postcode, suburb and coordinates.
package postcode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/umahmood/haversine"
)

// FieldCount is the number of fields in a raw dataset row.
const FieldCount = 7

// Record is one postcode/suburb entry of the reference dataset.
type Record struct {
	Postcode       int     `json:"postcode"`
	Suburb         string  `json:"suburb"`
	State          string  `json:"state"`
	DeliveryCenter string  `json:"delivery_center"`
	Type           string  `json:"type"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// NewRecord builds a Record from raw dataset fields.
func NewRecord(postcode, suburb, state, deliveryCenter, typ, latitude, longitude string) (Record, error) {
	code, err := ParsePostcode(postcode)
	if err != nil {
		return Record{}, err
	}

	lat, err := parseCoordinate("latitude", latitude)
	if err != nil {
		return Record{}, err
	}

	lon, err := parseCoordinate("longitude", longitude)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Postcode:       code,
		Suburb:         strings.TrimSpace(suburb),
		State:          strings.TrimSpace(state),
		DeliveryCenter: strings.TrimSpace(deliveryCenter),
		Type:           strings.TrimSpace(typ),
		Latitude:       lat,
		Longitude:      lon,
	}, nil
}

// NewRecordFromRow builds a Record from a raw row in dataset column order:
// postcode, suburb, state, delivery center, type, latitude, longitude.
func NewRecordFromRow(row []string) (Record, error) {
	if len(row) != FieldCount {
		return Record{}, &InvalidRecordError{
			Field: "row",
			Value: strings.Join(row, ","),
			Err:   fmt.Errorf("expected %d fields, got %d", FieldCount, len(row)),
		}
	}
	return NewRecord(row[0], row[1], row[2], row[3], row[4], row[5], row[6])
}

// ParsePostcode parses a raw postcode. Decimal input is truncated.
func ParsePostcode(raw string) (int, error) {
	s := strings.TrimSpace(raw)

	code, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
			return 0, &InvalidRecordError{Field: "postcode", Value: raw, Err: err}
		}
		code = int(f)
	}
	if code < 0 {
		return 0, &InvalidRecordError{Field: "postcode", Value: raw, Err: errors.New("negative postcode")}
	}
	return code, nil
}

func parseCoordinate(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &InvalidRecordError{Field: field, Value: raw, Err: err}
	}
	return v, nil
}

// Coordinates returns the latitude and longitude of the record.
func (r Record) Coordinates() (float64, float64) {
	return r.Latitude, r.Longitude
}

// DistanceTo returns the great-circle distance to other in kilometers,
// using the Haversine formula with an Earth radius of 6371 km.
func (r Record) DistanceTo(other Record) float64 {
	return distanceKm(r.Latitude, r.Longitude, other.Latitude, other.Longitude)
}

func (r Record) String() string {
	return fmt.Sprintf("Postcode{postcode=%d suburb=%q latitude=%v longitude=%v}",
		r.Postcode, r.Suburb, r.Latitude, r.Longitude)
}

func distanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lon1},
		haversine.Coord{Lat: lat2, Lon: lon2},
	)
	return km
}
