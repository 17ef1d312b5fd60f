package postcode

import (
	"context"
	"runtime"
	"slices"
	"sync"
)

// Within returns the records no further than radiusKm (Haversine) from the
// given coordinates, nearest first.
func (c *Catalog) Within(lat, lon, radiusKm float64) ([]Record, error) {
	if radiusKm < 0 {
		return nil, ErrInvalidRadius
	}
	if err := c.ready(); err != nil {
		return nil, err
	}

	matches := c.tree.within(lat, lon, radiusKm)
	out := make([]Record, 0, len(matches))
	for _, m := range matches {
		out = append(out, c.records[m.index])
	}
	return out, nil
}

type nearbyJob struct {
	postcode int
	lat, lon float64
	radiusKm float64
}

type nearbyResult struct {
	postcode int
	nearby   []int
}

// Nearby maps every postcode to the sorted postcodes within radiusKm of it,
// itself included. A postcode is located at its first record. The work is
// spread over workers goroutines, or runtime.NumCPU()*4 when workers <= 0.
func (c *Catalog) Nearby(ctx context.Context, radiusKm float64, workers int) (map[int][]int, error) {
	if radiusKm < 0 {
		return nil, ErrInvalidRadius
	}
	if err := c.ready(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU() * 4
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// buffered so producers and consumers can drift apart briefly
	jobs := make(chan nearbyJob, workers*2)
	results := make(chan nearbyResult, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res := nearbyResult{postcode: job.postcode, nearby: c.nearbyPostcodes(job)}
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// results is closed once every worker has returned
	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, code := range c.postcodes() {
			first := c.byPostcode[code][0]
			select {
			case jobs <- nearbyJob{postcode: code, lat: first.Latitude, lon: first.Longitude, radiusKm: radiusKm}:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make(map[int][]int, len(c.byPostcode))
	for res := range results {
		out[res.postcode] = res.nearby
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Catalog) nearbyPostcodes(job nearbyJob) []int {
	codes := []int{job.postcode}
	for _, m := range c.tree.within(job.lat, job.lon, job.radiusKm) {
		codes = append(codes, c.records[m.index].Postcode)
	}
	slices.Sort(codes)
	return slices.Compact(codes)
}

func (c *Catalog) postcodes() []int {
	codes := make([]int, 0, len(c.byPostcode))
	for code := range c.byPostcode {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}
