package main

import (
	"fmt"
	"math/rand"
	"runtime"
	"strconv"
	"sync"

	"github.com/1F47E/kmlorm/pkg/models"
)

// generateCoordinates produces n coordinates concentrated around populated
// regions. Generation is split across CPUs; each batch has its own source
// derived from seed, so the output is reproducible.
func generateCoordinates(n int, seed int64) []models.Coordinate {
	coords := make([]models.Coordinate, n)
	if n == 0 {
		return coords
	}

	numWorkers := min(runtime.NumCPU(), n)
	batchSize := n / numWorkers
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		startIdx := w * batchSize
		endIdx := startIdx + batchSize
		if w == numWorkers-1 {
			endIdx = n
		}

		go func(start, end int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed + int64(start)))

			for i := start; i < end; i++ {
				var lat, lon float64
				switch r.Intn(5) {
				case 0: // North America
					lat = r.Float64()*30 + 30
					lon = r.Float64()*60 - 120
				case 1: // Europe
					lat = r.Float64()*20 + 40
					lon = r.Float64()*40 - 10
				case 2: // Asia
					lat = r.Float64()*40 + 20
					lon = r.Float64()*80 + 60
				case 3: // South America
					lat = r.Float64()*40 - 50
					lon = r.Float64()*30 - 80
				default:
					lat = r.Float64()*180 - 90
					lon = r.Float64()*360 - 180
				}
				coords[i] = models.Coordinate{Longitude: lon, Latitude: lat}
			}
		}(startIdx, endIdx)
	}

	wg.Wait()
	return coords
}

// generateDocument builds a document with `folders` top-level folders, each
// nested `depth` levels deep, and spreads `placemarks` point placemarks
// evenly over every folder level.
func generateDocument(placemarks, folders, depth int, seed int64) *models.Document {
	doc := models.NewDocument("benchmark")
	if folders < 1 {
		folders = 1
	}
	if depth < 1 {
		depth = 1
	}

	levels := make([]*models.Folder, 0, folders*depth)
	for f := 0; f < folders; f++ {
		parent := models.NewFolder(fmt.Sprintf("folder_%d", f))
		doc.Add(parent)
		levels = append(levels, parent)
		for d := 1; d < depth; d++ {
			child := models.NewFolder(fmt.Sprintf("folder_%d_%d", f, d))
			parent.Add(child)
			levels = append(levels, child)
			parent = child
		}
	}

	r := rand.New(rand.NewSource(seed))
	for i, c := range generateCoordinates(placemarks, seed) {
		pm := models.NewPlacemark(fmt.Sprintf("placemark_%d", i), &models.Point{Coordinates: c})
		pm.ID = "pm_" + strconv.Itoa(i)
		pm.ExtendedData.Set("population", strconv.Itoa(r.Intn(1_000_000)))
		levels[i%len(levels)].Add(pm)
	}
	return doc
}
