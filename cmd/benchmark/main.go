package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/1F47E/kmlorm/pkg/models"
	"github.com/1F47E/kmlorm/pkg/query"
)

type BenchmarkResult struct {
	QueryType     string
	TotalQueries  int
	TotalDuration time.Duration
	AvgDuration   time.Duration
	QueriesPerSec float64
	MinDuration   time.Duration
	MaxDuration   time.Duration
	TotalResults  int64
	AvgResults    float64
}

type benchOptions struct {
	placemarks int
	folders    int
	depth      int
	seed       int64
	queryType  string
	numQueries int
	workers    int
	minLat     float64
	maxLat     float64
	minLon     float64
	maxLon     float64
	boxSize    float64
	radius     float64
}

// queryFunc runs a single query and reports how many elements it returned.
type queryFunc func(r *rand.Rand) (int, error)

func main() {
	var o benchOptions

	cmd := &cobra.Command{
		Use:          "benchmark",
		Short:        "Benchmark QuerySet operations over a synthetic document",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&o.placemarks, "placemarks", "p", 100000, "Number of placemarks to generate")
	f.IntVar(&o.folders, "folders", 20, "Number of top-level folders")
	f.IntVar(&o.depth, "depth", 4, "Folder nesting depth")
	f.Int64Var(&o.seed, "seed", time.Now().UnixNano(), "Random seed")
	f.StringVarP(&o.queryType, "type", "t", "near", "Query type: near, bounds, filter, collect, mixed")
	f.IntVarP(&o.numQueries, "queries", "n", 1000, "Number of queries to run")
	f.IntVarP(&o.workers, "workers", "w", runtime.NumCPU(), "Number of concurrent workers")
	// Geographic bounds for random queries (default: roughly USA)
	f.Float64Var(&o.minLat, "min-lat", 25.0, "Minimum latitude for random queries")
	f.Float64Var(&o.maxLat, "max-lat", 49.0, "Maximum latitude for random queries")
	f.Float64Var(&o.minLon, "min-lon", -125.0, "Minimum longitude for random queries")
	f.Float64Var(&o.maxLon, "max-lon", -66.0, "Maximum longitude for random queries")
	f.Float64Var(&o.boxSize, "box-size", 1.0, "Box size in degrees (for bounds queries)")
	f.Float64Var(&o.radius, "radius", 50.0, "Radius in km (for near queries)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(o benchOptions) error {
	log.Printf("Generating %d placemarks in %d folders (depth %d)...\n", o.placemarks, o.folders, o.depth)
	start := time.Now()
	doc := generateDocument(o.placemarks, o.folders, o.depth, o.seed)
	log.Printf("Generated in %v\n", time.Since(start))

	// The base set is shared by every worker; querysets are never mutated.
	base := query.Placemarks(doc).All()
	log.Printf("Collected %d placemarks\n", base.Count())

	queries := map[string]queryFunc{
		"near":    nearQuery(base, o),
		"bounds":  boundsQuery(base, o),
		"filter":  filterQuery(base),
		"collect": collectQuery(doc),
	}

	log.Printf("Running %d %s queries with %d workers...\n", o.numQueries, o.queryType, o.workers)

	var result BenchmarkResult
	if o.queryType == "mixed" {
		var err error
		result, err = runMixed(queries, o.numQueries, o.workers)
		if err != nil {
			return err
		}
	} else {
		fn, ok := queries[o.queryType]
		if !ok {
			return fmt.Errorf("unknown query type: %s", o.queryType)
		}
		var err error
		result, err = runQueries(o.queryType, fn, o.numQueries, o.workers, o.seed)
		if err != nil {
			return err
		}
	}

	fmt.Println("\n=== Benchmark Results ===")
	fmt.Printf("Query Type: %s\n", result.QueryType)
	fmt.Printf("Total Queries: %d\n", result.TotalQueries)
	fmt.Printf("Total Duration: %v\n", result.TotalDuration)
	fmt.Printf("Average Duration: %v\n", result.AvgDuration)
	fmt.Printf("Queries/Second: %.2f\n", result.QueriesPerSec)
	fmt.Printf("Min Duration: %v\n", result.MinDuration)
	fmt.Printf("Max Duration: %v\n", result.MaxDuration)
	fmt.Printf("Total Results: %d\n", result.TotalResults)
	fmt.Printf("Avg Results/Query: %.2f\n", result.AvgResults)
	fmt.Printf("Workers Used: %d\n", o.workers)
	fmt.Printf("CPU Cores: %d\n", runtime.NumCPU())
	return nil
}

func nearQuery(base *query.QuerySet[*models.Placemark], o benchOptions) queryFunc {
	return func(r *rand.Rand) (int, error) {
		lat := o.minLat + r.Float64()*(o.maxLat-o.minLat)
		lon := o.minLon + r.Float64()*(o.maxLon-o.minLon)
		qs, err := base.Near(lon, lat, o.radius)
		if err != nil {
			return 0, err
		}
		return qs.Count(), nil
	}
}

func boundsQuery(base *query.QuerySet[*models.Placemark], o benchOptions) queryFunc {
	return func(r *rand.Rand) (int, error) {
		south := o.minLat + r.Float64()*(o.maxLat-o.minLat-o.boxSize)
		west := o.minLon + r.Float64()*(o.maxLon-o.minLon-o.boxSize)
		qs, err := base.WithinBounds(south+o.boxSize, south, west+o.boxSize, west)
		if err != nil {
			return 0, err
		}
		return qs.Count(), nil
	}
}

func filterQuery(base *query.QuerySet[*models.Placemark]) queryFunc {
	return func(r *rand.Rand) (int, error) {
		qs, err := base.Filter(query.Lookups{
			"extended_data__population__gte": r.Intn(1_000_000),
			"name__startswith":               "placemark_",
		})
		if err != nil {
			return 0, err
		}
		return qs.Count(), nil
	}
}

func collectQuery(doc *models.Document) queryFunc {
	return func(*rand.Rand) (int, error) {
		return query.Points(doc).All().Count(), nil
	}
}

// runQueries executes fn numQueries times on a bounded pool of workers.
func runQueries(name string, fn queryFunc, numQueries, workers int, seed int64) (BenchmarkResult, error) {
	var (
		totalResults int64
		minDuration  = time.Hour
		maxDuration  time.Duration
		durations    = make([]time.Duration, 0, numQueries)
		mu           sync.Mutex
	)

	if numQueries <= 0 {
		return BenchmarkResult{QueryType: name}, nil
	}

	startTime := time.Now()

	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i := 0; i < numQueries; i++ {
		g.Go(func() error {
			r := rand.New(rand.NewSource(seed + int64(i)))

			queryStart := time.Now()
			n, err := fn(r)
			queryDuration := time.Since(queryStart)
			if err != nil {
				return fmt.Errorf("%s query %d: %w", name, i, err)
			}

			atomic.AddInt64(&totalResults, int64(n))

			mu.Lock()
			durations = append(durations, queryDuration)
			minDuration = min(minDuration, queryDuration)
			maxDuration = max(maxDuration, queryDuration)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BenchmarkResult{}, err
	}
	totalDuration := time.Since(startTime)

	var totalDur time.Duration
	for _, d := range durations {
		totalDur += d
	}

	return BenchmarkResult{
		QueryType:     name,
		TotalQueries:  numQueries,
		TotalDuration: totalDuration,
		AvgDuration:   totalDur / time.Duration(len(durations)),
		QueriesPerSec: float64(numQueries) / totalDuration.Seconds(),
		MinDuration:   minDuration,
		MaxDuration:   maxDuration,
		TotalResults:  totalResults,
		AvgResults:    float64(totalResults) / float64(numQueries),
	}, nil
}

// runMixed splits numQueries evenly over every query type and combines
// the results.
func runMixed(queries map[string]queryFunc, numQueries, workers int) (BenchmarkResult, error) {
	names := make([]string, 0, len(queries))
	for name := range queries {
		names = append(names, name)
	}
	slices.Sort(names)

	perType := numQueries / len(names)
	log.Printf("Running mixed benchmark (%d queries of each type)...\n", perType)

	combined := BenchmarkResult{QueryType: "mixed", MinDuration: time.Hour}
	for i, name := range names {
		res, err := runQueries(name, queries[name], perType, workers, int64(i))
		if err != nil {
			return BenchmarkResult{}, err
		}
		combined.TotalQueries += res.TotalQueries
		combined.TotalDuration += res.TotalDuration
		combined.TotalResults += res.TotalResults
		if res.TotalQueries > 0 {
			combined.MinDuration = min(combined.MinDuration, res.MinDuration)
			combined.MaxDuration = max(combined.MaxDuration, res.MaxDuration)
		}
	}
	if combined.TotalQueries == 0 {
		return combined, nil
	}

	combined.AvgDuration = combined.TotalDuration / time.Duration(combined.TotalQueries)
	combined.QueriesPerSec = float64(combined.TotalQueries) / combined.TotalDuration.Seconds()
	combined.AvgResults = float64(combined.TotalResults) / float64(combined.TotalQueries)
	return combined, nil
}
