package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1F47E/kmlorm/pkg/models"
	"github.com/1F47E/kmlorm/pkg/query"
)

type queryFlags struct {
	elementType string
	all         bool
	folder      string
	filters     []string
	excludes    []string
	orderBy     []string
	near        string
	strategy    string
	bounds      string
	limit       int
	fields      []string
	asJSON      bool
}

func newQueryCmd(a *app) *cobra.Command {
	var f queryFlags

	cmd := &cobra.Command{
		Use:   "query FILE|URL",
		Short: "Filter, order and print elements",
		Example: `  kmlorm query stores.kml --all --filter name__icontains=store --order-by -name
  kmlorm query stores.kml --type points --all --near -76.6,39.3,60 --json
  kmlorm query stores.kml --all --filter extended_data__population__gte=500000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var scope models.Container = file.Document
			if f.folder != "" {
				folder, err := file.Folders().All().Get(query.Lookups{"name": f.folder})
				if err != nil {
					return err
				}
				scope = folder
			}

			strategy, ok := strategies[strings.ToLower(f.strategy)]
			if !ok {
				return fmt.Errorf("unknown strategy %q", f.strategy)
			}
			opts := []query.Option{query.WithOptions(a.opts), query.WithStrategy(strategy)}
			out := cmd.OutOrStdout()
			switch strings.ToLower(f.elementType) {
			case "placemarks", "placemark":
				return runQuery(out, query.Placemarks(scope, opts...), f)
			case "folders", "folder":
				return runQuery(out, query.Folders(scope, opts...), f)
			case "points", "point":
				return runQuery(out, query.Points(scope, opts...), f)
			case "paths", "path", "linestrings":
				return runQuery(out, query.Paths(scope, opts...), f)
			case "polygons", "polygon":
				return runQuery(out, query.Polygons(scope, opts...), f)
			case "multigeometries", "multigeometry":
				return runQuery(out, query.MultiGeometries(scope, opts...), f)
			}
			return fmt.Errorf("unknown element type %q", f.elementType)
		},
	}

	cmd.Flags().StringVarP(&f.elementType, "type", "t", "placemarks", "Element type: placemarks, folders, points, paths, polygons, multigeometries")
	cmd.Flags().BoolVarP(&f.all, "all", "a", false, "Include nested elements, not only direct children")
	cmd.Flags().StringVar(&f.folder, "folder", "", "Query inside the folder with this name")
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "Lookup key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&f.excludes, "exclude", "x", nil, "Exclude lookup key=value (repeatable)")
	cmd.Flags().StringSliceVarP(&f.orderBy, "order-by", "o", nil, "Order by fields, prefix with - for descending")
	cmd.Flags().StringVar(&f.near, "near", "", "Keep elements within lon,lat,radius_km")
	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "haversine", "Distance strategy for --near: haversine, vincenty, equirectangular, adaptive")
	cmd.Flags().StringVar(&f.bounds, "bounds", "", "Keep elements inside north,south,east,west")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "Maximum number of results (0 for no limit)")
	cmd.Flags().StringSliceVar(&f.fields, "fields", nil, "Fields to print")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Output JSON")
	return cmd
}

// buildQuerySet applies the flags to the manager's base set in a fixed
// order: scope, filter, exclude, spatial, order, limit.
func buildQuerySet[T models.Element](m *query.Manager[T], f queryFlags) (*query.QuerySet[T], error) {
	qs := m.Children()
	if f.all {
		qs = m.All()
	}

	var err error
	if len(f.filters) > 0 {
		lookups, perr := parseLookups(f.filters)
		if perr != nil {
			return nil, perr
		}
		if qs, err = qs.Filter(lookups); err != nil {
			return nil, err
		}
	}
	if len(f.excludes) > 0 {
		lookups, perr := parseLookups(f.excludes)
		if perr != nil {
			return nil, perr
		}
		if qs, err = qs.Exclude(lookups); err != nil {
			return nil, err
		}
	}
	if f.near != "" {
		lon, lat, km, perr := parseNear(f.near)
		if perr != nil {
			return nil, perr
		}
		if qs, err = qs.Near(lon, lat, km); err != nil {
			return nil, err
		}
	}
	if f.bounds != "" {
		n, s, e, w, perr := parseBounds(f.bounds)
		if perr != nil {
			return nil, perr
		}
		if qs, err = qs.WithinBounds(n, s, e, w); err != nil {
			return nil, err
		}
	}
	if len(f.orderBy) > 0 {
		if qs, err = qs.OrderBy(f.orderBy...); err != nil {
			return nil, err
		}
	}
	if f.limit > 0 {
		qs = qs.Limit(f.limit)
	}
	return qs, nil
}

func defaultFields(kind models.Kind) []string {
	switch kind {
	case models.KindPlacemark, models.KindPoint:
		return []string{"id", "name", "longitude", "latitude"}
	case models.KindFolder:
		return []string{"id", "name", "placemark_count", "folder_count"}
	case models.KindPath, models.KindPolygon:
		return []string{"id", "name", "point_count"}
	default:
		return []string{"id", "name", "geometry_count"}
	}
}

func runQuery[T models.Element](w io.Writer, m *query.Manager[T], f queryFlags) error {
	qs, err := buildQuerySet(m, f)
	if err != nil {
		return err
	}

	fields := f.fields
	if len(fields) == 0 {
		fields = defaultFields(qs.Kind())
	}

	if f.asJSON {
		rows, err := qs.Values(fields...)
		if err != nil {
			return err
		}
		return writeJSON(w, rows)
	}

	rows, err := qs.ValuesList(fields...)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, renderTable(fields, rows))
	fmt.Fprintln(w, render(dimStyle, fmt.Sprintf("%d %s", qs.Count(), pluralKind(qs.Kind(), qs.Count()))))
	return nil
}

func pluralKind(k models.Kind, n int) string {
	name := strings.ToLower(k.String())
	if n == 1 {
		return name
	}
	if k == models.KindMultiGeometry {
		return "multigeometries"
	}
	return name + "s"
}
