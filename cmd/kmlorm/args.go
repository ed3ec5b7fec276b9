package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1F47E/kmlorm/pkg/models"
	"github.com/1F47E/kmlorm/pkg/query"
)

// stringLookups take their argument verbatim.
var stringLookups = map[string]bool{
	"iexact": true, "contains": true, "icontains": true,
	"startswith": true, "istartswith": true, "endswith": true, "iendswith": true,
	"regex": true, "iregex": true,
}

// parseLookups turns "key=value" pairs into lookups. Arguments are typed by
// lookup: __in splits on "|", __range on ",", __isnull takes a bool, string
// lookups keep the raw text, and everything else becomes a number, bool or
// null when it parses as one. Quote a value to keep it a string.
func parseLookups(pairs []string) (query.Lookups, error) {
	lookups := make(query.Lookups, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}

		lookup := "exact"
		if i := strings.LastIndex(key, "__"); i >= 0 {
			lookup = key[i+2:]
		}

		switch {
		case stringLookups[lookup]:
			lookups[key] = raw
		case lookup == "in":
			parts := strings.Split(raw, "|")
			values := make([]any, len(parts))
			for i, p := range parts {
				values[i] = coerce(p)
			}
			lookups[key] = values
		case lookup == "range":
			lo, hi, ok := strings.Cut(raw, ",")
			if !ok {
				return nil, fmt.Errorf("invalid range %q, expected low,high", raw)
			}
			lookups[key] = []any{coerce(lo), coerce(hi)}
		case lookup == "isnull":
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid isnull value %q: %w", raw, err)
			}
			lookups[key] = b
		default:
			lookups[key] = coerce(raw)
		}
	}
	return lookups, nil
}

func coerce(raw string) any {
	s := strings.TrimSpace(raw)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	if s == "null" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	return raw
}

func parseFloats(s string, n int, what string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid %s %q, expected %d comma-separated numbers", what, s, n)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", what, s, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseNear parses "lon,lat,radius_km".
func parseNear(s string) (lon, lat, radiusKm float64, err error) {
	v, err := parseFloats(s, 3, "near")
	if err != nil {
		return 0, 0, 0, err
	}
	return v[0], v[1], v[2], nil
}

// parseBounds parses "north,south,east,west".
func parseBounds(s string) (north, south, east, west float64, err error) {
	v, err := parseFloats(s, 4, "bounds")
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return v[0], v[1], v[2], v[3], nil
}

// parsePoint parses "lon,lat[,alt]" into a validated coordinate.
func parsePoint(s string) (models.Coordinate, error) {
	return models.ParseCoordinate(s)
}
