// Package query implements the Django-style query layer over a KML element
// tree: collecting elements by scope, filtering with field lookups,
// ordering, slicing and spatial filters.
//
// A QuerySet is an immutable, ordered snapshot. Every refining operation
// returns a new QuerySet and never changes the receiver or the tree.
package query

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"

	"github.com/1F47E/kmlorm/pkg/config"
	"github.com/1F47E/kmlorm/pkg/kmlerr"
	"github.com/1F47E/kmlorm/pkg/models"
	"github.com/1F47E/kmlorm/pkg/spatial"
)

type settings struct {
	options  config.Options
	strategy spatial.Strategy
}

func newSettings(opts []Option) settings {
	s := settings{options: config.Default(), strategy: spatial.Haversine{}}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option customizes query behavior.
type Option func(*settings)

// WithOptions applies parser/query options (strict coordinate validation,
// strict lookups).
func WithOptions(o config.Options) Option {
	return func(s *settings) { s.options = o }
}

// WithStrategy sets the distance strategy used by Near and Distances.
func WithStrategy(st spatial.Strategy) Option {
	return func(s *settings) {
		if st != nil {
			s.strategy = st
		}
	}
}

// QuerySet is an ordered, immutable sequence of elements of one kind.
type QuerySet[T models.Element] struct {
	elements []T
	kind     models.Kind
	settings settings
}

// New builds a QuerySet over a copy of elements.
func New[T models.Element](elements []T, opts ...Option) *QuerySet[T] {
	return newQuerySet(slices.Clone(elements), newSettings(opts))
}

func newQuerySet[T models.Element](elements []T, s settings) *QuerySet[T] {
	kind, _ := kindOf[T]()
	return &QuerySet[T]{elements: elements, kind: kind, settings: s}
}

func (qs *QuerySet[T]) derive(elements []T) *QuerySet[T] {
	return &QuerySet[T]{elements: elements, kind: qs.kind, settings: qs.settings}
}

func (qs *QuerySet[T]) where(keep func(T) bool) *QuerySet[T] {
	out := make([]T, 0, len(qs.elements))
	for _, e := range qs.elements {
		if keep(e) {
			out = append(out, e)
		}
	}
	return qs.derive(out)
}

// Kind returns the element kind of the set.
func (qs *QuerySet[T]) Kind() models.Kind { return qs.kind }

// All returns a copy of the set.
func (qs *QuerySet[T]) All() *QuerySet[T] { return qs.derive(slices.Clone(qs.elements)) }

// None returns an empty set of the same kind.
func (qs *QuerySet[T]) None() *QuerySet[T] { return qs.derive(nil) }

// Filter keeps elements matching every lookup.
func (qs *QuerySet[T]) Filter(lookups Lookups) (*QuerySet[T], error) {
	conds, err := compileLookups(qs.kind, lookups, qs.settings.options.StrictLookups)
	if err != nil {
		return nil, err
	}
	return qs.where(func(e T) bool { return conds.match(e) }), nil
}

// Exclude drops elements matching every lookup. Filter and Exclude with the
// same lookups partition the set.
func (qs *QuerySet[T]) Exclude(lookups Lookups) (*QuerySet[T], error) {
	conds, err := compileLookups(qs.kind, lookups, qs.settings.options.StrictLookups)
	if err != nil {
		return nil, err
	}
	return qs.where(func(e T) bool { return !conds.match(e) }), nil
}

// Get returns the single element matching lookups. It fails with
// ElementNotFound or MultipleElementsReturned otherwise.
func (qs *QuerySet[T]) Get(lookups Lookups) (T, error) {
	var zero T
	matched := qs
	if len(lookups) > 0 {
		var err error
		if matched, err = qs.Filter(lookups); err != nil {
			return zero, err
		}
	}
	switch n := len(matched.elements); n {
	case 0:
		return zero, &kmlerr.ElementNotFound{ElementType: qs.kind.String(), Lookups: lookups}
	case 1:
		return matched.elements[0], nil
	default:
		return zero, &kmlerr.MultipleElementsReturned{ElementType: qs.kind.String(), Count: n, Lookups: lookups}
	}
}

// Count returns the number of elements.
func (qs *QuerySet[T]) Count() int { return len(qs.elements) }

// Exists reports whether the set is non-empty.
func (qs *QuerySet[T]) Exists() bool { return len(qs.elements) > 0 }

// First returns the first element, or false when empty.
func (qs *QuerySet[T]) First() (T, bool) {
	var zero T
	if len(qs.elements) == 0 {
		return zero, false
	}
	return qs.elements[0], true
}

// Last returns the last element, or false when empty.
func (qs *QuerySet[T]) Last() (T, bool) {
	var zero T
	if len(qs.elements) == 0 {
		return zero, false
	}
	return qs.elements[len(qs.elements)-1], true
}

// At returns the element at i. Negative and out-of-range indexes fail with
// ErrIndexOutOfRange; use Last for the final element.
func (qs *QuerySet[T]) At(i int) (T, error) {
	var zero T
	n := len(qs.elements)
	if i < 0 || i >= n {
		return zero, fmt.Errorf("%w: index %d, length %d", kmlerr.ErrIndexOutOfRange, i, n)
	}
	return qs.elements[i], nil
}

// Slice returns elements [start, end). Bounds past the end are clamped;
// negative or inverted bounds fail with ErrIndexOutOfRange.
func (qs *QuerySet[T]) Slice(start, end int) (*QuerySet[T], error) {
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: slice [%d:%d]", kmlerr.ErrIndexOutOfRange, start, end)
	}
	n := len(qs.elements)
	start, end = min(start, n), min(end, n)
	return qs.derive(slices.Clone(qs.elements[start:end])), nil
}

// Limit returns at most n leading elements.
func (qs *QuerySet[T]) Limit(n int) *QuerySet[T] {
	if n < 0 {
		n = 0
	}
	out, _ := qs.Slice(0, n)
	return out
}

// Reverse returns the elements in reverse order.
func (qs *QuerySet[T]) Reverse() *QuerySet[T] {
	out := slices.Clone(qs.elements)
	slices.Reverse(out)
	return qs.derive(out)
}

// Distinct drops repeated elements, keeping the first occurrence.
func (qs *QuerySet[T]) Distinct() *QuerySet[T] {
	seen := make(map[models.Element]struct{}, len(qs.elements))
	return qs.where(func(e T) bool {
		if _, dup := seen[e]; dup {
			return false
		}
		seen[e] = struct{}{}
		return true
	})
}

// OrderBy sorts by the given fields. A leading "-" sorts descending.
// Elements missing a value sort last regardless of direction. The sort is
// stable.
func (qs *QuerySet[T]) OrderBy(fields ...string) (*QuerySet[T], error) {
	type key struct {
		acc  accessor
		desc bool
	}
	keys := make([]key, 0, len(fields))
	for _, f := range fields {
		desc := strings.HasPrefix(f, "-")
		acc, err := compileField(qs.kind, strings.TrimPrefix(f, "-"))
		if err != nil {
			return nil, err
		}
		keys = append(keys, key{acc: acc, desc: desc})
	}

	out := slices.Clone(qs.elements)
	slices.SortStableFunc(out, func(a, b T) int {
		for _, k := range keys {
			va, okA := k.acc.resolve(a)
			vb, okB := k.acc.resolve(b)
			switch {
			case !okA && !okB:
				continue
			case !okA:
				return 1
			case !okB:
				return -1
			}
			c, ok := compareValues(va, vb)
			if !ok || c == 0 {
				continue
			}
			if k.desc {
				return -c
			}
			return c
		}
		return 0
	})
	return qs.derive(out), nil
}

// HasCoordinates keeps elements that resolve to a single coordinate.
func (qs *QuerySet[T]) HasCoordinates() *QuerySet[T] {
	return qs.where(func(e T) bool {
		_, ok := models.Location(e)
		return ok
	})
}

// ValidCoordinates keeps elements whose coordinate lies within the
// longitude and latitude bounds.
func (qs *QuerySet[T]) ValidCoordinates() *QuerySet[T] {
	return qs.where(func(e T) bool {
		c, ok := models.Location(e)
		return ok && models.ValidateLonLat(c.Longitude, c.Latitude) == nil
	})
}

// Near keeps elements within radiusKm of (lon, lat). Elements without a
// coordinate are dropped. An invalid center yields InvalidCoordinates under
// strict coordinate validation and an empty set otherwise.
func (qs *QuerySet[T]) Near(lon, lat, radiusKm float64) (*QuerySet[T], error) {
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return nil, &kmlerr.QueryError{Message: fmt.Sprintf("radius must be a non-negative number (got %v)", radiusKm), Field: "radius"}
	}
	if err := models.ValidateLonLat(lon, lat); err != nil {
		if qs.settings.options.StrictCoordinateValidation {
			return nil, err
		}
		return qs.None(), nil
	}
	center := models.Coordinate{Longitude: lon, Latitude: lat}
	return qs.where(func(e T) bool {
		c, ok := models.Location(e)
		return ok && qs.settings.strategy.Distance(center, c) <= radiusKm
	}), nil
}

// WithinBounds keeps elements whose coordinate lies inside the box,
// inclusive. A box with west > east crosses the antimeridian.
func (qs *QuerySet[T]) WithinBounds(north, south, east, west float64) (*QuerySet[T], error) {
	if err := validateBox(north, south, east, west); err != nil {
		if qs.settings.options.StrictCoordinateValidation {
			return nil, err
		}
		return qs.None(), nil
	}
	return qs.where(func(e T) bool {
		c, ok := models.Location(e)
		if !ok || c.Latitude < south || c.Latitude > north {
			return false
		}
		if west <= east {
			return c.Longitude >= west && c.Longitude <= east
		}
		return c.Longitude >= west || c.Longitude <= east
	}), nil
}

func validateBox(north, south, east, west float64) error {
	if err := models.ValidateLonLat(west, south); err != nil {
		return err
	}
	if err := models.ValidateLonLat(east, north); err != nil {
		return err
	}
	if south > north {
		return &kmlerr.InvalidCoordinates{
			Message:     fmt.Sprintf("south %v is greater than north %v", south, north),
			Field:       "latitude",
			Coordinates: []float64{north, south, east, west},
		}
	}
	return nil
}

// Distances returns the distance from (lon, lat) to each element in unit,
// nil for elements without a coordinate.
func (qs *QuerySet[T]) Distances(lon, lat float64, unit spatial.Unit) []*float64 {
	origin := models.Coordinate{Longitude: lon, Latitude: lat}
	out := make([]*float64, len(qs.elements))
	for i, e := range qs.elements {
		if c, ok := models.Location(e); ok {
			d := unit.FromKm(qs.settings.strategy.Distance(origin, c))
			out[i] = &d
		}
	}
	return out
}

// Elements returns a copy of the underlying slice.
func (qs *QuerySet[T]) Elements() []T { return slices.Clone(qs.elements) }

// Iter yields the elements in order.
func (qs *QuerySet[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range qs.elements {
			if !yield(e) {
				return
			}
		}
	}
}

var defaultValueFields = []string{"id", "name", "description", "element_type"}

// Values projects each element to a map of field values. Missing values are
// nil. With no fields, id, name, description and element_type are used.
func (qs *QuerySet[T]) Values(fields ...string) ([]map[string]any, error) {
	if len(fields) == 0 {
		fields = defaultValueFields
	}
	accs, err := qs.accessors(fields)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(qs.elements))
	for i, e := range qs.elements {
		row := make(map[string]any, len(accs))
		for _, acc := range accs {
			v, _ := acc.resolve(e)
			row[acc.path] = v
		}
		out[i] = row
	}
	return out, nil
}

// ValuesList projects each element to a row of field values in field order.
func (qs *QuerySet[T]) ValuesList(fields ...string) ([][]any, error) {
	if len(fields) == 0 {
		fields = defaultValueFields
	}
	accs, err := qs.accessors(fields)
	if err != nil {
		return nil, err
	}
	out := make([][]any, len(qs.elements))
	for i, e := range qs.elements {
		row := make([]any, len(accs))
		for j, acc := range accs {
			row[j], _ = acc.resolve(e)
		}
		out[i] = row
	}
	return out, nil
}

func (qs *QuerySet[T]) accessors(fields []string) ([]accessor, error) {
	accs := make([]accessor, len(fields))
	for i, f := range fields {
		acc, err := compileField(qs.kind, f)
		if err != nil {
			return nil, err
		}
		accs[i] = acc
	}
	return accs, nil
}

func (qs *QuerySet[T]) String() string {
	return fmt.Sprintf("<QuerySet %s: %d>", qs.kind, len(qs.elements))
}
