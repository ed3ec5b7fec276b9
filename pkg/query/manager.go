package query

import "github.com/1F47E/kmlorm/pkg/models"

// Manager is the per-container entry point for one element kind. Its
// shortcut methods operate on the container's direct children; use All for
// the whole subtree.
type Manager[T models.Element] struct {
	container models.Container
	settings  settings
}

// NewManager creates a manager for elements of type T under c.
func NewManager[T models.Element](c models.Container, opts ...Option) *Manager[T] {
	return &Manager[T]{container: c, settings: newSettings(opts)}
}

// Placemarks returns the Placemark manager for c.
func Placemarks(c models.Container, opts ...Option) *Manager[*models.Placemark] {
	return NewManager[*models.Placemark](c, opts...)
}

// Folders returns the Folder manager for c.
func Folders(c models.Container, opts ...Option) *Manager[*models.Folder] {
	return NewManager[*models.Folder](c, opts...)
}

// Points returns the Point manager for c. All also reaches points embedded
// in placemarks and multi-geometries.
func Points(c models.Container, opts ...Option) *Manager[*models.Point] {
	return NewManager[*models.Point](c, opts...)
}

// Paths returns the LineString manager for c.
func Paths(c models.Container, opts ...Option) *Manager[*models.Path] {
	return NewManager[*models.Path](c, opts...)
}

// Polygons returns the Polygon manager for c.
func Polygons(c models.Container, opts ...Option) *Manager[*models.Polygon] {
	return NewManager[*models.Polygon](c, opts...)
}

// MultiGeometries returns the MultiGeometry manager for c.
func MultiGeometries(c models.Container, opts ...Option) *Manager[*models.MultiGeometry] {
	return NewManager[*models.MultiGeometry](c, opts...)
}

// Children returns the direct children of type T.
func (m *Manager[T]) Children() *QuerySet[T] {
	return newQuerySet(Collect[T](m.container, ScopeChildren), m.settings)
}

// All returns every element of type T in the subtree, including geometries
// embedded in Placemarks and MultiGeometries.
func (m *Manager[T]) All() *QuerySet[T] {
	return newQuerySet(Collect[T](m.container, ScopeAll), m.settings)
}

func (m *Manager[T]) Filter(lookups Lookups) (*QuerySet[T], error) {
	return m.Children().Filter(lookups)
}

func (m *Manager[T]) Exclude(lookups Lookups) (*QuerySet[T], error) {
	return m.Children().Exclude(lookups)
}

func (m *Manager[T]) Get(lookups Lookups) (T, error) {
	return m.Children().Get(lookups)
}

func (m *Manager[T]) Exists() bool     { return m.Children().Exists() }
func (m *Manager[T]) Count() int       { return m.Children().Count() }
func (m *Manager[T]) First() (T, bool) { return m.Children().First() }
func (m *Manager[T]) Last() (T, bool)  { return m.Children().Last() }
func (m *Manager[T]) None() *QuerySet[T] {
	return newQuerySet[T](nil, m.settings)
}

func (m *Manager[T]) OrderBy(fields ...string) (*QuerySet[T], error) {
	return m.Children().OrderBy(fields...)
}

func (m *Manager[T]) Near(lon, lat, radiusKm float64) (*QuerySet[T], error) {
	return m.Children().Near(lon, lat, radiusKm)
}

func (m *Manager[T]) WithinBounds(north, south, east, west float64) (*QuerySet[T], error) {
	return m.Children().WithinBounds(north, south, east, west)
}

func (m *Manager[T]) HasCoordinates() *QuerySet[T] {
	return m.Children().HasCoordinates()
}

func (m *Manager[T]) ValidCoordinates() *QuerySet[T] {
	return m.Children().ValidCoordinates()
}
