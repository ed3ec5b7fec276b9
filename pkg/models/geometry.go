package models

import "github.com/paulmach/orb"

// Geometry is a Point, Path, Polygon or MultiGeometry.
type Geometry interface {
	Element
	Bound() orb.Bound
}

// Style holds the KML geometry rendering flags shared by all geometries.
type Style struct {
	Extrude      bool   `json:"extrude,omitempty"`
	Tessellate   bool   `json:"tessellate,omitempty"`
	AltitudeMode string `json:"altitude_mode,omitempty"`
}

// Point is a single-coordinate geometry.
type Point struct {
	Attributes
	Style
	Coordinates Coordinate `json:"coordinates"`
}

// NewPoint validates lon/lat/alt and returns a visible Point.
func NewPoint(name string, lon, lat, alt float64) (*Point, error) {
	c, err := NewCoordinate(lon, lat, alt)
	if err != nil {
		return nil, err
	}
	return &Point{Attributes: NewAttributes("", name), Coordinates: c}, nil
}

func (p *Point) Kind() Kind                   { return KindPoint }
func (p *Point) Attrs() *Attributes           { return &p.Attributes }
func (p *Point) Location() (Coordinate, bool) { return p.Coordinates, true }

func (p *Point) Bound() orb.Bound {
	return p.Coordinates.Orb().Bound()
}

// Path is a KML LineString.
type Path struct {
	Attributes
	Style
	Coordinates []Coordinate `json:"coordinates"`
}

func (p *Path) Kind() Kind         { return KindPath }
func (p *Path) Attrs() *Attributes { return &p.Attributes }

// PointCount returns the number of vertices.
func (p *Path) PointCount() int { return len(p.Coordinates) }

// LineString converts the path to an orb line string.
func (p *Path) LineString() orb.LineString { return lineString(p.Coordinates) }

func (p *Path) Bound() orb.Bound { return p.LineString().Bound() }

// Polygon has one outer boundary and zero or more holes.
type Polygon struct {
	Attributes
	Style
	OuterBoundary   []Coordinate   `json:"outer_boundary"`
	InnerBoundaries [][]Coordinate `json:"inner_boundaries,omitempty"`
}

func (p *Polygon) Kind() Kind         { return KindPolygon }
func (p *Polygon) Attrs() *Attributes { return &p.Attributes }

// PointCount returns the number of outer boundary vertices.
func (p *Polygon) PointCount() int { return len(p.OuterBoundary) }

// HoleCount returns the number of inner boundaries.
func (p *Polygon) HoleCount() int { return len(p.InnerBoundaries) }

// Orb converts the polygon to an orb polygon, outer ring first.
func (p *Polygon) Orb() orb.Polygon {
	poly := make(orb.Polygon, 0, 1+len(p.InnerBoundaries))
	poly = append(poly, orb.Ring(lineString(p.OuterBoundary)))
	for _, hole := range p.InnerBoundaries {
		poly = append(poly, orb.Ring(lineString(hole)))
	}
	return poly
}

func (p *Polygon) Bound() orb.Bound { return p.Orb().Bound() }

// MultiGeometry is a heterogeneous geometry collection. It may nest other
// MultiGeometries.
type MultiGeometry struct {
	Attributes
	Points          []*Point         `json:"points,omitempty"`
	Paths           []*Path          `json:"paths,omitempty"`
	Polygons        []*Polygon       `json:"polygons,omitempty"`
	MultiGeometries []*MultiGeometry `json:"multigeometries,omitempty"`
}

func (m *MultiGeometry) Kind() Kind         { return KindMultiGeometry }
func (m *MultiGeometry) Attrs() *Attributes { return &m.Attributes }

// Add appends a geometry to the matching collection. Non-geometry elements
// are ignored and reported as false.
func (m *MultiGeometry) Add(g Element) bool {
	switch v := g.(type) {
	case *Point:
		m.Points = append(m.Points, v)
	case *Path:
		m.Paths = append(m.Paths, v)
	case *Polygon:
		m.Polygons = append(m.Polygons, v)
	case *MultiGeometry:
		m.MultiGeometries = append(m.MultiGeometries, v)
	default:
		return false
	}
	return true
}

// GeometryCount returns the number of direct member geometries.
func (m *MultiGeometry) GeometryCount() int {
	return len(m.Points) + len(m.Paths) + len(m.Polygons) + len(m.MultiGeometries)
}

// Orb converts the collection, nested collections included.
func (m *MultiGeometry) Orb() orb.Collection {
	col := make(orb.Collection, 0, m.GeometryCount())
	for _, p := range m.Points {
		col = append(col, p.Coordinates.Orb())
	}
	for _, p := range m.Paths {
		col = append(col, p.LineString())
	}
	for _, p := range m.Polygons {
		col = append(col, p.Orb())
	}
	for _, n := range m.MultiGeometries {
		col = append(col, n.Orb())
	}
	return col
}

func (m *MultiGeometry) Bound() orb.Bound { return m.Orb().Bound() }
