// Package models holds the in-memory KML element tree.
//
// Elements form a strict ownership tree rooted at a Document. Child
// collections keep document order. The query engine never mutates them.
package models

// Kind identifies the closed set of element variants.
type Kind int

const (
	KindPlacemark Kind = iota
	KindFolder
	KindPoint
	KindPath
	KindPolygon
	KindMultiGeometry
	KindDocument
)

var kindNames = map[Kind]string{
	KindPlacemark:     "Placemark",
	KindFolder:        "Folder",
	KindPoint:         "Point",
	KindPath:          "Path",
	KindPolygon:       "Polygon",
	KindMultiGeometry: "MultiGeometry",
	KindDocument:      "Document",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Element"
}

// IsGeometry reports whether elements of this kind can be embedded in a
// Placemark or a MultiGeometry.
func (k Kind) IsGeometry() bool {
	switch k {
	case KindPoint, KindPath, KindPolygon, KindMultiGeometry:
		return true
	}
	return false
}

// Element is implemented by every node of the tree.
type Element interface {
	Kind() Kind
	Attrs() *Attributes
}

// Attributes are shared by every element. Empty strings mean "not set".
type Attributes struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Visibility  bool   `json:"visibility"`
}

// NewAttributes returns attributes with the KML default visibility.
func NewAttributes(id, name string) Attributes {
	return Attributes{ID: id, Name: name, Visibility: true}
}

// Locatable is implemented by elements that resolve to a single coordinate.
type Locatable interface {
	Location() (Coordinate, bool)
}

// Location returns the single coordinate an element resolves to, if any.
// Points resolve to their coordinate and Placemarks to their Point geometry.
func Location(e Element) (Coordinate, bool) {
	if l, ok := e.(Locatable); ok {
		return l.Location()
	}
	return Coordinate{}, false
}
