package models

// Contents holds a container's children, partitioned by type, each in
// document order.
type Contents struct {
	Placemarks      []*Placemark     `json:"placemarks,omitempty"`
	Folders         []*Folder        `json:"folders,omitempty"`
	Paths           []*Path          `json:"paths,omitempty"`
	Polygons        []*Polygon       `json:"polygons,omitempty"`
	Points          []*Point         `json:"points,omitempty"`
	MultiGeometries []*MultiGeometry `json:"multigeometries,omitempty"`
}

// Container is an element that owns children: a Folder or the Document.
type Container interface {
	Element
	Children() *Contents
}

func (c *Contents) add(owner Container, e Element) bool {
	switch v := e.(type) {
	case *Placemark:
		c.Placemarks = append(c.Placemarks, v)
	case *Folder:
		v.parent = owner
		c.Folders = append(c.Folders, v)
	case *Path:
		c.Paths = append(c.Paths, v)
	case *Polygon:
		c.Polygons = append(c.Polygons, v)
	case *Point:
		c.Points = append(c.Points, v)
	case *MultiGeometry:
		c.MultiGeometries = append(c.MultiGeometries, v)
	default:
		return false
	}
	return true
}

// Len returns the number of direct children.
func (c *Contents) Len() int {
	return len(c.Placemarks) + len(c.Folders) + len(c.Paths) +
		len(c.Polygons) + len(c.Points) + len(c.MultiGeometries)
}

// Elements returns the direct children grouped by type.
func (c *Contents) Elements() []Element {
	out := make([]Element, 0, c.Len())
	for _, e := range c.Placemarks {
		out = append(out, e)
	}
	for _, e := range c.Folders {
		out = append(out, e)
	}
	for _, e := range c.Paths {
		out = append(out, e)
	}
	for _, e := range c.Polygons {
		out = append(out, e)
	}
	for _, e := range c.Points {
		out = append(out, e)
	}
	for _, e := range c.MultiGeometries {
		out = append(out, e)
	}
	return out
}

// Folder is a nestable container.
type Folder struct {
	Attributes
	Contents
	parent Container
}

// NewFolder returns a visible, empty folder.
func NewFolder(name string) *Folder {
	return &Folder{Attributes: NewAttributes("", name)}
}

func (f *Folder) Kind() Kind          { return KindFolder }
func (f *Folder) Attrs() *Attributes  { return &f.Attributes }
func (f *Folder) Children() *Contents { return &f.Contents }

// Parent returns the owning container, nil for a detached folder.
func (f *Folder) Parent() Container { return f.parent }

// Add appends children in order. It reports false if any element is not a
// valid container child (a Document).
func (f *Folder) Add(elements ...Element) bool {
	ok := true
	for _, e := range elements {
		ok = f.Contents.add(f, e) && ok
	}
	return ok
}

// Document is the root container.
type Document struct {
	Attributes
	Contents
}

// NewDocument returns an empty, visible document.
func NewDocument(name string) *Document {
	return &Document{Attributes: NewAttributes("", name)}
}

func (d *Document) Kind() Kind          { return KindDocument }
func (d *Document) Attrs() *Attributes  { return &d.Attributes }
func (d *Document) Children() *Contents { return &d.Contents }

// Add appends children in order, see Folder.Add.
func (d *Document) Add(elements ...Element) bool {
	ok := true
	for _, e := range elements {
		ok = d.Contents.add(d, e) && ok
	}
	return ok
}
