package models

// DataItem is one ExtendedData entry.
type DataItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ExtendedData is an ordered name/value mapping. Later entries with an
// existing name replace the earlier value in place.
type ExtendedData []DataItem

// Get returns the value stored under name.
func (d ExtendedData) Get(name string) (string, bool) {
	for _, item := range d {
		if item.Name == name {
			return item.Value, true
		}
	}
	return "", false
}

// Set stores value under name, keeping the original position if present.
func (d *ExtendedData) Set(name, value string) {
	for i := range *d {
		if (*d)[i].Name == name {
			(*d)[i].Value = value
			return
		}
	}
	*d = append(*d, DataItem{Name: name, Value: value})
}

// Map returns a copy of the entries as a map.
func (d ExtendedData) Map() map[string]string {
	m := make(map[string]string, len(d))
	for _, item := range d {
		m[item.Name] = item.Value
	}
	return m
}

// Placemark is a named feature with at most one geometry.
type Placemark struct {
	Attributes
	Geometry     Geometry     `json:"-"`
	Address      string       `json:"address,omitempty"`
	PhoneNumber  string       `json:"phone_number,omitempty"`
	Snippet      string       `json:"snippet,omitempty"`
	StyleURL     string       `json:"style_url,omitempty"`
	ExtendedData ExtendedData `json:"extended_data,omitempty"`
}

// NewPlacemark returns a visible placemark carrying the given geometry,
// which may be nil.
func NewPlacemark(name string, geometry Geometry) *Placemark {
	return &Placemark{Attributes: NewAttributes("", name), Geometry: geometry}
}

func (p *Placemark) Kind() Kind         { return KindPlacemark }
func (p *Placemark) Attrs() *Attributes { return &p.Attributes }

// Point returns the Point geometry, or nil when the geometry is something else.
func (p *Placemark) Point() *Point {
	pt, _ := p.Geometry.(*Point)
	return pt
}

// MultiGeometry returns the MultiGeometry geometry, if any.
func (p *Placemark) MultiGeometry() *MultiGeometry {
	mg, _ := p.Geometry.(*MultiGeometry)
	return mg
}

// Coordinates returns the point coordinate or nil.
func (p *Placemark) Coordinates() *Coordinate {
	if pt := p.Point(); pt != nil {
		c := pt.Coordinates
		return &c
	}
	return nil
}

func (p *Placemark) Location() (Coordinate, bool) {
	if pt := p.Point(); pt != nil {
		return pt.Coordinates, true
	}
	return Coordinate{}, false
}

// GeometryType names the geometry kind, or "" when the placemark has none.
func (p *Placemark) GeometryType() string {
	if p.Geometry == nil {
		return ""
	}
	return p.Geometry.Kind().String()
}
