package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1F47E/kmlorm/pkg/kmlerr"
	"github.com/1F47E/kmlorm/pkg/models"
)

// valueType is the static type of a field, used to validate ordering
// lookups before any element is visited.
type valueType int

const (
	typeString valueType = iota
	typeNumber
	typeBool
	typeCoordinate
	typeMap
)

// getter reads one step of a field path. ok is false when the value is
// absent (nil geometry, empty string, missing key).
type getter func(v any) (value any, ok bool)

type fieldSpec struct {
	get getter
	typ valueType
	// children are the fields of a nested value, such as a coordinate.
	children map[string]*fieldSpec
	// key resolves an arbitrary sub-key, such as an extended data name.
	key func(v any, name string) (any, bool)
}

// accessor is a compiled field path.
type accessor struct {
	path  string
	steps []getter
	typ   valueType
}

func (a accessor) resolve(e any) (any, bool) {
	cur := e
	for _, step := range a.steps {
		v, ok := step(cur)
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func str(s string) (any, bool) { return s, s != "" }

func attrs(v any) *models.Attributes { return v.(models.Element).Attrs() }

var commonFields = map[string]*fieldSpec{
	"id":          {get: func(v any) (any, bool) { return str(attrs(v).ID) }},
	"name":        {get: func(v any) (any, bool) { return str(attrs(v).Name) }},
	"description": {get: func(v any) (any, bool) { return str(attrs(v).Description) }},
	"visibility":  {get: func(v any) (any, bool) { return attrs(v).Visibility, true }, typ: typeBool},
	"element_type": {get: func(v any) (any, bool) {
		return v.(models.Element).Kind().String(), true
	}},
}

var coordinateFields = map[string]*fieldSpec{
	"longitude": {get: func(v any) (any, bool) { return v.(models.Coordinate).Longitude, true }, typ: typeNumber},
	"latitude":  {get: func(v any) (any, bool) { return v.(models.Coordinate).Latitude, true }, typ: typeNumber},
	"altitude":  {get: func(v any) (any, bool) { return v.(models.Coordinate).Altitude, true }, typ: typeNumber},
}

// located builds the coordinate fields of an element that has a single
// location.
func located(loc func(v any) (models.Coordinate, bool)) map[string]*fieldSpec {
	part := func(name string) *fieldSpec {
		inner := coordinateFields[name].get
		return &fieldSpec{
			get: func(v any) (any, bool) {
				c, ok := loc(v)
				if !ok {
					return nil, false
				}
				return inner(c)
			},
			typ: typeNumber,
		}
	}
	return map[string]*fieldSpec{
		"coordinates": {
			get: func(v any) (any, bool) {
				c, ok := loc(v)
				return c, ok
			},
			typ:      typeCoordinate,
			children: coordinateFields,
		},
		"longitude": part("longitude"),
		"latitude":  part("latitude"),
		"altitude":  part("altitude"),
	}
}

func styleFields(style func(v any) *models.Style) map[string]*fieldSpec {
	return map[string]*fieldSpec{
		"extrude":       {get: func(v any) (any, bool) { return style(v).Extrude, true }, typ: typeBool},
		"tessellate":    {get: func(v any) (any, bool) { return style(v).Tessellate, true }, typ: typeBool},
		"altitude_mode": {get: func(v any) (any, bool) { return str(style(v).AltitudeMode) }},
	}
}

func count(n func(v any) int) *fieldSpec {
	return &fieldSpec{get: func(v any) (any, bool) { return n(v), true }, typ: typeNumber}
}

func containerFields() map[string]*fieldSpec {
	contents := func(v any) *models.Contents { return v.(models.Container).Children() }
	return map[string]*fieldSpec{
		"placemark_count":     count(func(v any) int { return len(contents(v).Placemarks) }),
		"folder_count":        count(func(v any) int { return len(contents(v).Folders) }),
		"point_count":         count(func(v any) int { return len(contents(v).Points) }),
		"path_count":          count(func(v any) int { return len(contents(v).Paths) }),
		"polygon_count":       count(func(v any) int { return len(contents(v).Polygons) }),
		"multigeometry_count": count(func(v any) int { return len(contents(v).MultiGeometries) }),
	}
}

func placemarkFields() map[string]*fieldSpec {
	pm := func(v any) *models.Placemark { return v.(*models.Placemark) }
	fields := located(func(v any) (models.Coordinate, bool) { return pm(v).Location() })
	fields["address"] = &fieldSpec{get: func(v any) (any, bool) { return str(pm(v).Address) }}
	fields["phone_number"] = &fieldSpec{get: func(v any) (any, bool) { return str(pm(v).PhoneNumber) }}
	fields["snippet"] = &fieldSpec{get: func(v any) (any, bool) { return str(pm(v).Snippet) }}
	fields["style_url"] = &fieldSpec{get: func(v any) (any, bool) { return str(pm(v).StyleURL) }}
	fields["geometry_type"] = &fieldSpec{get: func(v any) (any, bool) { return str(pm(v).GeometryType()) }}
	fields["extended_data"] = &fieldSpec{
		get: func(v any) (any, bool) {
			d := pm(v).ExtendedData
			return d, len(d) > 0
		},
		typ: typeMap,
		key: func(v any, name string) (any, bool) {
			s, ok := v.(models.ExtendedData).Get(name)
			if !ok {
				return nil, false
			}
			return str(s)
		},
	}
	return fields
}

func pointFields() map[string]*fieldSpec {
	fields := located(func(v any) (models.Coordinate, bool) { return v.(*models.Point).Location() })
	for k, f := range styleFields(func(v any) *models.Style { return &v.(*models.Point).Style }) {
		fields[k] = f
	}
	return fields
}

func pathFields() map[string]*fieldSpec {
	fields := styleFields(func(v any) *models.Style { return &v.(*models.Path).Style })
	fields["point_count"] = count(func(v any) int { return v.(*models.Path).PointCount() })
	return fields
}

func polygonFields() map[string]*fieldSpec {
	fields := styleFields(func(v any) *models.Style { return &v.(*models.Polygon).Style })
	fields["point_count"] = count(func(v any) int { return v.(*models.Polygon).PointCount() })
	fields["hole_count"] = count(func(v any) int { return v.(*models.Polygon).HoleCount() })
	return fields
}

func multiGeometryFields() map[string]*fieldSpec {
	mg := func(v any) *models.MultiGeometry { return v.(*models.MultiGeometry) }
	return map[string]*fieldSpec{
		"geometry_count":      count(func(v any) int { return mg(v).GeometryCount() }),
		"point_count":         count(func(v any) int { return len(mg(v).Points) }),
		"path_count":          count(func(v any) int { return len(mg(v).Paths) }),
		"polygon_count":       count(func(v any) int { return len(mg(v).Polygons) }),
		"multigeometry_count": count(func(v any) int { return len(mg(v).MultiGeometries) }),
	}
}

// registry is the closed set of queryable fields per element kind.
var registry = func() map[models.Kind]map[string]*fieldSpec {
	withCommon := func(fields map[string]*fieldSpec) map[string]*fieldSpec {
		for k, f := range commonFields {
			fields[k] = f
		}
		return fields
	}
	return map[models.Kind]map[string]*fieldSpec{
		models.KindPlacemark:     withCommon(placemarkFields()),
		models.KindFolder:        withCommon(containerFields()),
		models.KindDocument:      withCommon(containerFields()),
		models.KindPoint:         withCommon(pointFields()),
		models.KindPath:          withCommon(pathFields()),
		models.KindPolygon:       withCommon(polygonFields()),
		models.KindMultiGeometry: withCommon(multiGeometryFields()),
	}
}()

// FieldNames lists the top-level queryable fields of kind, sorted.
func FieldNames(kind models.Kind) []string {
	fields := registry[kind]
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// splitPath accepts both "coordinates__latitude" and "coordinates.latitude".
func splitPath(path string) []string {
	return strings.Split(strings.ReplaceAll(path, ".", "__"), "__")
}

func compileField(kind models.Kind, path string) (accessor, error) {
	if path == "" {
		return accessor{}, &kmlerr.QueryError{Message: "empty field name"}
	}
	parts := splitPath(path)
	acc := accessor{path: path}
	fields := registry[kind]
	var key func(any, string) (any, bool)

	for i, part := range parts {
		if key != nil {
			name, resolve := part, key
			acc.steps = append(acc.steps, func(v any) (any, bool) { return resolve(v, name) })
			acc.typ = typeString
			key, fields = nil, nil
			continue
		}
		spec, ok := fields[part]
		if !ok || part == "" {
			where := kind.String()
			if i > 0 {
				where = strings.Join(parts[:i], "__")
			}
			return accessor{}, &kmlerr.QueryError{
				Message: fmt.Sprintf("unknown field or lookup %q on %s", part, where),
				Field:   path,
			}
		}
		acc.steps = append(acc.steps, spec.get)
		acc.typ = spec.typ
		fields, key = spec.children, spec.key
	}
	return acc, nil
}
