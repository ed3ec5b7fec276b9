package query

import "github.com/1F47E/kmlorm/pkg/models"

// Scope selects which part of a container's subtree a collection covers.
type Scope int

const (
	// ScopeChildren covers direct children only.
	ScopeChildren Scope = iota
	// ScopeAll covers every descendant.
	ScopeAll
)

func (s Scope) String() string {
	if s == ScopeAll {
		return "all"
	}
	return "children"
}

// kindOf returns the element kind of a concrete pointer type parameter.
// Element methods use pointer receivers and do not dereference, so calling
// Kind on the nil zero value is safe.
func kindOf[T models.Element]() (models.Kind, bool) {
	var zero T
	if any(zero) == nil {
		return 0, false
	}
	return zero.Kind(), true
}

// Collect returns the elements of type T under c for the given scope, in
// document order and without duplicates.
//
// With ScopeAll, containers are visited pre-order. Each visited container
// contributes its direct matches, then (for geometry types) the matches
// embedded in its Placemarks and standalone MultiGeometries, then its
// sub-folders in document order.
func Collect[T models.Element](c models.Container, scope Scope) []T {
	kind, ok := kindOf[T]()
	if !ok {
		return nil
	}
	found := collect(c, kind, scope)
	out := make([]T, 0, len(found))
	for _, e := range found {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func collect(root models.Container, kind models.Kind, scope Scope) []models.Element {
	if root == nil {
		return nil
	}

	var out []models.Element
	seen := make(map[models.Element]struct{})
	emit := func(e models.Element) {
		if _, dup := seen[e]; dup {
			return
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}

	if scope == ScopeChildren {
		direct(root.Children(), kind, emit)
		return out
	}

	// Explicit stack: document depth never turns into call-stack depth.
	stack := []models.Container{root}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		contents := c.Children()
		direct(contents, kind, emit)

		if kind.IsGeometry() {
			for _, pm := range contents.Placemarks {
				if pm != nil && pm.Geometry != nil {
					extract(pm.Geometry, kind, true, emit)
				}
			}
			for _, mg := range contents.MultiGeometries {
				if mg != nil {
					// the collection itself was emitted as a direct child
					extract(mg, kind, false, emit)
				}
			}
		}

		for i := len(contents.Folders) - 1; i >= 0; i-- {
			if f := contents.Folders[i]; f != nil {
				stack = append(stack, f)
			}
		}
	}
	return out
}

func direct(c *models.Contents, kind models.Kind, emit func(models.Element)) {
	switch kind {
	case models.KindPlacemark:
		for _, e := range c.Placemarks {
			if e != nil {
				emit(e)
			}
		}
	case models.KindFolder:
		for _, e := range c.Folders {
			if e != nil {
				emit(e)
			}
		}
	case models.KindPoint:
		for _, e := range c.Points {
			if e != nil {
				emit(e)
			}
		}
	case models.KindPath:
		for _, e := range c.Paths {
			if e != nil {
				emit(e)
			}
		}
	case models.KindPolygon:
		for _, e := range c.Polygons {
			if e != nil {
				emit(e)
			}
		}
	case models.KindMultiGeometry:
		for _, e := range c.MultiGeometries {
			if e != nil {
				emit(e)
			}
		}
	}
}

// extract emits the geometries of the target kind found inside g. self
// controls whether g itself may be emitted.
func extract(g models.Geometry, kind models.Kind, self bool, emit func(models.Element)) {
	switch v := g.(type) {
	case *models.Point:
		if self && kind == models.KindPoint && v != nil {
			emit(v)
		}
	case *models.Path:
		if self && kind == models.KindPath && v != nil {
			emit(v)
		}
	case *models.Polygon:
		if self && kind == models.KindPolygon && v != nil {
			emit(v)
		}
	case *models.MultiGeometry:
		if v == nil {
			return
		}
		type frame struct {
			mg   *models.MultiGeometry
			self bool
		}
		stack := []frame{{v, self}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch kind {
			case models.KindMultiGeometry:
				if f.self {
					emit(f.mg)
				}
			case models.KindPoint:
				for _, p := range f.mg.Points {
					if p != nil {
						emit(p)
					}
				}
			case models.KindPath:
				for _, p := range f.mg.Paths {
					if p != nil {
						emit(p)
					}
				}
			case models.KindPolygon:
				for _, p := range f.mg.Polygons {
					if p != nil {
						emit(p)
					}
				}
			}

			for i := len(f.mg.MultiGeometries) - 1; i >= 0; i-- {
				if n := f.mg.MultiGeometries[i]; n != nil {
					stack = append(stack, frame{n, true})
				}
			}
		}
	}
}
