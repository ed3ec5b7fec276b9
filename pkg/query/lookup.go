package query

import (
	"cmp"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/1F47E/kmlorm/pkg/kmlerr"
	"github.com/1F47E/kmlorm/pkg/models"
)

// Lookups maps "field__lookup" keys to arguments. A key without a lookup
// suffix means exact. All entries of one map must match (AND).
type Lookups map[string]any

// lookupNames is the closed set of lookup suffixes.
var lookupNames = map[string]bool{
	"exact": true, "iexact": true,
	"contains": true, "icontains": true,
	"startswith": true, "istartswith": true,
	"endswith": true, "iendswith": true,
	"in": true, "isnull": true,
	"regex": true, "iregex": true,
	"gt": true, "gte": true, "lt": true, "lte": true,
	"range": true,
}

// LookupNames lists the supported lookups, sorted.
func LookupNames() []string {
	names := make([]string, 0, len(lookupNames))
	for name := range lookupNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// splitLookup separates the field path from the lookup name. The last
// segment is a lookup only when it is a known lookup name.
func splitLookup(key string) (field, lookup string) {
	i := strings.LastIndex(key, "__")
	if i < 0 {
		return key, "exact"
	}
	if name := key[i+2:]; lookupNames[name] {
		return key[:i], name
	}
	return key, "exact"
}

// matcher decides a single clause. present is false when the field value is
// null or absent.
type matcher func(value any, present bool) bool

type condition struct {
	field accessor
	match matcher
}

type conditions []condition

func (cs conditions) match(e models.Element) bool {
	for _, c := range cs {
		v, ok := c.field.resolve(e)
		if !c.match(v, ok) {
			return false
		}
	}
	return true
}

// compileLookups validates every clause up front. Keys are compiled in
// sorted order so the reported error is deterministic.
func compileLookups(kind models.Kind, lookups Lookups, strict bool) (conditions, error) {
	keys := make([]string, 0, len(lookups))
	for k := range lookups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make(conditions, 0, len(keys))
	for _, key := range keys {
		c, err := compileClause(kind, key, lookups[key], strict)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func compileClause(kind models.Kind, key string, arg any, strict bool) (condition, error) {
	path, lookup := splitLookup(key)
	field, err := compileField(kind, path)
	if err != nil {
		return condition{}, err
	}
	m, err := compileMatcher(field, lookup, arg, strict)
	if err != nil {
		return condition{}, err
	}
	return condition{field: field, match: m}, nil
}

func argError(field accessor, lookup, msg string) error {
	return &kmlerr.QueryError{
		Message: fmt.Sprintf("%s__%s: %s", field.path, lookup, msg),
		Field:   field.path,
	}
}

func compileMatcher(field accessor, lookup string, arg any, strict bool) (matcher, error) {
	switch lookup {
	case "exact":
		if arg == nil {
			return func(_ any, present bool) bool { return !present }, nil
		}
		return func(v any, present bool) bool { return present && equal(v, arg) }, nil

	case "iexact":
		if arg == nil {
			return nil, argError(field, lookup, "argument must not be nil")
		}
		want := stringOf(arg)
		return stringMatcher(func(s string) bool { return strings.EqualFold(s, want) }), nil

	case "contains", "icontains", "startswith", "istartswith", "endswith", "iendswith":
		if arg == nil {
			return nil, argError(field, lookup, "argument must not be nil")
		}
		want := stringOf(arg)
		fold := lookup[0] == 'i'
		if fold {
			want = strings.ToLower(want)
		}
		var test func(s, sub string) bool
		switch strings.TrimPrefix(lookup, "i") {
		case "contains":
			test = strings.Contains
		case "startswith":
			test = strings.HasPrefix
		default:
			test = strings.HasSuffix
		}
		return stringMatcher(func(s string) bool {
			if fold {
				s = strings.ToLower(s)
			}
			return test(s, want)
		}), nil

	case "regex", "iregex":
		var re *regexp.Regexp
		switch pattern := arg.(type) {
		case nil:
			return nil, argError(field, lookup, "argument must not be nil")
		case *regexp.Regexp:
			re = pattern
			if lookup == "iregex" {
				re = regexp.MustCompile("(?i)" + pattern.String())
			}
		default:
			expr := stringOf(pattern)
			if lookup == "iregex" {
				expr = "(?i)" + expr
			}
			compiled, err := regexp.Compile(expr)
			if err != nil {
				return nil, argError(field, lookup, fmt.Sprintf("invalid pattern: %v", err))
			}
			re = compiled
		}
		return stringMatcher(re.MatchString), nil

	case "in":
		values, ok := sliceOf(arg)
		if !ok {
			return nil, argError(field, lookup, "argument must be a slice or array")
		}
		return func(v any, present bool) bool {
			if !present {
				return false
			}
			for _, want := range values {
				if equal(v, want) {
					return true
				}
			}
			return false
		}, nil

	case "isnull":
		want, ok := arg.(bool)
		if !ok {
			return nil, argError(field, lookup, "argument must be a bool")
		}
		return func(_ any, present bool) bool { return !present == want }, nil

	case "gt", "gte", "lt", "lte":
		if err := checkOrdered(field, lookup, arg, strict); err != nil {
			return nil, err
		}
		accept := map[string]func(int) bool{
			"gt":  func(c int) bool { return c > 0 },
			"gte": func(c int) bool { return c >= 0 },
			"lt":  func(c int) bool { return c < 0 },
			"lte": func(c int) bool { return c <= 0 },
		}[lookup]
		return func(v any, present bool) bool {
			if !present {
				return false
			}
			c, ok := compareValues(v, arg)
			return ok && accept(c)
		}, nil

	case "range":
		bounds, ok := sliceOf(arg)
		if !ok || len(bounds) != 2 {
			return nil, argError(field, lookup, "argument must be a pair [low, high]")
		}
		lo, hi := bounds[0], bounds[1]
		for _, b := range bounds {
			if err := checkOrdered(field, lookup, b, strict); err != nil {
				return nil, err
			}
		}
		return func(v any, present bool) bool {
			if !present {
				return false
			}
			cl, okLo := compareValues(v, lo)
			ch, okHi := compareValues(v, hi)
			return okLo && okHi && cl >= 0 && ch <= 0
		}, nil
	}
	return nil, argError(field, lookup, "unsupported lookup")
}

// stringMatcher applies test to the string form of present field values.
func stringMatcher(test func(string) bool) matcher {
	return func(v any, present bool) bool {
		return present && test(stringOf(v))
	}
}

// stringOf formats a value the way string lookups see it: numbers in their
// shortest decimal form, bools as true/false.
func stringOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// checkOrdered rejects ordering arguments that can never compare with the
// field. Only enforced in strict mode; otherwise such clauses match nothing.
func checkOrdered(field accessor, lookup string, arg any, strict bool) error {
	if !strict {
		return nil
	}
	_, isNum := toFloat(arg)
	_, isStr := arg.(string)
	switch field.typ {
	case typeNumber:
		if !isNum {
			return argError(field, lookup, fmt.Sprintf("cannot compare number with %T", arg))
		}
	case typeString:
		if !isNum && !isStr {
			return argError(field, lookup, fmt.Sprintf("cannot compare string with %T", arg))
		}
	default:
		return argError(field, lookup, "field is not ordered")
	}
	return nil
}

// toFloat normalizes Go numeric types to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func sliceOf(arg any) ([]any, bool) {
	if arg == nil {
		return nil, false
	}
	rv := reflect.ValueOf(arg)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// equal is numeric when either side is a number, see compareValues.
func equal(a, b any) bool {
	_, aNum := toFloat(a)
	_, bNum := toFloat(b)
	if aNum || bNum {
		c, ok := compareValues(a, b)
		return ok && c == 0
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two values. Numbers compare numerically; strings
// lexically; a string and a number compare numerically when the string
// parses as a number, so extended data values can be range-filtered. ok is
// false for incomparable pairs.
func compareValues(a, b any) (int, bool) {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	sa, aStr := a.(string)
	sb, bStr := b.(string)

	switch {
	case aNum && bNum:
		return cmp.Compare(fa, fb), true
	case aStr && bStr:
		return strings.Compare(sa, sb), true
	case aStr && bNum:
		f, err := strconv.ParseFloat(strings.TrimSpace(sa), 64)
		if err != nil {
			return 0, false
		}
		return cmp.Compare(f, fb), true
	case aNum && bStr:
		f, err := strconv.ParseFloat(strings.TrimSpace(sb), 64)
		if err != nil {
			return 0, false
		}
		return cmp.Compare(fa, f), true
	}

	ba, aBool := a.(bool)
	bb, bBool := b.(bool)
	if aBool && bBool {
		switch {
		case ba == bb:
			return 0, true
		case !ba:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}
