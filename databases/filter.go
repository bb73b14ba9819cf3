package databases

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The in-memory store evaluates the same bson filters the repositories send to
// Mongo. Only the operators the repositories use are supported: equality
// (including array membership), $eq $ne $in $nin $gt $gte $lt $lte $exists
// $regex/$options, and top-level $and/$or.

// millis is a normalized date so dates never compare equal to plain numbers
type millis int64

func matches(doc bson.M, filter bson.M) (bool, error) {
	for key, cond := range filter {
		switch key {
		case "$and", "$or":
			subs, err := subFilters(cond)
			if err != nil {
				return false, err
			}
			ok, err := combine(doc, subs, key == "$and")
			if err != nil || !ok {
				return false, err
			}
			continue
		}
		val, found := lookup(doc, key)
		ok, err := matchField(val, found, cond)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func subFilters(v interface{}) ([]bson.M, error) {
	switch t := v.(type) {
	case []bson.M:
		return t, nil
	case bson.A:
		out := make([]bson.M, 0, len(t))
		for _, e := range t {
			m, ok := e.(bson.M)
			if !ok {
				return nil, fmt.Errorf("unsupported logical operand %T", e)
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported logical operand %T", v)
}

func combine(doc bson.M, subs []bson.M, all bool) (bool, error) {
	for _, sub := range subs {
		ok, err := matches(doc, sub)
		if err != nil {
			return false, err
		}
		if all && !ok {
			return false, nil
		}
		if !all && ok {
			return true, nil
		}
	}
	return all, nil
}

// lookup resolves a dotted path such as "coordinates.latitude"
func lookup(doc bson.M, path string) (interface{}, bool) {
	var cur interface{} = doc
	for _, part := range strings.Split(path, ".") {
		var m bson.M
		switch t := cur.(type) {
		case bson.M:
			m = t
		case bson.D:
			m = t.Map()
		default:
			return nil, false
		}
		var ok bool
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func matchField(val interface{}, found bool, cond interface{}) (bool, error) {
	ops, isOps := operatorDoc(cond)
	if !isOps {
		return equalOrContains(val, cond), nil
	}
	for op, arg := range ops {
		var ok bool
		switch op {
		case "$eq":
			ok = equalOrContains(val, arg)
		case "$ne":
			ok = !equalOrContains(val, arg)
		case "$in", "$nin":
			in := false
			for _, a := range asList(arg) {
				if equalOrContains(val, a) {
					in = true
					break
				}
			}
			ok = in == (op == "$in")
		case "$gt", "$gte", "$lt", "$lte":
			c, comparable := compare(normalize(val), normalize(arg))
			if !comparable {
				return false, nil
			}
			switch op {
			case "$gt":
				ok = c > 0
			case "$gte":
				ok = c >= 0
			case "$lt":
				ok = c < 0
			case "$lte":
				ok = c <= 0
			}
		case "$exists":
			want, _ := arg.(bool)
			ok = (found && val != nil) == want
		case "$regex":
			opts, _ := ops["$options"].(string)
			re, err := compileRegex(fmt.Sprint(arg), opts)
			if err != nil {
				return false, err
			}
			s, isString := normalize(val).(string)
			ok = isString && re.MatchString(s)
		case "$options":
			ok = true
		default:
			return false, fmt.Errorf("unsupported filter operator %s", op)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func operatorDoc(v interface{}) (bson.M, bool) {
	m, ok := v.(bson.M)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

func compileRegex(pattern, opts string) (*regexp.Regexp, error) {
	if strings.Contains(opts, "i") {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

// equalOrContains mirrors Mongo equality: an array field matches when any of
// its elements is equal.
func equalOrContains(val, want interface{}) bool {
	if re, ok := want.(primitive.Regex); ok {
		compiled, err := compileRegex(re.Pattern, re.Options)
		s, isString := normalize(val).(string)
		return err == nil && isString && compiled.MatchString(s)
	}
	nv, nw := normalize(val), normalize(want)
	if list, ok := nv.([]interface{}); ok {
		if _, wantList := nw.([]interface{}); !wantList {
			for _, e := range list {
				if reflect.DeepEqual(e, nw) {
					return true
				}
			}
			return false
		}
	}
	return reflect.DeepEqual(nv, nw)
}

func asList(v interface{}) []interface{} {
	if l, ok := normalize(v).([]interface{}); ok {
		return l
	}
	return []interface{}{v}
}

// normalize maps the many Go and bson representations of a value onto a small
// set of comparable ones: nil, float64, string, bool, millis, []interface{}
// and bson.M.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return millis(primitive.NewDateTimeFromTime(t))
	case *time.Time:
		if t == nil {
			return nil
		}
		return millis(primitive.NewDateTimeFromTime(*t))
	case primitive.DateTime:
		return millis(t)
	case millis:
		return t
	case bson.M:
		return t
	case bson.D:
		return t.Map()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

// compare orders two normalized values of the same kind
func compare(a, b interface{}) (int, bool) {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, false
		}
		return cmp3(x < y, x > y), true
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case millis:
		y, ok := b.(millis)
		if !ok {
			return 0, false
		}
		return cmp3(x < y, x > y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		return cmp3(!x && y, x && !y), true
	}
	return 0, false
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

// sortRank orders values of different kinds the way Mongo does for the kinds
// the repositories sort on: missing/null first, then numbers, strings, bools
// and dates.
func sortRank(v interface{}) int {
	switch v.(type) {
	case nil:
		return 0
	case float64:
		return 1
	case string:
		return 2
	case bool:
		return 3
	case millis:
		return 4
	}
	return 5
}

func sortCompare(a, b interface{}) int {
	ra, rb := sortRank(a), sortRank(b)
	if ra != rb {
		return cmp3(ra < rb, ra > rb)
	}
	c, _ := compare(a, b)
	return c
}
