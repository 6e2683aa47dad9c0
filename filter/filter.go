package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Recognised filter keys.
const (
	FieldDepartment = "department"
	FieldSemester   = "semester"
	FieldShift      = "shift"
)

// Semester bounds, inclusive.
const (
	MinSemester = 1
	MaxSemester = 8
)

// Shift is the class shift a routine belongs to.
type Shift string

const (
	ShiftMorning Shift = "Morning"
	ShiftDay     Shift = "Day"
	ShiftEvening Shift = "Evening"
)

// DefaultShift replaces a present but unrecognised shift.
const DefaultShift = ShiftDay

// Shifts lists the valid shifts in display order.
var Shifts = []Shift{ShiftMorning, ShiftDay, ShiftEvening}

// Valid reports whether s is one of the enumerated shifts.
func (s Shift) Valid() bool {
	switch s {
	case ShiftMorning, ShiftDay, ShiftEvening:
		return true
	default:
		return false
	}
}

// Raw is an untyped filter object as received from a caller.
type Raw map[string]any

// Filters is a sanitised filter set. A zero field means the dimension is absent.
type Filters struct {
	Department string
	Semester   int
	Shift      Shift

	// Extra holds unrecognised parameters, copied through verbatim.
	Extra map[string]any
}

// HasDimensions reports whether any recognised dimension is present.
func (f Filters) HasDimensions() bool {
	return f.Department != "" || f.Semester != 0 || f.Shift != ""
}

// Params returns the present fields as a parameter map suitable for key
// building. The map is never nil.
func (f Filters) Params() map[string]any {
	params := make(map[string]any, len(f.Extra)+3)
	for k, v := range f.Extra {
		params[k] = v
	}
	if f.Department != "" {
		params[FieldDepartment] = f.Department
	}
	if f.Semester != 0 {
		params[FieldSemester] = f.Semester
	}
	if f.Shift != "" {
		params[FieldShift] = string(f.Shift)
	}
	return params
}

// Raw converts f back to its untyped form.
func (f Filters) Raw() Raw {
	return Raw(f.Params())
}

// Sanitize re-applies the sanitisation rules to f.
func (f Filters) Sanitize() Filters {
	return Sanitize(f.Raw())
}

// Query renders f as URL query parameters. Keys are emitted in sorted order
// by url.Values.Encode.
func (f Filters) Query() url.Values {
	q := make(url.Values)
	for k, v := range f.Params() {
		switch val := v.(type) {
		case string:
			q.Set(k, val)
		case []string:
			for _, s := range val {
				q.Add(k, s)
			}
		default:
			q.Set(k, fmt.Sprint(val))
		}
	}
	return q
}

// Sanitize validates and normalises raw into a Filters value.
//
// Rules:
//   - department: kept (trimmed) iff it is a string that is non-empty after trimming.
//   - semester: kept iff it is an integral number in [MinSemester, MaxSemester].
//     Numeric strings are accepted so query strings sanitise the same as JSON.
//   - shift: kept iff it is a valid Shift; any other present value becomes DefaultShift.
//   - everything else is copied into Extra unless its value is nil.
func Sanitize(raw Raw) Filters {
	var f Filters
	for k, v := range raw {
		if v == nil {
			continue
		}
		switch k {
		case FieldDepartment:
			if dept, ok := department(v); ok {
				f.Department = dept
			}
		case FieldSemester:
			if sem, ok := semester(v); ok {
				f.Semester = sem
			}
		case FieldShift:
			f.Shift = shift(v)
		default:
			if f.Extra == nil {
				f.Extra = make(map[string]any)
			}
			f.Extra[k] = v
		}
	}
	return f
}

// Validate is the hard counterpart of Sanitize. It returns a joined error of
// *FieldError values, one per recognised field present in raw that would be
// dropped or defaulted by Sanitize.
func Validate(raw Raw) error {
	var errs []error
	for _, k := range sortedKeys(raw) {
		v := raw[k]
		if v == nil {
			continue
		}
		switch k {
		case FieldDepartment:
			if _, ok := department(v); !ok {
				errs = append(errs, &FieldError{Field: k, Value: v, Reason: "must be a non-empty string"})
			}
		case FieldSemester:
			if _, ok := semester(v); !ok {
				errs = append(errs, &FieldError{
					Field:  k,
					Value:  v,
					Reason: fmt.Sprintf("must be a whole number between %d and %d", MinSemester, MaxSemester),
				})
			}
		case FieldShift:
			if s, ok := v.(string); !ok || !Shift(s).Valid() {
				errs = append(errs, &FieldError{Field: k, Value: v, Reason: "must be one of Morning, Day, Evening"})
			}
		}
	}
	return errors.Join(errs...)
}

// FromQuery converts URL query values to Raw. Single values become strings,
// repeated keys become []string.
func FromQuery(values url.Values) Raw {
	raw := make(Raw, len(values))
	for k, vs := range values {
		switch len(vs) {
		case 0:
		case 1:
			raw[k] = vs[0]
		default:
			raw[k] = append([]string(nil), vs...)
		}
	}
	return raw
}

func department(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func semester(v any) (int, bool) {
	var n float64
	switch val := v.(type) {
	case int:
		n = float64(val)
	case int8:
		n = float64(val)
	case int16:
		n = float64(val)
	case int32:
		n = float64(val)
	case int64:
		n = float64(val)
	case uint:
		n = float64(val)
	case uint8:
		n = float64(val)
	case uint16:
		n = float64(val)
	case uint32:
		n = float64(val)
	case uint64:
		n = float64(val)
	case float32:
		n = float64(val)
	case float64:
		n = val
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || n != math.Trunc(n) || n < MinSemester || n > MaxSemester {
		return 0, false
	}
	return int(n), true
}

func shift(v any) Shift {
	if s, ok := v.(string); ok && Shift(s).Valid() {
		return Shift(s)
	}
	return DefaultShift
}

func sortedKeys(raw Raw) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
