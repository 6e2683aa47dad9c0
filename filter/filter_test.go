package filter

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSanitize_Shift(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want Shift
	}{
		{"invalid defaults to Day", Raw{"shift": "Nighttime"}, ShiftDay},
		{"evening kept", Raw{"shift": "Evening"}, ShiftEvening},
		{"morning kept", Raw{"shift": "Morning"}, ShiftMorning},
		{"nil is absent", Raw{"shift": nil}, ""},
		{"missing is absent", Raw{}, ""},
		{"wrong case defaults", Raw{"shift": "evening"}, ShiftDay},
		{"non-string defaults", Raw{"shift": 3}, ShiftDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.raw).Shift; got != tt.want {
				t.Errorf("Sanitize(%v).Shift = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitize_Semester(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want int
	}{
		{"zero dropped", Raw{"semester": 0}, 0},
		{"nine dropped", Raw{"semester": 9}, 0},
		{"lower bound", Raw{"semester": 1}, 1},
		{"upper bound", Raw{"semester": 8}, 8},
		{"json float", Raw{"semester": float64(4)}, 4},
		{"json number", Raw{"semester": json.Number("5")}, 5},
		{"fractional dropped", Raw{"semester": 2.5}, 0},
		{"negative dropped", Raw{"semester": -1}, 0},
		{"numeric string", Raw{"semester": "3"}, 3},
		{"garbage string dropped", Raw{"semester": "third"}, 0},
		{"bool dropped", Raw{"semester": true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.raw).Semester; got != tt.want {
				t.Errorf("Sanitize(%v).Semester = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitize_Department(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want string
	}{
		{"kept", Raw{"department": "CSE"}, "CSE"},
		{"trimmed", Raw{"department": "  EEE "}, "EEE"},
		{"blank dropped", Raw{"department": "   "}, ""},
		{"empty dropped", Raw{"department": ""}, ""},
		{"non-string dropped", Raw{"department": 42}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.raw).Department; got != tt.want {
				t.Errorf("Sanitize(%v).Department = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitize_PassThrough(t *testing.T) {
	raw := Raw{
		"department": "CSE",
		"section":    "A",
		"page":       2,
		"dropped":    nil,
	}

	got := Sanitize(raw)
	want := Filters{
		Department: "CSE",
		Extra:      map[string]any{"section": "A", "page": 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sanitize() mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []Raw{
		{},
		{"department": " CSE ", "semester": 3, "shift": "Nighttime"},
		{"semester": "9", "shift": "Evening", "room": "301"},
		{"department": "", "semester": 8.0, "tags": []string{"lab", "theory"}},
		{"shift": nil, "semester": nil},
	}

	for _, raw := range inputs {
		once := Sanitize(raw)
		twice := Sanitize(once.Raw())
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("Sanitize not idempotent for %v (-once +twice):\n%s", raw, diff)
		}
		if diff := cmp.Diff(once, once.Sanitize()); diff != "" {
			t.Errorf("Filters.Sanitize not idempotent for %v:\n%s", raw, diff)
		}
	}
}

func TestFilters_Params(t *testing.T) {
	f := Filters{Department: "CSE", Semester: 4, Shift: ShiftDay, Extra: map[string]any{"section": "B"}}
	want := map[string]any{
		"department": "CSE",
		"semester":   4,
		"shift":      "Day",
		"section":    "B",
	}
	if diff := cmp.Diff(want, f.Params()); diff != "" {
		t.Errorf("Params() mismatch (-want +got):\n%s", diff)
	}

	if got := (Filters{}).Params(); got == nil || len(got) != 0 {
		t.Errorf("empty Params() = %v, want empty non-nil map", got)
	}
}

func TestFilters_HasDimensions(t *testing.T) {
	if (Filters{Extra: map[string]any{"page": 1}}).HasDimensions() {
		t.Error("extra-only filters should not report dimensions")
	}
	if !(Filters{Semester: 2}).HasDimensions() {
		t.Error("semester should count as a dimension")
	}
}

func TestFilters_Query(t *testing.T) {
	f := Filters{Department: "CSE", Semester: 3, Extra: map[string]any{"tag": []string{"a", "b"}}}
	got := f.Query().Encode()
	want := "department=CSE&semester=3&tag=a&tag=b"
	if got != want {
		t.Errorf("Query().Encode() = %q, want %q", got, want)
	}
}

func TestFromQuery(t *testing.T) {
	values, err := url.ParseQuery("department=CSE&semester=2&shift=Morning&tag=x&tag=y")
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}

	got := Sanitize(FromQuery(values))
	want := Filters{
		Department: "CSE",
		Semester:   2,
		Shift:      ShiftMorning,
		Extra:      map[string]any{"tag": []string{"x", "y"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sanitize(FromQuery()) mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Raw{"department": "CSE", "semester": 1, "shift": "Day", "x": 1}); err != nil {
		t.Errorf("Validate(valid) = %v, want nil", err)
	}

	err := Validate(Raw{"department": " ", "semester": 12, "shift": "Night"})
	if err == nil {
		t.Fatal("Validate(invalid) = nil, want error")
	}
	if !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("errors.Is(err, ErrInvalidFilter) = false for %v", err)
	}

	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("errors.As(*FieldError) = false for %v", err)
	}
	// Fields are reported in sorted order.
	if fieldErr.Field != FieldDepartment {
		t.Errorf("first FieldError.Field = %q, want %q", fieldErr.Field, FieldDepartment)
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("Validate error is not a joined error: %T", err)
	}
	if n := len(joined.Unwrap()); n != 3 {
		t.Errorf("Validate reported %d errors, want 3", n)
	}
}

func TestShift_Valid(t *testing.T) {
	for _, s := range Shifts {
		if !s.Valid() {
			t.Errorf("%q.Valid() = false, want true", s)
		}
	}
	if Shift("Night").Valid() {
		t.Error(`"Night".Valid() = true, want false`)
	}
}
