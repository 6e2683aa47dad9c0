package routine

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/jonwraymond/portalcache/filter"
)

// ErrInvalidRoutine is returned for writes missing required fields.
var ErrInvalidRoutine = errors.New("routine: invalid routine")

// ErrMissingID is returned when an operation needs a routine id.
var ErrMissingID = errors.New("routine: id is required")

// Slot is one timetabled class.
type Slot struct {
	Day        string `json:"day"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Course     string `json:"course"`
	Instructor string `json:"instructor,omitempty"`
	Room       string `json:"room,omitempty"`
}

// Routine is the weekly timetable of one department, semester and shift.
type Routine struct {
	ID         string       `json:"id"`
	Department string       `json:"department"`
	Semester   int          `json:"semester"`
	Shift      filter.Shift `json:"shift"`
	Slots      []Slot       `json:"slots"`
	UpdatedAt  time.Time    `json:"updatedAt,omitzero"`
}

// Filters returns the filter dimensions r belongs to.
func (r Routine) Filters() filter.Filters {
	raw := filter.Raw{
		filter.FieldDepartment: r.Department,
		filter.FieldSemester:   r.Semester,
	}
	if r.Shift != "" {
		raw[filter.FieldShift] = string(r.Shift)
	}
	return filter.Sanitize(raw)
}

// Clone returns a copy of r that shares no slots with it.
func (r Routine) Clone() Routine {
	r.Slots = slices.Clone(r.Slots)
	return r
}

func cloneAll(rs []Routine) []Routine {
	if rs == nil {
		return nil
	}
	out := make([]Routine, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// Validate checks the fields a create or update must carry.
func (r Routine) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Department) == "" {
		errs = append(errs, errors.New("department is required"))
	}
	if r.Semester < filter.MinSemester || r.Semester > filter.MaxSemester {
		errs = append(errs, errors.New("semester out of range"))
	}
	if !r.Shift.Valid() {
		errs = append(errs, errors.New("shift is invalid"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidRoutine}, errs...)...)
	}
	return nil
}
