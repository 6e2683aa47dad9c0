package cache

import (
	"encoding/json"
	"strconv"

	"github.com/jonwraymond/portalcache/filter"
)

// Tag names one filter dimension value an entry depends on.
type Tag struct {
	Dimension string
	Value     string
}

func (t Tag) String() string {
	return t.Dimension + "=" + t.Value
}

// TagsFor returns one tag per recognised dimension present in f.
func TagsFor(f filter.Filters) []Tag {
	var tags []Tag
	if f.Department != "" {
		tags = append(tags, Tag{Dimension: filter.FieldDepartment, Value: f.Department})
	}
	if f.Semester != 0 {
		tags = append(tags, Tag{Dimension: filter.FieldSemester, Value: strconv.Itoa(f.Semester)})
	}
	if f.Shift != "" {
		tags = append(tags, Tag{Dimension: filter.FieldShift, Value: string(f.Shift)})
	}
	return tags
}

// keyFragments renders the `"field":value` fragments BuildKey embeds for the
// present dimensions of f. Used to honour untagged entries.
func keyFragments(f filter.Filters) []string {
	params := f.Params()
	var fragments []string
	for _, field := range []string{filter.FieldDepartment, filter.FieldSemester, filter.FieldShift} {
		v, ok := params[field]
		if !ok {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		fragments = append(fragments, strconv.Quote(field)+":"+string(b))
	}
	return fragments
}

func hasAnyTag(have []Tag, want []Tag) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
