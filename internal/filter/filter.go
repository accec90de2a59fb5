// Package filter computes the derived roster view: the students matching
// the active criteria, stably sorted by the active sort key.
package filter

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/aanand-mishra/student-roster/internal/types"
)

// SortKey names a sort order.
type SortKey string

const (
	SortName SortKey = "name" // ascending full name, case-insensitive
	SortGPA  SortKey = "gpa"  // descending GPA, absent counts as 0
	SortYear SortKey = "year" // descending enrollment year, absent counts as 0
)

// ParseSortKey maps user input to a SortKey; anything unknown sorts by name.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortGPA:
		return SortGPA
	case SortYear:
		return SortYear
	default:
		return SortName
	}
}

// Criteria is the active search, filters and sort. An empty Major or Year
// means "any".
type Criteria struct {
	SearchText string
	Major      string
	Year       string
	SortKey    SortKey
}

// Compute returns the records of collection that satisfy c, sorted by
// c.SortKey. The result shares pointers with collection and never contains
// a record that is not in it. The sort is stable, so ties keep collection
// order.
func Compute(collection []*types.Student, c Criteria) []*types.Student {
	search := strings.ToLower(strings.TrimSpace(c.SearchText))

	out := make([]*types.Student, 0, len(collection))
	for _, s := range collection {
		if s != nil && matches(s, search, c.Major, c.Year) {
			out = append(out, s)
		}
	}

	switch ParseSortKey(string(c.SortKey)) {
	case SortGPA:
		slices.SortStableFunc(out, func(a, b *types.Student) int {
			return descending(types.Deref(a.GPA), types.Deref(b.GPA))
		})
	case SortYear:
		slices.SortStableFunc(out, func(a, b *types.Student) int {
			return descending(types.Deref(a.EnrollmentYear), types.Deref(b.EnrollmentYear))
		})
	default:
		// collate.Collator keeps internal buffers and is not safe for
		// concurrent use, so each call gets its own.
		col := collate.New(language.English, collate.Loose)
		slices.SortStableFunc(out, func(a, b *types.Student) int {
			return col.CompareString(sortName(a), sortName(b))
		})
	}
	return out
}

// Matches reports whether s passes the criteria's predicate. Sorting is
// not considered.
func Matches(s *types.Student, c Criteria) bool {
	return matches(s, strings.ToLower(strings.TrimSpace(c.SearchText)), c.Major, c.Year)
}

func matches(s *types.Student, search, major, year string) bool {
	if search != "" {
		found := false
		for _, field := range []string{s.FirstName, s.LastName, s.Email, types.Deref(s.Phone)} {
			if strings.Contains(strings.ToLower(field), search) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if major != "" && (s.Major == nil || *s.Major != major) {
		return false
	}
	if year != "" && yearString(s) != year {
		return false
	}
	return true
}

func yearString(s *types.Student) string {
	if s.EnrollmentYear == nil {
		return ""
	}
	return strconv.Itoa(*s.EnrollmentYear)
}

func sortName(s *types.Student) string {
	return strings.ToLower(s.FirstName + " " + s.LastName)
}

func descending[T int | float64](a, b T) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
