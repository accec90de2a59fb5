// Package state holds the roster's single source of truth: the cached
// collection, the active criteria, the theme flag and the last load error.
// Every mutation goes through a named method that re-derives the view, so
// the derived view can never drift from the collection.
package state

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/aanand-mishra/student-roster/internal/filter"
	"github.com/aanand-mishra/student-roster/internal/types"
)

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// CriteriaPatch updates the fields that are non-nil and leaves the rest.
type CriteriaPatch struct {
	SearchText *string
	Major      *string
	Year       *string
	SortKey    *filter.SortKey
}

// Stats summarises the whole collection (not the filtered view).
type Stats struct {
	Total        int
	AverageGPA   float64
	MajorCount   int
	EarliestYear *int
}

// AverageGPAText formats AverageGPA with two decimals, "0.00" when no
// student has a GPA.
func (s Stats) AverageGPAText() string {
	return fmt.Sprintf("%.2f", s.AverageGPA)
}

// FilterOptions lists the values offered by the major and year filters.
type FilterOptions struct {
	Majors []string // ascending
	Years  []int    // descending
}

// Store is not safe for concurrent use; the engine owns it exclusively.
type Store struct {
	collection []*types.Student
	derived    []*types.Student
	criteria   filter.Criteria
	theme      Theme
	loadErr    error
}

// New returns an empty store sorted by name in the light theme.
func New() *Store {
	s := &Store{
		criteria: filter.Criteria{SortKey: filter.SortName},
		theme:    ThemeLight,
	}
	s.derive()
	return s
}

// SetCollection replaces the collection wholesale, clears any load error
// and re-derives the view.
func (s *Store) SetCollection(students []types.Student) {
	s.collection = make([]*types.Student, len(students))
	for i := range students {
		st := students[i]
		s.collection[i] = &st
	}
	s.loadErr = nil
	s.derive()
}

// SetCriteria merges patch into the criteria and re-derives the view.
func (s *Store) SetCriteria(patch CriteriaPatch) {
	if patch.SearchText != nil {
		s.criteria.SearchText = *patch.SearchText
	}
	if patch.Major != nil {
		s.criteria.Major = *patch.Major
	}
	if patch.Year != nil {
		s.criteria.Year = *patch.Year
	}
	if patch.SortKey != nil {
		s.criteria.SortKey = filter.ParseSortKey(string(*patch.SortKey))
	}
	s.derive()
}

// DerivedView returns a snapshot of the filtered, sorted view. The slice is
// a copy; the records are shared with the collection and must be treated
// as read-only.
func (s *Store) DerivedView() []*types.Student {
	return slices.Clone(s.derived)
}

// Collection returns a snapshot of the full collection in store order.
func (s *Store) Collection() []*types.Student {
	return slices.Clone(s.collection)
}

// Find returns the cached student with the given id.
func (s *Store) Find(id int64) (*types.Student, bool) {
	for _, st := range s.collection {
		if st.ID == id {
			return st, true
		}
	}
	return nil, false
}

func (s *Store) Criteria() filter.Criteria { return s.criteria }

func (s *Store) Theme() Theme { return s.theme }

func (s *Store) SetTheme(t Theme) { s.theme = t }

// SetLoadError records a failed list. The collection is left as it was.
func (s *Store) SetLoadError(err error) { s.loadErr = err }

// LoadError is the last list failure, nil after a successful list.
func (s *Store) LoadError() error { return s.loadErr }

// Stats computes the collection summary.
func (s *Store) Stats() Stats {
	st := Stats{Total: len(s.collection)}

	var sum float64
	var graded int
	majors := map[string]struct{}{}
	for _, rec := range s.collection {
		if rec.GPA != nil {
			sum += *rec.GPA
			graded++
		}
		if rec.Major != nil && *rec.Major != "" {
			majors[*rec.Major] = struct{}{}
		}
		if rec.EnrollmentYear != nil && (st.EarliestYear == nil || *rec.EnrollmentYear < *st.EarliestYear) {
			st.EarliestYear = types.Ptr(*rec.EnrollmentYear)
		}
	}
	if graded > 0 {
		st.AverageGPA = sum / float64(graded)
	}
	st.MajorCount = len(majors)
	return st
}

// FilterOptions returns the distinct majors and years present in the
// collection.
func (s *Store) FilterOptions() FilterOptions {
	var opts FilterOptions
	seenMajor := map[string]bool{}
	seenYear := map[int]bool{}
	for _, rec := range s.collection {
		if rec.Major != nil && *rec.Major != "" && !seenMajor[*rec.Major] {
			seenMajor[*rec.Major] = true
			opts.Majors = append(opts.Majors, *rec.Major)
		}
		if rec.EnrollmentYear != nil && !seenYear[*rec.EnrollmentYear] {
			seenYear[*rec.EnrollmentYear] = true
			opts.Years = append(opts.Years, *rec.EnrollmentYear)
		}
	}
	slices.Sort(opts.Majors)
	slices.SortFunc(opts.Years, func(a, b int) int { return cmp.Compare(b, a) })
	return opts
}

func (s *Store) derive() {
	s.derived = filter.Compute(s.collection, s.criteria)
}
