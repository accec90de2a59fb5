// Package render prints roster view models as plain terminal tables.
package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/aanand-mishra/student-roster/internal/roster"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

// Students writes the rows of vm, the inline error, or the empty-state text.
func Students(w io.Writer, vm roster.ViewModel) error {
	if vm.Error != "" {
		_, err := fmt.Fprintln(w, red(vm.Error))
		return err
	}
	if len(vm.Rows) == 0 {
		_, err := fmt.Fprintln(w, faint(vm.Empty))
		return err
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	tbl.AddRow(bold("ID"), bold("Name"), bold("Email"), bold("Phone"), bold("Major"), bold("GPA"), bold("Year"))
	for _, r := range vm.Rows {
		tbl.AddRow(r.ID, r.Name, r.Email, r.Phone, r.Major, r.GPA, r.Year)
	}
	_, err := fmt.Fprintln(w, tbl)
	return err
}

// Stats writes the summary block.
func Stats(w io.Writer, s roster.StatsView) error {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Total students"), s.Total)
	tbl.AddRow(bold("Average GPA"), s.AverageGPA)
	tbl.AddRow(bold("Majors"), s.Majors)
	tbl.AddRow(bold("Earliest year"), s.EarliestYear)
	_, err := fmt.Fprintln(w, tbl)
	return err
}
