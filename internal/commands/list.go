package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-roster/internal/filter"
	"github.com/aanand-mishra/student-roster/internal/render"
	"github.com/aanand-mishra/student-roster/internal/roster"
)

type listOptions struct {
	search string
	major  string
	year   string
	sort   string
}

func addList(topLevel *cobra.Command, ro *rootOptions) {
	lo := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "print the filtered, sorted roster",
		Example: `
roster list
roster list --search lee --sort gpa
roster list --major CS --year 2021
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ro.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			a.load()
			a.engine.Update(roster.SearchMsg{Text: lo.search})
			a.engine.Update(roster.MajorFilterMsg{Major: lo.major})
			a.engine.Update(roster.YearFilterMsg{Year: lo.year})
			a.engine.Update(roster.SortMsg{Key: filter.ParseSortKey(lo.sort)})

			vm := a.engine.View()
			if err := render.Students(cmd.OutOrStdout(), vm); err != nil {
				return err
			}
			if vm.Error != "" {
				return errors.New(vm.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lo.search, "search", "", "case-insensitive match on name, email or phone")
	cmd.Flags().StringVar(&lo.major, "major", "", "only students with this major")
	cmd.Flags().StringVar(&lo.year, "year", "", "only students enrolled in this year")
	cmd.Flags().StringVar(&lo.sort, "sort", string(filter.SortName), "sort by name, gpa or year")

	topLevel.AddCommand(cmd)
}
