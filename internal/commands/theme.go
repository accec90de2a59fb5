package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func addTheme(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "theme [toggle]",
		Short: "show or toggle the saved color theme",
		Example: `
roster theme
roster theme toggle
`,
		ValidArgs: []string{"toggle"},
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 || (len(args) == 1 && args[0] != "toggle") {
				return fmt.Errorf("unexpected arguments %q, want nothing or \"toggle\"", args)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ro.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			current := a.themes.Current()
			if len(args) == 1 {
				if current, err = a.themes.Toggle(); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), current)
			return err
		},
	}

	topLevel.AddCommand(cmd)
}
