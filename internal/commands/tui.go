package commands

import (
	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-roster/internal/ui"
)

func addTUI(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "open the interactive roster",
		Example: `
roster tui
roster tui --config config/local.yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ro.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return ui.Run(a.engine)
		},
	}

	topLevel.AddCommand(cmd)
}
