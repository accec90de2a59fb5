package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-roster/internal/render"
)

func addStats(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "print roster totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ro.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			a.load()
			vm := a.engine.View()
			if vm.Error != "" {
				return errors.New(vm.Error)
			}
			return render.Stats(cmd.OutOrStdout(), vm.Stats)
		},
	}

	topLevel.AddCommand(cmd)
}
