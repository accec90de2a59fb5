// main is the roster client.
//
//	roster tui --config=config/local.yaml
//	CONFIG_PATH=config/local.yaml roster list --sort gpa
//
// Without a config file every setting comes from the environment and its
// defaults (see internal/config).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/student-roster/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.New().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
