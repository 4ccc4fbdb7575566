// Command ifocus computes focus metrics and generates heatmaps and AI
// insights from recorded focus samples.
//
// Usage:
//
//	ifocus run [--user ID] [--students-only | --assignments-only]
//	ifocus report --assignment ID [--student ID] [--json]
//	ifocus heatmap --assignment ID [--student ID]
//	ifocus migrate
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/internal/cli"
)

// set via ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(apperrors.ExitCodeOf(err))
	}
}
