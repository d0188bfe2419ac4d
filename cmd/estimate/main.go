// Command estimate runs the estimation pipeline against local files without the API
// server and prints the analysis with a cost cascade preview.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "estimate",
		Short:         "Offline project estimation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newCascadeCmd())
	return root
}

var (
	heading = color.New(color.FgCyan, color.Bold)
	label   = color.New(color.Bold)
	money   = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
)

func printHeading(format string, args ...interface{}) {
	fmt.Println()
	heading.Printf(format+"\n", args...)
}
