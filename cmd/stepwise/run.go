package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/aretw0/stepwise/pkg/observability"
	"github.com/aretw0/stepwise/pkg/script"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <flow.yaml>",
	Short: "Run a flow interactively",
	Long: `Starts the flow in the terminal. Type n (or press enter) to go forward,
b to go back and q to quit. Delayed notes and auto-advance fire on their own.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := loadFlow(args[0])
		if err != nil {
			return err
		}
		logger, err := loggerFor(cmd)
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetBool("no-render")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		tui.PrintBanner(out, def.Name)
		return runFlow(ctx, def, cmd.InOrStdin(), tui.NewRenderer(out, raw),
			stepwise.WithLogger(logger),
			stepwise.WithLifecycleHooks(observability.LoggingHooks(logger)),
		)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("no-render", false, "Print markdown as is instead of rendering it")
}

// runFlow drives a controller from in. Timer callbacks are queued into the
// same loop as user input, so the controller is only touched from here.
func runFlow(ctx context.Context, def *script.Definition, in io.Reader, r *tui.Renderer, opts ...stepwise.Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan func(), 16)
	executor := func(task func()) {
		select {
		case tasks <- task:
		case <-ctx.Done():
		}
	}

	opts = append(opts, stepwise.WithExecutor(executor), stepwise.WithScheduleOnStart())
	ctrl, _, err := script.Start(def, opts...)
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	finished := false
	ctrl.OnExitForward(func() { finished = true })
	ctrl.OnExitBackward(func() { r.Notice("Already at the first step.") })

	show := func() {
		var s script.Snapshot
		ctrl.View(func(b *script.Board) { s = b.Snapshot() })
		r.Screen(s)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	show()
	for !finished {
		select {
		case <-ctx.Done():
			return nil
		case task := <-tasks:
			task()
			show()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "", "n", "next":
				ctrl.Next()
			case "b", "back":
				ctrl.Back()
			case "q", "quit", "exit":
				r.Notice("Bye!")
				return nil
			default:
				r.Notice(fmt.Sprintf("Unknown command %q: use n, b or q.", line))
				continue
			}
			if !finished {
				show()
			}
		}
	}
	r.Notice("Flow finished.")
	return nil
}
