package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steltz/stepper/internal/cli"
)

var runFlags = map[string]string{
	"transition.duration": "transition",
	"sink.kind":           "sink",
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [catalog]",
	Short: "Answer the survey in the terminal",
	Long: `Starts a survey session in the terminal. On a TTY the questions are shown as
interactive prompts; otherwise (or with --plain) one line is read per answer.

While answering, ":back" returns to the previous question and ":quit" leaves.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && !cmd.Flags().Changed("catalog") {
			settings.Set("catalog", args[0])
		}
		cfg, err := loadConfig(cmd, runFlags)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stack, err := cli.NewStack(ctx, cfg)
		if err != nil {
			return err
		}

		plain, _ := cmd.Flags().GetBool("plain")
		quiet, _ := cmd.Flags().GetBool("quiet")
		runErr := cli.RunSurvey(ctx, stack, cli.RunOptions{
			In:    cmd.InOrStdin(),
			Out:   cmd.OutOrStdout(),
			Plain: plain,
			Quiet: quiet,
		})

		// Deliveries run detached from ctx; give them their timeout to finish.
		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Sink.Timeout)
		defer cancel()
		if err := stack.Close(drainCtx); err != nil && runErr == nil {
			return err
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("plain", false, "Use line-oriented input even on a terminal")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
	runCmd.Flags().Duration("transition", 0, "How long a step change stays visible (default 300ms)")
	runCmd.Flags().String("sink", "", "Completion sink: log, memory, file, redis, sql")

	// Make 'run' the default if no command is provided.
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
