package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-entityform/pkg/orchestrator"
	"github.com/goliatone/go-entityform/pkg/renderers/tui"
)

func newEditCmd(a *app) *cobra.Command {
	var maxAttempts int
	cmd := &cobra.Command{
		Use:   "edit <entity> [id]",
		Short: "Create an entity, or edit an existing one, through terminal prompts",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			orch, err := a.orchestrator(ctx, logNavigator(a.logger))
			if err != nil {
				return err
			}
			req := orchestrator.Request{Entity: args[0]}
			if len(args) == 2 {
				req.ID = args[1]
			}
			s, err := orch.Open(ctx, req)
			if err != nil {
				return err
			}
			defer s.Unmount()

			prompts, err := a.prompts(maxAttempts)
			if err != nil {
				return err
			}
			if err := prompts.Edit(ctx, s); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					a.logger.Info("edit aborted")
				}
				return err
			}
			summary, err := prompts.Summary(s.Entity())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(summary)
			return err
		},
	}
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "give up after this many failed saves (0 asks every time)")
	return cmd
}

// prompts builds the terminal renderer on the process streams.
func (a *app) prompts(maxAttempts int) (*tui.Renderer, error) {
	return tui.New(
		tui.WithStdio(tui.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}),
		tui.WithOutputFormat(tui.OutputFormat(a.cfg.Output)),
		tui.WithTheme(tui.Theme{ErrorPrefix: "! "}),
		tui.WithMaxAttempts(maxAttempts),
		tui.WithLogger(a.logger.Named("tui")),
	)
}
