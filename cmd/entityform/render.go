package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-entityform/pkg/orchestrator"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		renderer string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "render <entity> [id]",
		Short: "Render the create form, or the edit form of one entity",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			orch, err := a.orchestrator(ctx, logNavigator(a.logger))
			if err != nil {
				return err
			}
			req := orchestrator.Request{Entity: args[0], Renderer: renderer}
			if len(args) == 2 {
				req.ID = args[1]
			}
			out, err := orch.Generate(ctx, req)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&renderer, "renderer", "r", "html", "renderer to use (html, json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}
