package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-entityform/pkg/openapi"
)

func newLintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint [documents...]",
		Short: "Check OpenAPI documents for unsupported form extensions",
		Long: `lint reports x-entityform, x-entityform-order and x-relationships
extensions that the form builder ignores or cannot read. It defaults to the
configured schema location.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				paths = []string{a.cfg.Schema}
			}
			found := 0
			for _, path := range paths {
				src, err := openapi.SourceFromLocation(path)
				if err != nil {
					return err
				}
				doc, err := openapi.Load(cmd.Context(), src, openapi.WithHTTPFallback(a.cfg.API.Timeout))
				if err != nil {
					return fmt.Errorf("lint %s: %w", path, err)
				}
				for _, v := range doc.Lint() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, v)
					found++
				}
			}
			if found > 0 {
				return fmt.Errorf("%d extension problem(s) found", found)
			}
			return nil
		},
	}
}
