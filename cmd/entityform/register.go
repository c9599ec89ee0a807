package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-entityform/pkg/account"
)

func newRegisterCmd(a *app) *cobra.Command {
	var (
		username string
		email    string
		langKey  string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account on the REST backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.httpClient()
			if err != nil {
				return err
			}
			if langKey == "" {
				langKey = a.cfg.LangKey
			}
			svc := account.NewService(client,
				account.WithNotifier(newNotifier(a.stderr)),
				account.WithLogger(a.logger.Named("account")),
				account.WithLangKey(langKey),
			)
			prompts, err := a.prompts(0)
			if err != nil {
				return err
			}

			prefill := map[string]any{}
			if username != "" {
				prefill["username"] = username
			}
			if email != "" {
				prefill["email"] = email
			}
			values, err := prompts.Register(cmd.Context(), svc, prefill)
			if err != nil {
				return err
			}
			delete(values, "firstPassword")
			delete(values, "secondPassword")
			summary, err := prompts.Summary(values)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(summary)
			return err
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "prefill the username")
	cmd.Flags().StringVar(&email, "email", "", "prefill the email")
	cmd.Flags().StringVar(&langKey, "lang-key", "", "language key sent with the registration (default from config)")
	return cmd
}
