package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
)

func newLoginCmd(deps Dependencies) *cobra.Command {
	var printToken bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a browser, wait for the login to finish and store the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := deps.Session(cmd.Context())
			if err != nil {
				return err
			}

			cred, err := session.Login(cmd.Context())
			if err != nil {
				if errors.Is(err, model.ErrLoginTimeout) {
					return fmt.Errorf("token not found, complete login/OTP in the opened browser and retry: %w", err)
				}
				return err
			}

			if printToken {
				fmt.Fprintln(cmd.OutOrStdout(), cred.Value)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Login successful and token acquired (%s).\n", cred.Redacted())
			return nil
		},
	}

	cmd.Flags().BoolVar(&printToken, "print", false, "print the raw token to stdout")
	return cmd
}

func newTokenCmd(deps Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored token",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [token]",
		Short: "Store a token obtained elsewhere (prompts when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = strings.TrimSpace(args[0])
			} else {
				v, err := deps.Prompter.PromptSecret("Pluxee token")
				if err != nil {
					return interrupted(cmd, err)
				}
				token = v
			}
			if token == "" {
				return errors.New("token must not be empty")
			}

			session, err := deps.Session(cmd.Context())
			if err != nil {
				return err
			}

			if err := session.SetToken(cmd.Context(), token); err != nil {
				var perr *model.PersistenceError
				if !errors.As(err, &perr) {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: token kept for this process only: %v\n", perr)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token stored (%s).\n", model.Redact(token))
			return nil
		},
	})

	return cmd
}

func newStatusCmd(deps Dependencies) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a token and area hash are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := deps.Session(cmd.Context())
			if err != nil {
				return err
			}
			status := session.Status(cmd.Context())

			var data []byte
			switch output {
			case "yaml":
				data, err = yaml.Marshal(status)
			case "json":
				data, err = json.MarshalIndent(status, "", "  ")
				data = append(data, '\n')
			default:
				return fmt.Errorf("unsupported output format %q (use yaml or json)", output)
			}
			if err != nil {
				return fmt.Errorf("encode status: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml or json")
	return cmd
}

func newLogoutCmd(deps Dependencies) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token and area hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes && !deps.Prompter.PromptForConfirmation("Clear the stored Pluxee session") {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}

			session, err := deps.Session(cmd.Context())
			if err != nil {
				return err
			}
			if err := session.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Session cleared. PLUXEE_TOKEN and PLUXEE_AREA_HASH, if set, still apply.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
