package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newSignUpCmd(cfg *rootConfig) *cobra.Command {
	var nickname, email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and print its first token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.promptIfEmpty(cmd, &nickname, "Nickname"); err != nil {
				return err
			}
			if err := cfg.promptIfEmpty(cmd, &email, "Email"); err != nil {
				return err
			}
			password, err := readSecret(cmd)
			if err != nil {
				return err
			}

			return cfg.withClient(func(c AuthClient) error {
				s, err := c.SignUp(cmd.Context(), nickname, email, password)
				if err != nil {
					return err
				}
				printSession(cmd, s)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "account nickname")
	cmd.Flags().StringVar(&email, "email", "", "account email")

	return cmd
}

func newSignInCmd(cfg *rootConfig) *cobra.Command {
	var nickname string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with a nickname or email and print a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.promptIfEmpty(cmd, &nickname, "Nickname or email"); err != nil {
				return err
			}
			password, err := readSecret(cmd)
			if err != nil {
				return err
			}

			return cfg.withClient(func(c AuthClient) error {
				s, err := c.SignIn(cmd.Context(), nickname, password)
				if err != nil {
					return err
				}
				printSession(cmd, s)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "nickname or email")

	return cmd
}

func newWhoAmICmd(cfg *rootConfig) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the account a token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				token = tokenFromEnv()
			}
			if token == "" {
				return errors.New("no token: pass --token or set " + TokenEnv)
			}

			return cfg.withClient(func(c AuthClient) error {
				u, err := c.WhoAmI(cmd.Context(), token)
				if err != nil {
					return err
				}
				printUser(cmd, u)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "access token (default $"+TokenEnv+")")

	return cmd
}
