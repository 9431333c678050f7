// Package cli implements the ebet command line client: signup, signin and
// whoami against the server's gRPC endpoint.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/ebet/internal/client/client"
	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/spf13/cobra"
)

// TokenEnv is read by whoami when --token is not given.
const TokenEnv = "EBET_TOKEN"

// AuthClient is the subset of client.GRPCClient the commands use.
type AuthClient interface {
	SignUp(ctx context.Context, nickname, email, password string) (*client.Session, error)
	SignIn(ctx context.Context, nickname, password string) (*client.Session, error)
	WhoAmI(ctx context.Context, token string) (*client.User, error)
	Close() error
}

// Dialer opens a client for addr.
type Dialer func(addr string) (AuthClient, error)

func dialGRPC(addr string) (AuthClient, error) {
	return client.NewGRPCClient(addr)
}

type rootConfig struct {
	addr string
	dial Dialer
	in   *bufio.Reader
}

// NewRootCmd creates the root command. A nil dial uses gRPC.
func NewRootCmd(dial Dialer) *cobra.Command {
	if dial == nil {
		dial = dialGRPC
	}
	cfg := &rootConfig{dial: dial}

	cmd := &cobra.Command{
		Use:           "ebet",
		Short:         "eBet account client",
		Long:          `Create an eBet account, sign in and inspect the account behind a token.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cfg.in = bufio.NewReader(cmd.InOrStdin())
		},
	}

	cmd.PersistentFlags().StringVar(&cfg.addr, "addr", "localhost:50051", "server gRPC address")

	cmd.AddCommand(newSignUpCmd(cfg))
	cmd.AddCommand(newSignInCmd(cfg))
	cmd.AddCommand(newWhoAmICmd(cfg))

	return cmd
}

// Execute runs the root command and prints any error to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(nil)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func (cfg *rootConfig) withClient(fn func(AuthClient) error) error {
	c, err := cfg.dial(cfg.addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.addr, err)
	}
	defer c.Close()
	return fn(c)
}

// promptIfEmpty asks for a value not given as a flag.
func (cfg *rootConfig) promptIfEmpty(cmd *cobra.Command, value *string, prompt string) error {
	if *value != "" {
		return nil
	}
	v, err := GetSimpleText(cfg.in, prompt, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if v == "" {
		return fmt.Errorf("%s is required", prompt)
	}
	*value = v
	return nil
}

// readSecret takes the password from the terminal, wiping the buffer after
// it has been copied into a string.
func readSecret(cmd *cobra.Command) (string, error) {
	pw, err := GetPassword(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(pw)
	if len(pw) == 0 {
		return "", errors.New("password is required")
	}
	return string(pw), nil
}

func printSession(cmd *cobra.Command, s *client.Session) {
	printUser(cmd, &s.User)
	cmd.Println("token:   ", s.Token)
}

func printUser(cmd *cobra.Command, u *client.User) {
	cmd.Println("id:      ", u.ID)
	cmd.Println("nickname:", u.Nickname)
	cmd.Println("email:   ", u.Email)
}

func tokenFromEnv() string {
	return os.Getenv(TokenEnv)
}
