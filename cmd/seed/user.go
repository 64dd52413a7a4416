package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dom/personal-services-api/internal/config"
	"github.com/dom/personal-services-api/internal/domain"
	"github.com/dom/personal-services-api/internal/repository/postgres"
	"github.com/dom/personal-services-api/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newUserCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(username) == "" {
				return domain.ErrUsernameEmpty
			}
			if !cmd.Flags().Changed("password") {
				pw, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = pw
			}
			if password == "" {
				return domain.ErrPasswordEmpty
			}
			return createUser(cmd, username, password)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username for the new account")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted for when omitted)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func createUser(cmd *cobra.Command, username, password string) error {
	ctx := cmd.Context()
	cfg := config.FromEnv()

	db, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer postgres.Close(db)

	repos := postgres.NewRepositories(db)
	auth, err := service.NewAuthService(repos.User, cfg.BcryptCost)
	if err != nil {
		return err
	}

	user, err := auth.Provision(ctx, service.ProvisionInput{Username: username, Password: password})
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return fmt.Errorf("user %q already exists", username)
		}
		return err
	}

	log.Info().Str("user_id", user.ID.String()).Str("username", user.Username).Msg("user created")
	fmt.Fprintln(cmd.OutOrStdout(), user.ID.String())
	return nil
}

// readPassword prompts without echo on a terminal and otherwise reads one
// line, so passwords can be piped in.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
