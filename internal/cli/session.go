package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-topup-portal/internal/app"
	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/http/handlers"
)

var errNotLoggedIn = errors.New("not logged in, run 'topup login' first")

func newLoginCmd(o *options) *cobra.Command {
	var (
		username string
		commerce int64
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a session against the top-up backend",
		Long: `Open a session against the top-up backend.

The password is read from the terminal without echo, or from the first line
of stdin when it is not a terminal. Username and commerce default to
TOPUP_USERNAME and TOPUP_COMMERCE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				username = o.cfg.Backend.Username
			}
			if commerce == 0 {
				commerce = o.cfg.Backend.Commerce
			}
			if username == "" || commerce == 0 {
				return errors.New("username and commerce are required (flags or TOPUP_USERNAME/TOPUP_COMMERCE)")
			}
			password, err := readSecret(cmd, "Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if password == "" {
				return errors.New("no password provided")
			}

			return o.run(cmd, func(ctx context.Context, a *app.App) error {
				s, err := a.Session.Login(ctx, domain.LoginCredentials{
					Username: username,
					Password: password,
					Commerce: commerce,
				})
				if err != nil {
					return err
				}
				view := handlers.SessionView{Authenticated: true, Type: s.Type, Expiration: s.Expiration}
				return o.printer(cmd.OutOrStdout()).emit(view, func(w io.Writer) {
					fmt.Fprintf(w, "%s as %s\n", okText("Logged in"), username)
					if s.Expiration != "" {
						fmt.Fprintf(w, "Session expires %s\n", s.Expiration)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "backend username (default $TOPUP_USERNAME)")
	cmd.Flags().Int64Var(&commerce, "commerce", 0, "commerce id (default $TOPUP_COMMERCE)")
	return cmd
}

func newLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Session.Logout(ctx, ""); err != nil {
					return err
				}
				return o.printer(cmd.OutOrStdout()).emit(handlers.SessionView{}, func(w io.Writer) {
					fmt.Fprintln(w, "Logged out")
				})
			})
		},
	}
}

func newSessionCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, a *app.App) error {
				view := handlers.SessionView{}
				if a.Session.IsTokenValid(ctx) {
					s := a.Session.State(ctx)
					view = handlers.SessionView{Authenticated: true, Type: s.Type, Expiration: s.Expiration}
				}
				return o.printer(cmd.OutOrStdout()).emit(view, func(w io.Writer) {
					if !view.Authenticated {
						fmt.Fprintln(w, warnText("Not logged in"))
						return
					}
					fmt.Fprintf(w, "%s (%s), expires %s\n", okText("Logged in"), view.Type, view.Expiration)
				})
			})
		},
	}
}

func requireSession(ctx context.Context, a *app.App) error {
	if !a.Session.IsTokenValid(ctx) {
		return errNotLoggedIn
	}
	return nil
}
