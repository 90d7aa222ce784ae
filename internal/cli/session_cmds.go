package cli

import (
	"errors"
	"strings"

	"github.com/jrsteele09/rxadmin/auth"
	"github.com/spf13/cobra"
)

func (c *cli) loginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: `Sign in to the admin API. Missing credentials are prompted for.
The session is stored in the data folder and reused by later commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if strings.TrimSpace(email) == "" {
				if email, err = c.opts.Prompter.Input("Email", false); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = c.opts.Prompter.Input("Password", true); err != nil {
					return err
				}
			}

			resp, err := c.app.Login(cmd.Context(), email, password)
			if err != nil {
				return errors.New(auth.FriendlyLoginError(err))
			}
			c.out.message("Logged in as %s", resp.User.DisplayName())
			return c.out.print(userView(*resp.User))
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	return cmd
}

func (c *cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wasAuthenticated := c.app.Store.IsAuthenticated()
			c.app.Logout(cmd.Context())
			if wasAuthenticated {
				c.out.message("Logged out")
			} else {
				c.out.message("Not logged in")
			}
			return nil
		},
	}
}

func (c *cli) statusCommand() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show who is signed in and when the session runs out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.app.Store.IsAuthenticated() {
				if _, err := c.session(cmd, ""); err != nil {
					return err
				}
			}
			st := c.app.Status()
			if verify && st.Authenticated {
				valid := c.app.Auth.Validate(cmd.Context())
				st.Verified = &valid
			}
			return c.out.print(statusView(st))
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "ask the server whether the access token is still accepted")
	return cmd
}

func (c *cli) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard statistics for your role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.session(cmd, "")
			if err != nil {
				return err
			}
			stats, err := c.app.Dashboard.Stats(cmd.Context(), user.Role)
			if err != nil {
				return c.apiError(err)
			}
			return c.out.print(statsView(*stats))
		},
	}
}
