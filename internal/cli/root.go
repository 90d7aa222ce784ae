// Package cli is the rxadmin command line: every command shares one app.App for the
// duration of the process.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jrsteele09/rxadmin/gateway"
	"github.com/jrsteele09/rxadmin/internal/app"
	"github.com/jrsteele09/rxadmin/internal/config"
	apperrors "github.com/jrsteele09/rxadmin/internal/errors"
	"github.com/jrsteele09/rxadmin/users"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// skipAppAnnotation marks commands that run without a session store or gateway.
const skipAppAnnotation = "rxadmin/skip-app"

type Options struct {
	Config     config.Config
	AppOptions []app.Option
	Prompter   Prompter
	// Console runs the interactive console; tests replace it.
	Console func(ctx context.Context, a *app.App) error
	Version string
}

type cli struct {
	opts Options
	app  *app.App
	out  printer

	output   string
	apiURL   string
	logLevel string
}

// flagConfig lets --api-url win over RXADMIN_API_URL.
type flagConfig struct {
	config.Config
	apiURL string
}

func (c flagConfig) GetAPIBaseURL() string {
	if c.apiURL != "" {
		return c.apiURL
	}
	return c.Config.GetAPIBaseURL()
}

func newRoot(opts Options) (*cobra.Command, *cli) {
	if opts.Config == nil {
		opts.Config = config.New()
	}
	if opts.Prompter == nil {
		opts.Prompter = huhPrompter{}
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	c := &cli{opts: opts}

	root := &cobra.Command{
		Use:   "rxadmin",
		Short: "Pharmacy admin console",
		Long: `rxadmin signs in to the pharmacy admin API and manages companies, orders and
integration credentials from the terminal. The session is kept between runs and ends
after a period without activity.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.teardown,
	}

	root.PersistentFlags().StringVarP(&c.output, "output", "o", OutputTable, "output format: table, json or yaml")
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "admin API base URL (default $RXADMIN_API_URL)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", opts.Config.GetLogLevel(), "log level: trace, debug, info, warn, error")

	root.AddCommand(
		c.loginCommand(),
		c.logoutCommand(),
		c.statusCommand(),
		c.dashboardCommand(),
		c.companiesCommand(),
		c.ordersCommand(),
		c.consoleCommand(),
		c.versionCommand(),
	)
	return root, c
}

// Run executes one command line. The app is closed afterwards even when the command fails.
func Run(ctx context.Context, opts Options, args []string, out io.Writer) error {
	root, c := newRoot(opts)
	defer c.teardown(root, args)

	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	return root.ExecuteContext(ctx)
}

// Execute runs os.Args and prints any error to stderr.
func Execute(ctx context.Context, opts Options) error {
	err := Run(ctx, opts, os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := validOutput(c.output); err != nil {
		return err
	}
	c.out = printer{out: cmd.OutOrStdout(), format: c.output}

	level, err := zerolog.ParseLevel(c.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if _, skip := cmd.Annotations[skipAppAnnotation]; skip {
		return nil
	}
	a, err := app.New(flagConfig{Config: c.opts.Config, apiURL: c.apiURL}, c.opts.AppOptions...)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	c.app = a
	return nil
}

func (c *cli) teardown(_ *cobra.Command, _ []string) error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// session resumes the persisted session, requiring role when it is not empty.
func (c *cli) session(cmd *cobra.Command, role users.Role) (*users.User, error) {
	user, err := c.app.Resume(cmd.Context())
	switch {
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		return nil, errors.New("not logged in, run `rxadmin login` first")
	case errors.Is(err, apperrors.ErrSessionExpired):
		return nil, fmt.Errorf("logged out after %s of inactivity, run `rxadmin login` again", c.app.Monitor.Timeout())
	case err != nil:
		return nil, err
	}
	if role != "" && user.Role != role {
		return nil, fmt.Errorf("this command needs the %s role, you are signed in as %s", role, user.Role)
	}
	return user, nil
}

// apiError turns gateway failures into messages for the terminal.
func (c *cli) apiError(err error) error {
	if err == nil {
		return nil
	}
	if gateway.IsForbidden(err) || errors.Is(err, gateway.ErrRefreshFailed) || !c.app.Store.IsAuthenticated() {
		// The session-expired listener runs asynchronously and the process may exit first.
		c.app.Logout(context.Background())
		return errors.New("your session has expired, run `rxadmin login` again")
	}
	if apiErr, ok := gateway.AsAPIError(err); ok && apiErr.Message != "" {
		return fmt.Errorf("%s (HTTP %d)", apiErr.Message, apiErr.StatusCode)
	}
	return err
}

func noApp(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[skipAppAnnotation] = "true"
	return cmd
}
