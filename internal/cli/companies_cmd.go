package cli

import (
	"fmt"

	"github.com/jrsteele09/rxadmin/internal/utils"
	"github.com/jrsteele09/rxadmin/tenants"
	"github.com/jrsteele09/rxadmin/users"
	"github.com/spf13/cobra"
)

func (c *cli) companiesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "companies",
		Aliases: []string{"company", "tenants"},
		Short:   "Manage pharmacy companies (super admin)",
	}
	cmd.AddCommand(
		c.companiesListCommand(),
		c.companiesGetCommand(),
		c.companiesCreateCommand(),
		c.companiesUpdateCommand(),
		c.companiesDeleteCommand(),
		c.companiesOrdersCommand(),
		c.companiesIntegrationsCommand(),
	)
	return cmd
}

func (c *cli) companiesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.session(cmd, users.RoleSuperAdmin); err != nil {
				return err
			}
			list, err := c.app.Tenants.List(cmd.Context())
			if err != nil {
				return c.apiError(err)
			}
			return c.out.print(tenantsView(list))
		},
	}
}

func (c *cli) companiesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <company-id>",
		Short: "Show a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(cmd, users.RoleSuperAdmin); err != nil {
				return err
			}
			tenant, err := c.app.Tenants.Get(cmd.Context(), args[0])
			if err != nil {
				return c.apiError(err)
			}
			return c.out.print(tenantView(*tenant))
		},
	}
}

func (c *cli) companiesCreateCommand() *cobra.Command {
	var req tenants.CreateRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a company and its first company admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.session(cmd, users.RoleSuperAdmin); err != nil {
				return err
			}
			if req.Owner.Password == "" {
				password, err := c.opts.Prompter.Input("Password for "+req.Owner.Email, true)
				if err != nil {
					return err
				}
				req.Owner.Password = password
			}
			if err := users.ValidatePasswordStrength(req.Owner.Password); err != nil {
				return err
			}

			tenant, err := c.app.Tenants.Create(cmd.Context(), req)
			if err != nil {
				return c.apiError(err)
			}
			c.out.message("Created %s (%s)", tenant.Name, tenant.ID)
			return c.out.print(tenantView(*tenant))
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "company name")
	cmd.Flags().StringVar(&req.Owner.Name, "owner-name", "", "name of the company admin")
	cmd.Flags().StringVar(&req.Owner.Email, "owner-email", "", "email of the company admin")
	cmd.Flags().StringVar(&req.Owner.Password, "owner-password", "", "initial password of the company admin (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("owner-name")
	_ = cmd.MarkFlagRequired("owner-email")
	return cmd
}

func (c *cli) companiesUpdateCommand() *cobra.Command {
	fields := map[string]*string{
		"name":            new(string),
		"status":          new(string),
		"email":           new(string),
		"phone":           new(string),
		"website":         new(string),
		"address":         new(string),
		"city":            new(string),
		"state":           new(string),
		"zip":             new(string),
		"logo":            new(string),
		"primary-color":   new(string),
		"secondary-color": new(string),
	}

	cmd := &cobra.Command{
		Use:   "update <company-id>",
		Short: "Change company details; only the flags given are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(cmd, users.RoleSuperAdmin); err != nil {
				return err
			}

			changed := func(name string) *string {
				if !cmd.Flags().Changed(name) {
					return nil
				}
				return utils.Ptr(*fields[name])
			}
			update := tenants.Update{
				Name:           changed("name"),
				Email:          changed("email"),
				Phone:          changed("phone"),
				Website:        changed("website"),
				Address:        changed("address"),
				City:           changed("city"),
				State:          changed("state"),
				ZipCode:        changed("zip"),
				Logo:           changed("logo"),
				PrimaryColor:   changed("primary-color"),
				SecondaryColor: changed("secondary-color"),
			}
			if status := changed("status"); status != nil {
				update.Status = utils.Ptr(tenants.Status(*status))
			}
			if update.Empty() {
				return fmt.Errorf("nothing to update, pass at least one field flag")
			}

			tenant, err := c.app.Tenants.Update(cmd.Context(), args[0], update)
			if err != nil {
				return c.apiError(err)
			}
			c.out.message("Updated %s", tenant.Name)
			return c.out.print(tenantView(*tenant))
		},
	}

	for name, value := range fields {
		cmd.Flags().StringVar(value, name, "", "new "+name)
	}
	return cmd
}

func (c *cli) companiesDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <company-id>",
		Short: "Delete a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(cmd, users.RoleSuperAdmin); err != nil {
				return err
			}
			if !yes {
				ok, err := c.opts.Prompter.Confirm(fmt.Sprintf("Delete company %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					c.out.message("Cancelled")
					return nil
				}
			}
			if err := c.app.Tenants.Delete(cmd.Context(), args[0]); err != nil {
				return c.apiError(err)
			}
			c.out.message("Deleted %s", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}

func (c *cli) companiesOrdersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "orders <company-id>",
		Short: "List a company's orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(cmd, users.RoleSuperAdmin); err != nil {
				return err
			}
			list, err := c.app.Tenants.Orders(cmd.Context(), args[0])
			if err != nil {
				return c.apiError(err)
			}
			return c.out.print(ordersView(list))
		},
	}
}

var integrationFlags = []string{
	"curexa-client-key", "curexa-client-secret",
	"mdi-client-id", "mdi-client-secret",
	"stripe-publishable-key", "stripe-secret-key",
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func (c *cli) companiesIntegrationsCommand() *cobra.Command {
	var cfg tenants.IntegrationConfig

	cmd := &cobra.Command{
		Use:   "integrations <company-id>",
		Short: "Show or replace the Curexa, MDI and Stripe credentials",
		Long: `Without flags the current credentials are shown with their secrets masked.
With any flag the full set is replaced: credentials not given are cleared.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(cmd, users.RoleSuperAdmin); err != nil {
				return err
			}

			if !anyChanged(cmd, integrationFlags...) {
				tenant, err := c.app.Tenants.Get(cmd.Context(), args[0])
				if err != nil {
					return c.apiError(err)
				}
				var current tenants.IntegrationConfig
				if tenant.APIKeys != nil {
					current = tenant.APIKeys.Redacted()
				}
				return c.out.print(integrationsView(current))
			}

			tenant, err := c.app.Tenants.SetIntegrationConfig(cmd.Context(), args[0], cfg)
			if err != nil {
				return c.apiError(err)
			}
			c.out.message("Updated integrations for %s", tenant.Name)
			var saved tenants.IntegrationConfig
			if tenant.APIKeys != nil {
				saved = tenant.APIKeys.Redacted()
			}
			return c.out.print(integrationsView(saved))
		},
	}

	cmd.Flags().StringVar(&cfg.Curexa.ClientKey, "curexa-client-key", "", "Curexa client key")
	cmd.Flags().StringVar(&cfg.Curexa.ClientSecret, "curexa-client-secret", "", "Curexa client secret")
	cmd.Flags().StringVar(&cfg.MDI.ClientID, "mdi-client-id", "", "MDI client ID")
	cmd.Flags().StringVar(&cfg.MDI.ClientSecret, "mdi-client-secret", "", "MDI client secret")
	cmd.Flags().StringVar(&cfg.Stripe.PublishableKey, "stripe-publishable-key", "", "Stripe publishable key")
	cmd.Flags().StringVar(&cfg.Stripe.SecretKey, "stripe-secret-key", "", "Stripe secret key")
	return cmd
}
