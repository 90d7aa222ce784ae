package cli

import (
	"fmt"

	"github.com/jrsteele09/rxadmin/users"
	"github.com/spf13/cobra"
)

func (c *cli) ordersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Look up, refund and cancel orders",
	}
	cmd.AddCommand(
		c.ordersListCommand(),
		c.ordersGetCommand(),
		c.ordersRefundCommand(),
		c.ordersCancelCommand(),
	)
	return cmd
}

func (c *cli) ordersListCommand() *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the orders of your company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.session(cmd, "")
			if err != nil {
				return err
			}
			if companyID == "" {
				companyID = user.Tenant()
			}
			if companyID == "" {
				return fmt.Errorf("--company is required for a %s", users.RoleSuperAdmin)
			}
			list, err := c.app.Tenants.Orders(cmd.Context(), companyID)
			if err != nil {
				return c.apiError(err)
			}
			return c.out.print(ordersView(list))
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company ID (defaults to your own company)")
	return cmd
}

func (c *cli) ordersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <order-id>",
		Short: "Show an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(cmd, ""); err != nil {
				return err
			}
			order, err := c.app.Orders.Get(cmd.Context(), args[0])
			if err != nil {
				return c.apiError(err)
			}
			return c.out.print(orderView(*order))
		},
	}
}

func (c *cli) ordersRefundCommand() *cobra.Command {
	var (
		amount float64
		reason string
	)

	cmd := &cobra.Command{
		Use:   "refund <order-id>",
		Short: "Refund an order, in full unless --amount is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(cmd, ""); err != nil {
				return err
			}
			var partial *float64
			if cmd.Flags().Changed("amount") {
				partial = &amount
			}
			order, err := c.app.Orders.Refund(cmd.Context(), args[0], partial, reason)
			if err != nil {
				return c.apiError(err)
			}
			c.out.message("Refunded %s of %s", money(order.RefundedAmount), money(order.Amount))
			return c.out.print(orderView(*order))
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "amount to refund")
	cmd.Flags().StringVar(&reason, "reason", "", "reason shown on the refund")
	return cmd
}

func (c *cli) ordersCancelCommand() *cobra.Command {
	var (
		reason string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel an order that has not shipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(cmd, ""); err != nil {
				return err
			}
			if !yes {
				ok, err := c.opts.Prompter.Confirm(fmt.Sprintf("Cancel order %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					c.out.message("Left unchanged")
					return nil
				}
			}
			order, err := c.app.Orders.Cancel(cmd.Context(), args[0], reason)
			if err != nil {
				return c.apiError(err)
			}
			c.out.message("Cancelled %s", order.ID)
			return c.out.print(orderView(*order))
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason for the cancellation")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}
