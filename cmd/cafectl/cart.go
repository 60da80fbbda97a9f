package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/cart"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
)

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart",
	}

	var qty int
	add := &cobra.Command{
		Use:   "add <menu-item-id>",
		Short: "Add a menu item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if qty < 1 {
				return errors.New("--qty must be at least 1")
			}
			item, err := a.menuItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c := a.loadCart()
			if err := c.AddItem(item, qty); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Added %d × %s\n", qty, item.Name)
			printSummary(cmd, c.Summary())
			return nil
		},
	}
	add.Flags().IntVar(&qty, "qty", 1, "quantity to add")

	remove := &cobra.Command{
		Use:   "remove <menu-item-id>",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.loadCart()
			if err := c.RemoveItem(args[0]); err != nil {
				return err
			}
			printSummary(cmd, c.Summary())
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <menu-item-id> <quantity>",
		Short: "Replace the quantity of a line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			c := a.loadCart()
			if err := c.SetQuantity(args[0], n); err != nil {
				return err
			}
			printSummary(cmd, c.Summary())
			return nil
		},
	}

	var couponCode string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cart and its totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.loadCart()
			if couponCode != "" {
				if err := a.applyCoupon(cmd.Context(), c, couponCode); err != nil {
					printf(cmd.ErrOrStderr(), "%v\n", err)
				}
			}
			printSummary(cmd, c.Summary())
			return nil
		},
	}
	show.Flags().StringVar(&couponCode, "coupon", "", "preview totals with a coupon")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadCart().Clear(); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Cart cleared\n")
			return nil
		},
	}

	cmd.AddCommand(add, remove, set, show, clearCmd)
	return cmd
}

func newCouponCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coupon",
		Short: "Coupon helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <code>",
		Short: "Validate a coupon against the current cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.loadCart()
			if err := a.applyCoupon(cmd.Context(), c, args[0]); err != nil {
				return err
			}
			applied := c.Coupon()
			printf(cmd.OutOrStdout(), "Coupon %s is valid: %s\n", applied.Code, describeCoupon(applied))
			printSummary(cmd, c.Summary())
			return nil
		},
	})
	return cmd
}

// menuItem reads a menu entry from the API as a cart item.
func (a *app) menuItem(ctx context.Context, id string) (cart.Item, error) {
	var rec map[string]any
	err := a.call(ctx, func() (err error) {
		rec, err = a.client.GetRecord(ctx, "/menu/"+id)
		return err
	})
	if err != nil {
		return cart.Item{}, err
	}
	if available, ok := rec["isAvailable"].(bool); ok && !available {
		return cart.Item{}, fmt.Errorf("%s is not available right now", id)
	}
	price, err := decimalFrom(rec["price"])
	if err != nil {
		return cart.Item{}, fmt.Errorf("menu item %s has no usable price", id)
	}
	name, _ := rec["name"].(string)
	if name == "" {
		name = id
	}
	return cart.Item{ID: id, Name: name, Price: price}, nil
}

func (a *app) applyCoupon(ctx context.Context, c *cart.Cart, code string) error {
	var coupon *cart.Coupon
	err := a.call(ctx, func() (err error) {
		coupon, err = a.client.ValidateCoupon(ctx, code)
		return err
	})
	if err != nil {
		return err
	}
	return c.ApplyCoupon(*coupon)
}

func decimalFrom(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(t))
	}
	return decimal.Decimal{}, fmt.Errorf("not a price: %T", v)
}

func describeCoupon(c *cart.Coupon) string {
	var desc string
	switch c.DiscountType {
	case enums.DiscountTypePercentage:
		desc = c.DiscountValue.String() + "% off"
	default:
		desc = money(c.DiscountValue) + " off"
	}
	if c.MinOrderAmount.Valid {
		desc += ", minimum order " + money(c.MinOrderAmount.Decimal)
	}
	if c.MaxDiscountAmount.Valid {
		desc += ", at most " + money(c.MaxDiscountAmount.Decimal)
	}
	return desc
}

func printSummary(cmd *cobra.Command, s cart.Summary) {
	out := cmd.OutOrStdout()
	if len(s.Lines) == 0 {
		printf(out, "Cart is empty\n")
		return
	}
	for _, l := range s.Lines {
		printf(out, "%-24s %3d × %8s = %8s\n", l.Name+" ("+l.ItemID+")", l.Quantity, money(l.UnitPrice), money(l.LineTotal()))
	}
	printf(out, "Subtotal: %s\n", money(s.Subtotal))
	if s.CouponCode != "" {
		printf(out, "Discount (%s): -%s\n", s.CouponCode, money(s.Discount))
	}
	printf(out, "Total: %s\n", money(s.Total))
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
