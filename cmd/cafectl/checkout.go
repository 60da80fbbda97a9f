package main

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/apiclient"
)

type checkoutFlags struct {
	name        string
	email       string
	phone       string
	notes       string
	coupon      string
	reserveDate string
	reserveTime string
	guests      int
}

func newCheckoutCmd(a *app) *cobra.Command {
	var f checkoutFlags
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c := a.loadCart()
			if c.IsEmpty() {
				return errors.New("cart is empty")
			}
			if f.coupon != "" {
				if err := a.applyCoupon(ctx, c, f.coupon); err != nil {
					return err
				}
			}

			req := apiclient.OrderRequestFromCart(c)
			req.CustomerName = strings.TrimSpace(f.name)
			req.CustomerEmail = strings.TrimSpace(f.email)
			req.CustomerPhone = strings.TrimSpace(f.phone)
			req.Notes = strings.TrimSpace(f.notes)
			if f.reserveDate != "" || f.reserveTime != "" {
				if f.reserveDate == "" || f.reserveTime == "" || f.guests < 1 {
					return errors.New("a reservation needs --reserve-date, --reserve-time and --guests")
				}
				req.Reservation = &apiclient.Reservation{Date: f.reserveDate, Time: f.reserveTime, GuestCount: f.guests}
			}

			// one key per checkout; the refresh retry reuses it
			key := uuid.NewString()
			var order *apiclient.Order
			err := a.call(ctx, func() (err error) {
				order, err = a.client.PlaceOrder(ctx, req, key)
				return err
			})
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Order %s placed (%s), total %s\n", order.OrderNumber, order.Status, money(order.Total))
			return nil
		},
	}
	cmd.Flags().StringVar(&f.name, "name", "", "customer name")
	cmd.Flags().StringVar(&f.email, "email", "", "customer email")
	cmd.Flags().StringVar(&f.phone, "phone", "", "customer phone")
	cmd.Flags().StringVar(&f.notes, "notes", "", "order notes")
	cmd.Flags().StringVar(&f.coupon, "coupon", "", "coupon code to apply")
	cmd.Flags().StringVar(&f.reserveDate, "reserve-date", "", "reservation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.reserveTime, "reserve-time", "", "reservation time (HH:MM)")
	cmd.Flags().IntVar(&f.guests, "guests", 0, "reservation guest count")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}
