package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newOrdersCmd(a *app) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show your orders from the store, or --local for orders saved on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				return a.printLocalOrders(cmd)
			}
			return a.printRemoteOrders(cmd)
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "List orders saved locally")
	return cmd
}

func (a *app) printRemoteOrders(cmd *cobra.Command) error {
	ctx := cmd.Context()
	token, err := a.store.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return errors.New("not signed in; run `storefront login` or use --local")
	}

	orders, err := a.client.MyOrders(ctx, token)
	if err != nil {
		return describeAPIError(err)
	}

	p := message.NewPrinter(language.English)
	tw := newTable(cmd.OutOrStdout(), "ID\tPRODUCT\tQTY\tPRICE\tSTATUS\tCREATED")
	for _, o := range orders {
		name, price := "(removed)", "-"
		if o.ProductName != nil {
			name = *o.ProductName
		}
		if o.Price != nil {
			price = p.Sprintf("%.2f", *o.Price)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n",
			o.ID, name, o.Quantity, price, o.Status, o.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (a *app) printLocalOrders(cmd *cobra.Command) error {
	orders, err := a.store.ListOrders(cmd.Context())
	if err != nil {
		return err
	}

	tw := newTable(cmd.OutOrStdout(), "ID\tPRODUCT ID\tPRODUCT\tQTY\tNAME\tPHONE\tADDRESS\tPAYMENT\tCREATED")
	for _, o := range orders {
		productID := o.ProductID
		if productID == "" {
			productID = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, productID, o.ProductName, o.Quantity, o.Name, o.Phone, o.Address, o.Payment,
			time.UnixMilli(o.CreatedAtMs).Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func newTable(w io.Writer, header string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	return tw
}
