package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/catalog"
	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/checkout"
)

func newBuyCmd(a *app) *cobra.Command {
	var (
		form  checkout.Form
		title string
	)

	cmd := &cobra.Command{
		Use:   "buy [product name]",
		Short: "Place an order, saving it locally when the store cannot take it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				form.ProductName = args[0]
			}

			cache := a.newCatalog(ctx)
			if strings.TrimSpace(title) != "" {
				card := catalog.NewCard("", "", title)
				cache.Track(card)
				form.Element = card
			}

			co := checkout.New(cache, a.client, a.store, a.store, a.cfg.ReadyTimeout, a.logger)
			out, err := co.Submit(ctx, form)

			var rejected *checkout.RejectedError
			if errors.As(err, &rejected) {
				return fmt.Errorf("order rejected: %s", rejected.Message)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), out.Message)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.ProductID, "id", "", "Product id, when known")
	f.StringVar(&title, "title", "", "Product title as shown in the listing")
	f.IntVarP(&form.Quantity, "qty", "q", 1, "Quantity")
	f.StringVar(&form.Name, "name", "", "Recipient name")
	f.StringVar(&form.Phone, "phone", "", "Contact phone")
	f.StringVar(&form.Address, "address", "", "Delivery address")
	f.StringVar(&form.Payment, "payment", "", "Payment type")
	return cmd
}
