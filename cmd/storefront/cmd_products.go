package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/RodolfoDevApp/eventshop-storefront-go/internal/storeclient"
)

const allCategories = "all"

func newProductsCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "products [id]",
		Short: "List the catalog, or show one product",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid product id %q", args[0])
				}
				return a.showProduct(cmd, id)
			}

			products, err := a.client.Products(cmd.Context())
			if err != nil {
				return err
			}
			products = filterByCategory(products, category)

			p := message.NewPrinter(language.English)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
			for _, prod := range products {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", prod.ID, prod.Name, prod.Category, p.Sprintf("%.2f", prod.Price))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", allCategories, `Only list this category ("all" lists everything)`)
	return cmd
}

func (a *app) showProduct(cmd *cobra.Command, id int64) error {
	prod, err := a.client.GetProduct(cmd.Context(), id)
	if err != nil {
		var apiErr *storeclient.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return fmt.Errorf("product %d not found", id)
		}
		return describeAPIError(err)
	}

	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", prod.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", prod.Name)
	if prod.Sku != "" {
		fmt.Fprintf(tw, "SKU:\t%s\n", prod.Sku)
	}
	if prod.Category != "" {
		fmt.Fprintf(tw, "Category:\t%s\n", prod.Category)
	}
	fmt.Fprintf(tw, "Price:\t%s\n", p.Sprintf("%.2f", prod.Price))
	if prod.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", prod.Description)
	}
	if prod.ImageURL != "" {
		fmt.Fprintf(tw, "Image:\t%s\n", prod.ImageURL)
	}
	return tw.Flush()
}

// filterByCategory keeps products whose category matches, ignoring case.
// An empty filter or "all" keeps everything.
func filterByCategory(products []storeclient.Product, category string) []storeclient.Product {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, allCategories) {
		return products
	}
	out := products[:0:0]
	for _, p := range products {
		if strings.EqualFold(strings.TrimSpace(p.Category), category) {
			out = append(out, p)
		}
	}
	return out
}
