package main

import (
	"fmt"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"MiniPOS/internal/billing"
	"MiniPOS/internal/catalog"
	"MiniPOS/internal/pos"
)

func newProductsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"inventory"},
		Short:   "Inspect and maintain the catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all products in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE")
			for _, p := range a.store.GetAll() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Quantity, billing.FormatAmount(p.Price))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add ID NAME QTY PRICE",
		Short: "Append a product",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseProduct(args)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Add(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", p.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-qty ID QTY",
		Short: "Overwrite a product's quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return pos.Invalid("quantity must be a whole number: %q", args[1])
			}

			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.UpdateQuantity(cmd.Context(), args[0], qty); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s quantity set to %d\n", args[0], qty)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete ID",
		Short: "Remove every product with ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func parseProduct(args []string) (catalog.Product, error) {
	qty, err := strconv.Atoi(args[2])
	if err != nil {
		return catalog.Product{}, pos.Invalid("quantity must be a whole number: %q", args[2])
	}
	price, err := strconv.ParseFloat(args[3], 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return catalog.Product{}, pos.Invalid("price must be a number: %q", args[3])
	}
	return catalog.Product{ID: args[0], Name: args[1], Quantity: qty, Price: price}, nil
}
