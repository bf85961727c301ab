package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"MiniPOS/internal/billing"
	"MiniPOS/internal/pos"
	"MiniPOS/internal/sale"
)

type saleItem struct {
	productID string
	qty       int
}

func newSaleCmd(flags *globalFlags) *cobra.Command {
	var items []string

	cmd := &cobra.Command{
		Use:   "sale --item ID:QTY [--item ID:QTY ...]",
		Short: "Ring up one sale and write its bill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := parseItems(items)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			sess := sale.NewSession("s_"+uuid.NewString(), a.saleDeps())

			for _, it := range parsed {
				added, err := sess.AddItem(cmd.Context(), it.productID, it.qty)
				if err != nil {
					sess.Abandon()
					return fmt.Errorf("item %s: %w", it.productID, err)
				}

				fmt.Fprintf(out, "%s  Qty:%d  Price:%s\n",
					added.Line.Name, added.Line.Qty, billing.FormatAmount(added.Line.Total))
				if added.LowStock {
					fmt.Fprintf(out, "Low stock warning: %s has only %d left\n", added.Line.Name, added.Remaining)
				}
			}

			bill, err := sess.Complete(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Total: %s\n", billing.FormatAmount(bill.Total))
			fmt.Fprintf(out, "Bill saved: %s\n", bill.File)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&items, "item", "i", nil, "product and quantity as ID:QTY, repeatable")
	return cmd
}

func parseItems(raw []string) ([]saleItem, error) {
	if len(raw) == 0 {
		return nil, pos.ErrEmptySale
	}

	items := make([]saleItem, 0, len(raw))
	for _, r := range raw {
		id, qtyText, ok := strings.Cut(r, ":")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, pos.Invalid("item must look like ID:QTY, got %q", r)
		}
		qty, err := sale.ParseQuantity(qtyText)
		if err != nil {
			return nil, err
		}
		items = append(items, saleItem{productID: strings.TrimSpace(id), qty: qty})
	}
	return items, nil
}
