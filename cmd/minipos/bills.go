package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"MiniPOS/internal/billing"
)

func newBillsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "bills [NAME]",
		Short: "List saved bills or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()

			if len(args) == 1 {
				text, err := a.archive.ReadBill(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(out, text)
				return nil
			}

			names, err := a.archive.ListBills()
			if errors.Is(err, billing.ErrNoBills) {
				fmt.Fprintln(out, "No bills found.")
				return nil
			}
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}
}
