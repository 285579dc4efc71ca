package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-topup-portal/internal/app"
	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/http/handlers"
	"github.com/tbourn/go-topup-portal/internal/services"
	"github.com/tbourn/go-topup-portal/internal/storage"
)

func newHistoryCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the local transaction history",
	}
	cmd.AddCommand(newHistoryListCmd(o))
	cmd.AddCommand(newHistoryShowCmd(o))
	cmd.AddCommand(newHistoryClearCmd(o))
	return cmd
}

func newHistoryListCmd(o *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List completed top-ups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := requireSession(ctx, a); err != nil {
					return err
				}
				list := a.TopUp.History(ctx, limit)
				resp := handlers.HistoryResponse{Transactions: list, Count: len(list)}
				return o.printer(cmd.OutOrStdout()).emit(resp, func(w io.Writer) {
					if len(list) == 0 {
						fmt.Fprintln(w, "No transactions")
						return
					}
					fmt.Fprintf(w, "Transactions (%d)\n", len(list))
					for _, e := range list {
						printEntry(w, e)
					}
				})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many (0 = all)")
	return cmd
}

func newHistoryShowCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := requireSession(ctx, a); err != nil {
					return err
				}
				e, err := a.TopUp.Transaction(ctx, args[0])
				if errors.Is(err, services.ErrTransactionNotFound) {
					return fmt.Errorf("transaction %q not found", args[0])
				}
				if err != nil {
					return err
				}
				return o.printer(cmd.OutOrStdout()).emit(e, func(w io.Writer) {
					fmt.Fprintf(w, "ID:             %s\n", e.ID)
					fmt.Fprintf(w, "Status:         %s\n", statusText(e.Status))
					fmt.Fprintf(w, "Date:           %s\n", e.Date)
					fmt.Fprintf(w, "Supplier:       %s (%s)\n", e.SupplierName, e.ProductCode)
					fmt.Fprintf(w, "Number:         %s\n", e.Number)
					fmt.Fprintf(w, "Amount:         %s\n", formatCOP(e.Amount))
					fmt.Fprintf(w, "Transaction:    %s\n", e.TransactionID)
					fmt.Fprintf(w, "Authorization:  %s\n", e.AuthorizationCode)
				})
			})
		},
	}
}

func newHistoryClearCmd(o *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the local transaction history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm(cmd, "Delete every stored transaction?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "Aborted")
					return nil
				}
			}
			return o.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := requireSession(ctx, a); err != nil {
					return err
				}
				if st := a.TopUp.ClearHistory(ctx); st != storage.StatusOK {
					return fmt.Errorf("clear history: %s", st)
				}
				return o.printer(cmd.OutOrStdout()).emit(handlers.HistoryResponse{Transactions: []domain.HistoryEntry{}}, func(w io.Writer) {
					fmt.Fprintln(w, "History cleared")
				})
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
