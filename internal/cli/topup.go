package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tbourn/go-topup-portal/internal/app"
	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/services"
	"github.com/tbourn/go-topup-portal/internal/validate"
)

func newSuppliersCmd(o *options) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "suppliers",
		Short: "List the suppliers available for top-ups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := requireSession(ctx, a); err != nil {
					return err
				}
				res, err := a.TopUp.Suppliers(ctx, refresh)
				if err != nil {
					return err
				}
				return o.printer(cmd.OutOrStdout()).emit(res, func(w io.Writer) {
					if res.Stale {
						fmt.Fprintf(w, "%s %s\n", warnText("Showing cached suppliers:"), res.Warning)
					}
					fmt.Fprintf(w, "Suppliers (%d)\n", len(res.Suppliers))
					for _, s := range res.Suppliers {
						fmt.Fprintf(w, "  %-8s %s\n", s.ProductCode, s.Name)
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the local cache")
	return cmd
}

// rejection is the JSON shape of a refused top-up.
type rejection struct {
	Message string          `json:"message"`
	Code    string          `json:"code,omitempty"`
	Fields  validate.Errors `json:"fields,omitempty"`
	Ticket  *domain.Ticket  `json:"ticket,omitempty"`
}

func newBuyCmd(o *options) *cobra.Command {
	var form validate.Form
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy a mobile airtime top-up",
		Long: `Buy a mobile airtime top-up.

The transactional password is read from the terminal without echo, or from
the first line of stdin when it is not a terminal.

Example:
  topup buy --supplier 8111 --phone 3001234567 --amount 5000 --terminal T1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd, "Transactional password: ")
			if err != nil {
				return fmt.Errorf("read transactional password: %w", err)
			}
			form.TransactionalPassword = pw
			form.Phone = strings.TrimSpace(form.Phone)

			return o.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := requireSession(ctx, a); err != nil {
					return err
				}
				p := o.printer(cmd.OutOrStdout())
				ticket, err := a.TopUp.TopUp(ctx, form)

				var invalid *services.ValidationError
				var declined *services.OutcomeError
				switch {
				case err == nil:
					return p.emit(ticket, func(w io.Writer) { printTicket(w, *ticket) })
				case errors.As(err, &invalid):
					_ = p.emit(rejection{Message: err.Error(), Fields: invalid.Fields}, func(w io.Writer) {
						fmt.Fprintln(w, failText(err.Error()))
						printFields(w, invalid.Fields)
					})
					return err
				case errors.As(err, &declined) && ticket != nil:
					_ = p.emit(rejection{Message: declined.Message, Code: declined.Code, Ticket: ticket}, func(w io.Writer) {
						printTicket(w, *ticket)
					})
					return err
				default:
					return err
				}
			})
		},
	}
	cmd.Flags().StringVar(&form.Supplier, "supplier", "", "supplier product code")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "10 digit mobile number starting with 3")
	cmd.Flags().StringVar(&form.Amount, "amount", "", "amount in COP (1000 to 100000)")
	cmd.Flags().StringVar(&form.Terminal, "terminal", "", "terminal id")
	return cmd
}
