package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tbourn/go-topup-portal/internal/domain"
	"github.com/tbourn/go-topup-portal/internal/validate"
)

var (
	okText   = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnText = color.New(color.FgYellow).SprintFunc()
	failText = color.New(color.FgRed, color.Bold).SprintFunc()
	dimText  = color.New(color.Faint).SprintFunc()
)

var amounts = message.NewPrinter(language.English)

// formatCOP renders 5000 as "$5,000 COP".
func formatCOP(v int64) string {
	return amounts.Sprintf("$%d COP", v)
}

// printer writes either indented JSON or human text.
type printer struct {
	w    io.Writer
	json bool
}

// emit writes v as JSON in json mode, otherwise calls text.
func (p *printer) emit(v any, text func(w io.Writer)) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(p.w)
	return nil
}

func statusText(s domain.TicketStatus) string {
	switch s {
	case domain.TicketSuccess:
		return okText(strings.ToUpper(string(s)))
	case domain.TicketFailed:
		return failText(strings.ToUpper(string(s)))
	default:
		return warnText(strings.ToUpper(string(s)))
	}
}

func printTicket(w io.Writer, t domain.Ticket) {
	fmt.Fprintf(w, "Status:         %s\n", statusText(t.Status))
	if t.Message != "" {
		fmt.Fprintf(w, "Message:        %s\n", t.Message)
	}
	fmt.Fprintf(w, "Supplier:       %s (%s)\n", t.Supplier, t.ProductCode)
	fmt.Fprintf(w, "Number:         %s\n", t.Number)
	fmt.Fprintf(w, "Amount:         %s\n", formatCOP(t.Amount))
	if t.TransactionID != "" {
		fmt.Fprintf(w, "Transaction:    %s\n", t.TransactionID)
	}
	if t.AuthorizationCode != "" {
		fmt.Fprintf(w, "Authorization:  %s\n", t.AuthorizationCode)
	}
	if t.Date != "" {
		fmt.Fprintf(w, "Date:           %s\n", t.Date)
	}
	if t.Balance != nil {
		fmt.Fprintf(w, "Balance:        %s\n", amounts.Sprintf("$%.2f COP", *t.Balance))
	}
}

func printEntry(w io.Writer, e domain.HistoryEntry) {
	name := e.SupplierName
	if name == "" {
		name = e.Supplier
	}
	fmt.Fprintf(w, "%s  %s  %-10s %-12s %14s  %s\n",
		dimText(e.ID), e.Date, e.Number, name, formatCOP(e.Amount), statusText(e.Status))
}

// printFields lists validation failures in field order.
func printFields(w io.Writer, errs validate.Errors) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, failText(errs[k].Message))
	}
}
