// Command topup runs the mobile airtime top-up portal.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	_ "github.com/tbourn/go-topup-portal/docs"
	"github.com/tbourn/go-topup-portal/internal/cli"
)

// @title        Top-up Portal API
// @version      1.0
// @description  Operator portal for mobile airtime top-ups: session, suppliers, purchases and local history.
// @BasePath     /api/v1
func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
