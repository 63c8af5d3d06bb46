// Command gastosctl records and queries the expense ledger from a shell,
// against the same backend the bot is configured with.
package main

import (
	"os"

	"gastos/internal/cli"
)

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
