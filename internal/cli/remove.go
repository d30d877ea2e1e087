package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"
)

type removeCmd struct {
	app  *App
	coin string
	tx   string
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove a single transaction" }
func (*removeCmd) Usage() string {
	return `cryptofolio remove -coin <id> -tx <transaction id>

  Removes one transaction. Removing the last transaction of an asset removes
  the asset. Unknown ids are a no-op.
`
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.coin, "coin", "", "Coin id the transaction belongs to.")
	f.StringVar(&c.tx, "tx", "", "Transaction id (see \"holdings -coin\").")
}

func (c *removeCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.coin == "" || c.tx == "" {
		fmt.Fprintln(os.Stderr, "Error: -coin and -tx are required.")
		return subcommands.ExitUsageError
	}
	txID, err := uuid.Parse(c.tx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid transaction id %q: %v\n", c.tx, err)
		return subcommands.ExitUsageError
	}

	if err := c.app.Store.RemoveTransaction(c.coin, txID); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(c.app.Out, "Removed transaction %s from %s\n", txID, c.coin)
	return subcommands.ExitSuccess
}

type dropCmd struct {
	app  *App
	coin string
}

func (*dropCmd) Name() string     { return "drop" }
func (*dropCmd) Synopsis() string { return "remove an asset and all its transactions" }
func (*dropCmd) Usage() string {
	return `cryptofolio drop -coin <id>

  Removes the asset for the coin regardless of how many transactions it holds.
`
}

func (c *dropCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.coin, "coin", "", "Coin id to drop.")
}

func (c *dropCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.coin == "" {
		fmt.Fprintln(os.Stderr, "Error: -coin is required.")
		return subcommands.ExitUsageError
	}
	if err := c.app.Store.RemoveAsset(c.coin); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(c.app.Out, "Dropped %s\n", c.coin)
	return subcommands.ExitSuccess
}

type clearCmd struct {
	app *App
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "remove all assets from the portfolio" }
func (*clearCmd) Usage() string {
	return `cryptofolio clear

  Empties the portfolio.
`
}

func (c *clearCmd) SetFlags(*flag.FlagSet) {}

func (c *clearCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.app.Store.Clear(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintln(c.app.Out, "Portfolio cleared")
	return subcommands.ExitSuccess
}
