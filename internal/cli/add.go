package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type addCmd struct {
	app    *App
	coin   string
	symbol string
	name   string
	amount string
	price  string
	date   string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a purchase transaction" }
func (*addCmd) Usage() string {
	return `cryptofolio add -coin <id> -amount <qty> -price <unit price> [-date <RFC3339>] [-symbol <sym>] [-name <name>]

  Records a purchase. Transactions for the same coin are grouped under one
  asset. Symbol and name are looked up from the market API when omitted.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.coin, "coin", "", "Coin id, e.g. \"bitcoin\".")
	f.StringVar(&c.amount, "amount", "", "Quantity purchased.")
	f.StringVar(&c.price, "price", "", "Unit price paid, in the reference currency.")
	f.StringVar(&c.date, "date", "", "Purchase date (RFC3339). Defaults to now.")
	f.StringVar(&c.symbol, "symbol", "", "Display symbol. Resolved from the market API when omitted.")
	f.StringVar(&c.name, "name", "", "Display name. Resolved from the market API when omitted.")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.coin == "" || c.amount == "" || c.price == "" {
		fmt.Fprintln(os.Stderr, "Error: -coin, -amount and -price are required.")
		return subcommands.ExitUsageError
	}

	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid amount %q: %v\n", c.amount, err)
		return subcommands.ExitUsageError
	}
	price, err := decimal.NewFromString(c.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid price %q: %v\n", c.price, err)
		return subcommands.ExitUsageError
	}

	purchaseDate := time.Now()
	if c.date != "" {
		purchaseDate, err = time.Parse(time.RFC3339, c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid date %q: %v\n", c.date, err)
			return subcommands.ExitUsageError
		}
	}

	symbol, name := c.symbol, c.name
	if symbol == "" || name == "" {
		details, derr := c.app.Market.CoinDetails(ctx, c.coin, c.app.Currency)
		if derr != nil {
			fmt.Fprintf(os.Stderr, "Error: could not resolve coin %q: %v\n", c.coin, derr)
			return subcommands.ExitFailure
		}
		if symbol == "" {
			symbol = details.Symbol
		}
		if name == "" {
			name = details.Name
		}
	}

	tx, err := c.app.Store.AddTransaction(c.coin, symbol, name, amount, price, purchaseDate)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.app.Out, "Added %s %s at %s (transaction %s)\n",
		formatQuantity(amount), symbol, formatMoney(price, c.app.Currency), tx.ID)
	return subcommands.ExitSuccess
}
