package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
)

type holdingsCmd struct {
	app  *App
	coin string
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "list assets with live valuation" }
func (*holdingsCmd) Usage() string {
	return `cryptofolio holdings [-coin <id>]

  Shows every asset with current price, value and profit/loss. With -coin,
  lists the individual transactions of that asset instead.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.coin, "coin", "", "Show the transactions of one asset.")
}

func (c *holdingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.coin != "" {
		return c.transactions()
	}

	assets := c.app.Store.Assets()
	if len(assets) == 0 {
		fmt.Fprintln(c.app.Out, "Portfolio is empty. Use \"cryptofolio add\" to record a purchase.")
		return subcommands.ExitSuccess
	}

	quotes, err := c.app.Prices.Fetch(ctx, c.app.Store.CoinIDs())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not fetch prices: %v\n", err)
		return subcommands.ExitFailure
	}

	valuations, summary := c.app.Engine.Valuate(assets, quotes)
	cur := c.app.Currency

	w := tabwriter.NewWriter(c.app.Out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSYMBOL\tAMOUNT\tAVG PRICE\tPRICE\tVALUE\tP/L\tP/L %")
	for _, v := range valuations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Asset.Name,
			v.Asset.Symbol,
			formatQuantity(v.TotalAmount),
			formatMoney(v.AveragePrice, cur),
			formatMoney(v.CurrentPrice, cur),
			formatMoney(v.CurrentValue, cur),
			formatMoney(v.ProfitLoss, cur),
			formatPercent(v.ProfitLossPercent),
		)
	}
	fmt.Fprintf(w, "\t\t\t\t\t%s\t%s\t%s\n",
		formatMoney(summary.TotalValue, cur),
		formatMoney(summary.ProfitLoss, cur),
		formatPercent(summary.ProfitLossPercent),
	)
	w.Flush()
	return subcommands.ExitSuccess
}

func (c *holdingsCmd) transactions() subcommands.ExitStatus {
	for _, asset := range c.app.Store.Assets() {
		if asset.CoinID != c.coin {
			continue
		}
		w := tabwriter.NewWriter(c.app.Out, 2, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s (%s)\n", asset.Name, asset.Symbol)
		fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tPRICE\tINVESTED")
		for _, tx := range asset.Transactions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				tx.ID,
				tx.PurchaseDate.Format("2006-01-02"),
				formatQuantity(tx.Amount),
				formatMoney(tx.PurchasePrice, c.app.Currency),
				formatMoney(tx.Invested(), c.app.Currency),
			)
		}
		w.Flush()
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "No asset for coin %q in the portfolio.\n", c.coin)
	return subcommands.ExitFailure
}
