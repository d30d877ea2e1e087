package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type summaryCmd struct {
	app *App
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "portfolio totals and global market stats" }
func (*summaryCmd) Usage() string {
	return `cryptofolio summary

  Prints the portfolio-wide totals plus a headline view of the global market.
`
}

func (c *summaryCmd) SetFlags(*flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	assets := c.app.Store.Assets()
	cur := c.app.Currency

	if len(assets) == 0 {
		fmt.Fprintln(c.app.Out, "Portfolio is empty.")
	} else {
		quotes, err := c.app.Prices.Fetch(ctx, c.app.Store.CoinIDs())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not fetch prices: %v\n", err)
			return subcommands.ExitFailure
		}
		_, summary := c.app.Engine.Valuate(assets, quotes)

		fmt.Fprintf(c.app.Out, "Assets:         %d\n", summary.AssetCount)
		fmt.Fprintf(c.app.Out, "Invested:       %s\n", formatMoney(summary.TotalInvested, cur))
		fmt.Fprintf(c.app.Out, "Current value:  %s\n", formatMoney(summary.TotalValue, cur))
		fmt.Fprintf(c.app.Out, "Profit/loss:    %s (%s)\n",
			formatMoney(summary.ProfitLoss, cur), formatPercent(summary.ProfitLossPercent))
	}

	// Global stats are decoration; a failure here should not fail the command.
	global, err := c.app.Market.Global(ctx, cur)
	if err == nil {
		fmt.Fprintf(c.app.Out, "\nGlobal market cap: %s (%s 24h), %d active cryptocurrencies\n",
			formatMoney(global.TotalMarketCap, cur),
			fmt.Sprintf("%+.2f%%", global.MarketCapChangePercentage),
			global.ActiveCryptocurrencies)
	}
	return subcommands.ExitSuccess
}
