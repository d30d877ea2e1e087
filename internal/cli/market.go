package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"
)

type coinsCmd struct {
	app     *App
	perPage int
	page    int
}

func (*coinsCmd) Name() string     { return "coins" }
func (*coinsCmd) Synopsis() string { return "list top coins by market cap" }
func (*coinsCmd) Usage() string {
	return `cryptofolio coins [-n <count>] [-page <page>]

  Lists coins ordered by market cap with current price and 24h change.
`
}

func (c *coinsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.perPage, "n", 20, "Number of coins to list.")
	f.IntVar(&c.page, "page", 1, "Result page.")
}

func (c *coinsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	coins, err := c.app.Market.CoinsMarkets(ctx, c.app.Currency, nil, c.perPage, c.page)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	w := tabwriter.NewWriter(c.app.Out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tSYMBOL\tPRICE\t24H\tMARKET CAP")
	for _, coin := range coins {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%+.2f%%\t%s\n",
			coin.MarketCapRank,
			coin.Name,
			coin.Symbol,
			formatMoney(coin.CurrentPrice, c.app.Currency),
			coin.PriceChangePercentage24h,
			formatMoney(coin.MarketCap, c.app.Currency),
		)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type trendingCmd struct {
	app *App
}

func (*trendingCmd) Name() string     { return "trending" }
func (*trendingCmd) Synopsis() string { return "list coins trending in search" }
func (*trendingCmd) Usage() string {
	return `cryptofolio trending

  Lists the coins trending on the market API over the last 24 hours.
`
}

func (c *trendingCmd) SetFlags(*flag.FlagSet) {}

func (c *trendingCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	coins, err := c.app.Market.Trending(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	w := tabwriter.NewWriter(c.app.Out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSYMBOL\tRANK")
	for _, coin := range coins {
		fmt.Fprintf(w, "%s\t%s\t%d\n", coin.Name, coin.Symbol, coin.MarketCapRank)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type chartCmd struct {
	app  *App
	coin string
	days int
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "print recent price history for a coin" }
func (*chartCmd) Usage() string {
	return `cryptofolio chart -coin <id> [-days <n>]

  Prints a sampled price history for the coin over the last n days.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.coin, "coin", "", "Coin id to chart.")
	f.IntVar(&c.days, "days", 7, "History window in days.")
}

func (c *chartCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.coin == "" {
		fmt.Fprintln(os.Stderr, "Error: -coin is required.")
		return subcommands.ExitUsageError
	}

	points, err := c.app.Market.MarketChart(ctx, c.coin, c.app.Currency, c.days)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if len(points) == 0 {
		fmt.Fprintln(c.app.Out, "No price history available.")
		return subcommands.ExitSuccess
	}

	// The API returns hundreds of samples; keep the table readable.
	const maxRows = 24
	step := len(points) / maxRows
	if step < 1 {
		step = 1
	}

	w := tabwriter.NewWriter(c.app.Out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tPRICE")
	for i := 0; i < len(points); i += step {
		p := points[i]
		fmt.Fprintf(w, "%s\t%s\n", p.Time.Format("2006-01-02 15:04"), formatMoney(p.Price, c.app.Currency))
	}
	w.Flush()
	return subcommands.ExitSuccess
}
