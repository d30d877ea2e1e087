// Package cli implements the dashboard's command-line surface.
package cli

import (
	"io"

	"github.com/google/subcommands"

	"cryptofolio/internal/adapter/coingecko"
	"cryptofolio/internal/usecase/portfolio"
	"cryptofolio/internal/usecase/prices"
	"cryptofolio/internal/usecase/valuation"
)

// App bundles the wired services every subcommand works against.
type App struct {
	Store    *portfolio.Store
	Engine   *valuation.Engine
	Prices   *prices.Service
	Market   *coingecko.Client
	Currency string
	Out      io.Writer
}

// Register registers all subcommands on the commander.
func Register(commander *subcommands.Commander, app *App) {
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&addCmd{app: app}, "portfolio")
	commander.Register(&removeCmd{app: app}, "portfolio")
	commander.Register(&dropCmd{app: app}, "portfolio")
	commander.Register(&clearCmd{app: app}, "portfolio")
	commander.Register(&holdingsCmd{app: app}, "portfolio")
	commander.Register(&summaryCmd{app: app}, "portfolio")

	commander.Register(&coinsCmd{app: app}, "market")
	commander.Register(&trendingCmd{app: app}, "market")
	commander.Register(&chartCmd{app: app}, "market")
}
