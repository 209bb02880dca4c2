package main

import (
	"subscription-tracker/internal/app"

	"go.uber.org/fx"
)

func main() {
	// Run blocks until SIGINT/SIGTERM and then runs the OnStop hooks.
	fx.New(
		app.Core,
		app.Server,
		app.Bot,
	).Run()
}
