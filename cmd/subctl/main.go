package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"subscription-tracker/internal/app"
	"subscription-tracker/internal/report"
	"subscription-tracker/internal/service"
	database "subscription-tracker/pkg"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/jmoiron/sqlx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	Action string `descr:"What to run" alts:"generate,report,migrate" strict:"true" positional:"true"`
	Year   int    `descr:"Report year, 0 for the current year" default:"0"`
	Month  int    `descr:"Report month 1-12, 0 for the current month" default:"0"`
	Xlsx   string `descr:"Also write the report to this .xlsx file" optional:"true"`
}

type deps struct {
	fx.In

	Payments service.PaymentService
	DB       *sqlx.DB `optional:"true"`
	Log      *zap.Logger
}

func main() {
	boa.NewCmdT[Params]("subctl").
		WithShort("Maintain the subscription payment ledger").
		WithLong("Generates the next due payments, prints a month report or applies database migrations using the same configuration as the server.").
		WithRunFunc(func(params *Params) {
			if err := run(params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(params *Params) error {
	var d deps
	fxApp := fx.New(
		app.Core,
		fx.Populate(&d),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := fxApp.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := fxApp.Stop(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: shutdown: %v\n", err)
		}
	}()

	switch params.Action {
	case "generate":
		return generate(ctx, d.Payments)
	case "report":
		return printReport(ctx, d.Payments, params)
	case "migrate":
		if d.DB == nil {
			return errors.New("migrate needs a postgres or pgx DB_DRIVER")
		}
		return database.NewMigrator(d.DB, d.Log).Migrate(ctx)
	default:
		return fmt.Errorf("unknown action %q", params.Action)
	}
}

func generate(ctx context.Context, payments service.PaymentService) error {
	result, err := payments.Generate(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Generated %d payments (%d failed)\n", result.Created, result.Failed)
	for _, p := range result.Payments {
		fmt.Printf("  #%d  subscription %d  due %s  %s\n", p.ID, p.SubscriptionID, p.DueDate, p.AmountDue.StringFixed(2))
	}
	return nil
}

func printReport(ctx context.Context, payments service.PaymentService, params *Params) error {
	now := time.Now()
	year, month := params.Year, time.Month(params.Month)
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}

	summary, rows, err := payments.GetMonthSummary(ctx, year, month)
	if err != nil {
		return err
	}
	report.RenderTable(os.Stdout, rows, *summary)

	if params.Xlsx == "" {
		return nil
	}
	f, err := os.Create(params.Xlsx)
	if err != nil {
		return err
	}
	if err := report.WriteXLSX(f, rows, *summary); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", params.Xlsx)
	return nil
}
