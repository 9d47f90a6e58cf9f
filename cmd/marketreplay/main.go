package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"marketreplay/internal/engine"
	"marketreplay/internal/execution"
	"marketreplay/internal/feed"
	"marketreplay/internal/repository"
	"marketreplay/internal/risk"
	"marketreplay/strategies/meanreversion"
	"marketreplay/types"
)

func main() {
	root := &cobra.Command{
		Use:   "marketreplay",
		Short: "Replay historical market data through a trading strategy",
	}
	root.AddCommand(runCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runCmd() *cobra.Command {
	var configPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a backtest from a YAML configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			cfg, err := engine.LoadConfig(configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to run configuration")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func run(ctx context.Context, cfg *engine.Config) error {
	queue := engine.NewQueue()

	dataFeed, err := buildFeed(ctx, cfg, queue)
	if err != nil {
		return err
	}

	gate, err := risk.NewGate(types.RiskLimits{
		MaxPositionSize:      decimal.NewFromFloat(cfg.Risk.MaxPositionSize),
		MaxPortfolioExposure: decimal.NewFromFloat(cfg.Risk.MaxPortfolioExposure),
		MaxConcentration:     decimal.NewFromFloat(cfg.Risk.MaxConcentration),
	})
	if err != nil {
		return err
	}

	simulator, err := execution.NewSimulator(cfg.Execution)
	if err != nil {
		return err
	}

	orderSize := decimal.NewFromFloat(cfg.OrderSize)
	portfolio := engine.NewPortfolio(decimal.NewFromFloat(cfg.InitialCapital), engine.NewFixedSizer(orderSize))
	strategy := buildStrategy(cfg, orderSize)

	backtest := engine.NewBacktest(queue, dataFeed, strategy, gate, simulator, portfolio)
	backtest.ShowProgress(true)

	result, err := backtest.Run()
	if err != nil {
		return err
	}
	if err := portfolio.VerifyIdentity(); err != nil {
		return err
	}

	fmt.Println()
	engine.WriteReport(os.Stdout, result)
	return nil
}

func buildFeed(ctx context.Context, cfg *engine.Config, queue *engine.Queue) (*feed.Feed, error) {
	if cfg.CSVDir != "" {
		return feed.NewFromCSV(queue, cfg.CSVDir, cfg.Symbols)
	}

	// Fall back to the Postgres bar store.
	_ = godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("no csv_dir configured and DATABASE_URL not set")
	}
	db, err := repository.NewDatabase(dbURL)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var bars []types.Bar
	for _, sym := range cfg.Symbols {
		symBars, err := db.GetBars(ctx, sym, time.Time{}, time.Now())
		if err != nil {
			return nil, err
		}
		bars = append(bars, symBars...)
	}
	return feed.New(queue, bars), nil
}

func buildStrategy(cfg *engine.Config, orderSize decimal.Decimal) engine.Strategy {
	param := func(key string, fallback float64) float64 {
		if v, ok := cfg.Strategy.Params[key]; ok {
			return v
		}
		return fallback
	}
	return meanreversion.New(
		int(param("window", 20)),
		param("num_std", 2),
		orderSize,
	)
}
