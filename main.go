package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"searchrank/internal/search"
	"searchrank/internal/server"
	"searchrank/models"
	"searchrank/pkg/crawler"
	"searchrank/pkg/db"
	"searchrank/pkg/eventlog"
	"searchrank/pkg/serp"
)

func main() {
	app := &cli.App{
		Name:  "searchrank",
		Usage: "web search with TF-IDF + SEO + popularity ranking",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the config file",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serveAction,
			},
			{
				Name:  "search",
				Usage: "run one search from the command line",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Required: true, Usage: "search query"},
					&cli.StringFlag{Name: "format", Value: "json", Usage: "output format: json or yaml"},
				},
				Action: searchAction,
			},
			{
				Name:  "click",
				Usage: "record a click on a result",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Required: true, Usage: "document id"},
				},
				Action: clickAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// buildPipeline wires the collaborators around the ranking core. The caller
// must invoke the returned cleanup function on shutdown.
func buildPipeline(cfg *models.Config, logger *slog.Logger) (*search.Pipeline, func(), error) {
	store, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open document store: %w", err)
	}

	events, err := eventlog.Open(cfg.EventLogPath)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to open event log: %w", err)
	}

	provider := serp.NewClient(cfg.SerpAPIKey, cfg.MaxResults, cfg.RequestTimeout, logger)
	ingester := crawler.New(cfg.CrawlTimeout, cfg.CrawlRatePerSec, logger)

	pipeline := search.NewPipeline(logger, provider, ingester, store, events, cfg.CrawlWorkers)
	cleanup := func() {
		if err := events.Close(); err != nil {
			logger.Error("failed to close event log", "error", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("failed to close document store", "error", err)
		}
	}
	return pipeline, cleanup, nil
}

func serveAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	pipeline, cleanup, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(logger, pipeline)
	logger.Info("starting server", "addr", cfg.ListenAddr, "env", cfg.Env)
	return srv.Router().Run(cfg.ListenAddr)
}

func searchAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	pipeline, cleanup, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := pipeline.Search(context.Background(), c.String("query"))
	if err != nil {
		return err
	}

	var out []byte
	switch c.String("format") {
	case "yaml":
		out, err = yaml.Marshal(results)
	case "json":
		out, err = json.MarshalIndent(results, "", "  ")
	default:
		return fmt.Errorf("unknown format %q, want json or yaml", c.String("format"))
	}
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	fmt.Println(string(out))
	return nil
}

func clickAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	pipeline, cleanup, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	count, err := pipeline.Click(context.Background(), c.Int64("id"))
	if err != nil {
		return err
	}

	fmt.Printf("click recorded, new count: %d\n", count)
	return nil
}
