package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chemlab/internal/logging"
	"chemlab/internal/server"
	"chemlab/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the lab HTTP API",
	Long: `Serves the lab API:

  POST /api/react                 simulate a beaker
  GET  /api/chemical-color/{name} initial color of a chemical
  GET  /api/chemicals             catalog grouped by shelf
  POST /api/admin/add-chemical    import a compound from PubChem
  GET  /api/admin/search          search PubChem by keyword
  GET  /health, /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}

	lookup := newPubChem(cfg)
	opts := server.Options{
		Simulator:    engine,
		Searcher:     lookup,
		Logger:       logging.For(logger, logging.CategoryAPI),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// The simulator works without a catalog, so a broken database only
	// disables the shelf routes.
	catalog, err := openCatalog(ctx, cfg)
	if err != nil {
		logger.Warn("Catalog unavailable, serving without it", zap.Error(err))
	} else {
		defer catalog.Close()
		opts.Shelves = catalog
		opts.Importer = store.NewImporter(catalog, lookup, logging.For(logger, logging.CategoryStore))
	}

	return server.New(opts).Serve(ctx, cfg.Server.Addr)
}
