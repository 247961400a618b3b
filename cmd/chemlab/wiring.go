package main

import (
	"context"

	"go.uber.org/zap"

	"chemlab/internal/articulation"
	"chemlab/internal/chemistry"
	"chemlab/internal/config"
	"chemlab/internal/core"
	"chemlab/internal/logging"
	"chemlab/internal/pubchem"
	"chemlab/internal/store"
)

// loadKnowledgeBase returns the configured reaction table, or the built-in one.
func loadKnowledgeBase(cfg *config.Config) (*chemistry.KnowledgeBase, error) {
	if path := cfg.Chemistry.ReactionsPath; path != "" {
		logging.For(logger, logging.CategoryBoot).Info("Loading reaction table", zap.String("path", path))
		return chemistry.LoadKnowledgeBaseFile(path)
	}
	return chemistry.DefaultKnowledgeBase()
}

// newNarrator picks Gemini when a key is configured and static text otherwise.
func newNarrator(ctx context.Context, cfg *config.Config) articulation.Generator {
	boot := logging.For(logger, logging.CategoryBoot)
	if !cfg.Narrative.UseGemini() {
		if cfg.Narrative.Provider == config.ProviderGemini {
			boot.Warn("No Gemini API key configured, using built-in explanations")
		}
		return articulation.Static{}
	}

	gen, err := articulation.NewGeminiGenerator(ctx, articulation.GeminiConfig{
		APIKey:          cfg.Narrative.APIKey,
		Model:           cfg.Narrative.Model,
		Temperature:     cfg.Narrative.Temperature,
		MaxOutputTokens: cfg.Narrative.MaxOutputTokens,
		Timeout:         cfg.GetNarrativeTimeout(),
	}, logging.For(logger, logging.CategoryNarrative))
	if err != nil {
		boot.Warn("Gemini unavailable, using built-in explanations", zap.Error(err))
		return articulation.Static{}
	}
	boot.Info("Narrative generator ready", zap.String("model", gen.Model()))
	return gen
}

func newEngine(ctx context.Context, cfg *config.Config) (*core.Engine, error) {
	kb, err := loadKnowledgeBase(cfg)
	if err != nil {
		return nil, err
	}
	return core.NewEngine(kb, newNarrator(ctx, cfg), logging.For(logger, logging.CategoryEngine)), nil
}

func openCatalog(ctx context.Context, cfg *config.Config) (*store.Catalog, error) {
	return store.Open(ctx, cfg.Catalog.Driver, cfg.Catalog.DSN, logging.For(logger, logging.CategoryStore))
}

func newPubChem(cfg *config.Config) *pubchem.Client {
	return pubchem.NewClient(pubchem.Config{
		BaseURL:     cfg.PubChem.BaseURL,
		Timeout:     cfg.GetPubChemTimeout(),
		MinInterval: cfg.GetPubChemMinInterval(),
	}, logging.For(logger, logging.CategoryPubChem))
}
