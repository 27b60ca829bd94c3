package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/civicsnap/civic-cli/internal/civic"
	"github.com/civicsnap/civic-cli/internal/fetcher"
	"github.com/civicsnap/civic-cli/internal/resilience"
	"github.com/civicsnap/civic-cli/internal/scorer"
	"github.com/civicsnap/civic-cli/internal/store"
	"github.com/civicsnap/civic-cli/pkg/geocode"
	"github.com/civicsnap/civic-cli/pkg/openstates"
)

// appEnv wires the configured clients and the aggregation service for a
// command invocation.
type appEnv struct {
	geocoder    geocode.Client
	legislature openstates.Client
	categorizer *scorer.Categorizer
	service     *civic.Service
	durable     store.GeocodeCache
}

func initApp(ctx context.Context) (*appEnv, error) {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout: time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		Policy: resilience.Policy{
			MaxRetries:  cfg.Fetch.MaxRetries,
			BackoffBase: time.Duration(cfg.Fetch.BackoffBaseMS) * time.Millisecond,
		},
	})

	geocoder := geocode.NewZippopotam(f, geocode.WithBaseURL(cfg.Geocode.BaseURL))

	legislature, err := openstates.NewClient(f, cfg.OpenStates.Key,
		openstates.WithBaseURL(cfg.OpenStates.BaseURL))
	if err != nil {
		return nil, err
	}

	rules := scorer.DefaultRules()
	if rulesPath != "" {
		rules, err = scorer.LoadRules(rulesPath)
		if err != nil {
			return nil, err
		}
	}
	categorizer := scorer.NewCategorizer(rules)

	var durable store.GeocodeCache
	if cfg.Cache.Path != "" {
		sqlCache, err := store.NewSQLite(cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		if err := sqlCache.Migrate(ctx); err != nil {
			sqlCache.Close()
			return nil, err
		}
		durable = sqlCache
		zap.L().Info("durable geocode cache enabled", zap.String("path", cfg.Cache.Path))
	}

	service := civic.NewService(geocoder, legislature, categorizer, durable, civic.Options{
		GeocodeTTL:     cfg.Cache.GeocodeTTL(),
		BillsTTL:       cfg.Cache.BillsTTL(),
		LegislatorsTTL: cfg.Cache.LegislatorsTTL(),
		BillsPerPage:   cfg.OpenStates.PerPage,
		BillsSort:      cfg.OpenStates.Sort,
	})

	return &appEnv{
		geocoder:    geocoder,
		legislature: legislature,
		categorizer: categorizer,
		service:     service,
		durable:     durable,
	}, nil
}

func (e *appEnv) Close() {
	if e.durable != nil {
		if err := e.durable.Close(); err != nil {
			zap.L().Warn("close durable cache", zap.Error(err))
		}
	}
}

// printJSON writes v to stdout, indented.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
