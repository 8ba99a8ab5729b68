package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/creditrag/internal/classification"
	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/compliance"
	"github.com/Veraticus/creditrag/internal/config"
	"github.com/Veraticus/creditrag/internal/engine"
	"github.com/Veraticus/creditrag/internal/letter"
	"github.com/Veraticus/creditrag/internal/llm"
	"github.com/Veraticus/creditrag/internal/regindex"
	"github.com/Veraticus/creditrag/internal/storage"
)

// app holds the process-wide clients shared by a command. Every client is
// constructed once and released by Close.
type app struct {
	store   *storage.SQLiteStorage
	index   *regindex.Index
	engine  *engine.Engine
	closers []io.Closer
}

func (a *app) track(v any) {
	if c, ok := v.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
}

// Close releases clients in reverse construction order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			slog.Warn("Failed to close client", "error", err)
		}
	}
	a.closers = nil
}

// appNeeds selects which remote clients a command requires. Optional clients
// that fail to initialise are logged and left out.
type appNeeds struct {
	index     bool
	generator bool
}

// openStorage opens and migrates the configured database.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

func newApp(ctx context.Context, needs appNeeds) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	store, err := openStorage(ctx)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store)

	index, err := a.buildIndex(ctx, nil)
	switch {
	case err == nil:
		a.index = index
	case needs.index:
		return nil, err
	default:
		slog.Warn("Regulation index unavailable, semantic lookups disabled", "error", err)
	}

	var generator llm.Client
	if needs.generator || viper.GetBool("classification.external") {
		generator, err = createLLMClient(ctx)
		if err != nil {
			if needs.generator {
				return nil, err
			}
			slog.Warn("External classifier unavailable, using rules only", "error", err)
		} else {
			a.track(generator)
		}
	}

	classifierOpts := []classification.Option{classification.WithLogger(slog.Default())}
	if generator != nil && viper.GetBool("classification.external") {
		external, err := a.createExternalClassifier(ctx, generator)
		if err != nil {
			return nil, err
		}
		classifierOpts = append(classifierOpts, classification.WithExternal(external))
	}

	scannerCfg := compliance.Config{Namespaces: viper.GetStringSlice("compliance.namespaces")}
	var scanner *compliance.Scanner
	if a.index != nil {
		scanner, err = compliance.NewScanner(a.index, scannerCfg, slog.Default())
	} else {
		scanner, err = compliance.NewScanner(nil, scannerCfg, slog.Default())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build compliance scanner: %w", err)
	}

	engineCfg := engine.Config{
		Classifier: classification.NewAccountClassifier(classifierOpts...),
		Compliance: scanner,
		Recorder:   store,
		Logger:     slog.Default(),
	}
	if generator != nil {
		synth, err := createSynthesizer(generator, a.index)
		if err != nil {
			return nil, err
		}
		engineCfg.Letters = synth
	}

	a.engine, err = engine.New(engineCfg)
	if err != nil {
		return nil, err
	}

	ok = true
	return a, nil
}

// buildIndex creates the regulation index over the configured embedder.
func (a *app) buildIndex(ctx context.Context, onBatch func(namespace string, committed, total int)) (*regindex.Index, error) {
	embedder, err := createEmbedder(ctx)
	if err != nil {
		return nil, err
	}
	a.track(embedder)

	opts := regindex.Options{
		OnBatch:         onBatch,
		BatchSize:       viper.GetInt("index.batch_size"),
		MaxRetries:      viper.GetInt("index.max_retries"),
		RetryDelay:      viper.GetDuration("index.retry_delay"),
		InterBatchDelay: viper.GetDuration("index.inter_batch_delay"),
		Timeout:         viper.GetDuration("index.timeout"),
	}
	return regindex.NewIndex(embedder, a.store, opts, slog.Default()), nil
}

func llmConfig() llm.Config {
	provider := viper.GetString("llm.provider")
	return llm.Config{
		Provider:    provider,
		APIKey:      config.APIKey(provider, viper.GetString("llm.api_key")),
		Model:       viper.GetString("llm.model"),
		BaseURL:     viper.GetString("llm.base_url"),
		APIVersion:  viper.GetString("llm.api_version"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		Timeout:     viper.GetDuration("llm.timeout"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
	}
}

// createLLMClient creates the generation client shared by the external
// classifier and the letter synthesizer.
func createLLMClient(ctx context.Context) (llm.Client, error) {
	cfg := llmConfig()
	if cfg.APIKey == "" && cfg.Provider != "ollama" {
		return nil, common.NewUserError(
			fmt.Sprintf("set llm.api_key or the %s API key environment variable", cfg.Provider),
			fmt.Errorf("%w: %s API key", common.ErrMissingConfig, cfg.Provider))
	}
	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

func createEmbedder(ctx context.Context) (llm.Embedder, error) {
	provider := viper.GetString("embedding.provider")
	cfg := llm.EmbeddingConfig{
		Provider:   provider,
		APIKey:     config.APIKey(provider, viper.GetString("embedding.api_key")),
		Model:      viper.GetString("embedding.model"),
		BaseURL:    viper.GetString("embedding.base_url"),
		APIVersion: viper.GetString("embedding.api_version"),
		Dimensions: viper.GetInt("embedding.dimensions"),
	}
	if cfg.APIKey == "" && cfg.Provider != "ollama" {
		return nil, common.NewUserError(
			fmt.Sprintf("set embedding.api_key or the %s API key environment variable", cfg.Provider),
			fmt.Errorf("%w: %s embedding API key", common.ErrMissingConfig, cfg.Provider))
	}
	embedder, err := llm.NewEmbedder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

// createExternalClassifier wraps the generator with a verdict cache, using
// Redis when cache.redis_addr is set.
func (a *app) createExternalClassifier(ctx context.Context, generator llm.Client) (*llm.Classifier, error) {
	cfg := llmConfig()

	var cache llm.VerdictCache
	if addr := viper.GetString("cache.redis_addr"); addr != "" {
		rdb, err := llm.NewRedisClient(ctx, addr, viper.GetString("cache.redis_password"), viper.GetInt("cache.redis_db"))
		if err != nil {
			return nil, err
		}
		cache = llm.NewRedisCache(rdb, cfg.CacheTTL, slog.Default())
	}

	// The classifier owns the cache and closes it.
	classifier := llm.NewClassifier(generator, cfg, cache, slog.Default())
	a.closers = append(a.closers, classifier)
	return classifier, nil
}

func createSynthesizer(generator llm.Client, searcher *regindex.Index) (*letter.Synthesizer, error) {
	format, err := letter.ParseFormat(viper.GetString("letters.format"))
	if err != nil {
		return nil, err
	}

	cfg := letter.Config{
		Format:              format,
		GroundingNamespaces: viper.GetStringSlice("letters.grounding_namespaces"),
		GroundingK:          viper.GetInt("letters.grounding_k"),
		Timeout:             viper.GetDuration("letters.timeout"),
	}

	if path := viper.GetString("letters.instructions_file"); path != "" {
		overrides, err := config.LoadInstructions(path)
		if err != nil {
			return nil, err
		}
		if cfg.Instructions, err = letter.ParseInstructions(overrides); err != nil {
			return nil, err
		}
	}

	var templates *letter.FSStore
	if dir := viper.GetString("letters.template_dir"); dir != "" {
		if templates, err = letter.NewDirStore(config.ExpandPath(dir), format); err != nil {
			return nil, err
		}
	} else {
		templates = letter.NewEmbeddedStore(format)
	}

	if searcher == nil {
		return letter.NewSynthesizer(generator, templates, nil, cfg, slog.Default())
	}
	return letter.NewSynthesizer(generator, templates, searcher, cfg, slog.Default())
}
