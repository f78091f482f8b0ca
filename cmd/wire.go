package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	collectorclient "github.com/bnema/challenge-harvester/internal/adapters/collector"
	statusadapter "github.com/bnema/challenge-harvester/internal/adapters/render/status"
	tomlrepo "github.com/bnema/challenge-harvester/internal/adapters/repo/toml"
	chainstore "github.com/bnema/challenge-harvester/internal/adapters/secrets/chain"
	filestore "github.com/bnema/challenge-harvester/internal/adapters/secrets/file"
	"github.com/bnema/challenge-harvester/internal/application"
	"github.com/bnema/challenge-harvester/internal/config"
	"github.com/bnema/challenge-harvester/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootOptions struct {
	configFile string
	envFile    string
}

type app struct {
	cfg            config.Config
	logger         *slog.Logger
	secretStore    ports.SecretStore
	fileSecrets    *filestore.Store
	tokens         *application.CollectorService
	statusRenderer func(application.TokenList, statusadapter.RenderOptions) (string, error)
	httpClient     *http.Client
	now            func() time.Time
}

func (a *app) wire(cmd *cobra.Command, opts *rootOptions) error {
	v := viper.New()
	cfg, err := config.Load(v, config.LoadOptions{ConfigFile: opts.configFile, EnvFile: opts.envFile})
	if err != nil {
		return err
	}

	logger, err := cfg.Log.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	fileSecrets := filestore.NewStore(filepath.Join(homeDir, ".harvest", "secrets"))
	secretStore, err := chainstore.NewPassFirstWithFileFallback(fileSecrets)
	if err != nil {
		return fmt.Errorf("wire secret store chain: %w", err)
	}

	repo, err := tomlrepo.NewTokenRepository(v)
	if err != nil {
		return fmt.Errorf("wire token repository: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.secretStore = secretStore
	a.fileSecrets = fileSecrets
	a.tokens = application.NewCollectorService(repo, ports.SystemClock{}, cfg.Server.MaxTokens, logger)
	a.statusRenderer = statusadapter.RenderTokens
	a.httpClient = http.DefaultClient
	a.now = time.Now

	return nil
}

// collectorClient resolves the collector API key from the secret store, when one is referenced.
func (a *app) collectorClient(ctx context.Context) (collectorclient.Client, error) {
	apiKey, err := chainstore.Resolve(ctx, a.secretStore, a.cfg.Collector.APIKeyRef)
	if err != nil {
		return collectorclient.Client{}, fmt.Errorf("collector api key: %w", err)
	}

	return collectorclient.Client{
		URL:            a.cfg.Collector.URL,
		APIKey:         apiKey,
		HTTPClient:     a.httpClient,
		RequestTimeout: a.cfg.Collector.Timeout,
	}, nil
}

func (a *app) serverAPIKey(ctx context.Context) (string, error) {
	apiKey, err := chainstore.Resolve(ctx, a.secretStore, a.cfg.Server.APIKeyRef)
	if err != nil {
		return "", fmt.Errorf("server api key: %w", err)
	}

	return apiKey, nil
}
