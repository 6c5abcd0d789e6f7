package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spigell/cvscan/internal/ai/gemini"
	"github.com/spigell/cvscan/internal/api"
	"github.com/spigell/cvscan/internal/secrets"
	"github.com/spigell/cvscan/internal/storage"

	"go.uber.org/zap"
)

var (
	errNoBaseURL = errors.New("api base url is not configured (set api.base-url, --api-url or CVSCAN_API_BASE_URL)")
	errNoStorage = errors.New("storage url is not configured (set storage.url or SUPABASE_URL)")
)

func newAPIClient(config *Config, logger *zap.Logger) (*api.Client, error) {
	if strings.TrimSpace(config.API.BaseURL) == "" {
		return nil, errNoBaseURL
	}

	return api.New(config.API.BaseURL, logger), nil
}

func newStorageClient(config *Config, logger *zap.Logger) (*storage.Client, error) {
	if strings.TrimSpace(config.Storage.URL) == "" {
		return nil, errNoStorage
	}

	key, err := secrets.Load(secrets.Source{
		Name:  "storage anon key",
		Value: config.Storage.AnonKey,
		File:  config.Storage.AnonKeyFile,
	})
	if err != nil {
		return nil, err
	}

	return storage.New(storage.Config{
		Endpoint: config.Storage.URL,
		Key:      key,
		Bucket:   config.Storage.Bucket,
	}, logger)
}

// newGenerator returns nil without an error when no Gemini key is configured.
func newGenerator(ctx context.Context, config *Config, logger *zap.Logger) (*gemini.Generator, error) {
	g := config.AI.Gemini

	key, err := secrets.LoadOptional(secrets.Source{
		Name:  "gemini api key",
		Value: g.APIKey,
		File:  g.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	if key == "" {
		return nil, nil
	}

	return gemini.NewGenerator(ctx, key, g.Model, g.MaxLogLength, logger)
}

// jobID prefers the command flag over the configured value.
func jobID(flag string, config *Config) string {
	if id := strings.TrimSpace(flag); id != "" {
		return id
	}

	return strings.TrimSpace(config.Match.JobID)
}
