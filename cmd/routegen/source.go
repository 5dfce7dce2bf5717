package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aarondill/TaraBomSheets/connectors/file"
	"github.com/aarondill/TaraBomSheets/connectors/objectstore"
	"github.com/aarondill/TaraBomSheets/connectors/postgres"
	"github.com/aarondill/TaraBomSheets/internal/config"
	"github.com/aarondill/TaraBomSheets/internal/tables"
)

// openSource connects to the configured table source and verifies it is reachable
func openSource(ctx context.Context, cfg *config.Config, source string, delimiter rune, logger *zap.Logger) (tables.Source, error) {
	switch source {
	case config.SourceS3:
		s3Config := cfg.GetS3Config()
		if err := config.ValidateS3Config(s3Config); err != nil {
			return nil, fmt.Errorf("invalid S3 configuration: %w", err)
		}
		client, err := objectstore.NewClient(ctx, s3Config, delimiter, logger)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx); err != nil {
			return nil, err
		}
		return client, nil

	case config.SourcePostgres:
		pgConfig := cfg.GetPostgresConfig()
		if err := config.ValidatePostgresConfig(pgConfig); err != nil {
			return nil, fmt.Errorf("invalid PostgreSQL configuration: %w", err)
		}
		client, err := postgres.NewClient(ctx, pgConfig, logger)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return client, nil

	default:
		src, err := file.NewSource(cfg.GetString(config.KeyInputDir, "."), delimiter, logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}
