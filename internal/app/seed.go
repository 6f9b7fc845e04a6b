package app

import (
	"context"
	"fmt"
	"log/slog"

	"prism-console/internal/config"
	"prism-console/internal/domain"
)

// seedEnvironments registers the environments listed in path. Existing
// environments keep their name and get the file's description. Idempotent.
func seedEnvironments(ctx context.Context, repo domain.EnvironmentRepository, path string, logger *slog.Logger) error {
	envs, err := config.LoadEnvironments(path)
	if err != nil {
		return err
	}
	for i := range envs {
		if err := repo.Upsert(ctx, &envs[i]); err != nil {
			return fmt.Errorf("register environment %s: %w", envs[i].Name, err)
		}
	}
	logger.Info("environments registered", "file", path, "count", len(envs))
	return nil
}
