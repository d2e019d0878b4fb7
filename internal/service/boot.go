package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Bootstrap гарантирует наличие системных учётных записей sidekick и admin
// и сверяет системные настройки. Выполняется при старте сервера.
func Bootstrap(ctx context.Context, users *UserService, settings *SettingsService, adminPassword string, logger *zap.SugaredLogger) error {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if _, created, err := users.EnsureUser(ctx, CreateUserInput{
		ID:       SystemUserID,
		Name:     "Sidekick",
		Password: randomSecret(),
	}); err != nil {
		return fmt.Errorf("ensure %s user: %w", SystemUserID, err)
	} else if created {
		logger.Infow("system user created", "user_id", SystemUserID)
	}

	if _, created, err := users.EnsureUser(ctx, CreateUserInput{
		ID:         AdminUserID,
		Name:       "Administrator",
		Password:   adminPassword,
		Properties: []byte(`{"roles":{"admin":true}}`),
	}); err != nil {
		return fmt.Errorf("ensure %s user: %w", AdminUserID, err)
	} else if created {
		logger.Infow("admin user created", "user_id", AdminUserID)
	}

	if err := settings.UpdateSystemSettings(ctx); err != nil {
		return fmt.Errorf("update system settings: %w", err)
	}
	if err := settings.UpdateDefaultSettings(ctx, SystemUserID); err != nil {
		return fmt.Errorf("update default settings: %w", err)
	}
	return nil
}
