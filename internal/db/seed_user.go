package db

import (
	"context"

	"github.com/geocoder89/taskmanager/internal/apperr"
	"github.com/geocoder89/taskmanager/internal/config"
	"github.com/geocoder89/taskmanager/internal/domain/user"
)

type UserCreator interface {
	Create(ctx context.Context, req user.CreateRequest) (user.Response, error)
}

// EnsureSeedUser registers the configured seed account unless it already exists.
func EnsureSeedUser(ctx context.Context, users UserCreator, cfg config.Config) (created bool, err error) {
	if cfg.SeedUserEmail == "" || cfg.SeedUserPassword == "" {
		return false, nil
	}

	_, err = users.Create(ctx, user.CreateRequest{
		FullName: cfg.SeedUserName,
		Email:    cfg.SeedUserEmail,
		Password: cfg.SeedUserPassword,
	})

	if apperr.KindOf(err) == apperr.KindEmailInUse {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
