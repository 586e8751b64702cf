// Package service holds the task and user use cases. Every operation runs in
// a single unit of work and reports failures as *apperr.Error.
package service

import (
	"context"
	"errors"

	"github.com/geocoder89/taskmanager/internal/apperr"
	"github.com/geocoder89/taskmanager/internal/observability"
	"github.com/geocoder89/taskmanager/internal/repo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Hasher is the one-way credential hasher.
type Hasher interface {
	Hash(plain string) (string, error)
	Matches(plain, hash string) bool
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return observability.Tracer().Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.KindOf(err).String())
	}
	span.End()
}

// storeErr classifies an error coming out of a unit of work. Errors that are
// already classified pass through untouched.
func storeErr(err error, notFound string) error {
	if err == nil {
		return nil
	}

	if _, ok := apperr.As(err); ok {
		return err
	}

	switch {
	case errors.Is(err, repo.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repo.ErrDuplicateEmail):
		return apperr.Wrap(apperr.KindEmailInUse, "", err)
	case errors.Is(err, repo.ErrConstraint):
		return apperr.Database(err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperr.Wrap(apperr.KindGeneral, "request timed out", err)
	default:
		return apperr.Wrap(apperr.KindGeneral, "", err)
	}
}

func requireUser(ctx context.Context, users repo.UserRepository, id int64) error {
	ok, err := users.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("user not found")
	}
	return nil
}

// emailTaken reports whether email belongs to a user other than selfID.
func emailTaken(ctx context.Context, users repo.UserRepository, email string, selfID int64) (bool, error) {
	u, err := users.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.ID != selfID, nil
}
