package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/taskmanager/internal/apperr"
	"github.com/geocoder89/taskmanager/internal/domain/user"
	"github.com/geocoder89/taskmanager/internal/observability"
	"github.com/geocoder89/taskmanager/internal/repo"
	"github.com/geocoder89/taskmanager/internal/validation"
)

const userNotFound = "user not found"

type UserService struct {
	store  repo.Store
	hasher Hasher
	log    *slog.Logger
	prom   *observability.Prom
}

func NewUserService(store repo.Store, hasher Hasher, log *slog.Logger, prom *observability.Prom) *UserService {
	return &UserService{
		store:  store,
		hasher: hasher,
		log:    log,
		prom:   prom,
	}
}

func (s *UserService) Create(ctx context.Context, req user.CreateRequest) (resp user.Response, err error) {
	ctx, span := startSpan(ctx, "UserService.Create")
	defer func() { endSpan(span, err) }()

	if err := validation.Struct(req); err != nil {
		return user.Response{}, err
	}

	var created user.User

	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		taken, err := emailTaken(ctx, r.Users(), req.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.EmailInUse()
		}

		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return apperr.Wrap(apperr.KindGeneral, "could not hash password", err)
		}

		created, err = r.Users().Save(ctx, user.FromCreateRequest(req, hash))
		return err
	})
	if err != nil {
		return user.Response{}, storeErr(err, userNotFound)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", created.ID)

	return user.ToResponse(created), nil
}

func (s *UserService) List(ctx context.Context) (out []user.Response, err error) {
	ctx, span := startSpan(ctx, "UserService.List")
	defer func() { endSpan(span, err) }()

	var users []user.User

	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		users, err = r.Users().FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, storeErr(err, userNotFound)
	}

	return user.ToResponses(users), nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (resp user.Response, err error) {
	ctx, span := startSpan(ctx, "UserService.GetByID")
	defer func() { endSpan(span, err) }()

	var u user.User

	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		u, err = r.Users().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return user.Response{}, storeErr(err, userNotFound)
	}

	return user.ToResponse(u), nil
}

// Update replaces name, email and password. req.Password is taken as a new
// plaintext password; no current password is required here, UpdateProfile
// is the checked path.
func (s *UserService) Update(ctx context.Context, id int64, req user.CreateRequest) (resp user.Response, err error) {
	ctx, span := startSpan(ctx, "UserService.Update")
	defer func() { endSpan(span, err) }()

	if err := validation.Struct(req); err != nil {
		return user.Response{}, err
	}

	var saved user.User

	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		u, err := r.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Email != u.Email {
			taken, err := emailTaken(ctx, r.Users(), req.Email, u.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.EmailInUse()
			}
		}

		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return apperr.Wrap(apperr.KindGeneral, "could not hash password", err)
		}

		u.FullName = req.FullName
		u.Email = req.Email
		u.PasswordHash = hash

		saved, err = r.Users().Save(ctx, u)
		return err
	})
	if err != nil {
		return user.Response{}, storeErr(err, userNotFound)
	}

	return user.ToResponse(saved), nil
}

// Delete removes the user together with all of their tasks.
func (s *UserService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := startSpan(ctx, "UserService.Delete")
	defer func() { endSpan(span, err) }()

	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		if err := requireUser(ctx, r.Users(), id); err != nil {
			return err
		}
		return r.Users().DeleteByID(ctx, id)
	})
	if err != nil {
		return storeErr(err, userNotFound)
	}

	s.log.InfoContext(ctx, "user deleted", "user_id", id)

	return nil
}

// Login verifies the credentials and returns the matching user.
func (s *UserService) Login(ctx context.Context, email, rawPassword string) (u user.User, err error) {
	ctx, span := startSpan(ctx, "UserService.Login")
	defer func() { endSpan(span, err) }()

	// blank credentials are not rejected up front, the lookup and the hash
	// comparison decide between not found and wrong password
	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		u, err = r.Users().FindByEmail(ctx, email)
		return err
	})

	if errors.Is(err, repo.ErrNotFound) {
		s.prom.ObserveLogin("unknown_email")
		s.log.WarnContext(ctx, "login failed", "email", email, "reason", "unknown_email")
		return user.User{}, apperr.NotFound("email not found")
	}
	if err != nil {
		return user.User{}, storeErr(err, userNotFound)
	}

	if !s.hasher.Matches(rawPassword, u.PasswordHash) {
		s.prom.ObserveLogin("wrong_password")
		s.log.WarnContext(ctx, "login failed", "email", email, "reason", "wrong_password")
		return user.User{}, apperr.WrongPassword()
	}

	s.prom.ObserveLogin("ok")

	return u, nil
}

// UpdateProfile is the self-service update. A new password is only accepted
// together with the correct current password.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, req user.UpdateProfileRequest) (resp user.Response, err error) {
	ctx, span := startSpan(ctx, "UserService.UpdateProfile")
	defer func() { endSpan(span, err) }()

	// the new password is validated only after the lookup, the email check
	// and the current password presence check
	if err := validation.StructExcept(req, "NewPassword"); err != nil {
		return user.Response{}, err
	}

	var saved user.User

	err = s.store.WithinTx(ctx, func(r repo.Repos) error {
		u, err := r.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Email != u.Email {
			taken, err := emailTaken(ctx, r.Users(), req.Email, u.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.EmailInUse()
			}
		}

		if req.RotatesPassword() {
			if req.CurrentPassword == "" {
				s.prom.ObservePasswordRotation("missing_current")
				return apperr.RequiredField("current password is required")
			}
			if err := validation.Struct(req); err != nil {
				return err
			}
			if !s.hasher.Matches(req.CurrentPassword, u.PasswordHash) {
				s.prom.ObservePasswordRotation("wrong_password")
				return apperr.WrongPassword()
			}

			hash, err := s.hasher.Hash(req.NewPassword)
			if err != nil {
				return apperr.Wrap(apperr.KindGeneral, "could not hash password", err)
			}
			u.PasswordHash = hash
		}

		u.FullName = req.FullName
		u.Email = req.Email

		saved, err = r.Users().Save(ctx, u)
		return err
	})
	if err != nil {
		return user.Response{}, storeErr(err, userNotFound)
	}

	if req.RotatesPassword() {
		s.prom.ObservePasswordRotation("ok")
		s.log.InfoContext(ctx, "password rotated", "user_id", saved.ID)
	}

	return user.ToResponse(saved), nil
}
