package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/storefront/backend/internal/apperr"
	"github.com/storefront/backend/internal/auth"
	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/repository"
)

// UserService handles accounts and sessions.
type UserService struct {
	repo    repository.UserRepository
	tokens  *auth.TokenManager
	revoker auth.Revoker
	log     *slog.Logger
	now     func() time.Time

	// emails holds every registered address. A miss means the address is
	// definitely free and the lookup before insert can be skipped; the
	// unique index stays the authority.
	emailsMu sync.Mutex
	emails   *bloom.BloomFilter
}

// NewUserService creates a user service. filterCapacity is the expected
// number of accounts.
func NewUserService(repo repository.UserRepository, tokens *auth.TokenManager, revoker auth.Revoker, filterCapacity uint, log *slog.Logger) *UserService {
	return &UserService{
		repo:    repo,
		tokens:  tokens,
		revoker: revoker,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		emails:  bloom.NewWithEstimates(filterCapacity, 0.01),
	}
}

// WarmEmailFilter loads the registered addresses into the filter.
func (s *UserService) WarmEmailFilter(ctx context.Context) (int, error) {
	emails, err := s.repo.ListEmails(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range emails {
		s.rememberEmail(e)
	}
	return len(emails), nil
}

func (s *UserService) rememberEmail(email string) {
	s.emailsMu.Lock()
	defer s.emailsMu.Unlock()
	s.emails.AddString(strings.ToLower(email))
}

func (s *UserService) mayBeRegistered(email string) bool {
	s.emailsMu.Lock()
	defer s.emailsMu.Unlock()
	return s.emails.TestString(email)
}

// Register creates a non-admin account and signs it in.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Email == "" || req.Password == "" {
		return nil, apperr.InvalidRequest("Please fill all fields")
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if s.mayBeRegistered(email) {
		_, err := s.repo.GetByEmail(ctx, email)
		switch {
		case err == nil:
			return nil, apperr.Conflict("User already exists")
		case !errors.Is(err, repository.ErrNotFound):
			return nil, apperr.Persistence(err, "failed to look up user")
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to hash password")
	}

	now := s.now()
	user := &models.User{
		ID:        generateID(),
		Username:  username,
		Email:     email,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.rememberEmail(email)
			return nil, apperr.Conflict("User already exists")
		}
		return nil, apperr.Persistence(err, "failed to create user")
	}
	s.rememberEmail(email)

	s.log.Info("user registered", "user_id", user.ID)
	return s.session(user)
}

// Login verifies credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperr.InvalidRequest("Email and password are required")
	}

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("Invalid email or password")
		}
		return nil, apperr.Persistence(err, "failed to look up user")
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}

	return s.session(user)
}

func (s *UserService) session(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to issue token")
	}
	resp := authResponse(user)
	resp.Token = token
	return resp, nil
}

// Logout revokes the token so it cannot be used again. Invalid or expired
// tokens need no revocation.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, s.tokens.Remaining(claims)); err != nil {
		return apperr.Persistence(err, "failed to revoke token")
	}
	return nil
}

// Authenticate resolves the user behind a session token.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthorized("Not authorized, token failed")
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to check token")
	}
	if revoked {
		return nil, apperr.Unauthorized("Not authorized, token revoked")
	}

	user, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("Not authorized, user not found")
		}
		return nil, apperr.Persistence(err, "failed to load user")
	}
	return user, nil
}

// GetUser returns the user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}
	return user, nil
}

// UpdateProfile changes the caller's own username, email or password.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}

	if err := s.applyIdentity(user, upd.Username, upd.Email); err != nil {
		return nil, err
	}
	if upd.Password != "" {
		hash, err := auth.HashPassword(upd.Password)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, err, "failed to hash password")
		}
		user.Password = hash
	}

	return s.save(ctx, user)
}

// UpdateUser is the admin edit of any account.
func (s *UserService) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err)
	}

	if err := s.applyIdentity(user, upd.Username, upd.Email); err != nil {
		return nil, err
	}
	if upd.IsAdmin != nil {
		user.IsAdmin = *upd.IsAdmin
	}

	return s.save(ctx, user)
}

// DeleteUser removes a non-admin account.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return userLookupError(err)
	}
	if user.IsAdmin {
		return apperr.InvalidRequest("Cannot delete admin user")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return userLookupError(err)
	}
	s.log.Info("user deleted", "user_id", id)
	return nil
}

func (s *UserService) applyIdentity(user *models.User, username, email string) error {
	if username = strings.TrimSpace(username); username != "" {
		user.Username = username
	}
	if email != "" {
		normalized, err := normalizeEmail(email)
		if err != nil {
			return err
		}
		user.Email = normalized
	}
	user.UpdatedAt = s.now()
	return nil
}

func (s *UserService) save(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("Email already in use")
		}
		return nil, userLookupError(err)
	}
	s.rememberEmail(user.Email)
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", apperr.InvalidRequest("Invalid email address")
	}
	return strings.ToLower(addr.Address), nil
}

func authResponse(u *models.User) *models.AuthResponse {
	return &models.AuthResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
	}
}

func userLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	return apperr.Persistence(err, "failed to load user")
}
