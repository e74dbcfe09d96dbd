package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/sole_searcher/internal/async"
	"github.com/Skotchmaster/sole_searcher/internal/hash"
	"github.com/Skotchmaster/sole_searcher/internal/logging"
	"github.com/Skotchmaster/sole_searcher/internal/metrics"
	"github.com/Skotchmaster/sole_searcher/internal/models"
	"github.com/Skotchmaster/sole_searcher/internal/repo"
)

const DefaultAdminEmail = "admin@solesearcher.com"

// AuthService owns the user directory and the single active session.
type AuthService struct {
	Repo       *repo.StorageRepo
	Producer   EventPublisher
	AdminEmail string
	// Latency is applied before Register and Login resolve.
	Latency  time.Duration
	HashCost int

	// transitionMu orders session changes and their listener calls.
	transitionMu sync.Mutex

	mu        sync.RWMutex
	users     []models.StoredUser
	current   *models.User
	listeners []SessionListener
}

// Load rehydrates the directory and the session. Unreadable values are
// treated as absent.
func (s *AuthService) Load(ctx context.Context) {
	users, err := s.Repo.LoadUsers(ctx)
	if err != nil {
		storageFailed(ctx, "auth", "load", err)
		users = nil
	}
	session, err := s.Repo.LoadSession(ctx)
	if err != nil {
		storageFailed(ctx, "auth", "load", err)
		session = nil
	}

	s.mu.Lock()
	s.users = users
	s.current = session
	s.mu.Unlock()

	logging.FromContext(ctx).Debug("auth_loaded", "users", len(users), "session", session != nil)
}

func (s *AuthService) AddListener(l SessionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *AuthService) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

func (s *AuthService) RegisterAsync(ctx context.Context, email, password string) *async.Future[models.User] {
	return async.Go(func() (models.User, error) {
		return s.register(ctx, email, password)
	})
}

func (s *AuthService) Register(ctx context.Context, email, password string) (models.User, error) {
	return s.RegisterAsync(ctx, email, password).Wait()
}

func (s *AuthService) LoginAsync(ctx context.Context, email, password string) *async.Future[models.User] {
	return async.Go(func() (models.User, error) {
		return s.login(ctx, email, password)
	})
}

func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, error) {
	return s.LoginAsync(ctx, email, password).Wait()
}

func (s *AuthService) register(ctx context.Context, email, password string) (models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if strings.TrimSpace(email) == "" || password == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("register", metrics.OutcomeFailure).Inc()
		return models.User{}, fmt.Errorf("email and password are required: %w", ErrValidation)
	}
	if err := async.Delay(ctx, s.Latency); err != nil {
		return models.User{}, err
	}
	if s.emailTaken(email) {
		return models.User{}, s.duplicate(l)
	}

	pwHash, err := hash.HashPasswordCost(password, s.HashCost)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:    uuid.NewString(),
		Email: email,
		Role:  s.roleFor(email),
	}

	s.transitionMu.Lock()
	s.mu.Lock()
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		s.transitionMu.Unlock()
		return models.User{}, fmt.Errorf("register: %w", err)
	}
	if s.indexLocked(email) >= 0 {
		s.mu.Unlock()
		s.transitionMu.Unlock()
		return models.User{}, s.duplicate(l)
	}
	s.users = append(s.users, models.StoredUser{User: user, PasswordHash: pwHash})
	if err := s.Repo.SaveUsers(ctx, s.users); err != nil {
		storageFailed(ctx, "auth", "save", err)
	}
	s.setSessionLocked(ctx, &user)
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	s.notify(ctx, listeners, &user)
	s.transitionMu.Unlock()

	metrics.AuthAttemptsTotal.WithLabelValues("register", metrics.OutcomeSuccess).Inc()
	publish(ctx, s.Producer, TopicUserEvents, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
		"role":   user.Role,
	})
	l.Info("register_success", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *AuthService) login(ctx context.Context, email, password string) (models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if strings.TrimSpace(email) == "" || password == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("login", metrics.OutcomeFailure).Inc()
		return models.User{}, fmt.Errorf("email and password are required: %w", ErrValidation)
	}
	if err := async.Delay(ctx, s.Latency); err != nil {
		return models.User{}, err
	}

	s.mu.RLock()
	var stored *models.StoredUser
	if i := s.indexLocked(email); i >= 0 {
		su := s.users[i]
		stored = &su
	}
	s.mu.RUnlock()

	if stored == nil || !hash.CheckPassword(stored.PasswordHash, password) {
		metrics.AuthAttemptsTotal.WithLabelValues("login", metrics.OutcomeFailure).Inc()
		l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
		return models.User{}, fmt.Errorf("login %s: %w", email, ErrInvalidCredentials)
	}

	user := stored.User
	s.transitionMu.Lock()
	if err := ctx.Err(); err != nil {
		s.transitionMu.Unlock()
		return models.User{}, fmt.Errorf("login: %w", err)
	}
	s.mu.Lock()
	s.setSessionLocked(ctx, &user)
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	s.notify(ctx, listeners, &user)
	s.transitionMu.Unlock()

	metrics.AuthAttemptsTotal.WithLabelValues("login", metrics.OutcomeSuccess).Inc()
	publish(ctx, s.Producer, TopicUserEvents, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})
	l.Info("login_success", "user_id", user.ID)
	return user, nil
}

// Logout ends the session. Stored carts are kept.
func (s *AuthService) Logout(ctx context.Context) {
	s.transitionMu.Lock()
	s.mu.Lock()
	prev := s.current
	s.current = nil
	if err := s.Repo.ClearSession(ctx); err != nil {
		storageFailed(ctx, "auth", "save", err)
	}
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	s.notify(ctx, listeners, nil)
	s.transitionMu.Unlock()

	if prev != nil {
		publish(ctx, s.Producer, TopicUserEvents, map[string]any{
			"type":   "user_logged_out",
			"userID": prev.ID,
		})
		logging.FromContext(ctx).Info("logout_success", "user_id", prev.ID)
	}
}

func (s *AuthService) setSessionLocked(ctx context.Context, u *models.User) {
	cp := *u
	s.current = &cp
	if err := s.Repo.SaveSession(ctx, cp); err != nil {
		storageFailed(ctx, "auth", "save", err)
	}
}

func (s *AuthService) notify(ctx context.Context, listeners []SessionListener, u *models.User) {
	for _, ln := range listeners {
		var arg *models.User
		if u != nil {
			cp := *u
			arg = &cp
		}
		ln.SessionChanged(ctx, arg)
	}
}

func (s *AuthService) duplicate(l *slog.Logger) error {
	metrics.AuthAttemptsTotal.WithLabelValues("register", metrics.OutcomeFailure).Inc()
	l.Warn("register_error", "status", 409, "reason", "email already registered")
	return fmt.Errorf("register: %w", ErrDuplicateEmail)
}

func (s *AuthService) emailTaken(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(email) >= 0
}

// indexLocked matches emails exactly.
func (s *AuthService) indexLocked(email string) int {
	return slices.IndexFunc(s.users, func(u models.StoredUser) bool {
		return u.Email == email
	})
}

func (s *AuthService) roleFor(email string) models.Role {
	admin := s.AdminEmail
	if admin == "" {
		admin = DefaultAdminEmail
	}
	if strings.EqualFold(email, admin) {
		return models.RoleAdmin
	}
	return models.RoleUser
}
