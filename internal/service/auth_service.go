package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/taskboard/internal/cache"
	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/security"
	"github.com/yourorg/taskboard/internal/security/auth"
)

// AuthService implements registration, login, logout and the profile
// operations. Profile reads go through the same cache store as tasks under
// their own key namespace.
type AuthService struct {
	userRepo    domain.UserRepository
	tokens      *auth.TokenManager
	blacklist   *auth.Blacklist
	engine      *security.Engine
	store       cache.Store
	cacheTTL    time.Duration
	tokenExpiry time.Duration
	logger      *slog.Logger
}

// NewAuthService creates an auth service
func NewAuthService(
	userRepo domain.UserRepository,
	tokens *auth.TokenManager,
	blacklist *auth.Blacklist,
	engine *security.Engine,
	store cache.Store,
	cacheTTL time.Duration,
	tokenExpiry time.Duration,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	if tokenExpiry <= 0 {
		tokenExpiry = time.Hour
	}
	return &AuthService{
		userRepo:    userRepo,
		tokens:      tokens,
		blacklist:   blacklist,
		engine:      engine,
		store:       store,
		cacheTTL:    cacheTTL,
		tokenExpiry: tokenExpiry,
		logger:      logger,
	}
}

// RegisterRequest is the signup payload. ManagerID is optional and only
// meaningful for users.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	ManagerID string `json:"managerId"`
}

// Register creates an account. Emails are unique; a managerId must point
// at an existing manager account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", domain.ErrValidation)
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q: %w", req.Role, domain.ErrValidation)
	}

	if req.ManagerID != "" {
		if role != domain.RoleUser {
			return nil, fmt.Errorf("only users can have a manager: %w", domain.ErrValidation)
		}
		manager, err := s.userRepo.GetByID(ctx, req.ManagerID)
		if err != nil || manager.Role != domain.RoleManager {
			return nil, fmt.Errorf("manager %s: %w", req.ManagerID, domain.ErrInvalidManager)
		}
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email %s: %w", req.Email, domain.ErrEmailTaken)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		ManagerID:    req.ManagerID,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// Login verifies credentials and mints a bearer token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role, user.Email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return token, user, nil
}

// Logout blacklists the presented token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, token string, claims *auth.Claims) error {
	ttl := s.tokenExpiry
	if claims != nil && claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.blacklist.Add(ctx, token, ttl)
}

// GetProfile returns one user's profile through the cache. Visibility is
// evaluated on every read, cached or not.
func (s *AuthService) GetProfile(ctx context.Context, actor domain.Actor, userID string) (*domain.User, error) {
	key := cache.ProfileKey(userID)

	if payload, ok := s.store.Get(ctx, key); ok {
		var user domain.User
		if err := json.Unmarshal([]byte(payload), &user); err == nil {
			if !s.engine.CanViewProfile(actor, &user) {
				return nil, fmt.Errorf("unauthorized access: %w", domain.ErrForbidden)
			}
			return &user, nil
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.engine.CanViewProfile(actor, user) {
		return nil, fmt.Errorf("unauthorized access: %w", domain.ErrForbidden)
	}

	if payload, err := json.Marshal(user); err == nil {
		s.store.Set(ctx, key, string(payload), s.cacheTTL)
	}
	return user, nil
}

// ProfilesQuery carries the optional profile-listing filters. Role and
// HasManager only take effect for admins; managers and users keep their
// pinned scope.
type ProfilesQuery struct {
	Role       string // comma-separated set, any match
	HasManager *bool
	SortDesc   bool // createdAt order, ascending by default
}

// GetProfiles lists the profiles the actor may see: admins see everyone,
// optionally narrowed by role and manager presence; managers see their
// team; users see themselves. The cache key serializes the resolved
// filter so differently shaped queries never share an entry.
func (s *AuthService) GetProfiles(ctx context.Context, actor domain.Actor, query ProfilesQuery) ([]*domain.User, error) {
	var filter domain.UserFilter
	switch actor.Role {
	case domain.RoleAdmin:
		if query.Role != "" {
			for _, part := range strings.Split(query.Role, ",") {
				role := domain.Role(strings.TrimSpace(part))
				if !role.Valid() {
					return nil, fmt.Errorf("invalid role %q: %w", part, domain.ErrValidation)
				}
				filter.Roles = append(filter.Roles, role)
			}
		}
		filter.HasManager = query.HasManager
	case domain.RoleManager:
		filter.ManagerID = actor.ID
	case domain.RoleUser:
		filter.ID = actor.ID
	default:
		return nil, fmt.Errorf("unauthorized operation: %w", domain.ErrForbidden)
	}

	sortAsc := !query.SortDesc
	key := cache.ProfileQueryKey(actor.ID, filter, sortAsc)
	if payload, ok := s.store.Get(ctx, key); ok {
		var users []*domain.User
		if err := json.Unmarshal([]byte(payload), &users); err == nil {
			return users, nil
		}
	}

	users, err := s.userRepo.Find(ctx, filter, sortAsc)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*domain.User{}
	}

	if payload, err := json.Marshal(users); err == nil {
		s.store.Set(ctx, key, string(payload), s.cacheTTL)
	}
	return users, nil
}

// AssignManager puts a user under a manager. Admin-only, one-shot: a user
// who already has a manager keeps them.
func (s *AuthService) AssignManager(ctx context.Context, actor domain.Actor, userID, managerID string) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("only admins can assign managers: %w", domain.ErrForbidden)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleUser {
		return nil, fmt.Errorf("only users can be assigned a manager: %w", domain.ErrValidation)
	}
	if user.ManagerID != "" {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrHasManager)
	}

	manager, err := s.userRepo.GetByID(ctx, managerID)
	if err != nil || manager.Role != domain.RoleManager {
		return nil, fmt.Errorf("manager %s: %w", managerID, domain.ErrInvalidManager)
	}

	user.ManagerID = manager.ID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.store.Delete(ctx, cache.ProfileKey(user.ID))

	s.logger.Info("manager assigned",
		slog.String("user_id", user.ID),
		slog.String("manager_id", manager.ID),
	)
	return user, nil
}
