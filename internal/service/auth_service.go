package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/trainer-booking-api/internal/models"
	"github.com/noah-isme/trainer-booking-api/internal/repository"
	appErrors "github.com/noah-isme/trainer-booking-api/pkg/errors"
)

type adminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
	Count(ctx context.Context) (int64, error)
}

type tokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthConfig defines configuration for admin authentication.
type AuthConfig struct {
	Secret       string
	Expiry       time.Duration
	Issuer       string
	StoreTimeout time.Duration
}

// AuthService issues and verifies admin bearer tokens.
type AuthService struct {
	repo      adminRepository
	denylist  tokenDenylist
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	store     storeGuard
	now       func() time.Time
}

// NewAuthService constructs an AuthService. denylist may be nil, in which case logout only
// ends the session client side.
func NewAuthService(repo adminRepository, denylist tokenDenylist, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Expiry <= 0 {
		config.Expiry = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		denylist:  denylist,
		validator: validate,
		logger:    logger,
		config:    config,
		store:     newStoreGuard(config.StoreTimeout, nil),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Login checks credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WithDetails(appErrors.ErrMissingField, "please provide username and password", []string{"username and password are required"})
	}

	var admin *models.Admin
	err := s.store.run(ctx, "admins.find_by_username", func(ctx context.Context) error {
		var err error
		admin, err = s.repo.FindByUsername(ctx, req.Username)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("login failed", zap.String("username", req.Username), zap.String("ip", req.IP))
		return nil, appErrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login failed", zap.String("username", req.Username), zap.String("ip", req.IP))
		return nil, appErrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.generateAccessToken(admin)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("admin logged in",
		zap.String("admin_id", admin.ID),
		zap.String("action", models.AuditActionLogin),
		zap.String("ip", req.IP),
		zap.String("user_agent", req.UserAgent),
	)
	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.Expiry.Seconds()),
		ExpiresAt: expiresAt,
		Admin:     models.AdminInfo{ID: admin.ID, Username: admin.Username},
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.AdminClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now)}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.AdminClaims)
	if !ok || !token.Valid || claims.AdminID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	if s.denylist != nil {
		var revoked bool
		if err := s.store.run(ctx, "tokens.is_revoked", func(ctx context.Context) error {
			var err error
			revoked, err = s.denylist.IsRevoked(ctx, claims.ID)
			return err
		}); err != nil {
			s.logger.Warn("token revocation check failed", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token has been revoked")
		}
	}
	return claims, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *models.AdminClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if s.denylist != nil && claims.ExpiresAt != nil {
		ttl := claims.ExpiresAt.Time.Sub(s.now())
		if err := s.store.run(ctx, "tokens.revoke", func(ctx context.Context) error {
			return s.denylist.Revoke(ctx, claims.ID, ttl)
		}); err != nil {
			return err
		}
	}
	s.logger.Info("admin logged out", zap.String("admin_id", claims.AdminID), zap.String("action", models.AuditActionLogout))
	return nil
}

// Me loads the admin behind the token.
func (s *AuthService) Me(ctx context.Context, claims *models.AdminClaims) (*models.AdminInfo, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	var admin *models.Admin
	err := s.store.run(ctx, "admins.find_by_id", func(ctx context.Context) error {
		var err error
		admin, err = s.repo.FindByID(ctx, claims.AdminID)
		return err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "admin no longer exists")
	}
	if err != nil {
		return nil, err
	}
	return &models.AdminInfo{ID: admin.ID, Username: admin.Username}, nil
}

// EnsureDefaultAdmin creates the initial admin when the store holds none.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}
	var count int64
	if err := s.store.run(ctx, "admins.count", func(ctx context.Context) error {
		var err error
		count, err = s.repo.Count(ctx)
		return err
	}); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default admin password: %w", err)
	}
	admin := &models.Admin{Username: username, PasswordHash: string(hash), CreatedAt: s.now()}
	err = s.store.run(ctx, "admins.create", func(ctx context.Context) error {
		return s.repo.Create(ctx, admin)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Warn("default admin created, change its password", zap.String("username", username))
	return nil
}

func (s *AuthService) generateAccessToken(admin *models.Admin) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.config.Expiry)
	claims := &models.AdminClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   admin.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
