package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lshigami/examroom/config"
	"github.com/lshigami/examroom/internal/apperror"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "examroom"

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// ParseToken validates a bearer token and returns the caller it names.
	ParseToken(token string) (Identity, error)
	Me(ctx context.Context, id Identity) (*dto.UserResponse, error)
	CreateUser(ctx context.Context, id Identity, req dto.CreateUserRequest) (*dto.UserResponse, error)
	// EnsureAdmin creates the configured bootstrap admin if it does not exist.
	EnsureAdmin(ctx context.Context) error
}

type Claims struct {
	Role      string `json:"role"`
	ClassName string `json:"class_name,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	store      repository.Store
	secret     []byte
	ttl        time.Duration
	adminEmail string
	adminPass  string
	bcryptCost int
	now        Clock
}

func NewAuthService(store repository.Store, cfg *config.Config, now Clock) AuthService {
	return &authService{
		store:      store,
		secret:     []byte(cfg.Auth.JWTSecret),
		ttl:        cfg.Auth.TokenTTL,
		adminEmail: cfg.Auth.AdminEmail,
		adminPass:  cfg.Auth.AdminPassword,
		bcryptCost: bcrypt.DefaultCost,
		now:        now,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.store.Users().FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Unauthenticated("invalid email or password")
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn().Uint("userID", user.ID).Msg("Login rejected: wrong password")
		return nil, apperror.Unauthenticated("invalid email or password")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		Role:      string(user.Role),
		ClassName: user.ClassName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperror.Internal("failed to sign token", err)
	}
	log.Info().Uint("userID", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(user),
	}, nil
}

func (s *authService) ParseToken(token string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Identity{}, apperror.Unauthenticated("invalid or expired token")
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return Identity{}, apperror.Unauthenticated("invalid token subject")
	}
	return Identity{
		UserID:    uint(userID),
		Role:      model.Role(claims.Role),
		ClassName: claims.ClassName,
	}, nil
}

func (s *authService) Me(ctx context.Context, id Identity) (*dto.UserResponse, error) {
	if id.UserID == 0 {
		return nil, apperror.Unauthenticated("authentication required")
	}
	user, err := s.store.Users().FindByID(ctx, id.UserID)
	if err != nil {
		return nil, storeErr(err, "user", id.UserID)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) CreateUser(ctx context.Context, id Identity, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := id.require(model.RoleAdmin); err != nil {
		return nil, err
	}
	role := model.Role(req.Role)
	if role == model.RoleStudent && strings.TrimSpace(req.ClassName) == "" {
		return nil, apperror.Validation("invalid user",
			apperror.FieldError{Field: "class_name", Error: "class_name is required for students"})
	}
	user, err := s.createUser(ctx, req.Name, req.Email, req.Password, role, req.ClassName)
	if err != nil {
		return nil, err
	}
	log.Info().Uint("userID", user.ID).Str("role", string(role)).Uint("createdBy", id.UserID).Msg("User created")
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) createUser(ctx context.Context, name, email, password string, role model.Role, className string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}
	user := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         role,
	}
	if role == model.RoleStudent {
		user.ClassName = strings.TrimSpace(className)
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("a user with this email already exists")
		}
		return nil, apperror.Internal("failed to create user", err)
	}
	return user, nil
}

func (s *authService) EnsureAdmin(ctx context.Context) error {
	if s.adminEmail == "" || s.adminPass == "" {
		log.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}
	_, err := s.store.Users().FindByEmail(ctx, strings.ToLower(s.adminEmail))
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	user, err := s.createUser(ctx, "Administrator", s.adminEmail, s.adminPass, model.RoleAdmin, "")
	if err != nil {
		return err
	}
	log.Info().Uint("userID", user.ID).Str("email", user.Email).Msg("Bootstrap admin created")
	return nil
}
