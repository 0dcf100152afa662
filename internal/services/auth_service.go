package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"urbancabz/internal/config"
	"urbancabz/internal/domain"
	"urbancabz/internal/domain/models"
	"urbancabz/internal/repositories"
)

// AuthService handles registration, login and profile management. Tokens are
// HS256 JWTs carrying the user id and role.
type AuthService struct {
	DB  *sql.DB
	JWT config.JWTConfig
}

func NewAuthService(database *sql.DB, jwtCfg config.JWTConfig) *AuthService {
	if jwtCfg.TTL <= 0 {
		jwtCfg.TTL = 24 * time.Hour
	}
	return &AuthService{DB: database, JWT: jwtCfg}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ValidationError{Field: "email", Msg: "a valid email is required"}
	}
	if len(in.Password) < 6 {
		return nil, domain.ValidationError{Field: "password", Msg: "must be at least 6 characters"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ValidationError{Field: "name", Msg: "is required"}
	}

	users := repositories.UserRepository{DB: s.DB}
	n, err := users.CountByEmail(ctx, email)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to check email", Err: err}
	}
	if n > 0 {
		return nil, domain.ConflictError{Resource: "user", Msg: "email already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to hash password", Err: err}
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         models.RoleCustomer,
	}
	if _, err := users.Create(ctx, &user); err != nil {
		return nil, domain.InternalError{Msg: "failed to create user", Err: err}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ValidationError{Field: "email/password", Msg: "are required"}
	}

	users := repositories.UserRepository{DB: s.DB}
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ValidationError{Field: "credentials", Msg: "invalid email or password"}
		}
		return nil, domain.InternalError{Msg: "failed to fetch user", Err: err}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ValidationError{Field: "credentials", Msg: "invalid email or password"}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (models.User, error) {
	users := repositories.UserRepository{DB: s.DB}
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user"}
		}
		return models.User{}, domain.InternalError{Msg: "failed to fetch user", Err: err}
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name, phone, email string) (models.User, error) {
	current, err := s.Profile(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	if name == "" {
		name = current.Name
	}
	if phone == "" {
		phone = current.Phone
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = current.Email
	}

	users := repositories.UserRepository{DB: s.DB}
	if email != current.Email {
		n, err := users.CountByEmail(ctx, email)
		if err != nil {
			return models.User{}, domain.InternalError{Msg: "failed to check email", Err: err}
		}
		if n > 0 {
			return models.User{}, domain.ConflictError{Resource: "user", Msg: "email already registered"}
		}
	}

	if err := users.UpdateProfile(ctx, userID, name, phone, email); err != nil {
		return models.User{}, domain.InternalError{Msg: "failed to update profile", Err: err}
	}

	current.Name = name
	current.Phone = phone
	current.Email = email
	return current, nil
}

func (s *AuthService) issueToken(user models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.JWT.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.JWT.Secret))
	if err != nil {
		return "", domain.InternalError{Msg: "failed to sign token", Err: err}
	}
	return signed, nil
}

// ParseToken validates a bearer token and returns its claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ValidationError{Field: "token", Msg: "invalid or expired token", Err: err}
	}
	return claims, nil
}
