package auth

import (
	stderrors "errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	errors "github.com/mitrakatalog/catalog-management/internal"
	userDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/user"
)

type RepositoryAPI interface {
	GetByEmail(email string) (*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
}

type Service struct {
	repo     RepositoryAPI
	tokenGen TokenGeneratorAPI
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokenGen: tokenGen,
		logger:   logger,
	}
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	record, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Warn("login failed: user lookup", "email", dto.Email)
		return AuthTokens{}, errors.ErrInvalidCredentials
	}

	if !record.IsActive {
		return AuthTokens{}, errors.ErrUserInactive
	}

	if err := VerifyPassword(record.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login failed: password mismatch", "user_id", record.ID)
		return AuthTokens{}, errors.ErrInvalidCredentials
	}

	role, ok := ParseRole(record.Role)
	if !ok {
		s.logger.Error("user has unknown role", "user_id", record.ID, "role", record.Role)
		return AuthTokens{}, errors.ErrInvalidCredentials
	}

	return s.issueTokens(record.ID, record.Email, role)
}

func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGen.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, errors.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, errors.ErrInvalidToken
	}

	record, err := s.repo.GetByID(userID)
	if err != nil {
		return AuthTokens{}, errors.ErrInvalidToken
	}
	if !record.IsActive {
		return AuthTokens{}, errors.ErrUserInactive
	}

	role, ok := ParseRole(record.Role)
	if !ok {
		return AuthTokens{}, errors.ErrInvalidToken
	}

	return s.issueTokens(record.ID, record.Email, role)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateAccessToken(tokenString)
}

// UserFromClaims resolves the full principal for validated claims, rejecting
// deactivated accounts even while their token is still unexpired.
func (s *Service) UserFromClaims(claims *Claims) (*User, error) {
	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, errors.ErrInvalidToken
	}

	record, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, errors.ErrInvalidToken
	}
	if !record.IsActive {
		return nil, errors.ErrUserInactive
	}

	role, ok := ParseRole(record.Role)
	if !ok {
		return nil, errors.ErrInvalidToken
	}

	return &User{
		ID:    record.ID,
		Email: record.Email,
		Name:  record.Name,
		Role:  role,
	}, nil
}

func (s *Service) issueTokens(userID int64, email string, role Role) (AuthTokens, error) {
	accessToken, err := s.tokenGen.GenerateAccessToken(userID, email, role)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to sign access token", err)
	}

	refreshToken, err := s.tokenGen.GenerateRefreshToken(userID, email, role)
	if err != nil {
		return AuthTokens{}, errors.NewInternalError("failed to sign refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, email string, role Role) (string, error) {
	return j.sign(userID, email, role, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64, email string, role Role) (string, error) {
	return j.sign(userID, email, role, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) sign(userID int64, email string, role Role, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	subject := strconv.FormatInt(userID, 10)

	claims := &Claims{
		UserID: subject,
		Email:  email,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrInvalidToken
	}
	if !token.Valid {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}
