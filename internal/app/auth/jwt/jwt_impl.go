package jwt

import (
	"crypto/sha256"
	"errors"
	"time"

	customErrors "github.com/Velarin/ChatHaven/auth-service/internal/domain/auth/errors"
	jwt2 "github.com/Velarin/ChatHaven/auth-service/internal/domain/auth/jwt"
	"github.com/Velarin/ChatHaven/auth-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JwtUtilImpl struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	resetTTL      time.Duration
	issuer        string
	audience      string
}

func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, customErrors.NewInvalidArgument("token secrets must be set")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, customErrors.NewInvalidArgument("access and refresh secrets must differ")
	}

	return &JwtUtilImpl{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		resetTTL:      cfg.ResetTokenTTL,
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
	}, nil
}

// resetKey derives the reset-token signing key from the account's current
// password hash. Once the hash changes the key is gone, so every reset
// token issued before the change fails verification.
func resetKey(passwordHash string) []byte {
	sum := sha256.Sum256([]byte(passwordHash))
	return sum[:]
}

func (j *JwtUtilImpl) registered(userID uuid.UUID, ttl time.Duration, jti string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    j.issuer,
		Audience:  jwt.ClaimStrings{j.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        jti,
	}
}

func (j *JwtUtilImpl) GenerateAccessToken(userID uuid.UUID) (token string, exp time.Time, jti string, err error) {
	jti = uuid.NewString()
	claims := jwt2.AccessClaims{RegisteredClaims: j.registered(userID, j.accessTTL, jti)}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.accessSecret)
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign access token")
	}

	return signed, claims.ExpiresAt.Time, jti, nil
}

func (j *JwtUtilImpl) GenerateRefreshToken(userID uuid.UUID) (token string, exp time.Time, jti string, err error) {
	jti = uuid.NewString()
	claims := jwt2.RefreshClaims{RegisteredClaims: j.registered(userID, j.refreshTTL, jti)}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.refreshSecret)
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign refresh token")
	}

	return signed, claims.ExpiresAt.Time, jti, nil
}

func (j *JwtUtilImpl) GeneratePasswordResetToken(userID uuid.UUID, email, passwordHash string) (token string, exp time.Time, err error) {
	claims := jwt2.ResetClaims{
		RegisteredClaims: j.registered(userID, j.resetTTL, uuid.NewString()),
		Email:            email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(resetKey(passwordHash))
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "sign reset token")
	}

	return signed, claims.ExpiresAt.Time, nil
}

// parse maps jwt library failures onto the domain taxonomy: an expired but
// otherwise well-signed token is ErrExpiredToken, everything else is
// ErrInvalidToken. Callers react differently to the two.
func (j *JwtUtilImpl) parse(raw string, claims jwt.Claims, key []byte) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return key, nil
	}, jwt.WithIssuedAt())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return customErrors.ErrExpiredToken
		}
		return customErrors.ErrInvalidToken
	}
	if !token.Valid {
		return customErrors.ErrInvalidToken
	}
	return nil
}

func (j *JwtUtilImpl) checkRegistered(rc jwt.RegisteredClaims) error {
	if j.issuer != "" && rc.Issuer != j.issuer {
		return customErrors.ErrInvalidToken
	}
	if j.audience != "" {
		found := false
		for _, aud := range rc.Audience {
			if aud == j.audience {
				found = true
			}
		}
		if !found {
			return customErrors.ErrInvalidToken
		}
	}
	return nil
}

func (j *JwtUtilImpl) ValidateAccessToken(raw string) (jwt2.AccessClaims, error) {
	var claims jwt2.AccessClaims
	if err := j.parse(raw, &claims, j.accessSecret); err != nil {
		return jwt2.AccessClaims{}, err
	}
	if err := j.checkRegistered(claims.RegisteredClaims); err != nil {
		return jwt2.AccessClaims{}, err
	}
	return claims, nil
}

func (j *JwtUtilImpl) ValidateRefreshToken(raw string) (jwt2.RefreshClaims, error) {
	var claims jwt2.RefreshClaims
	if err := j.parse(raw, &claims, j.refreshSecret); err != nil {
		return jwt2.RefreshClaims{}, err
	}
	if err := j.checkRegistered(claims.RegisteredClaims); err != nil {
		return jwt2.RefreshClaims{}, err
	}
	return claims, nil
}

func (j *JwtUtilImpl) ValidatePasswordResetToken(raw, passwordHash string) (jwt2.ResetClaims, error) {
	var claims jwt2.ResetClaims
	if err := j.parse(raw, &claims, resetKey(passwordHash)); err != nil {
		return jwt2.ResetClaims{}, err
	}
	if err := j.checkRegistered(claims.RegisteredClaims); err != nil {
		return jwt2.ResetClaims{}, err
	}
	return claims, nil
}
