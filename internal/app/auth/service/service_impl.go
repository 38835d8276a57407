package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Velarin/ChatHaven/auth-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Velarin/ChatHaven/auth-service/internal/domain/auth/errors"
	"github.com/Velarin/ChatHaven/auth-service/internal/domain/auth/jwt"
	"github.com/Velarin/ChatHaven/auth-service/internal/domain/auth/mail"
	"github.com/Velarin/ChatHaven/auth-service/internal/domain/auth/model"
	"github.com/Velarin/ChatHaven/auth-service/internal/domain/auth/repo"
	"github.com/Velarin/ChatHaven/auth-service/internal/infra/config"
	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

type authService struct {
	userRepo  repo.UserRepo
	tokenRepo repo.TokenRepo
	jwtUtil   jwt.TokenUtil
	mailer    mail.Mailer
	cfg       *config.Config
	v         *validator.Validate
	log       *zap.Logger
}

type Service interface {
	Register(context.Context, dto.RegisterDTO) error
	Login(context.Context, dto.LoginDTO) (model.TokenPair, error)
	Validate(context.Context, dto.ValidateDTO) (model.User, error)
	Refresh(context.Context, dto.RefreshDTO) (model.TokenPair, error)
	Logout(context.Context, dto.LogoutDTO) error
	RequestPasswordReset(context.Context, dto.ResetRequestDTO) error
	ConfirmPasswordReset(context.Context, dto.ResetConfirmDTO) error
}

func New(
	ur repo.UserRepo,
	tr repo.TokenRepo,
	jm jwt.TokenUtil,
	m mail.Mailer,
	cfg *config.Config,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	return &authService{
		userRepo: ur, tokenRepo: tr, jwtUtil: jm, mailer: m, cfg: cfg, v: v, log: log,
	}
}

func (a *authService) hashPassword(plain string) (string, error) {
	return argon2id.CreateHash(plain+a.cfg.PasswordPepper, argonParams)
}

func (a *authService) Register(ctx context.Context, dto dto.RegisterDTO) error {
	if err := a.v.Struct(dto); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	passwordHash, err := a.hashPassword(dto.Password)
	if err != nil {
		return customErrors.WrapInternal(err, "Register")
	}

	user := model.User{
		ID:           uuid.New(),
		Email:        dto.Email,
		PasswordHash: passwordHash,
	}
	if _, err = a.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return customErrors.ErrAlreadyExists
		}
		return customErrors.WrapInternal(err, "Register")
	}

	return nil
}

// issuePair mints a fresh access+refresh pair for the user. The caller is
// responsible for persisting the refresh token on the account record.
func (a *authService) issuePair(userID uuid.UUID) (model.TokenPair, error) {
	at, _, _, err := a.jwtUtil.GenerateAccessToken(userID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, _, jti, err := a.jwtUtil.GenerateRefreshToken(userID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}

	return model.TokenPair{
		AccessToken:     at,
		RefreshToken:    rt,
		AccessTTL:       a.cfg.AccessTokenTTL,
		RefreshTTL:      a.cfg.RefreshTokenTTL,
		UserId:          userID,
		RefreshTokenJTI: jti,
	}, nil
}

func (a *authService) Login(ctx context.Context, dto dto.LoginDTO) (model.TokenPair, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, dto.Email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.TokenPair{}, customErrors.ErrNotFound
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := argon2id.ComparePasswordAndHash(dto.Password+a.cfg.PasswordPepper, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	pair, err := a.issuePair(user.ID)
	if err != nil {
		return model.TokenPair{}, err
	}

	// overwrite any previous session: at most one live refresh token
	if err := a.userRepo.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "SetRefreshToken")
	}

	return pair, nil
}

func (a *authService) Validate(ctx context.Context, dto dto.ValidateDTO) (model.User, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.jwtUtil.ValidateAccessToken(dto.AccessToken)
	if err != nil {
		return model.User{}, err
	}

	revoked, err := a.tokenRepo.IsAccessRevoked(ctx, claims.ID)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Validate")
	}
	if revoked {
		return model.User{}, customErrors.ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}
	user, err := a.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}
	return user, nil
}

func (a *authService) Refresh(ctx context.Context, dto dto.RefreshDTO) (model.TokenPair, error) {
	if dto.RefreshToken == "" {
		return model.TokenPair{}, customErrors.ErrMissingToken
	}

	claims, err := a.jwtUtil.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	user, err := a.userRepo.GetUserByID(ctx, uid)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.TokenPair{}, customErrors.ErrNotFound
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	// a verifiable token that is not the stored one is a replay of a
	// rotated-out token or a concurrent session takeover
	if user.RefreshToken != dto.RefreshToken {
		return model.TokenPair{}, customErrors.ErrTokenMismatch
	}

	// second line of defence: the stored value normally catches replays,
	// the jti denylist covers tokens revoked out of band
	revoked, err := a.tokenRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}
	if revoked {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	pair, err := a.issuePair(user.ID)
	if err != nil {
		return model.TokenPair{}, err
	}

	// compare-and-set: of two concurrent refreshes presenting the same
	// token, exactly one lands this update, the other gets a mismatch
	err = a.userRepo.RotateRefreshToken(ctx, user.ID, dto.RefreshToken, pair.RefreshToken)
	switch {
	case errors.Is(err, customErrors.ErrTokenMismatch):
		return model.TokenPair{}, customErrors.ErrTokenMismatch
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "RotateRefreshToken")
	}

	// the rotated-out token is dead regardless of its remaining lifetime
	if err := a.tokenRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		a.log.Warn("revoke rotated refresh jti", zap.Error(err))
	}

	return pair, nil
}

func (a *authService) Logout(ctx context.Context, dto dto.LogoutDTO) error {
	// idempotent: no presented token, or a token that no longer verifies,
	// is still a successful logout
	if dto.RefreshToken != "" {
		claims, err := a.jwtUtil.ValidateRefreshToken(dto.RefreshToken)
		if err == nil {
			if uid, perr := uuid.Parse(claims.Subject); perr == nil {
				if err := a.userRepo.ClearRefreshToken(ctx, uid); err != nil {
					return customErrors.WrapInternal(err, "Logout")
				}
			}
			if err := a.tokenRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				a.log.Warn("revoke refresh jti on logout", zap.Error(err))
			}
		}
	}

	// close the remaining access-token window as well, when the caller
	// still holds one
	if dto.AccessToken != "" {
		if claims, err := a.jwtUtil.ValidateAccessToken(dto.AccessToken); err == nil {
			if err := a.tokenRepo.RevokeAccess(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				a.log.Warn("revoke access jti on logout", zap.Error(err))
			}
		}
	}

	return nil
}

func (a *authService) RequestPasswordReset(ctx context.Context, dto dto.ResetRequestDTO) error {
	if err := a.v.Struct(dto); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, dto.Email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	case err != nil:
		return customErrors.WrapInternal(err, "RequestPasswordReset")
	}

	token, _, err := a.jwtUtil.GeneratePasswordResetToken(user.ID, user.Email, user.PasswordHash)
	if err != nil {
		return customErrors.WrapInternal(err, "GeneratePasswordResetToken")
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s/%s", a.cfg.FrontendURL, user.ID, token)
	if err := a.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		return fmt.Errorf("%w: %v", customErrors.ErrDeliveryFailed, err)
	}

	return nil
}

func (a *authService) ConfirmPasswordReset(ctx context.Context, dto dto.ResetConfirmDTO) error {
	if err := a.v.Struct(dto); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	uid, err := uuid.Parse(dto.UserID)
	if err != nil {
		return customErrors.ErrNotFound
	}

	user, err := a.userRepo.GetUserByID(ctx, uid)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	case err != nil:
		return customErrors.WrapInternal(err, "ConfirmPasswordReset")
	}

	// verified against the CURRENT hash: if the password changed since the
	// token was issued, the signing key is gone and this fails
	claims, err := a.jwtUtil.ValidatePasswordResetToken(dto.Token, user.PasswordHash)
	if err != nil {
		return err
	}
	if claims.Subject != user.ID.String() {
		return customErrors.ErrInvalidToken
	}

	newHash, err := a.hashPassword(dto.NewPassword)
	if err != nil {
		return customErrors.WrapInternal(err, "ConfirmPasswordReset")
	}
	if err := a.userRepo.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return customErrors.WrapInternal(err, "UpdatePassword")
	}

	// a reset ends the live session too
	if err := a.userRepo.ClearRefreshToken(ctx, user.ID); err != nil {
		a.log.Warn("clear refresh token after reset", zap.Error(err))
	}

	// the password HAS changed at this point; a failed notification must
	// not fail the reset
	if err := a.mailer.SendPasswordResetConfirmation(ctx, user.Email); err != nil {
		a.log.Warn("send reset confirmation", zap.String("email", user.Email), zap.Error(err))
	}

	return nil
}
