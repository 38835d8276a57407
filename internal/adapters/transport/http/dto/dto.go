package dto

type RegisterDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ValidateDTO struct {
	AccessToken string `json:"access_token" validate:"required"`
}

// LogoutDTO carries whatever credentials the caller still holds. Both are
// optional: logout with no session is a successful no-op.
type LogoutDTO struct {
	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token"`
}

type ResetRequestDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetConfirmDTO struct {
	UserID      string `json:"user_id"      validate:"required,uuid4"`
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"newPassword"  validate:"required"`
}
