package dto

type ForgotPasswordInput struct {
	Username string `json:"username" validate:"required"`
}

// ForgotPasswordResponse carries a nil ResetLink when no account matched, so
// the JSON body holds "reset_link": null.
type ForgotPasswordResponse struct {
	Message   string  `json:"message"`
	ResetLink *string `json:"reset_link"`
}

type ResetPasswordInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,max=128"`
}
