package models

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse is returned by both login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterForm is the registration screen input, including the confirmation field.
type RegisterForm struct {
	Username        string `json:"username" validate:"required,username"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Request drops the confirmation field.
func (f RegisterForm) Request() RegisterRequest {
	return RegisterRequest{Username: f.Username, Email: f.Email, Password: f.Password}
}
