package domain

// User is the public profile returned by the marketplace backend.
type User struct {
	UserID    string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Cellphone string `json:"cellphone,omitempty"`
	Verified  bool   `json:"verified,omitempty"`
}

// Registration is the form a student fills in before proving control of the email address.
type Registration struct {
	Name      string `json:"name" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email"`
	Cellphone string `json:"cellphone" validate:"required,min=8,max=20"`
	Password  string `json:"password" validate:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Credentials is what the backend hands back on a successful login.
type Credentials struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
