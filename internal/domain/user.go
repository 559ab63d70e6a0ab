package domain

// User is the authenticated account profile returned by login/register.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"` // "host" or "traveller"
}

// Credentials is a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is a new-account request. Role selects which platform
// endpoint the request is forwarded to.
type Registration struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone,omitempty"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"-"`
}

// AuthResult is the outcome of a login or registration call.
// Token is an opaque bearer token; this application never inspects it.
type AuthResult struct {
	Token string `json:"token,omitempty"`
	User  User   `json:"user"`
}
