package session

// Company is the company attached to an authenticated user.
type Company struct {
	Name string `json:"name"`
}

// User is the authenticated-user record as returned by the backend.
type User struct {
	ID        int      `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      string   `json:"role"`
	Company   *Company `json:"company,omitempty"`
}

// Credentials is a password login submission.
type Credentials struct {
	Email      string
	Password   string
	RememberMe bool
}
