package domain

import "time"

// Role enumerates the closed set of platform roles. Both the token issuer
// and the route guard must agree on this set.
type Role string

const (
	RoleCustomer       Role = "customer"
	RoleRestaurant     Role = "restaurant"
	RoleDeliveryPerson Role = "delivery_person"
	RoleAdmin          Role = "admin"
	RoleManager        Role = "manager"
	RoleDeveloper      Role = "developer"
)

// IsValid reports whether the role belongs to the closed enumeration.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleRestaurant, RoleDeliveryPerson, RoleAdmin, RoleManager, RoleDeveloper:
		return true
	default:
		return false
	}
}

// User is the domain model for platform accounts. Records are owned by the
// remote user-directory service; this service only reads and creates them
// through the directory client.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the caller-facing view of a user with secret fields removed.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Public strips the password hash from the user record.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// NewUser carries the fields needed to create an account in the directory.
// The password is already hashed by the time this value exists; plaintext
// never crosses the directory boundary.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}
