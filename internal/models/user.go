package models

// Role maps a role name to an integer access level.
// Read-mostly reference data, seeded on first migration.
type Role struct {
	// ID is the unique identifier for the role (UUID format).
	ID string `json:"id"`

	// Name is the unique role name (e.g. "user", "admin").
	Name string `json:"name"`

	// AccessLevel is the ordinal used for privilege comparisons.
	// Higher means more privileged. Allowed values: 1, 2.
	AccessLevel int `json:"access_level"`
}

// AllowedAccessLevels is the closed set of valid Role.AccessLevel values.
var AllowedAccessLevels = []int{1, 2}

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// FirstName and LastName are display name fields.
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// Username is the unique login name.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the password.
	// Never serialized in API responses.
	PasswordHash string `json:"-"`

	// RoleID references the user's Role.
	RoleID string `json:"roleId"`

	// Role is the joined role record, populated by store lookups.
	Role *Role `json:"role,omitempty"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"createdAt"`
}

// AccessLevel returns the user's access level, or 0 when the role is
// missing. Zero denies everything by default.
func (u *User) AccessLevel() int {
	if u == nil || u.Role == nil {
		return 0
	}
	return u.Role.AccessLevel
}
