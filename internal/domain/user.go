package domain

// User is a portal account. Role drives dashboard configuration and which
// ticket stages the user may act on.
type User struct {
	ID           string
	Username     string
	Name         string
	Role         Role
	PasswordHash string
}
