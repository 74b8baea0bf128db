package auth

// Role es el rol con el que se emitió el token.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Role   Role
	Email  string
}
