package rbac

// Role names. Keep these stable; they are stored per user and checked on
// every protected request.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
