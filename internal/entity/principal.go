package entity

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type PrincipalKind int

const (
	// PrincipalUser is an end user authenticated through the gateway.
	PrincipalUser PrincipalKind = iota
	// PrincipalService is another service of ours calling with a minted
	// service token. Resolved once at the verification boundary; nothing
	// downstream inspects token subjects.
	PrincipalService
)

// Principal is the authenticated identity attached to a request. The
// raw token is carried so product reads can forward the caller's own
// credential to the catalog.
type Principal struct {
	Kind     PrincipalKind
	UserID   int64
	Username string
	FullName string
	Role     Role
	Token    string
}

func (p Principal) IsAdmin() bool {
	return p.Kind == PrincipalService || p.Role == RoleAdmin
}
