package auth

import "strings"

const (
	RoleLibrarian = "ROLE_LIBRARIAN"
	RoleUser      = "ROLE_USER"

	rolePrefix = "ROLE_"
)

// NormalizeRole upper-cases r and adds the ROLE_ prefix when it is missing,
// so "librarian" and "ROLE_LIBRARIAN" name the same role.
func NormalizeRole(r string) string {
	r = strings.ToUpper(strings.TrimSpace(r))
	if r == "" || strings.HasPrefix(r, rolePrefix) {
		return r
	}
	return rolePrefix + r
}

// Policy is the set of roles an operation accepts. A caller satisfies it by
// holding any one of them. The zero Policy accepts nobody.
type Policy struct {
	anyOf []string
}

func RequireAny(roles ...string) Policy {
	p := Policy{anyOf: make([]string, 0, len(roles))}
	for _, r := range roles {
		if r = NormalizeRole(r); r != "" {
			p.anyOf = append(p.anyOf, r)
		}
	}
	return p
}

// Allows reports whether held contains at least one required role.
func (p Policy) Allows(held []string) bool {
	for _, h := range held {
		h = NormalizeRole(h)
		for _, want := range p.anyOf {
			if h == want {
				return true
			}
		}
	}
	return false
}

func (p Policy) String() string {
	return strings.Join(p.anyOf, " or ")
}

var (
	// ReadCatalog guards lookups, availability checks and search.
	ReadCatalog = RequireAny(RoleLibrarian, RoleUser)
	// ManageCatalog guards availability updates.
	ManageCatalog = RequireAny(RoleLibrarian)
)
