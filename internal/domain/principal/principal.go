// Package principal defines the authenticated caller model and the
// organization visibility scope used to filter tenant data.
package principal

// Principal is the authenticated caller of a request: subject id, email, the
// role slugs assigned in the tenant, and the organization visibility scope.
type Principal struct {
	SubjectID string
	Email     string
	Roles     []string
	Scope     OrganizationScope
}

// New builds a Principal from the raw claim fields. An empty orgIDs list is
// the "access to all organizations" sentinel and becomes an all-scope; this
// is the only place the sentinel is interpreted.
func New(subjectID, email string, roles, orgIDs []string) Principal {
	return Principal{
		SubjectID: subjectID,
		Email:     email,
		Roles:     roles,
		Scope:     ScopeFromIDs(orgIDs),
	}
}

// HasRole reports whether the principal carries the given role slug.
func (p Principal) HasRole(slug string) bool {
	for _, r := range p.Roles {
		if r == slug {
			return true
		}
	}
	return false
}
