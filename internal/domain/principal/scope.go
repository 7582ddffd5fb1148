package principal

import (
	"fmt"
	"sort"

	"github.com/fitstack/fitstack/internal/domain"
)

// OrganizationScope is the set of organizations a principal may see: either
// every organization in the tenant, or an explicit subset. The zero value is
// an empty subset (access to nothing); build scopes through AllOrganizations,
// Organizations, or ScopeFromIDs so the all/subset branch is carried by the
// type and not by a possibly-empty slice at each call site.
type OrganizationScope struct {
	all bool
	ids map[string]struct{}
}

// AllOrganizations returns the scope covering every organization.
func AllOrganizations() OrganizationScope {
	return OrganizationScope{all: true}
}

// Organizations returns a scope restricted to exactly the given ids.
func Organizations(ids ...string) OrganizationScope {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return OrganizationScope{ids: set}
}

// ScopeFromIDs converts a principal's raw organization-id list into a scope.
// An empty list means access to all organizations, never access to none.
func ScopeFromIDs(ids []string) OrganizationScope {
	if len(ids) == 0 {
		return AllOrganizations()
	}
	return Organizations(ids...)
}

// All reports whether the scope covers every organization.
func (s OrganizationScope) All() bool {
	return s.all
}

// IDs returns the subset's organization ids in sorted order. Nil for an
// all-organizations scope.
func (s OrganizationScope) IDs() []string {
	if s.all || len(s.ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// HasAccess reports whether the scope covers orgID. An all-organizations
// scope covers every id unconditionally.
func (s OrganizationScope) HasAccess(orgID string) bool {
	if s.all {
		return true
	}
	_, ok := s.ids[orgID]
	return ok
}

// Validate returns domain.ErrAccessDenied when the scope does not cover
// orgID. Entry points that narrow to a requested organization must call this
// before building a filter, so denial is loud instead of an empty result.
func (s OrganizationScope) Validate(orgID string) error {
	if !s.HasAccess(orgID) {
		return fmt.Errorf("organization %s: %w", orgID, domain.ErrAccessDenied)
	}
	return nil
}

// Filter is a query-time organization constraint consumed by list queries.
// All true means no organization predicate is applied.
type Filter struct {
	All    bool
	OrgIDs []string
}

// ListFilter builds the query filter for a list operation. requested is the
// optional explicit organization id from the request ("" for none).
//
// All-scope: no requested id yields an unconstrained filter; an explicit
// requested id narrows to exactly that organization (an explicit ask is
// honored even for fully privileged principals). Subset scope: the filter is
// the subset, or the single requested id when it is a member; a requested id
// outside the subset is an access violation, not an empty result.
func (s OrganizationScope) ListFilter(requested string) (Filter, error) {
	if requested != "" {
		if err := s.Validate(requested); err != nil {
			return Filter{}, err
		}
		return Filter{OrgIDs: []string{requested}}, nil
	}
	if s.all {
		return Filter{All: true}, nil
	}
	return Filter{OrgIDs: s.IDs()}, nil
}
