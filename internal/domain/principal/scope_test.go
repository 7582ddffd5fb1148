package principal

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fitstack/fitstack/internal/domain"
)

func TestEmptyMeansAll(t *testing.T) {
	s := ScopeFromIDs(nil)
	if !s.All() {
		t.Fatal("empty org list must produce an all-organizations scope")
	}
	for _, id := range []string{"org-1", "org-7", "anything"} {
		if !s.HasAccess(id) {
			t.Errorf("all scope denied %s", id)
		}
	}
}

func TestAllScopeUnconstrainedFilter(t *testing.T) {
	f, err := ScopeFromIDs(nil).ListFilter("")
	if err != nil {
		t.Fatalf("list filter: %v", err)
	}
	if !f.All || len(f.OrgIDs) != 0 {
		t.Fatalf("filter = %+v, want unconstrained", f)
	}
}

func TestAllScopeExplicitAskNarrows(t *testing.T) {
	f, err := ScopeFromIDs(nil).ListFilter("org-7")
	if err != nil {
		t.Fatalf("list filter: %v", err)
	}
	if f.All || !reflect.DeepEqual(f.OrgIDs, []string{"org-7"}) {
		t.Fatalf("filter = %+v, want exactly org-7", f)
	}
}

func TestSubsetScopeContainment(t *testing.T) {
	s := ScopeFromIDs([]string{"org-1", "org-2"})
	if s.All() {
		t.Fatal("non-empty org list must not produce an all scope")
	}
	if !s.HasAccess("org-1") || !s.HasAccess("org-2") {
		t.Error("member orgs must be covered")
	}
	if s.HasAccess("org-9") {
		t.Error("non-member org must not be covered")
	}
}

func TestValidateDeniesOutOfScope(t *testing.T) {
	s := ScopeFromIDs([]string{"org-1", "org-2"})
	if err := s.Validate("org-1"); err != nil {
		t.Errorf("validate org-1: %v", err)
	}
	err := s.Validate("org-9")
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("validate org-9 = %v, want ErrAccessDenied", err)
	}
}

func TestSubsetFilterIsScope(t *testing.T) {
	f, err := ScopeFromIDs([]string{"org-2", "org-1"}).ListFilter("")
	if err != nil {
		t.Fatalf("list filter: %v", err)
	}
	if f.All {
		t.Fatal("subset scope must constrain")
	}
	if !reflect.DeepEqual(f.OrgIDs, []string{"org-1", "org-2"}) {
		t.Fatalf("filter orgs = %v, want sorted subset", f.OrgIDs)
	}
}

func TestSubsetFilterNarrowsToMember(t *testing.T) {
	f, err := ScopeFromIDs([]string{"org-1", "org-2"}).ListFilter("org-2")
	if err != nil {
		t.Fatalf("list filter: %v", err)
	}
	if !reflect.DeepEqual(f.OrgIDs, []string{"org-2"}) {
		t.Fatalf("filter orgs = %v, want org-2 only", f.OrgIDs)
	}
}

func TestSubsetFilterRejectsNonMember(t *testing.T) {
	_, err := ScopeFromIDs([]string{"org-1", "org-2"}).ListFilter("org-9")
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("err = %v, want ErrAccessDenied, never an empty filter", err)
	}
}

func TestZeroValueScopeDeniesEverything(t *testing.T) {
	var s OrganizationScope
	if s.All() || s.HasAccess("org-1") {
		t.Fatal("zero-value scope must grant nothing")
	}
}

func TestPrincipalRoles(t *testing.T) {
	p := New("user-1", "a@b.c", []string{"front-desk", "coach"}, []string{"org-1"})
	if !p.HasRole("coach") {
		t.Error("expected coach role")
	}
	if p.HasRole("owner") {
		t.Error("unexpected owner role")
	}
	if p.Scope.All() {
		t.Error("scope must be a subset")
	}
}
