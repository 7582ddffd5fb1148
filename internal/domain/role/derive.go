package role

// defaultRoleSurfaces is the closed fallback table used when none of the
// requested role slugs match a configured role. It mirrors the surfaces the
// system templates grant, so derivation never yields zero access for a
// well-known role even on a tenant with a broken or empty role table.
var defaultRoleSurfaces = map[string][]Surface{
	"owner":      {SurfaceDashboard, SurfaceWebapp},
	"manager":    {SurfaceDashboard},
	"front-desk": {SurfaceDashboard},
	"coach":      {SurfaceDashboard, SurfaceWebapp},
	"member":     {SurfaceWebapp},
}

// Access maps each granted application surface to the role slugs that are
// valid within that surface. A role may be assigned to a principal globally
// yet apply to only some of the surfaces it unlocks.
type Access map[Surface][]string

// Surfaces returns the granted surfaces in the fixed system order.
func (a Access) Surfaces() []Surface {
	out := make([]Surface, 0, len(a))
	for _, s := range []Surface{SurfaceDashboard, SurfaceWebapp} {
		if _, ok := a[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Derive computes which application surfaces the given role slugs grant,
// using the tenant's role configuration.
//
// A non-empty override is used verbatim as the surface set. Otherwise the
// granted surfaces are the union of the active configs matching the requested
// slugs; when no config matches anything the fallback table is consulted, and
// as a last resort the member webapp surface is granted so a principal is
// never left without any derivable access.
//
// For every granted surface, the result lists the requested roles valid for
// that surface (config surfaces first, fallback table for unconfigured
// roles), preserving the order of the requested slugs. Deterministic for
// identical inputs.
func Derive(roles []string, configs []Config, override []Surface) Access {
	bySlug := make(map[string]*Config, len(configs))
	for i := range configs {
		if configs[i].IsActive {
			bySlug[configs[i].Slug] = &configs[i]
		}
	}

	surfaces := make(map[Surface]bool)
	switch {
	case len(override) > 0:
		for _, s := range override {
			surfaces[s] = true
		}
	default:
		matched := false
		for _, slug := range roles {
			cfg, ok := bySlug[slug]
			if !ok {
				continue
			}
			for _, s := range cfg.Surfaces {
				surfaces[s] = true
				matched = true
			}
		}
		if !matched {
			for _, slug := range roles {
				for _, s := range defaultRoleSurfaces[slug] {
					surfaces[s] = true
				}
			}
		}
		if len(surfaces) == 0 {
			surfaces[SurfaceWebapp] = true
		}
	}

	access := make(Access, len(surfaces))
	for s := range surfaces {
		access[s] = rolesForSurface(s, roles, bySlug)
	}
	return access
}

// rolesForSurface filters the requested roles down to those valid for a
// single surface, in request order.
func rolesForSurface(s Surface, roles []string, bySlug map[string]*Config) []string {
	out := []string{}
	for _, slug := range roles {
		if cfg, ok := bySlug[slug]; ok {
			if hasSurface(cfg.Surfaces, s) {
				out = append(out, slug)
			}
			continue
		}
		if hasSurface(defaultRoleSurfaces[slug], s) {
			out = append(out, slug)
		}
	}
	return out
}

func hasSurface(surfaces []Surface, s Surface) bool {
	for _, v := range surfaces {
		if v == s {
			return true
		}
	}
	return false
}
