package role

// Templates are the system-wide default role definitions copied into every
// new tenant at provisioning time. Tenants may customize their copies; the
// templates themselves never change at runtime.
func Templates() []Config {
	return []Config{
		{
			Slug:     "owner",
			Name:     "Owner",
			Surfaces: []Surface{SurfaceDashboard, SurfaceWebapp},
			IsSuper:  true,
			IsActive: true,
		},
		{
			Slug:     "manager",
			Name:     "Manager",
			Surfaces: []Surface{SurfaceDashboard},
			IsActive: true,
		},
		{
			Slug:     "front-desk",
			Name:     "Front Desk",
			Surfaces: []Surface{SurfaceDashboard},
			IsActive: true,
		},
		{
			Slug:     "coach",
			Name:     "Coach",
			Surfaces: []Surface{SurfaceDashboard, SurfaceWebapp},
			IsActive: true,
		},
		{
			Slug:      "member",
			Name:      "Member",
			Surfaces:  []Surface{SurfaceWebapp},
			IsDefault: true,
			IsActive:  true,
		},
	}
}
