package tenant

import "regexp"

// DefaultDatabasePrefix is the prefix prepended to every tenant database name.
// The prefix is load-bearing: the connection registry refuses any database
// name that does not carry it.
const DefaultDatabasePrefix = "tenant_"

// maxDatabaseNameLen is the PostgreSQL identifier length limit.
const maxDatabaseNameLen = 63

var databaseNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// DatabaseName derives the tenant database name from a slug: prefix + slug
// with every hyphen replaced by an underscore. "acme-gym" -> "tenant_acme_gym".
func DatabaseName(prefix, slug string) string {
	b := make([]byte, 0, len(prefix)+len(slug))
	b = append(b, prefix...)
	for i := 0; i < len(slug); i++ {
		if slug[i] == '-' {
			b = append(b, '_')
		} else {
			b = append(b, slug[i])
		}
	}
	return string(b)
}

// ValidDatabaseName reports whether name matches the tenant database naming
// convention: the configured prefix followed by lowercase alphanumerics and
// underscores, within the PostgreSQL identifier length limit. Exactly the
// outputs of DatabaseName over valid slugs satisfy this.
func ValidDatabaseName(prefix, name string) bool {
	if len(name) <= len(prefix) || len(name) > maxDatabaseNameLen {
		return false
	}
	if name[:len(prefix)] != prefix {
		return false
	}
	return databaseNamePattern.MatchString(name[len(prefix):])
}
