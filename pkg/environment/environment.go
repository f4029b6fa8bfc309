// Package environment names the deployment environments boardnotify runs in
// and normalises the loose spellings accepted from APP_ENV.
package environment

import "strings"

// Environment represents application environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Parse maps a raw APP_ENV value to a known Environment.
// Unknown and empty values fall back to Development.
func Parse(raw string) Environment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}

// IsProduction reports whether env is the production environment.
func (e Environment) IsProduction() bool {
	return e == Production
}
