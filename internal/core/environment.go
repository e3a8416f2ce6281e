package core

import "os"

// Environment represents the deployment environment of the service.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// String returns the string representation of the environment.
func (e Environment) String() string {
	return string(e)
}

// IsProduction reports whether the environment corresponds to production.
func (e Environment) IsProduction() bool {
	return e == Production
}

// FromEnv reads the APP_ENV variable. Unknown or empty values fall back to
// Development so the application can still start with sensible defaults.
func FromEnv() Environment {
	switch Environment(os.Getenv("APP_ENV")) {
	case Production:
		return Production
	case Staging:
		return Staging
	default:
		return Development
	}
}
