// Package config loads command configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every variable read by warlord commands.
const EnvPrefix = "WARLORD_"

// ParseEnv loads WARLORD_-prefixed environment variables into target. Struct
// tags name variables without the prefix.
func ParseEnv(target any) error {
	return parse(target, env.Options{Prefix: EnvPrefix})
}

// ParseEnvFrom loads target from an explicit environment instead of the
// process one. Keys still carry the prefix.
func ParseEnvFrom(target any, environment map[string]string) error {
	return parse(target, env.Options{Prefix: EnvPrefix, Environment: environment})
}

func parse(target any, options env.Options) error {
	if err := env.ParseWithOptions(target, options); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
