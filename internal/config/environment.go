package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// Environment is a snapshot of raw environment variables. It is captured once
// at process entry and handed to Validate; nothing else reads os.Environ.
type Environment map[string]string

// FromEnviron builds an Environment from KEY=VALUE pairs as returned by
// os.Environ. Entries without '=' are ignored.
func FromEnviron(environ []string) Environment {
	env := make(Environment, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// WithDotenv returns a copy of e extended with the variables from a dotenv
// file. Values already present in e take precedence over the file.
func (e Environment) WithDotenv(path string) (Environment, error) {
	fileEnv, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	merged := make(Environment, len(e)+len(fileEnv))
	for k, v := range fileEnv {
		merged[k] = v
	}
	for k, v := range e {
		merged[k] = v
	}
	return merged, nil
}

// Lookup returns the value for key and whether it is set.
func (e Environment) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// declared returns the declared keys of e that carry a value. Keys set to
// the empty string are left to blank.
func (e Environment) declared() map[string]string {
	out := make(map[string]string, len(registry))
	for _, f := range registry {
		if v, ok := e[f.Key]; ok && v != "" {
			out[f.Key] = v
		}
	}
	return out
}

// blank returns the declared fields that are present in e with an empty
// value, in declaration order.
func (e Environment) blank() []Field {
	var out []Field
	for _, f := range registry {
		if v, ok := e[f.Key]; ok && v == "" {
			out = append(out, f)
		}
	}
	return out
}
