package config

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"sort"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report env keys instead of struct field names.
	v.RegisterTagNameFunc(envKey)
	mustRegister(v, "expiresin", func(fl validator.FieldLevel) bool {
		_, err := ParseExpiresIn(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "proxies", func(fl validator.FieldLevel) bool {
		return validProxies(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("config: register %s: %v", tag, err))
	}
}

// validProxies reports whether list is a comma-separated list of IP
// addresses or CIDR ranges.
func validProxies(list string) bool {
	for _, p := range splitList(list) {
		if net.ParseIP(p) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return false
		}
	}
	return true
}

// ValidationError lists every environment key that failed coercion or a
// constraint, with one or more human-readable reasons per key.
type ValidationError struct {
	Fields map[string][]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Error renders one line per failing key and reason.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid environment variables:")
	for _, key := range e.Keys() {
		for _, reason := range e.Fields[key] {
			fmt.Fprintf(&b, "\n  %s: %s", key, reason)
		}
	}
	return b.String()
}

// Keys returns the failing keys in declaration order.
func (e *ValidationError) Keys() []string {
	keys := make([]string, 0, len(e.Fields))
	seen := make(map[string]bool, len(e.Fields))
	for _, f := range registry {
		if _, ok := e.Fields[f.Key]; ok {
			keys = append(keys, f.Key)
			seen[f.Key] = true
		}
	}

	var rest []string
	for key := range e.Fields {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	return append(keys, rest...)
}

// Has reports whether key failed validation.
func (e *ValidationError) Has(key string) bool {
	_, ok := e.Fields[key]
	return ok
}

func (e *ValidationError) add(key, reason string) {
	e.Fields[key] = append(e.Fields[key], reason)
}

// Load validates the environment snapshot and returns the configuration.
func Load(raw Environment) (*Config, error) {
	cfg, err := Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate derives a Config from raw. Absent keys take their declared default;
// present keys, including ones set to the empty string, are coerced and
// checked. Every failure is collected before returning, so a
// *ValidationError names all invalid keys at once. On error no Config is
// returned.
func Validate(raw Environment) (*Config, error) {
	values := raw.declared()
	cfg := &Config{}
	verr := newValidationError()

	if err := env.ParseWithOptions(cfg, env.Options{Environment: values}); err != nil {
		if err := collectParseErrors(err, values, verr); err != nil {
			return nil, err
		}
	}

	// The env package substitutes the default for an empty value, so
	// blank keys are applied here.
	applyBlank(cfg, raw.blank(), verr)

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("failed to validate config: %w", err)
		}
		for _, fe := range fieldErrs {
			// A key that could not be coerced holds a zero value; its
			// coercion failure already explains the problem.
			if verr.Has(fe.Field()) {
				continue
			}
			verr.add(fe.Field(), describe(fe))
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return cfg, nil
}

// collectParseErrors moves coercion failures from the env package's aggregate
// error into verr. Any other error is returned as is.
func collectParseErrors(err error, values map[string]string, verr *ValidationError) error {
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	for _, e := range agg.Errors {
		var parseErr env.ParseError
		if !errors.As(e, &parseErr) {
			return fmt.Errorf("failed to parse config: %w", e)
		}
		f, ok := fieldByGoName(parseErr.Name)
		if !ok {
			return fmt.Errorf("failed to parse config: %w", e)
		}
		verr.add(f.Key, integerReason(values[f.Key]))
	}

	return nil
}

// applyBlank stores the empty value of each blank field. An empty integer
// is a coercion failure and an empty boolean is false.
func applyBlank(cfg *Config, fields []Field, verr *ValidationError) {
	root := reflect.ValueOf(cfg).Elem()
	for _, f := range fields {
		switch f.Type {
		case FieldInteger:
			verr.add(f.Key, integerReason(""))
		case FieldBoolean:
			root.FieldByIndex(f.index).SetBool(false)
		default:
			root.FieldByIndex(f.index).SetString("")
		}
	}
}

func integerReason(value string) string {
	return fmt.Sprintf("must be an integer, got %q", value)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		if fe.Param() == "0" {
			return "must be a positive integer"
		}
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "url":
		return "must be a valid URL"
	case "expiresin":
		return `must be a positive duration such as "7d" or "12h"`
	case "proxies":
		return "must be a comma-separated list of IP addresses or CIDR ranges"
	default:
		return fmt.Sprintf("failed the %q constraint", fe.Tag())
	}
}
