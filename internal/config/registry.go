package config

import (
	"fmt"
	"reflect"
	"strings"
)

// FieldType is the declared type of a configuration field.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldInteger FieldType = "integer"
	FieldBoolean FieldType = "boolean"
	FieldEnum    FieldType = "enum"
)

// Field describes one environment key declared by a configuration domain.
type Field struct {
	Domain     string
	Key        string
	Type       FieldType
	Default    string
	HasDefault bool
	Constraint string

	// goName is the struct field name, which is how the env package
	// identifies fields in its parse errors.
	goName string
	// index locates the field within Config.
	index []int
}

var (
	flagType = reflect.TypeOf(Flag(false))

	// registry is built at package initialization so that a key declared by
	// two domains fails every binary and test before any environment is read.
	registry = mustBuildRegistry(reflect.TypeOf(Config{}))
)

// Fields returns every declared field in declaration order.
func Fields() []Field {
	out := make([]Field, len(registry))
	copy(out, registry)
	return out
}

// Defaults returns the default value of every field that declares one.
func Defaults() Environment {
	defaults := make(Environment, len(registry))
	for _, f := range registry {
		if f.HasDefault {
			defaults[f.Key] = f.Default
		}
	}
	return defaults
}

// lookupField returns the field registered under the given env key.
func lookupField(key string) (Field, bool) {
	for _, f := range registry {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// fieldByGoName returns the field declared by the given struct field name.
func fieldByGoName(name string) (Field, bool) {
	for _, f := range registry {
		if f.goName == name {
			return f, true
		}
	}
	return Field{}, false
}

func mustBuildRegistry(root reflect.Type) []Field {
	fields, err := buildRegistry(root)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return fields
}

// buildRegistry walks each domain struct of root and collects its env-tagged
// fields. Keys and struct field names must be unique across all domains.
func buildRegistry(root reflect.Type) ([]Field, error) {
	var fields []Field
	keys := make(map[string]string)
	names := make(map[string]string)

	for i := 0; i < root.NumField(); i++ {
		domain := root.Field(i)
		if domain.Type.Kind() != reflect.Struct {
			return nil, fmt.Errorf("domain %s is not a struct", domain.Name)
		}

		for j := 0; j < domain.Type.NumField(); j++ {
			sf := domain.Type.Field(j)
			key := envKey(sf)
			if key == "" {
				continue
			}

			if owner, dup := keys[key]; dup {
				return nil, fmt.Errorf("key %s declared by both %s and %s", key, owner, domain.Name)
			}
			if owner, dup := names[sf.Name]; dup {
				return nil, fmt.Errorf("field name %s used by both %s and %s", sf.Name, owner, domain.Name)
			}
			keys[key] = domain.Name
			names[sf.Name] = domain.Name

			def, hasDef := sf.Tag.Lookup("envDefault")
			constraint := sf.Tag.Get("validate")

			fields = append(fields, Field{
				Domain:     domain.Name,
				Key:        key,
				Type:       fieldType(sf.Type, constraint),
				Default:    def,
				HasDefault: hasDef,
				Constraint: constraint,
				goName:     sf.Name,
				index:      []int{i, j},
			})
		}
	}

	return fields, nil
}

func envKey(sf reflect.StructField) string {
	tag := sf.Tag.Get("env")
	if tag == "" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func fieldType(t reflect.Type, constraint string) FieldType {
	switch {
	case t == flagType:
		return FieldBoolean
	case t.Kind() == reflect.Int:
		return FieldInteger
	case strings.Contains(constraint, "oneof="):
		return FieldEnum
	default:
		return FieldString
	}
}
