package config

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields_DeclarationOrder(t *testing.T) {
	var keys []string
	for _, f := range Fields() {
		keys = append(keys, f.Key)
	}

	assert.Equal(t, []string{
		"NODE_ENV", "PORT", "HOST", "API_URL", "GRPC_PORT", "TRUSTED_PROXIES",
		"LOG_LEVEL",
		"DATABASE_URL", "DB_POOL_MIN", "DB_POOL_MAX", "DB_CONNECTION_TIMEOUT",
		"JWT_SECRET", "JWT_EXPIRES_IN", "SESSION_SECRET", "SESSION_MAX_AGE",
		"CORS_ORIGIN", "CORS_CREDENTIALS",
		"RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "REDIS_URL",
	}, keys)
}

func TestFields_Metadata(t *testing.T) {
	tests := []struct {
		key        string
		domain     string
		typ        FieldType
		def        string
		hasDefault bool
	}{
		{key: "NODE_ENV", domain: "Server", typ: FieldEnum, def: "development", hasDefault: true},
		{key: "PORT", domain: "Server", typ: FieldInteger, def: "3001", hasDefault: true},
		{key: "API_URL", domain: "Server", typ: FieldString, hasDefault: false},
		{key: "TRUSTED_PROXIES", domain: "Server", typ: FieldString, hasDefault: false},
		{key: "DB_POOL_MIN", domain: "Database", typ: FieldInteger, def: "2", hasDefault: true},
		{key: "JWT_SECRET", domain: "Auth", typ: FieldString, def: DefaultDevSecret, hasDefault: true},
		{key: "SESSION_SECRET", domain: "Auth", typ: FieldString, def: DefaultDevSecret, hasDefault: true},
		{key: "CORS_CREDENTIALS", domain: "CORS", typ: FieldBoolean, def: "true", hasDefault: true},
		{key: "RATE_LIMIT_WINDOW", domain: "RateLimit", typ: FieldInteger, def: "60000", hasDefault: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			f, ok := lookupField(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.domain, f.Domain)
			assert.Equal(t, tt.typ, f.Type)
			assert.Equal(t, tt.def, f.Default)
			assert.Equal(t, tt.hasDefault, f.HasDefault)
		})
	}
}

func TestFields_ReturnsCopy(t *testing.T) {
	fields := Fields()
	fields[0].Key = "MUTATED"

	assert.Equal(t, "NODE_ENV", Fields()[0].Key)
}

func TestDefaults(t *testing.T) {
	defaults := Defaults()

	assert.Equal(t, "3001", defaults["PORT"])
	assert.Equal(t, "100", defaults["RATE_LIMIT_MAX"])
	assert.Equal(t, "86400", defaults["SESSION_MAX_AGE"])
	_, ok := defaults["API_URL"]
	assert.False(t, ok, "API_URL has no default")

	// Feeding the defaults back in yields the same config as an empty environment.
	fromDefaults, err := Validate(defaults)
	require.NoError(t, err)
	fromEmpty, err := Validate(Environment{})
	require.NoError(t, err)
	assert.Equal(t, fromEmpty, fromDefaults)
}

func TestBuildRegistry_RejectsDuplicateKeys(t *testing.T) {
	type first struct {
		Port int `env:"PORT"`
	}
	type second struct {
		OtherPort int `env:"PORT"`
	}
	type composed struct {
		First  first
		Second second
	}

	_, err := buildRegistry(reflect.TypeOf(composed{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key PORT declared by both First and Second")

	assert.Panics(t, func() {
		mustBuildRegistry(reflect.TypeOf(composed{}))
	})
}

func TestBuildRegistry_RejectsDuplicateFieldNames(t *testing.T) {
	type first struct {
		Max int `env:"A_MAX"`
	}
	type second struct {
		Max int `env:"B_MAX"`
	}
	type composed struct {
		First  first
		Second second
	}

	_, err := buildRegistry(reflect.TypeOf(composed{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field name Max")
}

func TestBuildRegistry_RejectsNonStructDomain(t *testing.T) {
	type composed struct {
		Port int `env:"PORT"`
	}

	_, err := buildRegistry(reflect.TypeOf(composed{}))
	require.Error(t, err)
}
