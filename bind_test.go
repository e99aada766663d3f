package envssm

import (
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/api/resource"
)

type bindTestConfig struct {
	Value1   string  `env:"VALUE1" default:"def1"`
	Value2   string  `secret:"VALUE2" default:"def2"`
	Flag     bool    `env:"FLAG" default:"1"`
	IntVal   int     `env:"INTVAL" default:"7"`
	FloatVal float64 `env:"FLOATVAL" default:"3.14"`
	NoEnv    string
}

func TestBind(t *testing.T) {
	tests := []struct {
		name   string
		source map[string]any
		want   bindTestConfig
	}{
		{
			name:   "defaults",
			source: map[string]any{},
			want:   bindTestConfig{Value1: "def1", Value2: "def2", Flag: true, IntVal: 7, FloatVal: 3.14},
		},
		{
			name: "overrides",
			source: map[string]any{
				"VALUE1":   "v1",
				"VALUE2":   "v2",
				"FLAG":     "false",
				"INTVAL":   "42",
				"FLOATVAL": "2.5",
				"NoEnv":    "plain",
			},
			want: bindTestConfig{Value1: "v1", Value2: "v2", Flag: false, IntVal: 42, FloatVal: 2.5, NoEnv: "plain"},
		},
		{
			name:   "case-insensitive keys from the store",
			source: map[string]any{"value1": "lower", "intval": "3"},
			want:   bindTestConfig{Value1: "lower", Value2: "def2", Flag: true, IntVal: 3, FloatVal: 3.14},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Bind(NewContainer(tt.source), bindTestConfig{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBind_Pointer(t *testing.T) {
	cfg := &bindTestConfig{IntVal: 99}
	got, err := Bind(NewContainer(map[string]any{"VALUE1": "x"}), cfg)
	require.NoError(t, err)

	assert.Same(t, cfg, got)
	assert.Equal(t, "x", cfg.Value1)
	assert.Equal(t, 99, cfg.IntVal, "values set before binding are kept when the key is absent")
}

func TestBind_Required(t *testing.T) {
	type cfg struct {
		APIKey string `secret:"API_KEY" required:"true"`
	}

	_, err := Bind(NewContainer(nil), cfg{})
	assert.ErrorIs(t, err, ErrMissingRequired)
	assert.Contains(t, err.Error(), "API_KEY")

	got, err := Bind(NewContainer(map[string]any{"API_KEY": "k"}), cfg{})
	require.NoError(t, err)
	assert.Equal(t, "k", got.APIKey)
}

func TestBind_NotAStruct(t *testing.T) {
	_, err := Bind(NewContainer(nil), 42)
	assert.Error(t, err)
}

func TestBind_InvalidValue(t *testing.T) {
	type cfg struct {
		Port int `env:"PORT"`
	}
	_, err := Bind(NewContainer(map[string]any{"PORT": "eighty"}), cfg{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field Port")
}

func TestBind_NestedStructs(t *testing.T) {
	type database struct {
		Host     string `env:"host" default:"localhost"`
		Port     int    `env:"port" default:"5432"`
		Password string `secret:"password" required:"true"`
	}
	type cache struct {
		TTL time.Duration `env:"CACHE_TTL" default:"5m"`
	}
	type cfg struct {
		DB    database `env:"db"`
		Cache *cache
		Name  string `env:"NAME"`
	}

	// the store flattens /app/stg/db/password into db.password
	source := map[string]any{
		"db":   map[string]any{"password": "ch@ng3m3", "host": "db.internal"},
		"NAME": "svc",
	}
	got, err := Bind(NewContainer(source), cfg{})
	require.NoError(t, err)

	assert.Equal(t, database{Host: "db.internal", Port: 5432, Password: "ch@ng3m3"}, got.DB)
	require.NotNil(t, got.Cache)
	assert.Equal(t, 5*time.Minute, got.Cache.TTL)
	assert.Equal(t, "svc", got.Name)
}

func TestBind_Slices(t *testing.T) {
	type cfg struct {
		Hosts   []string      `env:"HOSTS"`
		Ports   []int         `env:"PORTS" default:"80, 443"`
		Zones   []string      `env:"zones"`
		IPs     []net.IP      `env:"IPS"`
		Rules   []*vm.Program `env:"RULES"`
		Allowed net.IP        `env:"ALLOWED"`
	}

	source := map[string]any{
		"HOSTS":   "a, b,,c",
		"zones":   []any{"us-west-2a", "us-west-2b"},
		"IPS":     "10.0.0.1,::1",
		"RULES":   "x > 1, y < 2",
		"ALLOWED": "192.168.1.1",
	}
	got, err := Bind(NewContainer(source), cfg{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, got.Hosts)
	assert.Equal(t, []int{80, 443}, got.Ports)
	assert.Equal(t, []string{"us-west-2a", "us-west-2b"}, got.Zones)
	require.Len(t, got.IPs, 2)
	assert.Equal(t, "::1", got.IPs[1].String())
	assert.Len(t, got.Rules, 2)
	assert.Equal(t, "192.168.1.1", got.Allowed.String())
}

func TestBind_ExtendedTypes(t *testing.T) {
	type cfg struct {
		ID       uuid.UUID         `env:"ID"`
		Price    decimal.Decimal   `env:"PRICE"`
		Memory   resource.Quantity `env:"MEMORY"`
		Endpoint url.URL           `env:"ENDPOINT"`
		Callback *url.URL          `env:"CALLBACK"`
		Rule     *vm.Program       `env:"RULE" default:"user.role == 'admin'"`
	}

	id := uuid.New()
	source := map[string]any{
		"ID":       id.String(),
		"PRICE":    "19.99",
		"MEMORY":   "512Mi",
		"ENDPOINT": "https://api.example.com/v1",
		"CALLBACK": "https://hooks.example.com",
	}
	got, err := Bind(NewContainer(source), cfg{})
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "19.99", got.Price.String())
	assert.Equal(t, int64(512*1024*1024), got.Memory.Value())
	assert.Equal(t, "api.example.com", got.Endpoint.Host)
	require.NotNil(t, got.Callback)
	assert.Equal(t, "hooks.example.com", got.Callback.Host)
	assert.NotNil(t, got.Rule)
}
