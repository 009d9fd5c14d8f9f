package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) *Options {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o := NewOptions()
	o.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return o
}

func TestOptions_Defaults(t *testing.T) {
	for _, k := range []string{"RUN_ADDRESS", "LOG_LEVEL", "DATABASE_URI", "CATALOG_BASE_URL",
		"CATALOG_TIMEOUT", "SEARCH_DEBOUNCE", "CATALOG_REFINE_WINDOW", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	o := parse(t)

	assert.Equal(t, ":8080", o.RunAddr())
	assert.Equal(t, "info", o.LogLevel())
	assert.Empty(t, o.DataBaseDSN())
	assert.Equal(t, DefaultCatalogBaseURL, o.CatalogBaseURL())
	assert.Equal(t, DefaultCatalogTimeout, o.CatalogTimeout())
	assert.Equal(t, DefaultSearchDebounce, o.SearchDebounce())
	assert.Equal(t, 0, o.RefineWindow())
	assert.Equal(t, []string{"*"}, o.CORSOrigins())
}

func TestOptions_EnvOverrides(t *testing.T) {
	t.Setenv("CATALOG_BASE_URL", "http://upstream.local")
	t.Setenv("SEARCH_DEBOUNCE", "250ms")
	t.Setenv("CATALOG_REFINE_WINDOW", "96")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	o := parse(t)

	assert.Equal(t, "http://upstream.local", o.CatalogBaseURL())
	assert.Equal(t, 250*time.Millisecond, o.SearchDebounce())
	assert.Equal(t, 96, o.RefineWindow())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, o.CORSOrigins())
}

func TestOptions_FlagsWinOverEnv(t *testing.T) {
	t.Setenv("RUN_ADDRESS", ":9000")

	o := parse(t, "-a", ":9100", "--search-debounce", "1s", "--refine-window", "-5")

	assert.Equal(t, ":9100", o.RunAddr())
	assert.Equal(t, time.Second, o.SearchDebounce())
	assert.Equal(t, 0, o.RefineWindow())
}

func TestOptions_BadEnvFallsBack(t *testing.T) {
	t.Setenv("CATALOG_TIMEOUT", "soon")
	t.Setenv("CATALOG_REFINE_WINDOW", "many")

	o := parse(t)

	assert.Equal(t, DefaultCatalogTimeout, o.CatalogTimeout())
	assert.Equal(t, 0, o.RefineWindow())
}
