package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	DefaultCatalogBaseURL = "https://dummyjson.com"
	DefaultSearchDebounce = 500 * time.Millisecond
	DefaultCatalogTimeout = 10 * time.Second
)

type Options struct {
	runAddr        string
	logLevel       string
	dataBaseDSN    string
	catalogBaseURL string
	catalogTimeout time.Duration
	searchDebounce time.Duration
	refineWindow   int
	corsOrigins    string
}

func NewOptions() *Options {
	return new(Options)
}

// RegisterFlags loads the .env file and binds every option to fs,
// with environment values acting as flag defaults.
func (o *Options) RegisterFlags(fs *pflag.FlagSet) {
	// Load environment variables from the .env file
	loadEnvFile()

	fs.StringVarP(&o.runAddr, "address", "a", getEnvOrDefault("RUN_ADDRESS", ":8080"), "address and port to run server")
	fs.StringVarP(&o.logLevel, "log-level", "l", getEnvOrDefault("LOG_LEVEL", "info"), "log level")
	fs.StringVarP(&o.dataBaseDSN, "database", "d", getEnvOrDefault("DATABASE_URI", ""), "price observation database connection string (optional)")
	fs.StringVar(&o.catalogBaseURL, "catalog-url", getEnvOrDefault("CATALOG_BASE_URL", DefaultCatalogBaseURL), "base URL of the upstream product API")
	fs.DurationVar(&o.catalogTimeout, "catalog-timeout", getDurationOrDefault("CATALOG_TIMEOUT", DefaultCatalogTimeout), "timeout of a single upstream request")
	fs.DurationVar(&o.searchDebounce, "search-debounce", getDurationOrDefault("SEARCH_DEBOUNCE", DefaultSearchDebounce), "quiet period before a typed search is committed")
	fs.IntVar(&o.refineWindow, "refine-window", getIntOrDefault("CATALOG_REFINE_WINDOW", 0), "candidate window for client-side refinement, 0 refines the fetched page only")
	fs.StringVar(&o.corsOrigins, "cors-origins", getEnvOrDefault("CORS_ORIGINS", "*"), "comma separated list of allowed CORS origins")
}

func (o *Options) RunAddr() string {
	return o.runAddr
}

func (o *Options) LogLevel() string {
	return o.logLevel
}

func (o *Options) DataBaseDSN() string {
	return o.dataBaseDSN
}

func (o *Options) CatalogBaseURL() string {
	return o.catalogBaseURL
}

func (o *Options) CatalogTimeout() time.Duration {
	return o.catalogTimeout
}

func (o *Options) SearchDebounce() time.Duration {
	return o.searchDebounce
}

func (o *Options) RefineWindow() int {
	if o.refineWindow < 0 {
		return 0
	}
	return o.refineWindow
}

func (o *Options) CORSOrigins() []string {
	var out []string
	for _, s := range strings.Split(o.corsOrigins, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// getEnvOrDefault reads an environment variable or returns a default value if the variable is not set or is empty.
func getEnvOrDefault(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("ignoring %s=%q: %v", key, raw, err)
		return defaultValue
	}
	return d
}

func getIntOrDefault(key string, defaultValue int) int {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("ignoring %s=%q: %v", key, raw, err)
		return defaultValue
	}
	return n
}

// loadEnvFile loads environment variables from a .env file
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Printf("cannot resolve working directory: %v", err)
		return
	}

	// the binary is usually started from the repo root or from cmd/storefront
	for _, envPath := range []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(cwd, "..", "..", ".env"),
	} {
		if err := godotenv.Load(envPath); err == nil {
			log.Printf(".env file loaded from %s", envPath)
			return
		}
	}
}
