package config

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Well-known service locations
const (
	// DefaultDiscoveryURL lists the VDGS endpoints of every vACDM airport
	DefaultDiscoveryURL = "https://app.vacdm.net/api/vdgs/nool"

	// DefaultVatsimMembersURL serves the member status lookup (CID -> callsign)
	DefaultVatsimMembersURL = "https://api.vatsim.net/v2/members"

	// DefaultVatsimDataURL serves the live pilot position data
	DefaultVatsimDataURL = "https://data.vatsim.net/v3"
)

// Environment variable names
const (
	// EnvFile points to the optional .env file (default ".env")
	EnvFile = "VDGS_ENV_FILE"

	EnvDiscoveryURL      = "VDGS_DISCOVERY_URL"
	EnvParallelism       = "VDGS_PARALLELISM"
	EnvRequestTimeout    = "VDGS_REQUEST_TIMEOUT"
	EnvOutputFormat      = "VDGS_OUTPUT"
	EnvLogLevel          = "VDGS_LOG_LEVEL"
	EnvVatsimCID         = "VATSIM_CID"
	EnvVatsimMembersURL  = "VDGS_VATSIM_MEMBERS_URL"
	EnvVatsimDataURL     = "VDGS_VATSIM_DATA_URL"
	EnvVacdmServers      = "VDGS_VACDM_SERVERS"
	EnvRefreshInterval   = "VDGS_REFRESH_INTERVAL"
	EnvSkipAirborneCheck = "VDGS_SKIP_AIRBORNE_CHECK"
)

// Output formats of the nool report
const (
	OutputText = "text"
	OutputCSV  = "csv"
	OutputJSON = "json"
)

// Config represents the configuration shared by the nool check and the VDGS board
type Config struct {
	// DiscoveryURL is the vACDM directory listing airport VDGS endpoints
	DiscoveryURL string `json:"discoveryUrl"`

	// Parallelism is the number of airport endpoints polled at once (1 = sequential)
	Parallelism int `json:"parallelism"`

	// RequestTimeout bounds every HTTP request (0 means no timeout)
	RequestTimeout time.Duration `json:"requestTimeout"`

	// OutputFormat selects the nool report format (text, csv, json)
	OutputFormat string `json:"outputFormat"`

	// LogLevel is the minimum level written to stderr; empty means the command's default
	LogLevel string `json:"logLevel"`

	// VatsimCID is the VATSIM member whose departure slot is shown on the board
	VatsimCID string `json:"vatsimCid"`

	VatsimMembersURL string `json:"vatsimMembersUrl"`
	VatsimDataURL    string `json:"vatsimDataUrl"`

	// VacdmServers overrides the slot servers, each entry "url" or "url|query"
	VacdmServers []string `json:"vacdmServers"`

	// RefreshInterval is how often the board is refreshed
	RefreshInterval time.Duration `json:"refreshInterval"`

	// SkipAirborneCheck disables the "departed" detection
	SkipAirborneCheck bool `json:"skipAirborneCheck"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DiscoveryURL:     DefaultDiscoveryURL,
		Parallelism:      1,
		RequestTimeout:   0,
		OutputFormat:     OutputText,
		VatsimMembersURL: DefaultVatsimMembersURL,
		VatsimDataURL:    DefaultVatsimDataURL,
		VacdmServers:     []string{}, // Empty means the built-in server list
		RefreshInterval:  30 * time.Second,
	}
}

// Load builds the configuration from the defaults, the .env file and the environment, in
// increasing order of precedence.
//
// A .env file named by VDGS_ENV_FILE must parse. The implicit ./.env is skipped with a warning
// when it does not.
func Load(getenv func(key string) string, logger *slog.Logger) (*Config, error) {
	cfg := DefaultConfig()

	path := getenv(EnvFile)
	dotenv, err := LoadDotEnv(cmp.Or(path, ".env"))
	if err != nil {
		if path != "" {
			return nil, err
		}
		logger.Warn("ignoring unreadable .env file", "error", err)
		dotenv = map[string]string{}
	}

	if err := cfg.ApplyEnv(EnvLookup(getenv, dotenv)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overlays every non-empty variable returned by getenv onto the configuration
func (c *Config) ApplyEnv(getenv func(key string) string) error {
	if v := getenv(EnvDiscoveryURL); v != "" {
		c.DiscoveryURL = v
	}
	if v := getenv(EnvParallelism); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvParallelism, err)
		}
		c.Parallelism = n
	}
	if v := getenv(EnvRequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRequestTimeout, err)
		}
		c.RequestTimeout = d
	}
	if v := getenv(EnvOutputFormat); v != "" {
		c.OutputFormat = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvVatsimCID); v != "" {
		c.VatsimCID = v
	}
	if v := getenv(EnvVatsimMembersURL); v != "" {
		c.VatsimMembersURL = v
	}
	if v := getenv(EnvVatsimDataURL); v != "" {
		c.VatsimDataURL = v
	}
	if v := getenv(EnvVacdmServers); v != "" {
		c.VacdmServers = splitList(v)
	}
	if v := getenv(EnvRefreshInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRefreshInterval, err)
		}
		c.RefreshInterval = d
	}
	if v := getenv(EnvSkipAirborneCheck); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSkipAirborneCheck, err)
		}
		c.SkipAirborneCheck = b
	}

	return nil
}

// ValidateNool reports the first invalid setting used by the nool check
func (c *Config) ValidateNool() error {
	if c.DiscoveryURL == "" {
		return errors.New("discovery url must not be empty")
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}

	switch c.OutputFormat {
	case OutputText, OutputCSV, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q", c.OutputFormat)
	}

	return nil
}

// ValidateBoard reports the first invalid setting used by the VDGS board
func (c *Config) ValidateBoard() error {
	if c.VatsimCID == "" {
		return fmt.Errorf("a VATSIM CID is required (-cid or %s)", EnvVatsimCID)
	}
	if c.VatsimMembersURL == "" || c.VatsimDataURL == "" {
		return errors.New("VATSIM API urls must not be empty")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", c.RefreshInterval)
	}

	return nil
}

// LoadDotEnv reads KEY=VALUE pairs from a .env file. A missing file yields an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

// EnvLookup combines the process environment with .env values.
// The process environment wins.
func EnvLookup(getenv func(key string) string, dotenv map[string]string) func(key string) string {
	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
