package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`

	OpenRouterKey string `yaml:"openaiApiKey"`
	OpenRouterURL string `yaml:"openrouterUrl"`
	GeminiKey     string `yaml:"geminiApiKey"`
	AnthropicKey  string `yaml:"anthropicApiKey"`

	MaxMessageLength int           `yaml:"maxMessageLength"`
	MaxRetries       int           `yaml:"maxRetries"`
	RequestTimeout   time.Duration `yaml:"requestTimeout"`

	RateLimitWindow time.Duration `yaml:"rateLimitWindow"`
	RateLimitMax    int           `yaml:"rateLimitMax"`

	StaticDir   string   `yaml:"staticDir"`
	LogFile     string   `yaml:"logFile"`
	LogLevel    string   `yaml:"logLevel"`
	JournalPath string   `yaml:"journalPath"`
	DevOrigins  []string `yaml:"devOrigins"`
}

// Load reads the environment. Malformed numeric or duration values are
// reported together.
func Load() (Config, error) {
	var errs []error
	cfg := Config{
		Port:             getenv("PORT", "3000"),
		Env:              getenv("APP_ENV", getenv("NODE_ENV", EnvDevelopment)),
		OpenRouterKey:    os.Getenv("OPENAI_API_KEY"),
		OpenRouterURL:    getenv("OPENROUTER_URL", "https://openrouter.ai/api/v1/"),
		GeminiKey:        os.Getenv("GEMINI_API_KEY"),
		AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
		MaxMessageLength: getint("MAX_MESSAGE_LENGTH", 1000, &errs),
		MaxRetries:       getint("MAX_RETRIES", 3, &errs),
		RequestTimeout:   getduration("REQUEST_TIMEOUT", 30*time.Second, &errs),
		RateLimitWindow:  getduration("RATE_LIMIT_WINDOW", 15*time.Minute, &errs),
		RateLimitMax:     getint("RATE_LIMIT_MAX", 100, &errs),
		StaticDir:        getenv("STATIC_DIR", "public"),
		LogFile:          getenv("LOG_FILE", "logs/tutor.log"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		JournalPath:      os.Getenv("JOURNAL_PATH"),
		DevOrigins:       getlist("DEV_ORIGINS", []string{"http://localhost:3000"}),
	}
	if v, ok := os.LookupEnv("LOG_FILE"); ok && v == "" {
		cfg.LogFile = ""
	}
	return cfg, errors.Join(errs...)
}

// LoadFile loads the environment and then overlays the YAML file at path.
// Keys present in the file win; unknown keys are an error.
func LoadFile(path string) (Config, error) {
	cfg, err := Load()
	if err != nil || path == "" {
		return cfg, err
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("config: invalid port %q", c.Port))
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("config: env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env))
	}
	if c.MaxMessageLength < 1 {
		errs = append(errs, errors.New("config: maxMessageLength must be positive"))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, errors.New("config: maxRetries must be at least 1"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("config: requestTimeout must be positive"))
	}
	if c.RateLimitWindow <= 0 || c.RateLimitMax < 1 {
		errs = append(errs, errors.New("config: rate limit window and max must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) Production() bool { return c.Env == EnvProduction }

// Referer is sent to OpenRouter to identify the app.
func (c Config) Referer() string { return "http://localhost:" + c.Port }

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int, errs *[]error) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("config: %s: %w", k, err))
		return d
	}
	return n
}

// getduration accepts Go durations ("30s") or bare milliseconds ("30000").
func getduration(k string, d time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("config: %s: %w", k, err))
		return d
	}
	return dur
}

func getlist(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
