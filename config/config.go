package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the launchpad reads at startup
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Wallet  WalletConfig  `yaml:"wallet"`
	LLM     LLMConfig     `yaml:"llm"`
	Search  SearchConfig  `yaml:"search"`
	NATS    NATSConfig    `yaml:"nats"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
}

// Addr returns the listen address for the API server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StorageConfig struct {
	Backend    string `yaml:"backend"` // "badger" or "file"
	DataDir    string `yaml:"data_dir"`
	SyncWrites bool   `yaml:"sync_writes"`
	InMemory   bool   `yaml:"in_memory"`
	GCInterval int64  `yaml:"gc_interval"` // seconds, 0 disables
}

type WalletConfig struct {
	Network     string `yaml:"network"` // "base-sepolia" or "base-mainnet"
	RPCURL      string `yaml:"rpc_url"`
	MasterKey   string `yaml:"master_key"`
	LightScrypt bool   `yaml:"light_scrypt"`
	CacheSize   int    `yaml:"cache_size"`
	Workspace   string `yaml:"workspace"` // sandbox root for the File tool
}

type LLMConfig struct {
	Provider        string        `yaml:"provider"` // "openai" or "gemini"
	OpenAIAPIKey    string        `yaml:"openai_api_key"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	OpenAIModel     string        `yaml:"openai_model"`
	GeminiAPIKey    string        `yaml:"gemini_api_key"`
	GeminiModel     string        `yaml:"gemini_model"`
	MaxTurns        int           `yaml:"max_turns"`
	MaxTokens       int           `yaml:"max_tokens"`
	Temperature     float32       `yaml:"temperature"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerOpenFor  time.Duration `yaml:"breaker_open_for"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

type SearchConfig struct {
	SerpAPIKey string `yaml:"serp_api_key"`
	MaxResults int    `yaml:"max_results"`
	SafeSearch bool   `yaml:"safe_search"`
}

type NATSConfig struct {
	URL           string `yaml:"url"` // empty disables event publishing
	SubjectPrefix string `yaml:"subject_prefix"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// Default returns the configuration used when nothing else is provided
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Storage: StorageConfig{
			Backend:    "badger",
			DataDir:    "./data",
			SyncWrites: true,
			GCInterval: 3600,
		},
		Wallet: WalletConfig{
			Network:   "base-sepolia",
			RPCURL:    "https://sepolia.base.org",
			CacheSize: 128,
			Workspace: "./workspace",
		},
		LLM: LLMConfig{
			Provider:        "openai",
			OpenAIModel:     "gpt-4o-mini",
			GeminiModel:     "gemini-2.0-flash",
			MaxTurns:        8,
			MaxTokens:       2048,
			Temperature:     0.7,
			BreakerFailures: 5,
			BreakerOpenFor:  30 * time.Second,
			RequestTimeout:  2 * time.Minute,
		},
		Search: SearchConfig{
			MaxResults: 5,
			SafeSearch: true,
		},
		NATS: NATSConfig{
			SubjectPrefix: "aigent",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from .env, an optional YAML file and the environment.
// An empty path falls back to AIGENT_CONFIG; a missing .env file only warns.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("AIGENT_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Verify required environment variables
	if cfg.LLM.OpenAIAPIKey == "" && cfg.LLM.GeminiAPIKey == "" {
		log.Println("Warning: neither OPENAI_API_KEY nor GEMINI_API_KEY is set")
	}
	if cfg.Wallet.MasterKey == "" {
		log.Println("Warning: WALLET_MASTER_KEY not set, wallet seeds are encrypted with an empty passphrase")
	}

	return cfg, nil
}

// Validate rejects settings the rest of the program cannot work with
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "badger", "file":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Wallet.Network {
	case "base-sepolia", "base-mainnet":
	default:
		return fmt.Errorf("unknown wallet network %q", c.Wallet.Network)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.LLM.MaxTurns <= 0 {
		return fmt.Errorf("llm max_turns must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, "HOST")
	setInt(&cfg.Server.Port, "PORT")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	setFloat(&cfg.Server.RateLimitRPS, "RATE_LIMIT_RPS")
	setInt(&cfg.Server.RateLimitBurst, "RATE_LIMIT_BURST")

	setString(&cfg.Storage.Backend, "STORAGE_BACKEND")
	setString(&cfg.Storage.DataDir, "DATA_DIR")
	setBool(&cfg.Storage.SyncWrites, "STORAGE_SYNC_WRITES")

	setString(&cfg.Wallet.Network, "WALLET_NETWORK")
	setString(&cfg.Wallet.RPCURL, "WALLET_RPC_URL")
	setString(&cfg.Wallet.MasterKey, "WALLET_MASTER_KEY")
	setBool(&cfg.Wallet.LightScrypt, "WALLET_LIGHT_SCRYPT")
	setString(&cfg.Wallet.Workspace, "TOOL_WORKSPACE")

	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&cfg.LLM.OpenAIModel, "OPENAI_MODEL")
	setString(&cfg.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.LLM.GeminiModel, "GEMINI_MODEL")
	setInt(&cfg.LLM.MaxTurns, "LLM_MAX_TURNS")

	setString(&cfg.Search.SerpAPIKey, "SERP_API_KEY")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.SubjectPrefix, "NATS_SUBJECT_PREFIX")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		} else {
			log.Printf("Warning: ignoring invalid %s=%q\n", key, v)
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		} else {
			log.Printf("Warning: ignoring invalid %s=%q\n", key, v)
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		} else {
			log.Printf("Warning: ignoring invalid %s=%q\n", key, v)
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
