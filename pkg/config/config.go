package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
)

// Default policy values exported for documentation and validation
const (
	DefaultPollInterval        = 30 * time.Minute
	DefaultConfidenceThreshold = 0.6
	DefaultStatePath           = "state/engine_state.json"
	DefaultLogDir              = "logs"
	DefaultAPIBind             = "127.0.0.1:8090"
	DefaultPostMaxChars        = 3000
	DefaultGenerateInterval    = 2 * time.Second
	DefaultLookupPacing        = 500 * time.Millisecond
)

// Config represents the complete engine configuration
type Config struct {
	Engine     EngineConfig     `yaml:"engine"`
	GitHub     GitHubConfig     `yaml:"github"`
	Generation GenerationConfig `yaml:"generation"`
	Providers  ProviderConfig   `yaml:"providers"`
	Image      ImageConfig      `yaml:"image"`
	LinkedIn   LinkedInConfig   `yaml:"linkedin"`
	API        APIConfig        `yaml:"api"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// EngineConfig controls the pipeline run cadence and dedup state
type EngineConfig struct {
	PollInterval        time.Duration `yaml:"poll_interval"`
	ConfidenceThreshold float64       `yaml:"confidence_threshold"`
	StatePath           string        `yaml:"state_path"`
	RunOnStart          bool          `yaml:"run_on_start"`
}

// GitHubConfig identifies the watched repository
type GitHubConfig struct {
	Token       string        `yaml:"token"`
	Owner       string        `yaml:"owner"`
	Repo        string        `yaml:"repo"`
	BaseURL     string        `yaml:"base_url"`
	CommitLimit int           `yaml:"commit_limit"`
	IssueLimit  int           `yaml:"issue_limit"`
	Timeout     time.Duration `yaml:"timeout"`
}

// GenerationConfig holds post-generation policy
type GenerationConfig struct {
	MinWords     int           `yaml:"min_words"`
	MaxWords     int           `yaml:"max_words"`
	MaxChars     int           `yaml:"max_chars"`
	MinHashtags  int           `yaml:"min_hashtags"`
	MaxHashtags  int           `yaml:"max_hashtags"`
	Tone         string        `yaml:"tone"`
	MinInterval  time.Duration `yaml:"min_interval"`
	Timeout      time.Duration `yaml:"timeout"`
	LookupPacing time.Duration `yaml:"lookup_pacing"`
}

// ProviderConfig holds generative-text provider settings
type ProviderConfig struct {
	OpenAI OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig configures the OpenAI-compatible completion endpoint
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// ImageConfig configures stock-image search providers, tried in order
type ImageConfig struct {
	PexelsAPIKey   string        `yaml:"pexels_api_key"`
	UnsplashAPIKey string        `yaml:"unsplash_api_key"`
	Timeout        time.Duration `yaml:"timeout"`
}

// LinkedInConfig configures the publish target
type LinkedInConfig struct {
	AccessToken string        `yaml:"access_token"`
	AuthorURN   string        `yaml:"author_urn"`
	AutoPublish bool          `yaml:"auto_publish"`
	Timeout     time.Duration `yaml:"timeout"`
}

// APIConfig configures the operator HTTP surface
type APIConfig struct {
	Bind    string `yaml:"bind"`
	Enabled bool   `yaml:"enabled"`
}

// LoggingConfig configures the structured event logger
type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// DefaultConfig returns a config populated with default policy values
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			PollInterval:        DefaultPollInterval,
			ConfidenceThreshold: DefaultConfidenceThreshold,
			StatePath:           DefaultStatePath,
			RunOnStart:          true,
		},
		GitHub: GitHubConfig{
			BaseURL:     "https://api.github.com",
			CommitLimit: 5,
			IssueLimit:  5,
			Timeout:     10 * time.Second,
		},
		Generation: GenerationConfig{
			MinWords:     50,
			MaxWords:     150,
			MaxChars:     DefaultPostMaxChars,
			MinHashtags:  3,
			MaxHashtags:  5,
			Tone:         "professional",
			MinInterval:  DefaultGenerateInterval,
			Timeout:      30 * time.Second,
			LookupPacing: DefaultLookupPacing,
		},
		Providers: ProviderConfig{
			OpenAI: OpenAIConfig{
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
			},
		},
		Image: ImageConfig{
			Timeout: 10 * time.Second,
		},
		LinkedIn: LinkedInConfig{
			Timeout: 15 * time.Second,
		},
		API: APIConfig{
			Bind:    DefaultAPIBind,
			Enabled: true,
		},
		Logging: LoggingConfig{
			Dir:   DefaultLogDir,
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and applies
// environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigLoad, "reading config file").
					WithContext("path", path)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigParse, "parsing config file").
				WithContext("path", path)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides layers environment variables over the file config.
// Credentials are expected from the environment in most deployments.
func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.GitHub.Token, "GITHUB_TOKEN")
	overrideString(&cfg.GitHub.Owner, "GITHUB_OWNER")
	overrideString(&cfg.GitHub.Repo, "GITHUB_REPO")
	overrideString(&cfg.Providers.OpenAI.APIKey, "OPENAI_API_KEY")
	overrideString(&cfg.Providers.OpenAI.BaseURL, "OPENAI_BASE_URL")
	overrideString(&cfg.Providers.OpenAI.Model, "OPENAI_MODEL")
	overrideString(&cfg.Image.PexelsAPIKey, "PEXELS_API_KEY")
	overrideString(&cfg.Image.UnsplashAPIKey, "UNSPLASH_ACCESS_KEY")
	overrideString(&cfg.LinkedIn.AccessToken, "LINKEDIN_ACCESS_TOKEN")
	overrideString(&cfg.LinkedIn.AuthorURN, "LINKEDIN_AUTHOR_URN")
	overrideString(&cfg.Engine.StatePath, "ENGINE_STATE_PATH")
	overrideString(&cfg.API.Bind, "ENGINE_API_BIND")
	overrideString(&cfg.Logging.Dir, "ENGINE_LOG_DIR")
	overrideString(&cfg.Logging.Level, "ENGINE_LOG_LEVEL")
	overrideBool(&cfg.LinkedIn.AutoPublish, "LINKEDIN_AUTO_PUBLISH")
	overrideDuration(&cfg.Engine.PollInterval, "ENGINE_POLL_INTERVAL")
	overrideFloat(&cfg.Engine.ConfidenceThreshold, "ENGINE_CONFIDENCE_THRESHOLD")
}

func overrideString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func overrideBool(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*target = parsed
		}
	}
}

func overrideDuration(target *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*target = parsed
		}
	}
}

// Validate checks the configuration for values the engine cannot run with
func (c *Config) Validate() error {
	if c.Engine.PollInterval <= 0 {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, "engine.poll_interval must be positive").
			WithContext("value", c.Engine.PollInterval.String())
	}
	if c.Engine.ConfidenceThreshold < 0 || c.Engine.ConfidenceThreshold > 1 {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, "engine.confidence_threshold must be in [0,1]").
			WithContext("value", c.Engine.ConfidenceThreshold)
	}
	if c.Engine.StatePath == "" {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, "engine.state_path must not be empty")
	}
	if c.Generation.MaxChars <= 0 {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, "generation.max_chars must be positive").
			WithContext("value", c.Generation.MaxChars)
	}
	if c.Generation.MinWords > c.Generation.MaxWords {
		return apperrors.New(apperrors.ErrCodeConfigInvalid, "generation.min_words exceeds max_words").
			WithContext("min_words", c.Generation.MinWords).
			WithContext("max_words", c.Generation.MaxWords)
	}
	return nil
}
