package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/challenge-harvester/internal/application"
	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	harvestDir = ".harvest"
	envPrefix  = "HARVEST"

	PacingSteady = "steady"
	PacingRapid  = "rapid"
)

type Config struct {
	Mode        domain.SelectionMode
	Widget      WidgetConfig
	Pacing      PacingConfig
	Backoff     BackoffConfig
	Interactive application.InteractiveDelays
	Readiness   ReadinessConfig
	Collector   CollectorConfig
	Server      ServerConfig
	Log         LogConfig
}

type WidgetConfig struct {
	SiteKey        string
	Theme          string
	Command        []string
	SessionTimeout time.Duration
}

type PacingConfig struct {
	Profile string
	// Min and Max override the profile when both are set.
	Min time.Duration
	Max time.Duration
}

type BackoffConfig struct {
	Base              time.Duration
	Cap               time.Duration
	ProbeCap          time.Duration
	FallbackThreshold uint
}

type ReadinessConfig struct {
	UnattendedPoll  time.Duration
	InteractivePoll time.Duration
}

type CollectorConfig struct {
	URL       string
	Version   string
	SourceURL string
	Timeout   time.Duration
	APIKeyRef string
}

type ServerConfig struct {
	Listen     string
	TokensPath string
	MaxTokens  int
	APIKeyRef  string
}

type LogConfig struct {
	Level  string
	Format string
}

type LoadOptions struct {
	// ConfigFile is an explicit config path; it must exist when set.
	ConfigFile string
	// EnvFile is loaded into the process environment when present.
	EnvFile string
}

// Load resolves configuration from defaults, ~/.harvest/config.toml, a .env file and
// HARVEST_* environment variables, in increasing precedence.
func Load(v *viper.Viper, opts LoadOptions) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}

		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(filepath.Join(homeDir, harvestDir))
		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	return FromViper(v), nil
}

func SetDefaults(v *viper.Viper) {
	defaults := application.DefaultPolicy()

	v.SetDefault("mode", string(defaults.Selection))
	v.SetDefault("widget.theme", defaults.Theme)
	v.SetDefault("widget.session_timeout", defaults.SessionTimeout)
	v.SetDefault("pacing.profile", PacingSteady)
	v.SetDefault("backoff.base", defaults.BackoffBase)
	v.SetDefault("backoff.cap", defaults.BackoffCap)
	v.SetDefault("backoff.probe_cap", defaults.ProbeBackoffCap)
	v.SetDefault("backoff.fallback_threshold", defaults.FallbackThreshold)
	v.SetDefault("interactive.success_delay", defaults.Interactive.Success)
	v.SetDefault("interactive.expired_delay", defaults.Interactive.Expired)
	v.SetDefault("interactive.error_delay", defaults.Interactive.Error)
	v.SetDefault("interactive.timeout_delay", defaults.Interactive.Timeout)
	v.SetDefault("interactive.render_error_delay", defaults.Interactive.RenderError)
	v.SetDefault("readiness.unattended_poll", defaults.UnattendedPoll)
	v.SetDefault("readiness.interactive_poll", defaults.InteractivePoll)
	v.SetDefault("collector.url", "http://127.0.0.1:5000/api")
	v.SetDefault("collector.version", application.DefaultSubmissionVersion)
	v.SetDefault("collector.timeout", 15*time.Second)
	v.SetDefault("server.listen", "127.0.0.1:5000")
	v.SetDefault("server.max_tokens", application.DefaultMaxTokens)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func FromViper(v *viper.Viper) Config {
	return Config{
		Mode: domain.SelectionMode(strings.ToLower(strings.TrimSpace(v.GetString("mode")))),
		Widget: WidgetConfig{
			SiteKey:        strings.TrimSpace(v.GetString("widget.site_key")),
			Theme:          v.GetString("widget.theme"),
			Command:        v.GetStringSlice("widget.command"),
			SessionTimeout: v.GetDuration("widget.session_timeout"),
		},
		Pacing: PacingConfig{
			Profile: strings.ToLower(v.GetString("pacing.profile")),
			Min:     v.GetDuration("pacing.min"),
			Max:     v.GetDuration("pacing.max"),
		},
		Backoff: BackoffConfig{
			Base:              v.GetDuration("backoff.base"),
			Cap:               v.GetDuration("backoff.cap"),
			ProbeCap:          v.GetDuration("backoff.probe_cap"),
			FallbackThreshold: v.GetUint("backoff.fallback_threshold"),
		},
		Interactive: application.InteractiveDelays{
			Success:     v.GetDuration("interactive.success_delay"),
			Expired:     v.GetDuration("interactive.expired_delay"),
			Error:       v.GetDuration("interactive.error_delay"),
			Timeout:     v.GetDuration("interactive.timeout_delay"),
			RenderError: v.GetDuration("interactive.render_error_delay"),
		},
		Readiness: ReadinessConfig{
			UnattendedPoll:  v.GetDuration("readiness.unattended_poll"),
			InteractivePoll: v.GetDuration("readiness.interactive_poll"),
		},
		Collector: CollectorConfig{
			URL:       v.GetString("collector.url"),
			Version:   v.GetString("collector.version"),
			SourceURL: v.GetString("collector.source_url"),
			Timeout:   v.GetDuration("collector.timeout"),
			APIKeyRef: v.GetString("collector.api_key_ref"),
		},
		Server: ServerConfig{
			Listen:     v.GetString("server.listen"),
			TokensPath: v.GetString("server.tokens_path"),
			MaxTokens:  v.GetInt("server.max_tokens"),
			APIKeyRef:  v.GetString("server.api_key_ref"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}

// PacingRange resolves the unattended pacing window.
func (c Config) PacingRange() (application.Range, error) {
	if c.Pacing.Min != 0 || c.Pacing.Max != 0 {
		r := application.Range{Min: c.Pacing.Min, Max: c.Pacing.Max}
		return r, r.Validate("pacing")
	}

	switch c.Pacing.Profile {
	case PacingSteady, "":
		return application.SteadyPacing, nil
	case PacingRapid:
		return application.RapidPacing, nil
	default:
		return application.Range{}, domain.NewConfigError("pacing.profile", "unknown profile %q (want %s or %s)", c.Pacing.Profile, PacingSteady, PacingRapid)
	}
}

// Policy builds the scheduling policy. Every failure is a *domain.ConfigError.
func (c Config) Policy() (application.Policy, error) {
	pacing, err := c.PacingRange()
	if err != nil {
		return application.Policy{}, err
	}

	policy := application.Policy{
		Selection:         c.Mode,
		SiteKey:           c.Widget.SiteKey,
		Theme:             c.Widget.Theme,
		SessionTimeout:    c.Widget.SessionTimeout,
		UnattendedPacing:  pacing,
		BackoffBase:       c.Backoff.Base,
		BackoffCap:        c.Backoff.Cap,
		ProbeBackoffCap:   c.Backoff.ProbeCap,
		FallbackThreshold: c.Backoff.FallbackThreshold,
		Interactive:       c.Interactive,
		UnattendedPoll:    c.Readiness.UnattendedPoll,
		InteractivePoll:   c.Readiness.InteractivePoll,
	}
	if err := policy.Validate(); err != nil {
		return application.Policy{}, err
	}

	return policy, nil
}

func (c Config) Submitter() application.SubmitterConfig {
	return application.SubmitterConfig{
		Version:   c.Collector.Version,
		SourceURL: c.Collector.SourceURL,
	}
}

// ValidateCollector checks the settings the scheduler needs to deliver tokens.
func (c Config) ValidateCollector() error {
	var errs []error
	if strings.TrimSpace(c.Collector.URL) == "" {
		errs = append(errs, domain.NewConfigError("collector.url", "collector url is required"))
	}
	if c.Collector.Timeout <= 0 {
		errs = append(errs, domain.NewConfigError("collector.timeout", "must be positive, got %s", c.Collector.Timeout))
	}

	return errors.Join(errs...)
}

func (c Config) ValidateServer() error {
	var errs []error
	if strings.TrimSpace(c.Server.Listen) == "" {
		errs = append(errs, domain.NewConfigError("server.listen", "listen address is required"))
	}
	if c.Server.MaxTokens < 1 {
		errs = append(errs, domain.NewConfigError("server.max_tokens", "must be at least 1, got %d", c.Server.MaxTokens))
	}

	return errors.Join(errs...)
}

// Logger builds the process logger, writing to w.
func (c LogConfig) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, domain.NewConfigError("log.level", "unknown level %q", c.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, domain.NewConfigError("log.format", "unknown format %q (want text or json)", c.Format)
	}
}
