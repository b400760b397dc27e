package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/boost"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/synth"
)

const (
	// DefaultPath is where Load looks when no config file is given
	DefaultPath = "configs/config.yaml"

	envPrefix = "SFD_"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server    ServerConfig    `koanf:"server"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Model     ModelConfig     `koanf:"model"`
	Charts    ChartsConfig    `koanf:"charts"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `koanf:"requests_per_second"`
	BurstSize         int `koanf:"burst_size"`
}

// PipelineConfig shapes the synthetic dataset built at startup
type PipelineConfig struct {
	Count         int      `koanf:"count"`
	Seed          int64    `koanf:"seed"`
	FraudFraction float64  `koanf:"fraud_fraction"`
	Regions       []string `koanf:"regions"`

	NormalAmount  AmountComponentConfig `koanf:"normal_amount"`
	OutlierAmount AmountComponentConfig `koanf:"outlier_amount"`

	OAuthValidRate      float64 `koanf:"oauth_valid_rate"`
	TwoFAPassRate       float64 `koanf:"two_fa_pass_rate"`
	FraudOAuthValidRate float64 `koanf:"fraud_oauth_valid_rate"`
	FraudTwoFAPassRate  float64 `koanf:"fraud_two_fa_pass_rate"`
}

type AmountComponentConfig struct {
	Mu    float64 `koanf:"mu"`
	Sigma float64 `koanf:"sigma"`
}

// ModelConfig shapes classifier training
type ModelConfig struct {
	Rounds         int     `koanf:"rounds"`
	MaxDepth       int     `koanf:"max_depth"`
	LearningRate   float64 `koanf:"learning_rate"`
	MinSamplesLeaf int     `koanf:"min_samples_leaf"`
}

// ChartsConfig shapes the analytics read path
type ChartsConfig struct {
	HistogramBins     int `koanf:"histogram_bins"`
	TransactionsLimit int `koanf:"transactions_limit"`
}

type TelemetryConfig struct {
	Enabled       bool          `koanf:"enabled"`
	OTLPEndpoint  string        `koanf:"otlp_endpoint"`
	SamplingRate  float64       `koanf:"sampling_rate"`
	ExportTimeout time.Duration `koanf:"export_timeout"`
	BatchTimeout  time.Duration `koanf:"batch_timeout"`
}

// Params converts the pipeline section into synthesis parameters. Region
// names are validated here so a config typo fails startup instead of
// producing an unencodable dataset.
func (c PipelineConfig) Params() (synth.Params, error) {
	regions := make([]transaction.Region, 0, len(c.Regions))
	for _, name := range c.Regions {
		region, err := transaction.ParseRegion(name)
		if err != nil {
			return synth.Params{}, fmt.Errorf("pipeline regions: %w", err)
		}
		regions = append(regions, region)
	}

	return synth.Params{
		Count:         c.Count,
		Seed:          c.Seed,
		FraudFraction: c.FraudFraction,
		Regions:       regions,
		Normal:        synth.AmountComponent{Mu: c.NormalAmount.Mu, Sigma: c.NormalAmount.Sigma},
		Outlier:       synth.AmountComponent{Mu: c.OutlierAmount.Mu, Sigma: c.OutlierAmount.Sigma},

		OAuthValidRate:      c.OAuthValidRate,
		TwoFAPassRate:       c.TwoFAPassRate,
		FraudOAuthValidRate: c.FraudOAuthValidRate,
		FraudTwoFAPassRate:  c.FraudTwoFAPassRate,
	}, nil
}

// TrainingConfig converts the model section into classifier configuration
func (c ModelConfig) TrainingConfig() boost.Config {
	return boost.Config{
		Rounds:         c.Rounds,
		MaxDepth:       c.MaxDepth,
		LearningRate:   c.LearningRate,
		MinSamplesLeaf: c.MinSamplesLeaf,
	}
}

// Load layers configuration from defaults, then an optional YAML file, then
// SFD_-prefixed environment variables. Env nesting uses double underscores:
// SFD_SERVER__PORT maps to server.port, leaving single underscores for keys
// like fraud_fraction.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = DefaultPath
	}
	// A missing file is fine (defaults plus env cover the demo setup); a
	// file that exists but does not parse is not.
	if _, statErr := os.Stat(path); statErr == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func defaults() *Config {
	params := synth.DefaultParams()
	training := boost.DefaultConfig()

	regions := make([]string, 0, len(params.Regions))
	for _, r := range params.Regions {
		regions = append(regions, r.String())
	}

	return &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 100,
				BurstSize:         200,
			},
		},
		Pipeline: PipelineConfig{
			Count:         params.Count,
			Seed:          params.Seed,
			FraudFraction: params.FraudFraction,
			Regions:       regions,
			NormalAmount: AmountComponentConfig{
				Mu:    params.Normal.Mu,
				Sigma: params.Normal.Sigma,
			},
			OutlierAmount: AmountComponentConfig{
				Mu:    params.Outlier.Mu,
				Sigma: params.Outlier.Sigma,
			},
			OAuthValidRate:      params.OAuthValidRate,
			TwoFAPassRate:       params.TwoFAPassRate,
			FraudOAuthValidRate: params.FraudOAuthValidRate,
			FraudTwoFAPassRate:  params.FraudTwoFAPassRate,
		},
		Model: ModelConfig{
			Rounds:         training.Rounds,
			MaxDepth:       training.MaxDepth,
			LearningRate:   training.LearningRate,
			MinSamplesLeaf: training.MinSamplesLeaf,
		},
		Charts: ChartsConfig{
			HistogramBins:     20,
			TransactionsLimit: 100,
		},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			OTLPEndpoint:  "localhost:4317",
			SamplingRate:  1.0,
			ExportTimeout: 30 * time.Second,
			BatchTimeout:  5 * time.Second,
		},
	}
}
