package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the full pipeline configuration loaded from environment
// variables or a .env file.
//
// It is composed of smaller structs that represent different concerns of the
// optimizer: the default output shape requested by callers and the token
// budget that drives adaptive downsampling.
//
// Example YAML/ENV equivalent:
//
//	TOKENTRIM_FORMAT=compact
//	TOKENTRIM_ARRAY_FORMAT=true
//	TOKENTRIM_MAX_TOKENS=8000
//	TOKENTRIM_TOKENS_PER_POINT=50
//	TOKENTRIM_COERCE_NUMERIC_STRINGS=true
//	TOKENTRIM_MAX_PARALLEL=4
type Config struct {
	Pipeline PipelineConfig // default output shape for orchestrated calls
	Limits   LimitsConfig   // token budget for adaptive downsampling
}

// PipelineConfig holds the caller-facing knobs of the orchestrator.
//
// Fields:
//   - Format: "full" or "compact"; "compact" enables all compaction stages.
//   - ArrayFormat: orthogonal opt-in for fixed-schema array encoding.
//   - CoerceNumericStrings: sub-flag of numeric normalization; disable for
//     payloads whose all-digit strings are identifiers, not numbers.
//   - MaxParallel: worker clamp for batch optimization (>= 1).
type PipelineConfig struct {
	Format               string
	ArrayFormat          bool
	CoerceNumericStrings bool
	MaxParallel          int
}

// LimitsConfig defines the serialized-size budget that triggers resampling.
//
// Fields:
//   - MaxTokensPerResponse: budget one response may spend (default 8000).
//   - TokensPerPoint: estimated cost of one serialized OHLC point (default 50).
type LimitsConfig struct {
	MaxTokensPerResponse int
	TokensPerPoint       int
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and read by the embedding process
// when constructing the pipeline orchestrator.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from a .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If values are out of range, validateConfig() terminates the process
//     with a descriptive log message.
func LoadConfig() {
	// Default values
	viper.SetDefault("TOKENTRIM_FORMAT", "full")
	viper.SetDefault("TOKENTRIM_ARRAY_FORMAT", false)
	viper.SetDefault("TOKENTRIM_COERCE_NUMERIC_STRINGS", true)
	viper.SetDefault("TOKENTRIM_MAX_PARALLEL", 4)

	viper.SetDefault("TOKENTRIM_MAX_TOKENS", 8000)
	viper.SetDefault("TOKENTRIM_TOKENS_PER_POINT", 50)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	// Populate global config instance
	AppConfig = Config{
		Pipeline: PipelineConfig{
			Format:               strings.ToLower(viper.GetString("TOKENTRIM_FORMAT")),
			ArrayFormat:          viper.GetBool("TOKENTRIM_ARRAY_FORMAT"),
			CoerceNumericStrings: viper.GetBool("TOKENTRIM_COERCE_NUMERIC_STRINGS"),
			MaxParallel:          viper.GetInt("TOKENTRIM_MAX_PARALLEL"),
		},
		Limits: LimitsConfig{
			MaxTokensPerResponse: viper.GetInt("TOKENTRIM_MAX_TOKENS"),
			TokensPerPoint:       viper.GetInt("TOKENTRIM_TOKENS_PER_POINT"),
		},
	}

	// Validate critical fields
	validateConfig()
}

// validateConfig ensures values are usable and terminates the process if
// they are not. This avoids silent misbehavior from an impossible budget.
func validateConfig() {
	var bad []string

	if f := AppConfig.Pipeline.Format; f != "full" && f != "compact" {
		bad = append(bad, "TOKENTRIM_FORMAT (want full|compact)")
	}
	if AppConfig.Pipeline.MaxParallel < 1 {
		bad = append(bad, "TOKENTRIM_MAX_PARALLEL (want >= 1)")
	}
	if AppConfig.Limits.MaxTokensPerResponse < 1 {
		bad = append(bad, "TOKENTRIM_MAX_TOKENS (want >= 1)")
	}
	if AppConfig.Limits.TokensPerPoint < 1 {
		bad = append(bad, "TOKENTRIM_TOKENS_PER_POINT (want >= 1)")
	}

	if len(bad) > 0 {
		log.Fatalf("invalid configuration values: %v\n", bad)
	}
}
