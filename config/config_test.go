package config

import (
	"os"
	"os/exec"
	"testing"
)

// TestLoadConfig_Defaults verifies that defaults are loaded when no
// environment variables are set.
func TestLoadConfig_Defaults(t *testing.T) {
	// Clear relevant env vars to ensure defaults are used
	_ = os.Unsetenv("TOKENTRIM_FORMAT")
	_ = os.Unsetenv("TOKENTRIM_ARRAY_FORMAT")
	_ = os.Unsetenv("TOKENTRIM_COERCE_NUMERIC_STRINGS")
	_ = os.Unsetenv("TOKENTRIM_MAX_PARALLEL")
	_ = os.Unsetenv("TOKENTRIM_MAX_TOKENS")
	_ = os.Unsetenv("TOKENTRIM_TOKENS_PER_POINT")

	LoadConfig()

	if AppConfig.Pipeline.Format != "full" {
		t.Fatalf("expected default TOKENTRIM_FORMAT=full, got %q", AppConfig.Pipeline.Format)
	}
	if AppConfig.Pipeline.ArrayFormat {
		t.Fatalf("expected array format disabled by default")
	}
	if !AppConfig.Pipeline.CoerceNumericStrings {
		t.Fatalf("expected numeric-string coercion enabled by default")
	}
	if AppConfig.Pipeline.MaxParallel != 4 {
		t.Fatalf("expected default TOKENTRIM_MAX_PARALLEL=4, got %d", AppConfig.Pipeline.MaxParallel)
	}
	if AppConfig.Limits.MaxTokensPerResponse != 8000 || AppConfig.Limits.TokensPerPoint != 50 {
		t.Fatalf("unexpected limit defaults: %+v", AppConfig.Limits)
	}
}

// TestLoadConfig_EnvOverride verifies that environment variables take
// precedence over defaults, including case folding of the format value.
func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("TOKENTRIM_FORMAT", "Compact")
	t.Setenv("TOKENTRIM_MAX_TOKENS", "4000")

	LoadConfig()

	if AppConfig.Pipeline.Format != "compact" {
		t.Fatalf("expected format compact, got %q", AppConfig.Pipeline.Format)
	}
	if AppConfig.Limits.MaxTokensPerResponse != 4000 {
		t.Fatalf("expected max tokens 4000, got %d", AppConfig.Limits.MaxTokensPerResponse)
	}
}

// TestValidateConfig_Fatal uses a subprocess to assert that validateConfig triggers a fatal exit
// when required fields are out of range.
func TestValidateConfig_Fatal(t *testing.T) {
	if os.Getenv("RUN_VALIDATE_FATAL") == "1" {
		// In child process: set empty AppConfig and call validateConfig() to trigger log.Fatalf (os.Exit)
		AppConfig = Config{}
		validateConfig()
		t.Fatalf("validateConfig should have exited the process")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run", "TestValidateConfig_Fatal")
	cmd.Env = append(os.Environ(), "RUN_VALIDATE_FATAL=1")
	err := cmd.Run()
	if err == nil {
		t.Fatalf("expected process to exit with error, got nil")
	}
}
