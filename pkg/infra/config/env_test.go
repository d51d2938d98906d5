// 指示: miu200521358
package config

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miu200521358/mu_posebind/pkg/infra/base/mlogging"
	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
	"github.com/miu200521358/mu_posebind/pkg/usecase/minteractor"
)

type envTestConfig struct {
	Frames int `env:"MU_POSEBIND_TEST_FRAMES" envDefault:"120"`
}

func useBufferLogger(t *testing.T) *mlogging.Logger {
	t.Helper()
	logger := mlogging.NewLogger(nil)
	prevLogger := logging.DefaultLogger()
	logging.SetDefaultLogger(logger)
	t.Cleanup(func() {
		logging.SetDefaultLogger(prevLogger)
	})
	return logger
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Frames != 120 {
		t.Fatalf("frames mismatch: got=%d want=120", cfg.Frames)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("MU_POSEBIND_TEST_FRAMES", "many")
	err := ParseEnv(&cfg)
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("parse error should be wrapped: err=%v", err)
	}
}

func TestLoadGaitConfigFromEnvDefaults(t *testing.T) {
	got := LoadGaitConfigFromEnv()
	if diff := cmp.Diff(minteractor.DefaultGaitConfig(), got); diff != "" {
		t.Fatalf("default config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadGaitConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("MU_POSEBIND_GAIT_STEP_DISTANCE", "0.45")
	t.Setenv("MU_POSEBIND_GAIT_STEP_DURATION", "-1")

	got := LoadGaitConfigFromEnv()
	if got.StepDistance != 0.45 {
		t.Fatalf("step distance mismatch: got=%v want=0.45", got.StepDistance)
	}
	if got.StepDuration != minteractor.DefaultGaitConfig().StepDuration {
		t.Fatalf("negative duration should fall back: got=%v", got.StepDuration)
	}
}

func TestLoadGaitConfigFromEnvInvalidFallsBack(t *testing.T) {
	logger := useBufferLogger(t)
	t.Setenv("MU_POSEBIND_GAIT_FOOT_SPACING", "wide")

	got := LoadGaitConfigFromEnv()
	if diff := cmp.Diff(minteractor.DefaultGaitConfig(), got); diff != "" {
		t.Fatalf("invalid env should fall back (-want +got):\n%s", diff)
	}
	if len(logger.MessageBuffer().Lines()) != 1 {
		t.Fatalf("fallback should be logged once: got=%v", logger.MessageBuffer().Lines())
	}
}
