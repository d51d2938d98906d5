// 指示: miu200521358
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miu200521358/mu_posebind/pkg/infra/base/mlogging"
	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
)

func TestParseOptionsWithFlags(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{"-skeleton", "avatar.toml", "-frames", "30", "-dt", "0.02", "-speed", "0.5", "-lang", "en"}, errBuf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.skeletonPath != "avatar.toml" || opts.frames != 30 || opts.dt != 0.02 || opts.speed != 0.5 || opts.lang != "en" {
		t.Fatalf("options mismatch: %+v", opts)
	}
}

func TestParseOptionsWithPositionals(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	opts, err := parseOptions([]string{"avatar.toml"}, errBuf)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if opts.skeletonPath != "avatar.toml" || opts.frames != 120 || opts.lang != "ja" {
		t.Fatalf("options mismatch: %+v", opts)
	}
}

func TestParseOptionsRejectsInvalidValues(t *testing.T) {
	cases := [][]string{
		{},
		{"-skeleton", "avatar.toml", "-frames", "0"},
		{"-skeleton", "avatar.toml", "-dt", "-1"},
		{"-skeleton", "avatar.toml", "-speed", "-0.5"},
	}
	for _, args := range cases {
		if _, err := parseOptions(args, bytes.NewBuffer(nil)); err == nil {
			t.Fatalf("expected error: args=%v", args)
		}
	}
}

func TestParseOptionsPrintsUsageOnUnknownFlag(t *testing.T) {
	errBuf := bytes.NewBuffer(nil)
	if _, err := parseOptions([]string{"-lang", "en", "-unknown"}, errBuf); err == nil {
		t.Fatalf("unknown flag should fail")
	}
	output := errBuf.String()
	if !strings.Contains(output, "usage: mu_posebind -skeleton avatar.toml") || !strings.Contains(output, "-frames") {
		t.Fatalf("usage mismatch:\n%s", output)
	}
}

func TestRunRejectsUnsupportedExtension(t *testing.T) {
	err := run([]string{"-skeleton", "avatar.vrm"}, bytes.NewBuffer(nil), bytes.NewBuffer(nil))
	if err == nil || !strings.Contains(err.Error(), "avatar.vrm") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunWalksFixtureAvatar(t *testing.T) {
	logger := mlogging.NewLogger(nil)
	prevLogger := logging.DefaultLogger()
	logging.SetDefaultLogger(logger)
	t.Cleanup(func() {
		logging.SetDefaultLogger(prevLogger)
	})

	path := filepath.Join(t.TempDir(), "walker.toml")
	content := `
[[bones]]
name = "Hips"
position = [0.0, 0.9, 0.0]

[[bones]]
name = "Spine"
parent = "Hips"
position = [0.0, 0.1, 0.0]

[[bones]]
name = "Head"
parent = "Spine"
position = [0.0, 0.6, 0.0]

[[bones]]
name = "LeftUpperArm"
parent = "Spine"
position = [-0.2, 0.4, 0.0]

[[bones]]
name = "LeftLowerArm"
parent = "LeftUpperArm"
position = [-0.25, 0.0, 0.0]

[[bones]]
name = "LeftHand"
parent = "LeftLowerArm"
position = [-0.25, 0.0, 0.0]

[[bones]]
name = "RightUpperArm"
parent = "Spine"
position = [0.2, 0.4, 0.0]

[[bones]]
name = "RightLowerArm"
parent = "RightUpperArm"
position = [0.25, 0.0, 0.0]

[[bones]]
name = "RightHand"
parent = "RightLowerArm"
position = [0.25, 0.0, 0.0]

[[bones]]
name = "LeftUpperLeg"
parent = "Hips"
position = [-0.1, -0.05, 0.0]

[[bones]]
name = "LeftLowerLeg"
parent = "LeftUpperLeg"
position = [0.0, -0.4, 0.0]

[[bones]]
name = "LeftFoot"
parent = "LeftLowerLeg"
position = [0.0, -0.4, 0.0]

[[bones]]
name = "RightUpperLeg"
parent = "Hips"
position = [0.1, -0.05, 0.0]

[[bones]]
name = "RightLowerLeg"
parent = "RightUpperLeg"
position = [0.0, -0.4, 0.0]

[[bones]]
name = "RightFoot"
parent = "RightLowerLeg"
position = [0.0, -0.4, 0.0]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture failed: %v", err)
	}

	out := bytes.NewBuffer(nil)
	if err := run([]string{"-skeleton", path, "-frames", "90", "-lang", "en"}, out, bytes.NewBuffer(nil)); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	output := out.String()
	for _, want := range []string{
		"loaded skeleton: walker (15 bones)",
		"Biped: yes (15 mapped)",
		"  - Head bone=Head equipped=yes tracking=yes driving=yes",
		"Gait: yes",
		"simulation finished: 90 frames",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}
}
