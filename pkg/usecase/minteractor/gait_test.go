// 指示: miu200521358
package minteractor

import (
	"math"
	"testing"

	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
)

func TestGaitStartsStepForFootFarFromIdeal(t *testing.T) {
	gait := NewGaitGenerator(DefaultGaitConfig())
	gait.SetFootPositions(mmath.NewVec3(-0.5, 0, 0), mmath.NewVec3(0.12, 0, 0))

	gait.Update(GaitInput{RootPosition: mmath.ZERO_VEC3, HeadRotation: mmath.NewQuaternion(), HipHeight: 0.9}, testDt)

	state := gait.State()
	if !state.Left.Stepping || state.Right.Stepping {
		t.Fatalf("left foot should start stepping: left=%+v right=%+v", state.Left, state.Right)
	}
	if state.Left.Progress != 0 {
		t.Fatalf("progress should reset: got=%v", state.Left.Progress)
	}
	if !state.Left.StepTarget.NearEquals(mmath.NewVec3(-0.12, 0, 0), 1e-9) {
		t.Fatalf("step target mismatch: got=%s", state.Left.StepTarget)
	}
	if !state.Left.StepStart.NearEquals(mmath.NewVec3(-0.5, 0, 0), 1e-9) {
		t.Fatalf("step start mismatch: got=%s", state.Left.StepStart)
	}
}

func TestGaitStepFollowsArcAndSnaps(t *testing.T) {
	config := DefaultGaitConfig()
	gait := NewGaitGenerator(config)
	gait.SetFootPositions(mmath.NewVec3(-0.5, 0, 0), mmath.NewVec3(0.12, 0, 0))
	input := GaitInput{RootPosition: mmath.ZERO_VEC3, HeadRotation: mmath.NewQuaternion(), HipHeight: 0.9}
	gait.Update(input, testDt)

	half := config.StepDuration / 2
	pose := gait.Update(input, half)
	if math.Abs(pose.LeftFoot.Y-config.StepHeight) > 1e-9 {
		t.Fatalf("mid-step height mismatch: got=%v want=%v", pose.LeftFoot.Y, config.StepHeight)
	}
	if math.Abs(pose.LeftFoot.X-(-0.31)) > 1e-9 {
		t.Fatalf("mid-step position mismatch: got=%v want=-0.31", pose.LeftFoot.X)
	}

	pose = gait.Update(input, config.StepDuration)
	state := gait.State()
	if state.Left.Stepping || !pose.LeftFoot.NearEquals(mmath.NewVec3(-0.12, 0, 0), 1e-9) {
		t.Fatalf("step should snap to target: state=%+v pose=%s", state.Left, pose.LeftFoot)
	}
}

func TestGaitExactlyOneFootStepsWhileWalking(t *testing.T) {
	gait := NewGaitGenerator(DefaultGaitConfig())
	speed := 1.2
	steps := 0
	for frame := 0; frame < 300; frame++ {
		root := mmath.NewVec3(0, 0, speed*float64(frame)*testDt)
		pose := gait.Update(GaitInput{RootPosition: root, HeadRotation: mmath.NewQuaternion(), HipHeight: 0.9}, testDt)
		state := gait.State()
		if frame < 60 {
			continue
		}
		stepping := 0
		if state.Left.Stepping {
			stepping++
		}
		if state.Right.Stepping {
			stepping++
		}
		if stepping != 1 {
			t.Fatalf("exactly one foot should step: frame=%d left=%v right=%v", frame, state.Left.Stepping, state.Right.Stepping)
		}
		leftHandForward := pose.LeftHand.Subed(root).Z
		rightHandForward := pose.RightHand.Subed(root).Z
		if math.Abs(leftHandForward+state.ArmSwing) > 1e-9 || math.Abs(rightHandForward-state.ArmSwing) > 1e-9 {
			t.Fatalf("hands should counter-swing: frame=%d left=%v right=%v swing=%v", frame, leftHandForward, rightHandForward, state.ArmSwing)
		}
		if math.Abs(state.ArmSwing) > DefaultGaitConfig().ArmSwingAmount+1e-12 {
			t.Fatalf("arm swing should be clamped: got=%v", state.ArmSwing)
		}
		steps = state.StepCount
	}
	if steps < 10 {
		t.Fatalf("walking should keep stepping: steps=%d", steps)
	}
}

func TestGaitLeavesTrackedHandsAlone(t *testing.T) {
	gait := NewGaitGenerator(DefaultGaitConfig())
	pose := gait.Update(GaitInput{
		RootPosition:    mmath.NewVec3(1, 0, 1),
		HeadRotation:    mmath.NewQuaternionFromDegrees(0, 90, 0),
		HipHeight:       0.95,
		LeftHandTracked: true,
	}, testDt)

	if pose.LeftHandPlaced {
		t.Fatalf("tracked hand should not be placed")
	}
	if !pose.RightHandPlaced || math.Abs(pose.RightHand.Y-0.95) > 1e-9 {
		t.Fatalf("untracked hand should be at hip height: got=%s", pose.RightHand)
	}
	want := mmath.NewVec3(1, 0, 1).Added(mmath.NewVec3(0, 0, -DefaultGaitConfig().HandSideOffset))
	if got := pose.RightHand.Horizontal(); !got.NearEquals(want, 1e-9) {
		t.Fatalf("hand side offset should follow head yaw: got=%s want=%s", got, want)
	}
}

func TestGaitConfigNormalizedFallsBackToDefaults(t *testing.T) {
	config := GaitConfig{StepDistance: -1, StepDuration: 0, FootSpacing: math.NaN(), StepHeight: 0.2}
	normalized := config.Normalized()
	defaults := DefaultGaitConfig()
	if normalized.StepDistance != defaults.StepDistance || normalized.StepDuration != defaults.StepDuration {
		t.Fatalf("invalid values should fall back: got=%+v", normalized)
	}
	if normalized.FootSpacing != defaults.FootSpacing {
		t.Fatalf("NaN should fall back: got=%v", normalized.FootSpacing)
	}
	if normalized.StepHeight != 0.2 || normalized.ArmSwingAmount != 0 {
		t.Fatalf("valid values should be kept: got=%+v", normalized)
	}
}

func TestGaitStateIsIndependentCopy(t *testing.T) {
	gait := NewGaitGenerator(DefaultGaitConfig())
	gait.SetFootPositions(mmath.NewVec3(-0.5, 0, 0), mmath.NewVec3(0.12, 0, 0))
	snapshot := gait.State()
	gait.Update(GaitInput{RootPosition: mmath.ZERO_VEC3, HeadRotation: mmath.NewQuaternion(), HipHeight: 0.9}, testDt)

	if snapshot.Left.Stepping {
		t.Fatalf("snapshot should not follow later updates")
	}
	if !snapshot.Left.CurrentPos.NearEquals(mmath.NewVec3(-0.5, 0, 0), 1e-9) {
		t.Fatalf("snapshot position mismatch: got=%s", snapshot.Left.CurrentPos)
	}
}
