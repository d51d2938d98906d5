// 指示: miu200521358
package mmath

import (
	"math"
	"testing"
)

func TestQuaternionMulVec3RotatesAroundAxis(t *testing.T) {
	q := NewQuaternionFromAxisAngle(UNIT_Y_VEC3, math.Pi/2)
	got := q.MulVec3(UNIT_Z_VEC3)
	if !got.NearEquals(UNIT_X_VEC3, 1e-9) {
		t.Fatalf("rotated vector mismatch: got=%s want=%s", got, UNIT_X_VEC3)
	}
	back := q.Inverted().MulVec3(got)
	if !back.NearEquals(UNIT_Z_VEC3, 1e-9) {
		t.Fatalf("inverse rotation mismatch: got=%s", back)
	}
}

func TestQuaternionYawIgnoresPitch(t *testing.T) {
	q := NewQuaternionFromDegrees(30, 90, 0)
	if yaw := RadToDeg(q.Yaw()); math.Abs(yaw-90) > 1e-6 {
		t.Fatalf("yaw mismatch: got=%f want=90", yaw)
	}
	if !q.YawOnly().NearEquals(NewQuaternionFromDegrees(0, 90, 0), 1e-9) {
		t.Fatalf("yaw only mismatch: got=%s", q.YawOnly())
	}
}

func TestQuaternionZeroValueActsAsIdentity(t *testing.T) {
	var q Quaternion
	v := NewVec3(1, 2, 3)
	if got := q.MulVec3(v); !got.NearEquals(v, 1e-12) {
		t.Fatalf("zero quaternion should not rotate: got=%s", got)
	}
	if !q.NearEquals(NewQuaternion(), 1e-12) {
		t.Fatalf("zero quaternion should equal identity")
	}
}

func TestQuaternionNearEqualsTreatsNegatedAsSame(t *testing.T) {
	q := NewQuaternionFromDegrees(10, 20, 30)
	neg := NewQuaternionByValues(-q.X(), -q.Y(), -q.Z(), -q.W())
	if !q.NearEquals(neg, 1e-9) {
		t.Fatalf("negated quaternion should be the same rotation")
	}
}

func TestSmoothStepEndpointsAndMidpoint(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want float64
	}{
		{-1, 0}, {0, 0}, {0.5, 0.5}, {1, 1}, {2, 1},
	} {
		if got := SmoothStep(tc.in); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("smoothstep mismatch: in=%f got=%f want=%f", tc.in, got, tc.want)
		}
	}
	mid := SmoothStepVec3(ZERO_VEC3, NewVec3(2, 0, 4), 0.5)
	if !mid.NearEquals(NewVec3(1, 0, 2), 1e-12) {
		t.Fatalf("smoothstep vec mismatch: got=%s", mid)
	}
}

func TestVec3NormalizedZeroStaysZero(t *testing.T) {
	if got := ZERO_VEC3.Normalized(); got != ZERO_VEC3 {
		t.Fatalf("normalized zero mismatch: got=%s", got)
	}
	if got := NewVec3(3, 0, 4).Normalized().Length(); math.Abs(got-1) > 1e-12 {
		t.Fatalf("normalized length mismatch: got=%f", got)
	}
}
