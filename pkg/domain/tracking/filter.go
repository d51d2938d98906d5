// 指示: miu200521358
package tracking

import (
	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
	"github.com/miu200521358/mu_posebind/pkg/domain/scene"
)

// PoseSample はフィルタ間で受け渡す姿勢を表す。位置と回転は参照フレーム基準。
type PoseSample struct {
	Position   mmath.Vec3
	Rotation   mmath.Quaternion
	IsTracking bool
}

// ReferenceFrame は PoseSample の基準となるワールド姿勢を表す。
type ReferenceFrame struct {
	Position mmath.Vec3
	Rotation mmath.Quaternion
}

// NewReferenceFrame は transform のワールド姿勢から参照フレームを生成する。nil は原点。
func NewReferenceFrame(transform *scene.Transform) ReferenceFrame {
	if transform == nil {
		return ReferenceFrame{Position: mmath.ZERO_VEC3, Rotation: mmath.NewQuaternion()}
	}
	return ReferenceFrame{Position: transform.WorldPosition(), Rotation: transform.WorldRotation()}
}

// ToLocal はワールド姿勢を参照フレーム基準へ変換する。
func (f ReferenceFrame) ToLocal(position mmath.Vec3, rotation mmath.Quaternion) (mmath.Vec3, mmath.Quaternion) {
	inverse := f.Rotation.Inverted()
	return inverse.MulVec3(position.Subed(f.Position)), inverse.Muled(rotation)
}

// ToWorld は参照フレーム基準の姿勢をワールドへ変換する。
func (f ReferenceFrame) ToWorld(sample PoseSample) (mmath.Vec3, mmath.Quaternion) {
	return f.Position.Added(f.Rotation.MulVec3(sample.Position)), f.Rotation.Muled(sample.Rotation)
}

// IPoseFilter は Slot の姿勢を加工するフィルタ契約を表す。
type IPoseFilter interface {
	Filter(slot *Slot, sample PoseSample) PoseSample
}

// OffsetFilter は校正オフセットを姿勢のローカル軸で適用する。
type OffsetFilter struct {
	PositionOffset mmath.Vec3
	RotationOffset mmath.Quaternion
}

// Filter はオフセットを適用する。
func (f *OffsetFilter) Filter(_ *Slot, sample PoseSample) PoseSample {
	sample.Position = sample.Position.Added(sample.Rotation.MulVec3(f.PositionOffset))
	sample.Rotation = sample.Rotation.Muled(f.RotationOffset)
	return sample
}

// SmoothingFilter は位置を線形補間、回転を球面補間で平滑化する。
// Factor は1回あたりの追従率(0,1]。トラッキングが外れると履歴を破棄する。
type SmoothingFilter struct {
	Factor float64

	last    PoseSample
	hasLast bool
}

// NewSmoothingFilter は追従率を指定して SmoothingFilter を生成する。
func NewSmoothingFilter(factor float64) *SmoothingFilter {
	return &SmoothingFilter{Factor: mmath.Clamp(factor, 0, 1)}
}

// Filter は平滑化した姿勢を返す。
func (f *SmoothingFilter) Filter(_ *Slot, sample PoseSample) PoseSample {
	if !sample.IsTracking {
		f.hasLast = false
		return sample
	}
	if !f.hasLast || f.Factor <= 0 {
		f.last = sample
		f.hasLast = true
		return sample
	}
	sample.Position = f.last.Position.Lerp(sample.Position, f.Factor)
	sample.Rotation = f.last.Rotation.Slerp(sample.Rotation, f.Factor)
	f.last = sample
	return sample
}

// Reset は平滑化履歴を破棄する。
func (f *SmoothingFilter) Reset() {
	f.hasLast = false
}

// TrackingHoldFilter はトラッキング喪失後、直前の姿勢を HoldSamples 回まで保持する。
type TrackingHoldFilter struct {
	HoldSamples int

	lastTracked PoseSample
	hasTracked  bool
	lostCount   int
}

// Filter は保持中であれば直前の姿勢をトラッキング中として返す。
func (f *TrackingHoldFilter) Filter(_ *Slot, sample PoseSample) PoseSample {
	if sample.IsTracking {
		f.lastTracked = sample
		f.hasTracked = true
		f.lostCount = 0
		return sample
	}
	if !f.hasTracked || f.lostCount >= f.HoldSamples {
		return sample
	}
	f.lostCount++
	return f.lastTracked
}
