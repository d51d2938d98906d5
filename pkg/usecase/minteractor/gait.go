// 指示: miu200521358
package minteractor

import (
	"math"

	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
)

// GaitConfig は足運び生成の設定を表す。単位はメートルと秒。
type GaitConfig struct {
	FootSpacing           float64 `env:"MU_POSEBIND_GAIT_FOOT_SPACING"            envDefault:"0.12"`
	StepDistance          float64 `env:"MU_POSEBIND_GAIT_STEP_DISTANCE"           envDefault:"0.3"`
	StepDuration          float64 `env:"MU_POSEBIND_GAIT_STEP_DURATION"           envDefault:"0.3"`
	StepHeight            float64 `env:"MU_POSEBIND_GAIT_STEP_HEIGHT"             envDefault:"0.08"`
	SpeedThreshold        float64 `env:"MU_POSEBIND_GAIT_SPEED_THRESHOLD"         envDefault:"0.2"`
	ForwardBiasRatio      float64 `env:"MU_POSEBIND_GAIT_FORWARD_BIAS_RATIO"      envDefault:"0.5"`
	VelocitySmoothingRate float64 `env:"MU_POSEBIND_GAIT_VELOCITY_SMOOTHING_RATE" envDefault:"8"`
	ArmSwingAmount        float64 `env:"MU_POSEBIND_GAIT_ARM_SWING_AMOUNT"        envDefault:"0.15"`
	HandSideOffset        float64 `env:"MU_POSEBIND_GAIT_HAND_SIDE_OFFSET"        envDefault:"0.22"`
	HipHeight             float64 `env:"MU_POSEBIND_GAIT_HIP_HEIGHT"              envDefault:"0.9"`
}

// DefaultGaitConfig は既定の足運び設定を返す。
func DefaultGaitConfig() GaitConfig {
	return GaitConfig{
		FootSpacing:           0.12,
		StepDistance:          0.3,
		StepDuration:          0.3,
		StepHeight:            0.08,
		SpeedThreshold:        0.2,
		ForwardBiasRatio:      0.5,
		VelocitySmoothingRate: 8,
		ArmSwingAmount:        0.15,
		HandSideOffset:        0.22,
		HipHeight:             0.9,
	}
}

// Normalized は不正値を既定値へ置き換えた設定を返す。
func (c GaitConfig) Normalized() GaitConfig {
	defaults := DefaultGaitConfig()
	fix := func(value *float64, fallback float64, allowZero bool) {
		if math.IsNaN(*value) || math.IsInf(*value, 0) || *value < 0 || (!allowZero && *value == 0) {
			*value = fallback
		}
	}
	fix(&c.FootSpacing, defaults.FootSpacing, true)
	fix(&c.StepDistance, defaults.StepDistance, false)
	fix(&c.StepDuration, defaults.StepDuration, false)
	fix(&c.StepHeight, defaults.StepHeight, true)
	fix(&c.SpeedThreshold, defaults.SpeedThreshold, true)
	fix(&c.ForwardBiasRatio, defaults.ForwardBiasRatio, true)
	fix(&c.VelocitySmoothingRate, defaults.VelocitySmoothingRate, false)
	fix(&c.ArmSwingAmount, defaults.ArmSwingAmount, true)
	fix(&c.HandSideOffset, defaults.HandSideOffset, true)
	fix(&c.HipHeight, defaults.HipHeight, true)
	return c
}

// GaitFootState は片足の接地・踏み出し状態を表す。CurrentPos は接地面上の位置。
type GaitFootState struct {
	CurrentPos mmath.Vec3
	Stepping   bool
	Progress   float64
	StepStart  mmath.Vec3
	StepTarget mmath.Vec3
}

// GaitState は足運び生成の内部状態を表す。
type GaitState struct {
	Left             GaitFootState
	Right            GaitFootState
	SmoothedVelocity mmath.Vec3
	LastRootPos      mmath.Vec3
	HasLastRoot      bool
	Initialized      bool
	ArmSwing         float64
	StepCount        int
}

// GaitInput は1フレーム分の入力を表す。
type GaitInput struct {
	RootPosition     mmath.Vec3
	HeadRotation     mmath.Quaternion
	HipHeight        float64
	LeftHandTracked  bool
	RightHandTracked bool
}

// GaitPose は1フレーム分の出力姿勢(ワールド)を表す。
type GaitPose struct {
	LeftFoot        mmath.Vec3
	RightFoot       mmath.Vec3
	BodyRotation    mmath.Quaternion
	LeftHand        mmath.Vec3
	RightHand       mmath.Vec3
	LeftHandPlaced  bool
	RightHandPlaced bool
}

// GaitGenerator はルート移動から足と腕の振りを生成する。
type GaitGenerator struct {
	config GaitConfig
	state  GaitState
}

// NewGaitGenerator は足運び生成器を生成する。
func NewGaitGenerator(config GaitConfig) *GaitGenerator {
	return &GaitGenerator{config: config.Normalized()}
}

// Config は設定を返す。
func (g *GaitGenerator) Config() GaitConfig {
	return g.config
}

// State は現在の状態を値で返す。
func (g *GaitGenerator) State() GaitState {
	return g.state
}

// Reset は状態を破棄する。次の Update で足を理想位置へ置き直す。
func (g *GaitGenerator) Reset() {
	g.state = GaitState{}
}

// SetFootPositions は接地位置を明示する。踏み出し中の状態は破棄する。
func (g *GaitGenerator) SetFootPositions(left, right mmath.Vec3) {
	g.state.Left = GaitFootState{CurrentPos: left, Progress: 1}
	g.state.Right = GaitFootState{CurrentPos: right, Progress: 1}
	g.state.Initialized = true
}

// Update は dt 秒進めた足と手の姿勢を返す。
// 踏み出し中の足を先に進め、その後で新しい踏み出しを判定する。
func (g *GaitGenerator) Update(input GaitInput, dt float64) GaitPose {
	root := input.RootPosition
	forward, right := bodyAxes(input.HeadRotation)

	if !g.state.HasLastRoot {
		g.state.LastRootPos = root
		g.state.HasLastRoot = true
	}
	if dt > 0 {
		velocity := root.Subed(g.state.LastRootPos).MuledScalar(1 / dt).Horizontal()
		alpha := mmath.ExpSmoothingFactor(g.config.VelocitySmoothingRate, dt)
		g.state.SmoothedVelocity = g.state.SmoothedVelocity.Lerp(velocity, alpha)
	}
	g.state.LastRootPos = root
	speed := g.state.SmoothedVelocity.Length()

	leftIdeal, rightIdeal := g.idealPositions(root, right, speed)
	if !g.state.Initialized {
		g.state.Left = GaitFootState{CurrentPos: leftIdeal, Progress: 1}
		g.state.Right = GaitFootState{CurrentPos: rightIdeal, Progress: 1}
		g.state.Initialized = true
	}

	if dt > 0 {
		g.advanceStep(&g.state.Left, dt)
		g.advanceStep(&g.state.Right, dt)
	}
	g.startStepIfNeeded(leftIdeal, rightIdeal, speed)

	return g.pose(input, root, forward, right)
}

// idealPositions はルート直下から左右へ FootSpacing ずらした理想接地位置を返す。
// 閾値を超えて移動中は進行方向へ前寄せする。
func (g *GaitGenerator) idealPositions(root, right mmath.Vec3, speed float64) (mmath.Vec3, mmath.Vec3) {
	ground := root
	if speed > g.config.SpeedThreshold {
		bias := g.state.SmoothedVelocity.Normalized().MuledScalar(speed * g.config.StepDuration * g.config.ForwardBiasRatio)
		ground = ground.Added(bias)
	}
	offset := right.MuledScalar(g.config.FootSpacing)
	return ground.Subed(offset), ground.Added(offset)
}

// effectiveStepDistance は移動中の踏み出し距離を返す。速度に応じて歩幅を詰める。
// 踏み出し1回分の移動量 speed*StepDuration を超えないようにし、歩行中は常に片足だけが踏み出す状態を保つ。
func (g *GaitGenerator) effectiveStepDistance(speed float64) float64 {
	if speed > g.config.SpeedThreshold {
		return math.Min(g.config.StepDistance, speed*g.config.StepDuration)
	}
	return g.config.StepDistance
}

func (g *GaitGenerator) startStepIfNeeded(leftIdeal, rightIdeal mmath.Vec3, speed float64) {
	if g.state.Left.Stepping || g.state.Right.Stepping {
		return
	}
	stepDistance := g.effectiveStepDistance(speed)
	leftDistance := g.state.Left.CurrentPos.Horizontal().Distance(leftIdeal.Horizontal())
	rightDistance := g.state.Right.CurrentPos.Horizontal().Distance(rightIdeal.Horizontal())
	if leftDistance <= stepDistance && rightDistance <= stepDistance {
		return
	}
	if leftDistance >= rightDistance {
		g.beginStep(&g.state.Left, leftIdeal)
		return
	}
	g.beginStep(&g.state.Right, rightIdeal)
}

func (g *GaitGenerator) beginStep(foot *GaitFootState, target mmath.Vec3) {
	foot.Stepping = true
	foot.Progress = 0
	foot.StepStart = foot.CurrentPos
	foot.StepTarget = target
	g.state.StepCount++
}

func (g *GaitGenerator) advanceStep(foot *GaitFootState, dt float64) {
	if !foot.Stepping {
		return
	}
	foot.Progress += dt / g.config.StepDuration
	if foot.Progress >= 1 {
		foot.Progress = 1
		foot.CurrentPos = foot.StepTarget
		foot.Stepping = false
		return
	}
	foot.CurrentPos = mmath.SmoothStepVec3(foot.StepStart, foot.StepTarget, foot.Progress)
}

// footHeight は踏み出し中の弧の高さを返す。
func (g *GaitGenerator) footHeight(foot GaitFootState) float64 {
	if !foot.Stepping {
		return 0
	}
	return math.Sin(foot.Progress*math.Pi) * g.config.StepHeight
}

func (g *GaitGenerator) pose(input GaitInput, root, forward, right mmath.Vec3) GaitPose {
	left := g.state.Left
	rightFoot := g.state.Right

	leftOffset := left.CurrentPos.Subed(root).Dot(forward)
	rightOffset := rightFoot.CurrentPos.Subed(root).Dot(forward)
	swing := mmath.Clamp((leftOffset-rightOffset)/2, -g.config.ArmSwingAmount, g.config.ArmSwingAmount)
	g.state.ArmSwing = swing

	pose := GaitPose{
		LeftFoot:     left.CurrentPos.Added(mmath.UNIT_Y_VEC3.MuledScalar(g.footHeight(left))),
		RightFoot:    rightFoot.CurrentPos.Added(mmath.UNIT_Y_VEC3.MuledScalar(g.footHeight(rightFoot))),
		BodyRotation: input.HeadRotation.YawOnly(),
	}
	hip := mmath.NewVec3(root.X, input.HipHeight, root.Z)
	side := right.MuledScalar(g.config.HandSideOffset)
	if !input.LeftHandTracked {
		pose.LeftHand = hip.Subed(side).Subed(forward.MuledScalar(swing))
		pose.LeftHandPlaced = true
	}
	if !input.RightHandTracked {
		pose.RightHand = hip.Added(side).Added(forward.MuledScalar(swing))
		pose.RightHandPlaced = true
	}
	return pose
}

// bodyAxes は頭部のヨーから水平な前方と右方向を返す。
func bodyAxes(headRotation mmath.Quaternion) (mmath.Vec3, mmath.Vec3) {
	forward := headRotation.YawOnly().MulVec3(mmath.UNIT_Z_VEC3).Horizontal().Normalized()
	if forward.Length() == 0 {
		forward = mmath.UNIT_Z_VEC3
	}
	right := mmath.UNIT_Y_VEC3.Cross(forward)
	return forward, right
}
