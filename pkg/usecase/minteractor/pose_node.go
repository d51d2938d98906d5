// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	"github.com/miu200521358/mu_posebind/pkg/domain/scene"
	"github.com/miu200521358/mu_posebind/pkg/domain/tracking"
	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
)

// PoseNodeOrderMargin は親 PoseNode から子 PoseNode までの実行順の差。
const PoseNodeOrderMargin = 10

// PoseNodeOptions は PoseNode の生成オプションを表す。
type PoseNodeOptions struct {
	// Phase は毎フレームの処理を行う同期点。
	Phase scene.FramePhase
	// BaseOrder は祖先に PoseNode が無い場合の実行順。
	BaseOrder int
	// Priority は装着優先度。
	Priority int
	// WriteWhenUntracked が false の場合、非トラッキング中は駆動を保持したまま書き込まない。
	WriteWhenUntracked bool
	// LocalUser は自分のアバターに属するか。未装着時に駆動を解放する。
	LocalUser bool
	// Reference は姿勢の参照フレーム。nil の場合は Slot の親空間。
	Reference *scene.Transform
}

// PoseNode は Slot から姿勢を受け取り自身の変換ノードへ書き込む。
type PoseNode struct {
	tracking.EquippableBase

	scheduler         *scene.Scheduler
	hook              scene.HookHandle
	subscribed        bool
	options           PoseNodeOptions
	order             int
	structureListener int
	isTracking        bool
	destroyed         bool
	positionDrive     *scene.Drive[mmath.Vec3]
	rotationDrive     *scene.Drive[mmath.Quaternion]
	scaleDrive        *scene.Drive[mmath.Vec3]
	activeDrive       *scene.Drive[bool]
}

// NewPoseNode は transform 上に PoseNode を生成し、scheduler へ登録する。
func NewPoseNode(scheduler *scene.Scheduler, transform *scene.Transform, node model.BodyNode, options PoseNodeOptions) *PoseNode {
	if transform == nil {
		transform = scene.NewTransform("pose:" + node.String())
	}
	owner := "pose:" + transform.Path()
	p := &PoseNode{
		EquippableBase: tracking.NewEquippableBase(transform, node, options.Priority),
		scheduler:      scheduler,
		options:        options,
		positionDrive:  scene.NewDrive[mmath.Vec3](owner),
		rotationDrive:  scene.NewDrive[mmath.Quaternion](owner),
		scaleDrive:     scene.NewDrive[mmath.Vec3](owner),
		activeDrive:    scene.NewDrive[bool](owner),
	}
	transform.AddComponent(p)
	p.structureListener = transform.AddStructureListener(func(*scene.Transform) {
		p.recomputeOwnOrder()
	})
	p.RecomputeOrder()
	if scheduler != nil {
		p.hook = scheduler.Subscribe(options.Phase, p)
		p.subscribed = true
	}
	return p
}

// UpdateOrder は同期点内の実行順を返す。
func (p *PoseNode) UpdateOrder() int {
	return p.order
}

// Phase は処理を行う同期点を返す。
func (p *PoseNode) Phase() scene.FramePhase {
	return p.options.Phase
}

// IsTracking は直近フレームでトラッキング中だったか判定する。
func (p *PoseNode) IsTracking() bool {
	return p.isTracking
}

// IsDriving は位置と回転の駆動を保持しているか判定する。
func (p *PoseNode) IsDriving() bool {
	return p.positionDrive.IsActive() && p.rotationDrive.IsActive()
}

// IsDestroyed は破棄済みか判定する。
func (p *PoseNode) IsDestroyed() bool {
	return p.destroyed
}

// RecomputeOrder は自身と子孫 PoseNode の実行順を再計算する。
func (p *PoseNode) RecomputeOrder() {
	transform := p.Transform()
	transform.Walk(func(node *scene.Transform) bool {
		if poseNode, ok := scene.FindComponent[*PoseNode](node); ok {
			poseNode.recomputeOwnOrder()
		}
		return true
	})
}

// recomputeOwnOrder は最も近い祖先 PoseNode の実行順に余白を足す。
func (p *PoseNode) recomputeOwnOrder() {
	parent, ok := scene.FindComponentInAncestors[*PoseNode](p.Transform())
	if !ok {
		p.order = p.options.BaseOrder
		return
	}
	p.order = parent.UpdateOrder() + PoseNodeOrderMargin
}

// OnPreEquip は装着直前に呼ばれる。
func (p *PoseNode) OnPreEquip(slot *tracking.Slot) {
	if slot != p.EquippedSlot() {
		return
	}
	p.isTracking = false
}

// OnEquip は装着時に自身の変換ノードへの駆動を取得する。
func (p *PoseNode) OnEquip(slot *tracking.Slot) {
	if slot != p.EquippedSlot() {
		return
	}
	transform := p.Transform()
	if err := p.positionDrive.Bind(transform.Position); err != nil {
		logPoseWarn("PoseNode の位置駆動を取得できません: node=%s err=%v", p.BodyNode(), err)
	}
	if err := p.rotationDrive.Bind(transform.Rotation); err != nil {
		logPoseWarn("PoseNode の回転駆動を取得できません: node=%s err=%v", p.BodyNode(), err)
	}
	if slot.DriveScale {
		if err := p.scaleDrive.Bind(transform.Scale); err != nil {
			logPoseWarn("PoseNode のスケール駆動を取得できません: node=%s err=%v", p.BodyNode(), err)
		}
	}
	if slot.DriveActive {
		if err := p.activeDrive.Bind(transform.Active); err != nil {
			logPoseWarn("PoseNode の有効フラグ駆動を取得できません: node=%s err=%v", p.BodyNode(), err)
		}
	}
}

// OnDequip は解除時に全駆動を解放する。
func (p *PoseNode) OnDequip(slot *tracking.Slot) {
	if slot != p.EquippedSlot() {
		return
	}
	p.isTracking = false
	p.ReleaseDrives()
}

// ReleaseDrives は全駆動を解放し、変換ノードをローカル編集へ戻す。
func (p *PoseNode) ReleaseDrives() {
	p.positionDrive.Release()
	p.rotationDrive.Release()
	p.scaleDrive.Release()
	p.activeDrive.Release()
}

// OnFrame は Slot の姿勢を親空間へ変換して書き込む。
func (p *PoseNode) OnFrame(phase scene.FramePhase, _ float64) {
	if p.destroyed || phase != p.options.Phase {
		return
	}
	slot := p.EquippedSlot()
	if slot == nil {
		p.isTracking = false
		if p.options.LocalUser {
			p.ReleaseDrives()
		}
		return
	}

	sample, frame := slot.GetFilteredPose(p.options.Reference)
	p.isTracking = sample.IsTracking
	if !sample.IsTracking && !p.options.WriteWhenUntracked {
		return
	}
	worldPosition, worldRotation := frame.ToWorld(sample)
	p.writeWorldPose(worldPosition, worldRotation)
	if slot.DriveScale {
		p.scaleDrive.Set(slot.Transform().LocalScale())
	}
	if slot.DriveActive {
		p.activeDrive.Set(slot.Transform().IsActive())
	}
}

// ApplyWorldPose は外部の姿勢生成元からワールド姿勢を書き込む。
// 駆動保持中は駆動経由、未保持ならローカル編集として書き込む。
func (p *PoseNode) ApplyWorldPose(position mmath.Vec3, rotation mmath.Quaternion) bool {
	if p.destroyed {
		return false
	}
	if p.IsDriving() {
		p.writeWorldPose(position, rotation)
		return true
	}
	transform := p.Transform()
	if transform.Position.IsDriven() || transform.Rotation.IsDriven() {
		return false
	}
	transform.SetWorldPose(position, rotation)
	return true
}

func (p *PoseNode) writeWorldPose(position mmath.Vec3, rotation mmath.Quaternion) {
	transform := p.Transform()
	p.positionDrive.Set(transform.GlobalPointToParentLocal(position))
	p.rotationDrive.Set(transform.GlobalRotationToParentLocal(rotation))
}

// Destroy は解除、駆動解放、同期点からの登録解除を行う。
func (p *PoseNode) Destroy() {
	if p.destroyed {
		return
	}
	if slot := p.EquippedSlot(); slot != nil {
		slot.Dequip()
	}
	p.ReleaseDrives()
	if p.subscribed && p.scheduler != nil {
		p.scheduler.Unsubscribe(p.hook)
		p.subscribed = false
	}
	transform := p.Transform()
	transform.RemoveStructureListener(p.structureListener)
	transform.RemoveComponent(p)
	p.isTracking = false
	p.destroyed = true
}

// logPoseWarn は姿勢処理の警告ログを出力する。
func logPoseWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// logPoseInfo は姿勢処理の情報ログを出力する。
func logPoseInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}
