// 指示: miu200521358
package tracking

import (
	"slices"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	"github.com/miu200521358/mu_posebind/pkg/domain/scene"
)

// Slot はランドマーク1つ分の装着口を表す。装着できるオブジェクトは常に1つまで。
type Slot struct {
	node           model.BodyNode
	transform      *scene.Transform
	isTracking     bool
	isDeviceActive bool
	filters        []IPoseFilter
	equipped       IEquippable
	ownerUser      uuid.UUID
	hasOwnerUser   bool
	registry       responderRegistry

	// DriveScale は装着先へスケールも反映するか。
	DriveScale bool
	// DriveActive は装着先へ有効フラグも反映するか。
	DriveActive bool
}

// NewSlot は parent 配下に Slot 用の変換ノードを生成する。
func NewSlot(parent *scene.Transform, node model.BodyNode) *Slot {
	slot := &Slot{node: node}
	slot.transform = scene.NewChildTransform(parent, "slot:"+node.String())
	slot.transform.AddComponent(slot)
	return slot
}

// Node は Slot のノードを返す。
func (s *Slot) Node() model.BodyNode {
	return s.node
}

// Transform は Slot の変換ノードを返す。
func (s *Slot) Transform() *scene.Transform {
	return s.transform
}

// IsTracking は姿勢が有効か判定する。
func (s *Slot) IsTracking() bool {
	return s.isTracking
}

// IsDeviceActive はデバイスが接続中か判定する。
func (s *Slot) IsDeviceActive() bool {
	return s.isDeviceActive
}

// SetTrackingState はトラッキング状態を設定する。
func (s *Slot) SetTrackingState(tracking bool, deviceActive bool) {
	s.isTracking = tracking
	s.isDeviceActive = deviceActive
}

// AddFilter はフィルタを末尾へ追加する。
func (s *Slot) AddFilter(filter IPoseFilter) {
	if filter == nil {
		return
	}
	s.filters = append(s.filters, filter)
}

// Filters はフィルタ一覧の複製を返す。
func (s *Slot) Filters() []IPoseFilter {
	return slices.Clone(s.filters)
}

// OwnerUser は Slot を所有するユーザーを返す。
func (s *Slot) OwnerUser() (uuid.UUID, bool) {
	return s.ownerUser, s.hasOwnerUser
}

// SetOwnerUser は Slot を所有するユーザーを設定する。
func (s *Slot) SetOwnerUser(user uuid.UUID) {
	s.ownerUser = user
	s.hasOwnerUser = user != uuid.Nil
}

// Equipped は装着中のオブジェクトを返す。
func (s *Slot) Equipped() IEquippable {
	return s.equipped
}

// IsEquipped は装着中か判定する。
func (s *Slot) IsEquipped() bool {
	return s.equipped != nil
}

// CanEquip は obj を装着できるか判定する。
func (s *Slot) CanEquip(obj IEquippable) bool {
	if obj == nil || obj.BodyNode() != s.node {
		return false
	}
	if user, locked := obj.ExclusiveUser(); locked && s.hasOwnerUser && user != s.ownerUser {
		return false
	}
	return true
}

// Equip は obj を装着する。既存の装着は先に解除する。
func (s *Slot) Equip(obj IEquippable) bool {
	return s.EquipWithBatch(obj, NewEquipBatch())
}

// EquipWithBatch は batch の解除済み記録を共有して obj を装着する。
func (s *Slot) EquipWithBatch(obj IEquippable, batch *EquipBatch) bool {
	if !s.CanEquip(obj) {
		logTrackingDebug("装着できないオブジェクトです: slot=%s target=%T", s.node, obj)
		return false
	}
	if s.equipped == obj && obj.EquippedSlot() == s {
		return true
	}
	if batch == nil {
		batch = NewEquipBatch()
	}
	if s.equipped != nil {
		s.dequipWithBatch(batch)
	}
	if previous := obj.EquippedSlot(); previous != nil && previous != s {
		previous.dequipWithBatch(batch)
	}

	s.equipped = obj
	obj.linkSlot(s)
	batch.markEquipped(obj)

	responders := s.registry.resolve(obj)
	for _, responder := range responders {
		invokeResponder("OnPreEquip", s, responder, responder.OnPreEquip)
	}
	for _, responder := range responders {
		invokeResponder("OnEquip", s, responder, responder.OnEquip)
	}
	return true
}

// Dequip は装着中のオブジェクトを解除する。未装着の場合は何もしない。
func (s *Slot) Dequip() {
	s.DequipWithBatch(NewEquipBatch())
}

// DequipWithBatch は batch の解除済み記録を共有して解除する。
func (s *Slot) DequipWithBatch(batch *EquipBatch) {
	if batch == nil {
		batch = NewEquipBatch()
	}
	s.dequipWithBatch(batch)
}

func (s *Slot) dequipWithBatch(batch *EquipBatch) {
	obj := s.equipped
	if obj == nil {
		return
	}
	if batch.markDequipped(obj) {
		for _, responder := range s.registry.resolve(obj) {
			invokeResponder("OnDequip", s, responder, responder.OnDequip)
		}
	}
	s.equipped = nil
	if obj.EquippedSlot() == s {
		obj.linkSlot(nil)
	}
	s.registry.reset()
}

// GetFilteredPose は reference 基準の姿勢をフィルタに通して返す。
// reference が nil の場合は Slot の親空間を基準とする。
func (s *Slot) GetFilteredPose(reference *scene.Transform) (PoseSample, ReferenceFrame) {
	if reference == nil {
		reference = s.transform.Parent()
	}
	frame := NewReferenceFrame(reference)
	position, rotation := frame.ToLocal(s.transform.WorldPosition(), s.transform.WorldRotation())
	sample := PoseSample{Position: position, Rotation: rotation, IsTracking: s.isTracking}
	for _, filter := range s.filters {
		sample = filter.Filter(s, sample)
	}
	return sample, frame
}

// responderBuildCount は応答一覧の構築回数を返す。
func (s *Slot) responderBuildCount() int {
	return s.registry.builds
}
