// 指示: miu200521358
package tracking

import (
	"sort"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	"github.com/miu200521358/mu_posebind/pkg/domain/scene"
)

// SlotSet はアバター1体分の Slot をノードごとに保持する。
type SlotSet struct {
	root      *scene.Transform
	ownerUser uuid.UUID
	slots     map[model.BodyNode]*Slot
	order     []model.BodyNode
}

// NewSlotSet は root 配下に nodes 分の Slot を生成する。root はトラッキング空間を表す。
func NewSlotSet(root *scene.Transform, ownerUser uuid.UUID, nodes ...model.BodyNode) *SlotSet {
	if root == nil {
		root = scene.NewTransform("tracking_space")
	}
	set := &SlotSet{root: root, ownerUser: ownerUser, slots: map[model.BodyNode]*Slot{}}
	for _, node := range nodes {
		if _, exists := set.slots[node]; exists || !node.IsValid() {
			continue
		}
		slot := NewSlot(root, node)
		slot.SetOwnerUser(ownerUser)
		set.slots[node] = slot
		set.order = append(set.order, node)
	}
	return set
}

// Root はトラッキング空間の変換ノードを返す。
func (s *SlotSet) Root() *scene.Transform {
	return s.root
}

// OwnerUser は所有ユーザーを返す。
func (s *SlotSet) OwnerUser() uuid.UUID {
	return s.ownerUser
}

// Slot はノードの Slot を返す。
func (s *SlotSet) Slot(node model.BodyNode) (*Slot, bool) {
	if s == nil {
		return nil, false
	}
	slot, exists := s.slots[node]
	return slot, exists
}

// Slots は生成順の Slot 一覧を返す。
func (s *SlotSet) Slots() []*Slot {
	slots := make([]*Slot, 0, len(s.order))
	for _, node := range s.order {
		slots = append(slots, s.slots[node])
	}
	return slots
}

// Sample はトラッキング取得結果を各 Slot へ反映する。
// 取得できないノードは直前の姿勢を残したまま非トラッキングにする。
func (s *SlotSet) Sample(provider ITrackingProvider) {
	if s == nil {
		return
	}
	if provider == nil {
		for _, slot := range s.Slots() {
			slot.SetTrackingState(false, false)
		}
		return
	}
	for _, slot := range s.Slots() {
		sample, ok := provider.Sample(slot.Node())
		if !ok {
			slot.SetTrackingState(false, false)
			continue
		}
		if sample.IsTracking {
			slot.Transform().Position.Set(sample.Position)
			slot.Transform().Rotation.Set(sample.Rotation)
		}
		slot.SetTrackingState(sample.IsTracking, sample.IsDeviceActive)
	}
}

// EquipAll はオブジェクト群を優先度順に装着し、装着できた件数を返す。
// 同一ノードは優先度の高いものを採用し、同値は入力順で先のものを採用する。
// 採用済みオブジェクトの排他ノードと衝突するものは装着せず、排他ノードの Slot は解除する。
func (s *SlotSet) EquipAll(objs []IEquippable) int {
	candidates := make([]IEquippable, 0, len(objs))
	for _, obj := range objs {
		if obj != nil {
			candidates = append(candidates, obj)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].EquipPriority() > candidates[j].EquipPriority()
	})

	batch := NewEquipBatch()
	claimed := map[model.BodyNode]struct{}{}
	equipped := 0
	for _, obj := range candidates {
		slot, exists := s.slots[obj.BodyNode()]
		if !exists {
			logTrackingDebug("装着先 Slot がありません: node=%s", obj.BodyNode())
			continue
		}
		if _, taken := claimed[obj.BodyNode()]; taken {
			continue
		}
		if s.conflicts(obj, claimed) {
			logTrackingDebug("排他ノードが装着済みのためスキップしました: node=%s", obj.BodyNode())
			continue
		}
		if !slot.EquipWithBatch(obj, batch) {
			continue
		}
		claimed[obj.BodyNode()] = struct{}{}
		for _, exclusive := range obj.ExclusiveNodes() {
			claimed[exclusive] = struct{}{}
			if exclusiveSlot, ok := s.slots[exclusive]; ok {
				exclusiveSlot.DequipWithBatch(batch)
			}
		}
		equipped++
	}
	return equipped
}

func (s *SlotSet) conflicts(obj IEquippable, claimed map[model.BodyNode]struct{}) bool {
	for _, exclusive := range obj.ExclusiveNodes() {
		if _, taken := claimed[exclusive]; taken {
			return true
		}
	}
	return false
}

// DequipAll は全 Slot を解除する。
func (s *SlotSet) DequipAll() {
	batch := NewEquipBatch()
	for _, slot := range s.Slots() {
		slot.DequipWithBatch(batch)
	}
}
