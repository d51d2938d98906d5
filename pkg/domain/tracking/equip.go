// 指示: miu200521358
package tracking

import (
	"fmt"
	"runtime/debug"
	"slices"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_posebind/pkg/domain/merrors"
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	"github.com/miu200521358/mu_posebind/pkg/domain/scene"
)

// IPoseResponder は装着状態の変化を受け取るコンポーネント契約を表す。
type IPoseResponder interface {
	OnPreEquip(slot *Slot)
	OnEquip(slot *Slot)
	OnDequip(slot *Slot)
}

// IEquippable は Slot へ装着できる姿勢生成オブジェクトの契約を表す。
// Slot との双方向リンクは EquippableBase を埋め込むことで Slot からのみ更新される。
type IEquippable interface {
	BodyNode() model.BodyNode
	EquipPriority() int
	ExclusiveNodes() []model.BodyNode
	ExclusiveUser() (uuid.UUID, bool)
	Transform() *scene.Transform
	EquippedSlot() *Slot
	linkSlot(slot *Slot)
}

// EquippableBase は IEquippable の共通状態を保持する。
type EquippableBase struct {
	node             model.BodyNode
	priority         int
	exclusiveNodes   []model.BodyNode
	exclusiveUser    uuid.UUID
	hasExclusiveUser bool
	transform        *scene.Transform
	slot             *Slot
}

// NewEquippableBase は装着対象の共通状態を生成する。
func NewEquippableBase(transform *scene.Transform, node model.BodyNode, priority int) EquippableBase {
	return EquippableBase{node: node, priority: priority, transform: transform}
}

// BodyNode は装着先ノードを返す。
func (e *EquippableBase) BodyNode() model.BodyNode {
	return e.node
}

// EquipPriority は装着優先度を返す。大きいほど優先する。
func (e *EquippableBase) EquipPriority() int {
	return e.priority
}

// SetEquipPriority は装着優先度を設定する。
func (e *EquippableBase) SetEquipPriority(priority int) {
	e.priority = priority
}

// ExclusiveNodes は同時に装着できないノード一覧を返す。
func (e *EquippableBase) ExclusiveNodes() []model.BodyNode {
	return slices.Clone(e.exclusiveNodes)
}

// SetExclusiveNodes は同時に装着できないノード一覧を設定する。
func (e *EquippableBase) SetExclusiveNodes(nodes ...model.BodyNode) {
	e.exclusiveNodes = slices.Clone(nodes)
}

// ExclusiveUser は排他ユーザーを返す。
func (e *EquippableBase) ExclusiveUser() (uuid.UUID, bool) {
	return e.exclusiveUser, e.hasExclusiveUser
}

// SetExclusiveUser は排他ユーザーを設定する。別ユーザーで設定済みの場合はエラー。
func (e *EquippableBase) SetExclusiveUser(user uuid.UUID) error {
	if e.hasExclusiveUser && e.exclusiveUser != user {
		return fmt.Errorf("%w: node=%s current=%s requested=%s",
			merrors.ErrExclusiveUserConflict, e.node, e.exclusiveUser, user)
	}
	e.exclusiveUser = user
	e.hasExclusiveUser = true
	return nil
}

// ClearExclusiveUser は排他ユーザーを解除する。
func (e *EquippableBase) ClearExclusiveUser() {
	e.exclusiveUser = uuid.Nil
	e.hasExclusiveUser = false
}

// Transform は装着対象の変換ノードを返す。
func (e *EquippableBase) Transform() *scene.Transform {
	return e.transform
}

// EquippedSlot は装着中の Slot を返す。
func (e *EquippableBase) EquippedSlot() *Slot {
	return e.slot
}

// IsEquipped は装着中か判定する。
func (e *EquippableBase) IsEquipped() bool {
	return e.slot != nil
}

func (e *EquippableBase) linkSlot(slot *Slot) {
	e.slot = slot
}

// EquipBatch は一連の装着処理で解除済みのオブジェクトを記録する。
type EquipBatch struct {
	dequipped map[IEquippable]struct{}
}

// NewEquipBatch は空の EquipBatch を生成する。
func NewEquipBatch() *EquipBatch {
	return &EquipBatch{dequipped: map[IEquippable]struct{}{}}
}

// markDequipped は解除済みとして記録し、既に記録済みなら false を返す。
func (b *EquipBatch) markDequipped(obj IEquippable) bool {
	if _, exists := b.dequipped[obj]; exists {
		return false
	}
	b.dequipped[obj] = struct{}{}
	return true
}

func (b *EquipBatch) markEquipped(obj IEquippable) {
	delete(b.dequipped, obj)
}

// WasDequipped は obj がこのバッチで解除済みか判定する。
func (b *EquipBatch) WasDequipped(obj IEquippable) bool {
	_, exists := b.dequipped[obj]
	return exists
}

// responderRegistry は装着対象配下の IPoseResponder 一覧を構造バージョン付きで保持する。
type responderRegistry struct {
	root       *scene.Transform
	owner      IEquippable
	version    uint64
	responders []IPoseResponder
	builds     int
}

// resolve は登録済み一覧を返す。対象または構造が変わっていれば作り直す。
func (r *responderRegistry) resolve(obj IEquippable) []IPoseResponder {
	root := obj.Transform()
	if r.builds > 0 && r.owner == obj && r.root == root && (root == nil || r.version == root.StructureVersion()) {
		return r.responders
	}
	r.owner = obj
	r.root = root
	r.responders = collectResponders(obj)
	if root != nil {
		r.version = root.StructureVersion()
	}
	r.builds++
	return r.responders
}

func (r *responderRegistry) reset() {
	r.owner = nil
	r.root = nil
	r.responders = nil
}

// collectResponders は装着対象と子孫の IPoseResponder を集める。
// 別の Slot を持つ子孫以下は対象外とする。
func collectResponders(obj IEquippable) []IPoseResponder {
	root := obj.Transform()
	if root == nil {
		if responder, ok := obj.(IPoseResponder); ok {
			return []IPoseResponder{responder}
		}
		return nil
	}
	responders := []IPoseResponder{}
	root.Walk(func(node *scene.Transform) bool {
		if node != root {
			if _, nested := scene.FindComponent[*Slot](node); nested {
				return false
			}
		}
		for _, component := range node.Components() {
			if responder, ok := component.(IPoseResponder); ok {
				responders = append(responders, responder)
			}
		}
		return true
	})
	return responders
}

// invokeResponder は応答コールバックを呼び出す。panic は記録して握りつぶす。
func invokeResponder(event string, slot *Slot, responder IPoseResponder, fn func(*Slot)) {
	defer func() {
		if r := recover(); r != nil {
			logTrackingWarn("装着コールバックで例外が発生しました: event=%s node=%s target=%T err=%v\n%s",
				event, slot.Node(), responder, r, debug.Stack())
		}
	}()
	fn(slot)
}
