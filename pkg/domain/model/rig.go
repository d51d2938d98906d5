// 指示: miu200521358
package model

import (
	"fmt"
	"runtime/debug"
	"sort"

	"github.com/miu200521358/mu_posebind/pkg/domain/scene"
	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
)

// minimalBipedNodes は二足歩行判定に必要なノードを保持する。
var minimalBipedNodes = []BodyNode{
	HIPS,
	SPINE,
	HEAD,
	LEFT_UPPER_ARM,
	RIGHT_UPPER_ARM,
	LEFT_LOWER_ARM,
	RIGHT_LOWER_ARM,
	LEFT_HAND,
	RIGHT_HAND,
	LEFT_UPPER_LEG,
	RIGHT_UPPER_LEG,
	LEFT_LOWER_LEG,
	RIGHT_LOWER_LEG,
	LEFT_FOOT,
	RIGHT_FOOT,
}

const (
	minimalThumbSegmentCount  = 2
	minimalFingerCount        = 2
	minimalFingerSegmentCount = 2
)

// MinimalBipedNodes は二足歩行判定に必要なノード一覧の複製を返す。
func MinimalBipedNodes() []BodyNode {
	return append([]BodyNode(nil), minimalBipedNodes...)
}

// RigChange はマッピング変更通知を表す。Current が nil の場合は削除。
type RigChange struct {
	Node     BodyNode
	Previous *scene.Transform
	Current  *scene.Transform
}

// Rig は BodyNode からボーンへの対応を保持する。
type Rig struct {
	bones          map[BodyNode]*scene.Transform
	listeners      map[int]func(RigChange)
	nextListenerID int
}

// NewRig は空の Rig を生成する。
func NewRig() *Rig {
	return &Rig{
		bones:     map[BodyNode]*scene.Transform{},
		listeners: map[int]func(RigChange){},
	}
}

// Set はノードへボーンを割り当てる。bone が nil の場合は割り当てを解除する。
// 実際に変化した場合のみ変更通知を発行し true を返す。
func (r *Rig) Set(node BodyNode, bone *scene.Transform) bool {
	if r == nil || !node.IsValid() || node == NONE {
		return false
	}
	previous, exists := r.bones[node]
	if bone == nil {
		if !exists {
			return false
		}
		delete(r.bones, node)
	} else {
		if exists && previous == bone {
			return false
		}
		r.bones[node] = bone
	}
	r.notify(RigChange{Node: node, Previous: previous, Current: bone})
	return true
}

// Get はノードに割り当てられたボーンを返す。
func (r *Rig) Get(node BodyNode) (*scene.Transform, bool) {
	if r == nil {
		return nil, false
	}
	bone, exists := r.bones[node]
	return bone, exists
}

// Has はノードが割り当て済みか判定する。
func (r *Rig) Has(node BodyNode) bool {
	_, exists := r.Get(node)
	return exists
}

// Len は割り当て数を返す。
func (r *Rig) Len() int {
	if r == nil {
		return 0
	}
	return len(r.bones)
}

// Nodes は割り当て済みノードを列挙順で返す。
func (r *Rig) Nodes() []BodyNode {
	if r == nil {
		return nil
	}
	nodes := make([]BodyNode, 0, len(r.bones))
	for node := range r.bones {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return nodes
}

// IsBiped は最小二足歩行ノードが全て割り当て済みか判定する。
func (r *Rig) IsBiped() bool {
	return len(r.MissingBipedNodes()) == 0
}

// MissingBipedNodes は未割り当ての最小二足歩行ノードを返す。
func (r *Rig) MissingBipedNodes() []BodyNode {
	return r.MissingBones(minimalBipedNodes)
}

// MissingBones は required のうち未割り当てのノードを返す。
func (r *Rig) MissingBones(required []BodyNode) []BodyNode {
	missing := []BodyNode{}
	for _, node := range required {
		if !r.Has(node) {
			missing = append(missing, node)
		}
	}
	return missing
}

// HasHandFingers は指の可動性が最低限あるか判定する。
// 親指は先端を除く2節以上、他の指は基節から末節までで2節以上のものが2本以上必要。
func (r *Rig) HasHandFingers(chirality Chirality) bool {
	if r == nil || (chirality != CHIRALITY_LEFT && chirality != CHIRALITY_RIGHT) {
		return false
	}
	thumbSegments := 0
	for _, segment := range FingerSegments(FINGER_THUMB) {
		if segment == SEGMENT_TIP {
			continue
		}
		if node, ok := ComposeFinger(FINGER_THUMB, segment, chirality); ok && r.Has(node) {
			thumbSegments++
		}
	}
	if thumbSegments < minimalThumbSegmentCount {
		return false
	}

	fingers := 0
	for _, finger := range AllFingerTypes() {
		if finger == FINGER_THUMB {
			continue
		}
		segments := 0
		for _, segment := range []FingerSegmentType{SEGMENT_PROXIMAL, SEGMENT_INTERMEDIATE, SEGMENT_DISTAL} {
			if node, ok := ComposeFinger(finger, segment, chirality); ok && r.Has(node) {
				segments++
			}
		}
		if segments >= minimalFingerSegmentCount {
			fingers++
		}
	}
	return fingers >= minimalFingerCount
}

// HasMinimalHand は HasHandFingers の別名。
func (r *Rig) HasMinimalHand(chirality Chirality) bool {
	return r.HasHandFingers(chirality)
}

// PopulateFromSkeleton は骨格のボーン名から未割り当てノードを補完する。
// 1巡目は正規名の完全一致、2巡目は別名の部分一致で判定し、ボーン順で先に一致したものを採用する。
// 挿入した件数を返す。
func (r *Rig) PopulateFromSkeleton(skeleton ISkeleton) int {
	if r == nil {
		return 0
	}
	if skeleton == nil {
		logRigWarn("骨格が未設定のためリグ補完をスキップしました")
		return 0
	}
	if !skeleton.IsBuilt() {
		logRigWarn("骨格が未構築のためリグ補完をスキップしました")
		return 0
	}
	names := skeleton.BoneNames()
	slots := skeleton.BoneSlots()
	count := min(skeleton.BoneCount(), len(names), len(slots))

	used := map[*scene.Transform]struct{}{}
	for _, bone := range r.bones {
		used[bone] = struct{}{}
	}
	inserted := 0
	assign := func(node BodyNode, bone *scene.Transform) {
		if bone == nil || r.Has(node) {
			return
		}
		if _, exists := used[bone]; exists {
			return
		}
		r.Set(node, bone)
		used[bone] = struct{}{}
		inserted++
	}

	for i := 0; i < count; i++ {
		if node, ok := matchExactBoneName(normalizeBoneName(names[i])); ok {
			assign(node, slots[i])
		}
	}
	for i := 0; i < count; i++ {
		if node, ok := matchAliasBoneName(normalizeBoneName(names[i])); ok {
			assign(node, slots[i])
		}
	}
	logRigDebug("リグ補完: bones=%d inserted=%d mapped=%d", count, inserted, r.Len())
	return inserted
}

// MatchBoneName はボーン名に対応するノードを返す。完全一致を優先する。
func MatchBoneName(name string) (BodyNode, bool) {
	normalized := normalizeBoneName(name)
	if node, ok := matchExactBoneName(normalized); ok {
		return node, true
	}
	return matchAliasBoneName(normalized)
}

// Snapshot はノードからボーン名への対応を複製して返す。
func (r *Rig) Snapshot() map[BodyNode]string {
	snapshot := map[BodyNode]string{}
	if r == nil {
		return snapshot
	}
	for node, bone := range r.bones {
		snapshot[node] = bone.Name()
	}
	return snapshot
}

// AddChangeListener は変更通知を登録し、解除用IDを返す。
func (r *Rig) AddChangeListener(listener func(RigChange)) int {
	if r == nil || listener == nil {
		return 0
	}
	r.nextListenerID++
	r.listeners[r.nextListenerID] = listener
	return r.nextListenerID
}

// RemoveChangeListener は変更通知を解除する。
func (r *Rig) RemoveChangeListener(id int) {
	if r == nil {
		return
	}
	delete(r.listeners, id)
}

func (r *Rig) notify(change RigChange) {
	ids := make([]int, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		listener, exists := r.listeners[id]
		if !exists {
			continue
		}
		invokeRigListener(listener, change)
	}
}

func invokeRigListener(listener func(RigChange), change RigChange) {
	defer func() {
		if rec := recover(); rec != nil {
			logRigWarn("リグ変更通知で例外が発生しました: node=%s err=%v\n%s", change.Node, rec, debug.Stack())
		}
	}()
	listener(change)
}

// String はリグ状態の要約を返す。
func (r *Rig) String() string {
	return fmt.Sprintf("Rig{mapped=%d biped=%t}", r.Len(), r.IsBiped())
}

// logRigWarn はリグ処理の警告ログを出力する。
func logRigWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// logRigDebug はリグ処理のデバッグログを出力する。
func logRigDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}
