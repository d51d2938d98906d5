// 指示: miu200521358
// Package scene は姿勢を保持する変換ノード階層とフレーム進行を提供する。
package scene

import (
	"fmt"
	"slices"
	"strings"

	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
)

// Transform は親子階層を持つ変換ノードを表す。
type Transform struct {
	name     string
	parent   *Transform
	children []*Transform

	Position *Field[mmath.Vec3]
	Rotation *Field[mmath.Quaternion]
	Scale    *Field[mmath.Vec3]
	Active   *Field[bool]

	components        []any
	structureVersion  uint64
	structureListener map[int]func(*Transform)
	nextListenerID    int
}

// NewTransform は単位姿勢の変換ノードを生成する。
func NewTransform(name string) *Transform {
	return &Transform{
		name:     name,
		Position: NewField(name+".position", mmath.ZERO_VEC3),
		Rotation: NewField(name+".rotation", mmath.NewQuaternion()),
		Scale:    NewField(name+".scale", mmath.ONE_VEC3),
		Active:   NewField(name+".active", true),
	}
}

// NewChildTransform は parent 配下に変換ノードを生成する。
func NewChildTransform(parent *Transform, name string) *Transform {
	t := NewTransform(name)
	if parent != nil {
		_ = t.SetParent(parent)
	}
	return t
}

// Name はノード名を返す。
func (t *Transform) Name() string {
	return t.name
}

// Parent は親ノードを返す。
func (t *Transform) Parent() *Transform {
	return t.parent
}

// Children は子ノード一覧の複製を返す。
func (t *Transform) Children() []*Transform {
	return append([]*Transform(nil), t.children...)
}

// Root は最上位ノードを返す。
func (t *Transform) Root() *Transform {
	root := t
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Path はルートからの階層パスを返す。
func (t *Transform) Path() string {
	names := []string{}
	for current := t; current != nil; current = current.parent {
		names = append(names, current.name)
	}
	slices.Reverse(names)
	return strings.Join(names, "/")
}

// IsDescendantOf は t が ancestor の子孫(自身を含む)か判定する。
func (t *Transform) IsDescendantOf(ancestor *Transform) bool {
	for current := t; current != nil; current = current.parent {
		if current == ancestor {
			return true
		}
	}
	return false
}

// SetParent は親ノードを付け替える。ローカル姿勢は維持する。
func (t *Transform) SetParent(parent *Transform) error {
	if parent == t.parent {
		return nil
	}
	if parent != nil && parent.IsDescendantOf(t) {
		return fmt.Errorf("循環する親子関係は設定できません: child=%s parent=%s", t.Path(), parent.Path())
	}
	if t.parent != nil {
		old := t.parent
		old.children = slices.DeleteFunc(old.children, func(c *Transform) bool { return c == t })
		old.bumpStructureVersion()
	}
	t.parent = parent
	if parent != nil {
		parent.children = append(parent.children, t)
	}
	t.bumpStructureVersion()
	t.notifySubtreeStructureChanged()
	return nil
}

// StructureVersion は配下の構造変更回数を返す。
// 子孫の付け替えやコンポーネント増減で増加する。
func (t *Transform) StructureVersion() uint64 {
	return t.structureVersion
}

func (t *Transform) bumpStructureVersion() {
	for current := t; current != nil; current = current.parent {
		current.structureVersion++
	}
}

// AddStructureListener は自身または祖先の付け替え時に呼ばれるリスナーを登録する。
func (t *Transform) AddStructureListener(fn func(*Transform)) int {
	if t.structureListener == nil {
		t.structureListener = map[int]func(*Transform){}
	}
	t.nextListenerID++
	t.structureListener[t.nextListenerID] = fn
	return t.nextListenerID
}

// RemoveStructureListener はリスナーを解除する。
func (t *Transform) RemoveStructureListener(id int) {
	delete(t.structureListener, id)
}

func (t *Transform) notifySubtreeStructureChanged() {
	t.Walk(func(node *Transform) bool {
		ids := make([]int, 0, len(node.structureListener))
		for id := range node.structureListener {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			if fn, ok := node.structureListener[id]; ok && fn != nil {
				fn(node)
			}
		}
		return true
	})
}

// Walk は自身と子孫を深さ優先で辿る。fn が false を返したノードの子は辿らない。
func (t *Transform) Walk(fn func(*Transform) bool) {
	if !fn(t) {
		return
	}
	for _, child := range t.Children() {
		child.Walk(fn)
	}
}

// AddComponent はコンポーネントを追加する。
func (t *Transform) AddComponent(component any) {
	if component == nil || slices.Contains(t.components, component) {
		return
	}
	t.components = append(t.components, component)
	t.bumpStructureVersion()
}

// RemoveComponent はコンポーネントを取り除く。
func (t *Transform) RemoveComponent(component any) bool {
	before := len(t.components)
	t.components = slices.DeleteFunc(t.components, func(c any) bool { return c == component })
	if len(t.components) == before {
		return false
	}
	t.bumpStructureVersion()
	return true
}

// Components はコンポーネント一覧の複製を返す。
func (t *Transform) Components() []any {
	return append([]any(nil), t.components...)
}

// FindComponent は t 上で最初に見つかった型 T のコンポーネントを返す。
func FindComponent[T any](t *Transform) (T, bool) {
	var zero T
	if t == nil {
		return zero, false
	}
	for _, component := range t.components {
		if typed, ok := component.(T); ok {
			return typed, true
		}
	}
	return zero, false
}

// FindComponentInAncestors は親方向(自身を除く)で最も近い型 T のコンポーネントを返す。
func FindComponentInAncestors[T any](t *Transform) (T, bool) {
	var zero T
	if t == nil {
		return zero, false
	}
	for current := t.parent; current != nil; current = current.parent {
		if typed, ok := FindComponent[T](current); ok {
			return typed, true
		}
	}
	return zero, false
}

// LocalPosition はローカル位置を返す。
func (t *Transform) LocalPosition() mmath.Vec3 {
	return t.Position.Value()
}

// LocalRotation はローカル回転を返す。
func (t *Transform) LocalRotation() mmath.Quaternion {
	return t.Rotation.Value()
}

// LocalScale はローカルスケールを返す。
func (t *Transform) LocalScale() mmath.Vec3 {
	return t.Scale.Value()
}

// IsActive はローカルの有効フラグを返す。
func (t *Transform) IsActive() bool {
	return t.Active.Value()
}

// WorldPosition はワールド位置を返す。
func (t *Transform) WorldPosition() mmath.Vec3 {
	if t.parent == nil {
		return t.LocalPosition()
	}
	return t.parent.LocalPointToGlobal(t.LocalPosition())
}

// WorldRotation はワールド回転を返す。
func (t *Transform) WorldRotation() mmath.Quaternion {
	if t.parent == nil {
		return t.LocalRotation().Normalized()
	}
	return t.parent.WorldRotation().Muled(t.LocalRotation()).Normalized()
}

// WorldScale はワールドスケールを成分積で近似して返す。
func (t *Transform) WorldScale() mmath.Vec3 {
	if t.parent == nil {
		return t.LocalScale()
	}
	return t.parent.WorldScale().Muled(t.LocalScale())
}

// LocalPointToGlobal は t のローカル空間の点をワールドへ変換する。
func (t *Transform) LocalPointToGlobal(point mmath.Vec3) mmath.Vec3 {
	return t.WorldPosition().Added(t.WorldRotation().MulVec3(t.WorldScale().Muled(point)))
}

// GlobalPointToLocal はワールドの点を t のローカル空間へ変換する。
func (t *Transform) GlobalPointToLocal(point mmath.Vec3) mmath.Vec3 {
	relative := t.WorldRotation().Inverted().MulVec3(point.Subed(t.WorldPosition()))
	return relative.Dived(t.WorldScale())
}

// GlobalRotationToLocal はワールドの回転を t のローカル空間へ変換する。
func (t *Transform) GlobalRotationToLocal(rotation mmath.Quaternion) mmath.Quaternion {
	return t.WorldRotation().Inverted().Muled(rotation)
}

// GlobalPointToParentLocal はワールドの点を t の親空間へ変換する。
// 親がない場合はワールドがそのまま親空間となる。
func (t *Transform) GlobalPointToParentLocal(point mmath.Vec3) mmath.Vec3 {
	if t.parent == nil {
		return point
	}
	return t.parent.GlobalPointToLocal(point)
}

// GlobalRotationToParentLocal はワールドの回転を t の親空間へ変換する。
func (t *Transform) GlobalRotationToParentLocal(rotation mmath.Quaternion) mmath.Quaternion {
	if t.parent == nil {
		return rotation
	}
	return t.parent.GlobalRotationToLocal(rotation)
}

// SetWorldPose はローカル編集でワールド姿勢を設定する。駆動中の成分は変更されない。
func (t *Transform) SetWorldPose(position mmath.Vec3, rotation mmath.Quaternion) {
	t.Position.Set(t.GlobalPointToParentLocal(position))
	t.Rotation.Set(t.GlobalRotationToParentLocal(rotation))
}
