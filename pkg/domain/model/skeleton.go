// 指示: miu200521358
package model

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
	"github.com/miu200521358/mu_posebind/pkg/domain/scene"
)

// ISkeleton は骨格構築結果の参照契約を表す。
// BoneNames と BoneSlots は同じ添字で対応する。
type ISkeleton interface {
	BoneCount() int
	BoneNames() []string
	BoneSlots() []*scene.Transform
	IsBuilt() bool
}

// Skeleton はメモリ上で骨格を組み立てる ISkeleton 実装。
type Skeleton struct {
	root  *scene.Transform
	names []string
	slots []*scene.Transform
	built bool
}

// NewSkeleton は root 配下に骨格を組み立てる Skeleton を生成する。
func NewSkeleton(root *scene.Transform) *Skeleton {
	if root == nil {
		root = scene.NewTransform("skeleton")
	}
	return &Skeleton{root: root}
}

// Root は骨格のルートノードを返す。
func (s *Skeleton) Root() *scene.Transform {
	return s.root
}

// AddBone はボーンを追加する。parent が空ならルート直下に置く。
func (s *Skeleton) AddBone(name string, parent string, localPosition mmath.Vec3) (*scene.Transform, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("ボーン名が空です")
	}
	if _, exists := s.FindBone(name); exists {
		return nil, fmt.Errorf("ボーン名が重複しています: %s", name)
	}
	parentTransform := s.root
	if strings.TrimSpace(parent) != "" {
		found, exists := s.FindBone(parent)
		if !exists {
			return nil, fmt.Errorf("親ボーンが見つかりません: bone=%s parent=%s", name, parent)
		}
		parentTransform = found
	}
	bone := scene.NewChildTransform(parentTransform, name)
	bone.Position.Set(localPosition)
	s.names = append(s.names, name)
	s.slots = append(s.slots, bone)
	return bone, nil
}

// FindBone は名前完全一致でボーンを返す。
func (s *Skeleton) FindBone(name string) (*scene.Transform, bool) {
	for i, boneName := range s.names {
		if boneName == name {
			return s.slots[i], true
		}
	}
	return nil, false
}

// MarkBuilt は骨格構築完了を記録する。
func (s *Skeleton) MarkBuilt() {
	s.built = true
}

// BoneCount はボーン数を返す。
func (s *Skeleton) BoneCount() int {
	return len(s.names)
}

// BoneNames はボーン名一覧の複製を返す。
func (s *Skeleton) BoneNames() []string {
	return append([]string(nil), s.names...)
}

// BoneSlots はボーンノード一覧の複製を返す。
func (s *Skeleton) BoneSlots() []*scene.Transform {
	return append([]*scene.Transform(nil), s.slots...)
}

// IsBuilt は構築完了か判定する。
func (s *Skeleton) IsBuilt() bool {
	return s.built
}
