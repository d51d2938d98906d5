// 指示: miu200521358
package skeleton

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
	"github.com/miu200521358/mu_posebind/pkg/usecase/port/moutput"
)

// boneRecord は骨格定義ファイルのボーン1件を表す。
type boneRecord struct {
	Name     string    `toml:"name"`
	Parent   string    `toml:"parent"`
	Position []float64 `toml:"position"`
	Rotation []float64 `toml:"rotation"`
}

// skeletonRecord は骨格定義ファイル全体を表す。
type skeletonRecord struct {
	Name  string            `toml:"name"`
	Bones []boneRecord      `toml:"bones"`
	Rig   map[string]string `toml:"rig"`
}

// SkeletonDocument は読み込んだ骨格と明示マッピングを表す。
type SkeletonDocument struct {
	Name     string
	Skeleton *model.Skeleton
	// Mapping は自動補完より優先する明示割り当て。
	Mapping map[model.BodyNode]string
}

// SkeletonRepository は TOML 骨格定義の読み込みを行う。
type SkeletonRepository struct{}

var _ moutput.ISkeletonReader = (*SkeletonRepository)(nil)

// NewSkeletonRepository は SkeletonRepository を生成する。
func NewSkeletonRepository() *SkeletonRepository {
	return &SkeletonRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *SkeletonRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// InferName はパスから表示名を推定する。
func (r *SkeletonRepository) InferName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load は骨格定義を読み込み、構築済みの骨格を返す。
func (r *SkeletonRepository) Load(path string) (*model.Skeleton, error) {
	document, err := r.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return document.Skeleton, nil
}

// LoadDocument は骨格定義と明示マッピングを読み込む。
func (r *SkeletonRepository) LoadDocument(path string) (SkeletonDocument, error) {
	if !r.CanLoad(path) {
		return SkeletonDocument{}, fmt.Errorf("骨格定義の拡張子が .toml ではありません: %s", path)
	}
	var record skeletonRecord
	metadata, err := toml.DecodeFile(path, &record)
	if err != nil {
		return SkeletonDocument{}, fmt.Errorf("骨格定義の読み込みに失敗しました: %w", err)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		logSkeletonWarn("骨格定義に未対応のキーがあります: path=%s keys=%s", path, strings.Join(keys, ","))
	}
	name := strings.TrimSpace(record.Name)
	if name == "" {
		name = r.InferName(path)
	}
	return buildDocument(name, record)
}

// buildDocument は読み込んだ定義から骨格を組み立てる。
func buildDocument(name string, record skeletonRecord) (SkeletonDocument, error) {
	if len(record.Bones) == 0 {
		return SkeletonDocument{}, fmt.Errorf("ボーンが定義されていません: %s", name)
	}
	skeleton := model.NewSkeleton(nil)
	for i, bone := range record.Bones {
		position, err := toVec3(bone.Position)
		if err != nil {
			return SkeletonDocument{}, fmt.Errorf("ボーン位置が不正です: index=%d bone=%s: %w", i, bone.Name, err)
		}
		transform, err := skeleton.AddBone(bone.Name, bone.Parent, position)
		if err != nil {
			return SkeletonDocument{}, fmt.Errorf("ボーン追加に失敗しました: index=%d: %w", i, err)
		}
		if len(bone.Rotation) > 0 {
			degrees, err := toVec3(bone.Rotation)
			if err != nil {
				return SkeletonDocument{}, fmt.Errorf("ボーン回転が不正です: index=%d bone=%s: %w", i, bone.Name, err)
			}
			transform.Rotation.Set(mmath.NewQuaternionFromDegrees(degrees.X, degrees.Y, degrees.Z))
		}
	}
	skeleton.MarkBuilt()

	mapping, err := parseMapping(record.Rig, skeleton)
	if err != nil {
		return SkeletonDocument{}, err
	}
	return SkeletonDocument{Name: name, Skeleton: skeleton, Mapping: mapping}, nil
}

// parseMapping は [rig] テーブルをノードとボーン名の対応へ変換する。
func parseMapping(rig map[string]string, skeleton *model.Skeleton) (map[model.BodyNode]string, error) {
	mapping := map[model.BodyNode]string{}
	keys := make([]string, 0, len(rig))
	for key := range rig {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		node, ok := model.ParseBodyNode(key)
		if !ok || node == model.NONE {
			errs = append(errs, fmt.Errorf("不明なノード名です: %s", key))
			continue
		}
		boneName := rig[key]
		if _, exists := skeleton.FindBone(boneName); !exists {
			errs = append(errs, fmt.Errorf("マッピング先のボーンが見つかりません: node=%s bone=%s", key, boneName))
			continue
		}
		mapping[node] = boneName
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("リグ定義が不正です: %w", errors.Join(errs...))
	}
	return mapping, nil
}

// ApplyMapping は明示マッピングをリグへ設定し、設定件数を返す。
func (d SkeletonDocument) ApplyMapping(rig *model.Rig) int {
	if rig == nil || d.Skeleton == nil {
		return 0
	}
	nodes := make([]model.BodyNode, 0, len(d.Mapping))
	for node := range d.Mapping {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	applied := 0
	for _, node := range nodes {
		bone, exists := d.Skeleton.FindBone(d.Mapping[node])
		if !exists {
			continue
		}
		if rig.Set(node, bone) {
			applied++
		}
	}
	return applied
}

func toVec3(values []float64) (mmath.Vec3, error) {
	switch len(values) {
	case 0:
		return mmath.ZERO_VEC3, nil
	case 3:
		v := mmath.NewVec3(values[0], values[1], values[2])
		if !v.IsFinite() {
			return mmath.ZERO_VEC3, fmt.Errorf("有限値ではありません: %v", values)
		}
		return v, nil
	default:
		return mmath.ZERO_VEC3, fmt.Errorf("要素数は3である必要があります: got=%d", len(values))
	}
}

// logSkeletonWarn は骨格読み込みの警告ログを出力する。
func logSkeletonWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
