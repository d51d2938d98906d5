// 指示: miu200521358
package model

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	// RigWarningBoneMissing はランドマークに対応するボーンが無い警告。
	RigWarningBoneMissing = "RigWarningBoneMissing"
	// RigWarningBoneAlreadyDriven はボーンが他の駆動元に保持されている警告。
	RigWarningBoneAlreadyDriven = "RigWarningBoneAlreadyDriven"
	// RigWarningSkeletonNotBuilt は骨格未構築警告。
	RigWarningSkeletonNotBuilt = "RigWarningSkeletonNotBuilt"
	// RigWarningNotBiped は最小二足歩行ノード不足警告。
	RigWarningNotBiped = "RigWarningNotBiped"
	// RigWarningHandFingersMissing は指ノード不足警告。
	RigWarningHandFingersMissing = "RigWarningHandFingersMissing"
)

const boneSuggestionMaxDistanceRate = 0.6

// BoneSuggestion は未割り当てノードに対するボーン名候補を表す。
type BoneSuggestion struct {
	BoneName string
	Distance int
}

// SuggestBoneNames は node の正規名に近いボーン名を距離順で最大 limit 件返す。
// 既に割り当て済みのボーンは除外する。
func (r *Rig) SuggestBoneNames(node BodyNode, skeleton ISkeleton, limit int) []BoneSuggestion {
	if skeleton == nil || limit <= 0 || !node.IsValid() {
		return nil
	}
	used := map[string]struct{}{}
	for _, name := range r.Snapshot() {
		used[name] = struct{}{}
	}
	target := normalizeBoneName(node.String())
	maxDistance := int(float64(len(target)) * boneSuggestionMaxDistanceRate)

	suggestions := []BoneSuggestion{}
	for _, name := range skeleton.BoneNames() {
		if _, exists := used[name]; exists {
			continue
		}
		normalized := normalizeBoneName(name)
		distance := levenshtein.ComputeDistance(target, normalized)
		if strings.Contains(normalized, target) {
			distance = 0
		}
		if distance > maxDistance {
			continue
		}
		suggestions = append(suggestions, BoneSuggestion{BoneName: name, Distance: distance})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Distance < suggestions[j].Distance
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
