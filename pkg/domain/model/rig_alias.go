// 指示: miu200521358
package model

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// bodyNodeAliasRule はボーン名の部分一致で使う別名ルールを表す。
// Sided のルールは左側ノードで定義し、右側ボーンには Mirror して適用する。
type bodyNodeAliasRule struct {
	Alias string
	Node  BodyNode
	Sided bool
}

// fingerAliasRule は指ボーン名の部分一致ルールを表す。
// ZeroBased は番号 0 を中手骨として数える命名(PMX)かどうかを表す。
type fingerAliasRule struct {
	Alias     string
	Finger    FingerType
	ZeroBased bool
}

// exactBoneNameAliases は完全一致で扱う別名を保持する。VRM humanoid 名とPMX標準名を含む。
// PMX 標準名は 左肩P や 左足D などの補助ボーンより先に完全一致で割り当てる。
var exactBoneNameAliases = map[string]BodyNode{
	"leftthumbintermediate":   LEFT_THUMB_DISTAL,
	"rightthumbintermediate":  RIGHT_THUMB_DISTAL,
	"leftlittlemetacarpal":    LEFT_PINKY_METACARPAL,
	"leftlittleproximal":      LEFT_PINKY_PROXIMAL,
	"leftlittleintermediate":  LEFT_PINKY_INTERMEDIATE,
	"leftlittledistal":        LEFT_PINKY_DISTAL,
	"rightlittlemetacarpal":   RIGHT_PINKY_METACARPAL,
	"rightlittleproximal":     RIGHT_PINKY_PROXIMAL,
	"rightlittleintermediate": RIGHT_PINKY_INTERMEDIATE,
	"rightlittledistal":       RIGHT_PINKY_DISTAL,
	"下半身":                     HIPS,
	"上半身":                     SPINE,
	"上半身2":                    CHEST,
	"上半身3":                    UPPER_CHEST,
	"首":                       NECK,
	"頭":                       HEAD,
	"左目":                      LEFT_EYE,
	"右目":                      RIGHT_EYE,
	"左肩":                      LEFT_SHOULDER,
	"右肩":                      RIGHT_SHOULDER,
	"左腕":                      LEFT_UPPER_ARM,
	"右腕":                      RIGHT_UPPER_ARM,
	"左ひじ":                     LEFT_LOWER_ARM,
	"右ひじ":                     RIGHT_LOWER_ARM,
	"左手首":                     LEFT_HAND,
	"右手首":                     RIGHT_HAND,
	"左足":                      LEFT_UPPER_LEG,
	"右足":                      RIGHT_UPPER_LEG,
	"左ひざ":                     LEFT_LOWER_LEG,
	"右ひざ":                     RIGHT_LOWER_LEG,
	"左足首":                     LEFT_FOOT,
	"右足首":                     RIGHT_FOOT,
	"左つま先":                    LEFT_TOES,
	"右つま先":                    RIGHT_TOES,
}

// coreAliasRules は部分一致で使う中核ノードの別名を保持する。
// 一致した別名のうち最長のものを採用し、同長は定義順で先のものを採用する。
var coreAliasRules = []bodyNodeAliasRule{
	{Alias: "upperchest", Node: UPPER_CHEST},
	{Alias: "spine2", Node: UPPER_CHEST},
	{Alias: "spine1", Node: CHEST},
	{Alias: "chest", Node: CHEST},
	{Alias: "spine", Node: SPINE},
	{Alias: "pelvis", Node: HIPS},
	{Alias: "hips", Node: HIPS},
	{Alias: "hip", Node: HIPS},
	{Alias: "neck", Node: NECK},
	{Alias: "head", Node: HEAD},
	{Alias: "jaw", Node: JAW},
	{Alias: "上半身2", Node: CHEST},
	{Alias: "上半身", Node: SPINE},
	{Alias: "下半身", Node: HIPS},
	{Alias: "首", Node: NECK},
	{Alias: "頭", Node: HEAD},

	{Alias: "shoulder", Node: LEFT_SHOULDER, Sided: true},
	{Alias: "clavicle", Node: LEFT_SHOULDER, Sided: true},
	{Alias: "collar", Node: LEFT_SHOULDER, Sided: true},
	{Alias: "upperarm", Node: LEFT_UPPER_ARM, Sided: true},
	{Alias: "lowerarm", Node: LEFT_LOWER_ARM, Sided: true},
	{Alias: "forearm", Node: LEFT_LOWER_ARM, Sided: true},
	{Alias: "elbow", Node: LEFT_LOWER_ARM, Sided: true},
	{Alias: "arm", Node: LEFT_UPPER_ARM, Sided: true},
	{Alias: "wrist", Node: LEFT_HAND, Sided: true},
	{Alias: "hand", Node: LEFT_HAND, Sided: true},
	{Alias: "upperleg", Node: LEFT_UPPER_LEG, Sided: true},
	{Alias: "upleg", Node: LEFT_UPPER_LEG, Sided: true},
	{Alias: "thigh", Node: LEFT_UPPER_LEG, Sided: true},
	{Alias: "lowerleg", Node: LEFT_LOWER_LEG, Sided: true},
	{Alias: "knee", Node: LEFT_LOWER_LEG, Sided: true},
	{Alias: "calf", Node: LEFT_LOWER_LEG, Sided: true},
	{Alias: "shin", Node: LEFT_LOWER_LEG, Sided: true},
	{Alias: "leg", Node: LEFT_LOWER_LEG, Sided: true},
	{Alias: "ankle", Node: LEFT_FOOT, Sided: true},
	{Alias: "foot", Node: LEFT_FOOT, Sided: true},
	{Alias: "toe", Node: LEFT_TOES, Sided: true},
	{Alias: "eye", Node: LEFT_EYE, Sided: true},
	{Alias: "足首", Node: LEFT_FOOT, Sided: true},
	{Alias: "つま先", Node: LEFT_TOES, Sided: true},
	{Alias: "手首", Node: LEFT_HAND, Sided: true},
	{Alias: "ひじ", Node: LEFT_LOWER_ARM, Sided: true},
	{Alias: "ひざ", Node: LEFT_LOWER_LEG, Sided: true},
	{Alias: "肩", Node: LEFT_SHOULDER, Sided: true},
	{Alias: "腕", Node: LEFT_UPPER_ARM, Sided: true},
	{Alias: "足", Node: LEFT_UPPER_LEG, Sided: true},
	{Alias: "目", Node: LEFT_EYE, Sided: true},
}

// fingerAliasRules は指ボーン名の別名を保持する。中核ルールより先に判定する。
var fingerAliasRules = []fingerAliasRule{
	{Alias: "thumb", Finger: FINGER_THUMB},
	{Alias: "index", Finger: FINGER_INDEX},
	{Alias: "middle", Finger: FINGER_MIDDLE},
	{Alias: "ring", Finger: FINGER_RING},
	{Alias: "pinky", Finger: FINGER_PINKY},
	{Alias: "little", Finger: FINGER_PINKY},
	{Alias: "親指", Finger: FINGER_THUMB, ZeroBased: true},
	{Alias: "人差指", Finger: FINGER_INDEX, ZeroBased: true},
	{Alias: "人指", Finger: FINGER_INDEX, ZeroBased: true},
	{Alias: "中指", Finger: FINGER_MIDDLE, ZeroBased: true},
	{Alias: "薬指", Finger: FINGER_RING, ZeroBased: true},
	{Alias: "小指", Finger: FINGER_PINKY, ZeroBased: true},
}

// fingerSegmentWords は節名の別名を保持する。
var fingerSegmentWords = []struct {
	Word    string
	Segment FingerSegmentType
}{
	{Word: "metacarpal", Segment: SEGMENT_METACARPAL},
	{Word: "proximal", Segment: SEGMENT_PROXIMAL},
	{Word: "intermediate", Segment: SEGMENT_INTERMEDIATE},
	{Word: "distal", Segment: SEGMENT_DISTAL},
	{Word: "tip", Segment: SEGMENT_TIP},
	{Word: "end", Segment: SEGMENT_TIP},
	{Word: "先", Segment: SEGMENT_TIP},
}

// sideToken は左右表記の判定ルールを表す。
type sideToken struct {
	Token     string
	Chirality Chirality
}

var (
	sideWords = []sideToken{
		{Token: "left", Chirality: CHIRALITY_LEFT},
		{Token: "right", Chirality: CHIRALITY_RIGHT},
		{Token: "左", Chirality: CHIRALITY_LEFT},
		{Token: "右", Chirality: CHIRALITY_RIGHT},
	}
	sideInfixes = []sideToken{
		{Token: "_l_", Chirality: CHIRALITY_LEFT},
		{Token: "_r_", Chirality: CHIRALITY_RIGHT},
		{Token: ".l.", Chirality: CHIRALITY_LEFT},
		{Token: ".r.", Chirality: CHIRALITY_RIGHT},
	}
	sidePrefixes = []sideToken{
		{Token: "l_", Chirality: CHIRALITY_LEFT},
		{Token: "l.", Chirality: CHIRALITY_LEFT},
		{Token: "r_", Chirality: CHIRALITY_RIGHT},
		{Token: "r.", Chirality: CHIRALITY_RIGHT},
	}
	sideSuffixes = []sideToken{
		{Token: "_l", Chirality: CHIRALITY_LEFT},
		{Token: ".l", Chirality: CHIRALITY_LEFT},
		{Token: " l", Chirality: CHIRALITY_LEFT},
		{Token: "_r", Chirality: CHIRALITY_RIGHT},
		{Token: ".r", Chirality: CHIRALITY_RIGHT},
		{Token: " r", Chirality: CHIRALITY_RIGHT},
	}
)

// normalizeBoneName は全角英数を半角へ寄せ、大文字小文字を畳み込む。
func normalizeBoneName(name string) string {
	return cases.Fold().String(width.Fold.String(strings.TrimSpace(name)))
}

// detectBoneSide はボーン名の左右を判定し、左右表記を除いた名前を返す。
func detectBoneSide(normalized string) (Chirality, string) {
	for _, side := range sideWords {
		if strings.Contains(normalized, side.Token) {
			return side.Chirality, strings.Replace(normalized, side.Token, "", 1)
		}
	}
	for _, side := range sideInfixes {
		if strings.Contains(normalized, side.Token) {
			return side.Chirality, strings.Replace(normalized, side.Token, "_", 1)
		}
	}
	for _, side := range sidePrefixes {
		if strings.HasPrefix(normalized, side.Token) {
			return side.Chirality, strings.TrimPrefix(normalized, side.Token)
		}
	}
	for _, side := range sideSuffixes {
		if strings.HasSuffix(normalized, side.Token) {
			return side.Chirality, strings.TrimSuffix(normalized, side.Token)
		}
	}
	return CHIRALITY_NONE, normalized
}

// matchExactBoneName は完全一致(大文字小文字無視)でノードを返す。
func matchExactBoneName(normalized string) (BodyNode, bool) {
	if node, ok := bodyNodesByLower[normalized]; ok {
		return node, true
	}
	node, ok := exactBoneNameAliases[normalized]
	return node, ok
}

// matchAliasBoneName は別名の部分一致でノードを返す。
func matchAliasBoneName(normalized string) (BodyNode, bool) {
	side, stripped := detectBoneSide(normalized)
	if node, matched, isFinger := matchFingerBoneName(stripped, side); isFinger {
		return node, matched
	}

	best := NONE
	bestLength := 0
	for _, rule := range coreAliasRules {
		if rule.Sided != (side != CHIRALITY_NONE) {
			continue
		}
		aliasLength := utf8.RuneCountInString(rule.Alias)
		if aliasLength <= bestLength || !strings.Contains(stripped, rule.Alias) {
			continue
		}
		best = rule.Node
		bestLength = aliasLength
	}
	if best == NONE {
		return NONE, false
	}
	if side == CHIRALITY_RIGHT {
		best = best.Mirror()
	}
	return best, true
}

// matchFingerBoneName は指ボーン名を判定する。
// 指の別名を含む場合 isFinger=true を返し、節が特定できなければ matched=false とする。
func matchFingerBoneName(stripped string, side Chirality) (node BodyNode, matched bool, isFinger bool) {
	if side == CHIRALITY_NONE {
		return NONE, false, false
	}
	for _, rule := range fingerAliasRules {
		index := strings.Index(stripped, rule.Alias)
		if index < 0 {
			continue
		}
		rest := stripped[index+len(rule.Alias):]
		segment, ok := detectFingerSegment(rest, rule)
		if !ok {
			return NONE, false, true
		}
		found, ok := ComposeFinger(rule.Finger, segment, side)
		return found, ok, true
	}
	return NONE, false, false
}

// detectFingerSegment は指名以降の文字列から節を判定する。
func detectFingerSegment(rest string, rule fingerAliasRule) (FingerSegmentType, bool) {
	for _, word := range fingerSegmentWords {
		if strings.Contains(rest, word.Word) {
			if rule.Finger == FINGER_THUMB && word.Segment == SEGMENT_INTERMEDIATE {
				return SEGMENT_DISTAL, true
			}
			return word.Segment, true
		}
	}
	digit := -1
	for _, r := range rest {
		if unicode.IsDigit(r) && r <= unicode.MaxASCII {
			digit = int(r - '0')
		}
	}
	if digit < 0 {
		return 0, false
	}
	return fingerSegmentByNumber(rule, digit)
}

// fingerSegmentByNumber は番号付き命名の番号を節へ変換する。
// Index1 は基節骨、Thumb1 は中手骨、PMX の親指０は中手骨として数える。
func fingerSegmentByNumber(rule fingerAliasRule, number int) (FingerSegmentType, bool) {
	segments := FingerSegments(rule.Finger)
	index := number
	if rule.Finger == FINGER_THUMB && !rule.ZeroBased {
		index = number - 1
	}
	if index < 0 || index >= len(segments) {
		return 0, false
	}
	return segments[index], true
}
