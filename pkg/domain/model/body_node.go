// 指示: miu200521358
// Package model はアバター姿勢の部位定義とリグを提供する。
package model

import (
	"fmt"
	"strings"
)

// BodyNode はトラッキング/骨格上の部位を表す。
type BodyNode int

const (
	NONE BodyNode = iota
	ROOT
	VIEW
	HIPS
	SPINE
	CHEST
	UPPER_CHEST
	NECK
	HEAD
	JAW
	LEFT_EYE
	RIGHT_EYE

	LEFT_SHOULDER
	LEFT_UPPER_ARM
	LEFT_LOWER_ARM
	LEFT_HAND
	RIGHT_SHOULDER
	RIGHT_UPPER_ARM
	RIGHT_LOWER_ARM
	RIGHT_HAND

	LEFT_UPPER_LEG
	LEFT_LOWER_LEG
	LEFT_FOOT
	LEFT_TOES
	RIGHT_UPPER_LEG
	RIGHT_LOWER_LEG
	RIGHT_FOOT
	RIGHT_TOES

	LEFT_THUMB_METACARPAL
	LEFT_THUMB_PROXIMAL
	LEFT_THUMB_DISTAL
	LEFT_THUMB_TIP
	LEFT_INDEX_METACARPAL
	LEFT_INDEX_PROXIMAL
	LEFT_INDEX_INTERMEDIATE
	LEFT_INDEX_DISTAL
	LEFT_INDEX_TIP
	LEFT_MIDDLE_METACARPAL
	LEFT_MIDDLE_PROXIMAL
	LEFT_MIDDLE_INTERMEDIATE
	LEFT_MIDDLE_DISTAL
	LEFT_MIDDLE_TIP
	LEFT_RING_METACARPAL
	LEFT_RING_PROXIMAL
	LEFT_RING_INTERMEDIATE
	LEFT_RING_DISTAL
	LEFT_RING_TIP
	LEFT_PINKY_METACARPAL
	LEFT_PINKY_PROXIMAL
	LEFT_PINKY_INTERMEDIATE
	LEFT_PINKY_DISTAL
	LEFT_PINKY_TIP

	RIGHT_THUMB_METACARPAL
	RIGHT_THUMB_PROXIMAL
	RIGHT_THUMB_DISTAL
	RIGHT_THUMB_TIP
	RIGHT_INDEX_METACARPAL
	RIGHT_INDEX_PROXIMAL
	RIGHT_INDEX_INTERMEDIATE
	RIGHT_INDEX_DISTAL
	RIGHT_INDEX_TIP
	RIGHT_MIDDLE_METACARPAL
	RIGHT_MIDDLE_PROXIMAL
	RIGHT_MIDDLE_INTERMEDIATE
	RIGHT_MIDDLE_DISTAL
	RIGHT_MIDDLE_TIP
	RIGHT_RING_METACARPAL
	RIGHT_RING_PROXIMAL
	RIGHT_RING_INTERMEDIATE
	RIGHT_RING_DISTAL
	RIGHT_RING_TIP
	RIGHT_PINKY_METACARPAL
	RIGHT_PINKY_PROXIMAL
	RIGHT_PINKY_INTERMEDIATE
	RIGHT_PINKY_DISTAL
	RIGHT_PINKY_TIP

	bodyNodeCount
)

const (
	firstFingerNode = LEFT_THUMB_METACARPAL
	lastFingerNode  = RIGHT_PINKY_TIP
)

// Chirality は指の左右を表す。
type Chirality int

const (
	CHIRALITY_NONE Chirality = iota - 1
	CHIRALITY_LEFT
	CHIRALITY_RIGHT
)

// String は左右の表示名を返す。
func (c Chirality) String() string {
	switch c {
	case CHIRALITY_LEFT:
		return "Left"
	case CHIRALITY_RIGHT:
		return "Right"
	default:
		return "None"
	}
}

// Other は反対側を返す。
func (c Chirality) Other() Chirality {
	switch c {
	case CHIRALITY_LEFT:
		return CHIRALITY_RIGHT
	case CHIRALITY_RIGHT:
		return CHIRALITY_LEFT
	default:
		return CHIRALITY_NONE
	}
}

// FingerType は指の種類を表す。
type FingerType int

const (
	FINGER_THUMB FingerType = iota
	FINGER_INDEX
	FINGER_MIDDLE
	FINGER_RING
	FINGER_PINKY
)

var fingerTypeNames = [...]string{"Thumb", "Index", "Middle", "Ring", "Pinky"}

// String は指の表示名を返す。
func (f FingerType) String() string {
	if f < 0 || int(f) >= len(fingerTypeNames) {
		return fmt.Sprintf("FingerType(%d)", int(f))
	}
	return fingerTypeNames[f]
}

// FingerSegmentType は指の節を表す。
type FingerSegmentType int

const (
	SEGMENT_METACARPAL FingerSegmentType = iota
	SEGMENT_PROXIMAL
	SEGMENT_INTERMEDIATE
	SEGMENT_DISTAL
	SEGMENT_TIP
)

var fingerSegmentNames = [...]string{"Metacarpal", "Proximal", "Intermediate", "Distal", "Tip"}

// String は節の表示名を返す。
func (s FingerSegmentType) String() string {
	if s < 0 || int(s) >= len(fingerSegmentNames) {
		return fmt.Sprintf("FingerSegmentType(%d)", int(s))
	}
	return fingerSegmentNames[s]
}

// AllFingerTypes は指種別の一覧を返す。
func AllFingerTypes() []FingerType {
	return []FingerType{FINGER_THUMB, FINGER_INDEX, FINGER_MIDDLE, FINGER_RING, FINGER_PINKY}
}

// FingerSegments は指ごとに存在する節の一覧を返す。親指は中節を持たない。
func FingerSegments(finger FingerType) []FingerSegmentType {
	if finger == FINGER_THUMB {
		return []FingerSegmentType{SEGMENT_METACARPAL, SEGMENT_PROXIMAL, SEGMENT_DISTAL, SEGMENT_TIP}
	}
	return []FingerSegmentType{SEGMENT_METACARPAL, SEGMENT_PROXIMAL, SEGMENT_INTERMEDIATE, SEGMENT_DISTAL, SEGMENT_TIP}
}

// fingerKey は指ノードの分解結果を表す。
type fingerKey struct {
	Finger    FingerType
	Segment   FingerSegmentType
	Chirality Chirality
}

var coreBodyNodeNames = map[BodyNode]string{
	NONE:            "None",
	ROOT:            "Root",
	VIEW:            "View",
	HIPS:            "Hips",
	SPINE:           "Spine",
	CHEST:           "Chest",
	UPPER_CHEST:     "UpperChest",
	NECK:            "Neck",
	HEAD:            "Head",
	JAW:             "Jaw",
	LEFT_EYE:        "LeftEye",
	RIGHT_EYE:       "RightEye",
	LEFT_SHOULDER:   "LeftShoulder",
	LEFT_UPPER_ARM:  "LeftUpperArm",
	LEFT_LOWER_ARM:  "LeftLowerArm",
	LEFT_HAND:       "LeftHand",
	RIGHT_SHOULDER:  "RightShoulder",
	RIGHT_UPPER_ARM: "RightUpperArm",
	RIGHT_LOWER_ARM: "RightLowerArm",
	RIGHT_HAND:      "RightHand",
	LEFT_UPPER_LEG:  "LeftUpperLeg",
	LEFT_LOWER_LEG:  "LeftLowerLeg",
	LEFT_FOOT:       "LeftFoot",
	LEFT_TOES:       "LeftToes",
	RIGHT_UPPER_LEG: "RightUpperLeg",
	RIGHT_LOWER_LEG: "RightLowerLeg",
	RIGHT_FOOT:      "RightFoot",
	RIGHT_TOES:      "RightToes",
}

// mirrorPairs は左右対の中核ノードを保持する。
var mirrorPairs = [][2]BodyNode{
	{LEFT_EYE, RIGHT_EYE},
	{LEFT_SHOULDER, RIGHT_SHOULDER},
	{LEFT_UPPER_ARM, RIGHT_UPPER_ARM},
	{LEFT_LOWER_ARM, RIGHT_LOWER_ARM},
	{LEFT_HAND, RIGHT_HAND},
	{LEFT_UPPER_LEG, RIGHT_UPPER_LEG},
	{LEFT_LOWER_LEG, RIGHT_LOWER_LEG},
	{LEFT_FOOT, RIGHT_FOOT},
	{LEFT_TOES, RIGHT_TOES},
}

var (
	fingerKeysByNode  = map[BodyNode]fingerKey{}
	fingerNodesByKey  = map[fingerKey]BodyNode{}
	bodyNodesByLower  = map[string]BodyNode{}
	mirrorByNode      = map[BodyNode]BodyNode{}
	leftSideCoreNodes = map[BodyNode]struct{}{}
)

func init() {
	node := firstFingerNode
	for _, chirality := range []Chirality{CHIRALITY_LEFT, CHIRALITY_RIGHT} {
		for _, finger := range AllFingerTypes() {
			for _, segment := range FingerSegments(finger) {
				key := fingerKey{Finger: finger, Segment: segment, Chirality: chirality}
				fingerKeysByNode[node] = key
				fingerNodesByKey[key] = node
				node++
			}
		}
	}
	for _, pair := range mirrorPairs {
		mirrorByNode[pair[0]] = pair[1]
		mirrorByNode[pair[1]] = pair[0]
		leftSideCoreNodes[pair[0]] = struct{}{}
	}
	for _, n := range AllBodyNodes() {
		bodyNodesByLower[strings.ToLower(n.String())] = n
	}
}

// AllBodyNodes は NONE を除く全ノードを定義順で返す。
func AllBodyNodes() []BodyNode {
	nodes := make([]BodyNode, 0, int(bodyNodeCount)-1)
	for n := ROOT; n < bodyNodeCount; n++ {
		nodes = append(nodes, n)
	}
	return nodes
}

// IsValid は定義済みノードか判定する。
func (n BodyNode) IsValid() bool {
	return n > NONE && n < bodyNodeCount
}

// IsFinger は指ノードか判定する。
func (n BodyNode) IsFinger() bool {
	return n >= firstFingerNode && n <= lastFingerNode
}

// FingerChirality は指ノードの左右を返す。指以外は定義されない。
func (n BodyNode) FingerChirality() (Chirality, bool) {
	key, ok := fingerKeysByNode[n]
	if !ok {
		return CHIRALITY_NONE, false
	}
	return key.Chirality, true
}

// FingerType は指ノードの指種別を返す。
func (n BodyNode) FingerType() (FingerType, bool) {
	key, ok := fingerKeysByNode[n]
	return key.Finger, ok
}

// FingerSegmentType は指ノードの節を返す。
func (n BodyNode) FingerSegmentType() (FingerSegmentType, bool) {
	key, ok := fingerKeysByNode[n]
	return key.Segment, ok
}

// ComposeFinger は指種別・節・左右から指ノードを返す。
func ComposeFinger(finger FingerType, segment FingerSegmentType, chirality Chirality) (BodyNode, bool) {
	node, ok := fingerNodesByKey[fingerKey{Finger: finger, Segment: segment, Chirality: chirality}]
	return node, ok
}

// IsLeftSide は左側の中核ノードか判定する。
func (n BodyNode) IsLeftSide() bool {
	_, ok := leftSideCoreNodes[n]
	return ok
}

// IsRightSide は右側の中核ノードか判定する。
func (n BodyNode) IsRightSide() bool {
	if n.IsLeftSide() {
		return false
	}
	_, ok := mirrorByNode[n]
	return ok
}

// Mirror は左右反転したノードを返す。中央ノードは自身を返す。
func (n BodyNode) Mirror() BodyNode {
	if key, ok := fingerKeysByNode[n]; ok {
		key.Chirality = key.Chirality.Other()
		return fingerNodesByKey[key]
	}
	if mirrored, ok := mirrorByNode[n]; ok {
		return mirrored
	}
	return n
}

// String はノードの表示名を返す。
func (n BodyNode) String() string {
	if name, ok := coreBodyNodeNames[n]; ok {
		return name
	}
	if key, ok := fingerKeysByNode[n]; ok {
		return key.Chirality.String() + key.Finger.String() + key.Segment.String()
	}
	return fmt.Sprintf("BodyNode(%d)", int(n))
}

// ParseBodyNode は表示名(大文字小文字無視)からノードを返す。
func ParseBodyNode(name string) (BodyNode, bool) {
	node, ok := bodyNodesByLower[strings.ToLower(strings.TrimSpace(name))]
	return node, ok
}
