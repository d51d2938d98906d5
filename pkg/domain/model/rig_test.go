// 指示: miu200521358
package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
	"github.com/miu200521358/mu_posebind/pkg/domain/scene"
	"github.com/miu200521358/mu_posebind/pkg/infra/base/mlogging"
	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
)

func newBipedRig(t *testing.T) *Rig {
	t.Helper()
	rig := NewRig()
	for _, node := range MinimalBipedNodes() {
		rig.Set(node, scene.NewTransform(node.String()))
	}
	return rig
}

func newTestSkeleton(t *testing.T, names ...string) *Skeleton {
	t.Helper()
	skeleton := NewSkeleton(nil)
	for _, name := range names {
		if _, err := skeleton.AddBone(name, "", mmath.ZERO_VEC3); err != nil {
			t.Fatalf("add bone failed: %v", err)
		}
	}
	skeleton.MarkBuilt()
	return skeleton
}

func useBufferLogger(t *testing.T) *mlogging.Logger {
	t.Helper()
	logger := mlogging.NewLogger(nil)
	prevLogger := logging.DefaultLogger()
	logging.SetDefaultLogger(logger)
	t.Cleanup(func() {
		logging.SetDefaultLogger(prevLogger)
	})
	return logger
}

func TestRigIsBipedRequiresEveryMinimalNode(t *testing.T) {
	rig := newBipedRig(t)
	if !rig.IsBiped() {
		t.Fatalf("rig with all minimal nodes should be biped: missing=%v", rig.MissingBipedNodes())
	}
	if len(MinimalBipedNodes()) != 15 {
		t.Fatalf("minimal biped node count mismatch: got=%d want=15", len(MinimalBipedNodes()))
	}

	for _, node := range MinimalBipedNodes() {
		bone, _ := rig.Get(node)
		rig.Set(node, nil)
		if rig.IsBiped() {
			t.Fatalf("rig without %s should not be biped", node)
		}
		if diff := cmp.Diff([]BodyNode{node}, rig.MissingBipedNodes()); diff != "" {
			t.Fatalf("missing nodes mismatch (-want +got):\n%s", diff)
		}
		rig.Set(node, bone)
	}
	if !rig.IsBiped() {
		t.Fatalf("restored rig should be biped")
	}
}

func TestRigSetReplacesAndRemoves(t *testing.T) {
	rig := NewRig()
	first := scene.NewTransform("first")
	second := scene.NewTransform("second")

	if !rig.Set(HEAD, first) {
		t.Fatalf("insert should report change")
	}
	if rig.Set(HEAD, first) {
		t.Fatalf("same bone should not report change")
	}
	rig.Set(HEAD, second)
	if got, _ := rig.Get(HEAD); got != second {
		t.Fatalf("replace mismatch: got=%v", got)
	}
	if !rig.Set(HEAD, nil) || rig.Has(HEAD) {
		t.Fatalf("nil bone should remove mapping")
	}
	if rig.Set(HEAD, nil) {
		t.Fatalf("removing an absent mapping should not report change")
	}
	if rig.Set(NONE, first) {
		t.Fatalf("NONE should not be assignable")
	}
}

func setFingerSegments(rig *Rig, chirality Chirality, finger FingerType, segments ...FingerSegmentType) {
	for _, segment := range segments {
		node, _ := ComposeFinger(finger, segment, chirality)
		rig.Set(node, scene.NewTransform(node.String()))
	}
}

func TestRigHasHandFingers(t *testing.T) {
	rig := NewRig()
	setFingerSegments(rig, CHIRALITY_LEFT, FINGER_THUMB, SEGMENT_PROXIMAL, SEGMENT_DISTAL)
	setFingerSegments(rig, CHIRALITY_LEFT, FINGER_INDEX, SEGMENT_PROXIMAL, SEGMENT_INTERMEDIATE)
	if rig.HasHandFingers(CHIRALITY_LEFT) {
		t.Fatalf("one non-thumb finger should not be enough")
	}

	setFingerSegments(rig, CHIRALITY_LEFT, FINGER_MIDDLE, SEGMENT_METACARPAL, SEGMENT_DISTAL)
	if rig.HasHandFingers(CHIRALITY_LEFT) {
		t.Fatalf("metacarpal should not count as a finger segment")
	}

	setFingerSegments(rig, CHIRALITY_LEFT, FINGER_MIDDLE, SEGMENT_PROXIMAL)
	if !rig.HasMinimalHand(CHIRALITY_LEFT) {
		t.Fatalf("thumb and two fingers should be enough")
	}
	setFingerSegments(rig, CHIRALITY_LEFT, FINGER_RING, SEGMENT_PROXIMAL)
	if !rig.HasMinimalHand(CHIRALITY_LEFT) {
		t.Fatalf("third finger with one segment should not change the result")
	}
	if rig.HasHandFingers(CHIRALITY_RIGHT) {
		t.Fatalf("right hand should be independent")
	}

	thumbTipOnly := NewRig()
	setFingerSegments(thumbTipOnly, CHIRALITY_RIGHT, FINGER_THUMB, SEGMENT_DISTAL, SEGMENT_TIP)
	setFingerSegments(thumbTipOnly, CHIRALITY_RIGHT, FINGER_INDEX, SEGMENT_PROXIMAL, SEGMENT_DISTAL)
	setFingerSegments(thumbTipOnly, CHIRALITY_RIGHT, FINGER_PINKY, SEGMENT_PROXIMAL, SEGMENT_DISTAL)
	if thumbTipOnly.HasHandFingers(CHIRALITY_RIGHT) {
		t.Fatalf("thumb tip should not count as a thumb segment")
	}
}

func TestMatchBoneNamePrecedence(t *testing.T) {
	cases := []struct {
		name  string
		want  BodyNode
		found bool
	}{
		{name: "Hips", want: HIPS, found: true},
		{name: "leftUpperArm", want: LEFT_UPPER_ARM, found: true},
		{name: "leftLittleProximal", want: LEFT_PINKY_PROXIMAL, found: true},
		{name: "上半身2", want: CHEST, found: true},
		{name: "mixamorig:Spine1", want: CHEST, found: true},
		{name: "mixamorig:Spine2", want: UPPER_CHEST, found: true},
		{name: "mixamorig:LeftArm", want: LEFT_UPPER_ARM, found: true},
		{name: "mixamorig:LeftForeArm", want: LEFT_LOWER_ARM, found: true},
		{name: "mixamorig:RightUpLeg", want: RIGHT_UPPER_LEG, found: true},
		{name: "mixamorig:RightLeg", want: RIGHT_LOWER_LEG, found: true},
		{name: "mixamorig:LeftHand", want: LEFT_HAND, found: true},
		{name: "mixamorig:LeftHandIndex1", want: LEFT_INDEX_PROXIMAL, found: true},
		{name: "mixamorig:LeftHandThumb1", want: LEFT_THUMB_METACARPAL, found: true},
		{name: "mixamorig:RightHandPinky4", want: RIGHT_PINKY_TIP, found: true},
		{name: "upper_arm.L", want: LEFT_UPPER_ARM, found: true},
		{name: "forearm.R", want: RIGHT_LOWER_ARM, found: true},
		{name: "J_Bip_L_LowerArm", want: LEFT_LOWER_ARM, found: true},
		{name: "J_Bip_R_Middle2", want: RIGHT_MIDDLE_INTERMEDIATE, found: true},
		{name: "左腕", want: LEFT_UPPER_ARM, found: true},
		{name: "右ひじ", want: RIGHT_LOWER_ARM, found: true},
		{name: "左足首", want: LEFT_FOOT, found: true},
		{name: "右足", want: RIGHT_UPPER_LEG, found: true},
		{name: "左親指０", want: LEFT_THUMB_METACARPAL, found: true},
		{name: "右人指２", want: RIGHT_INDEX_INTERMEDIATE, found: true},
		{name: "Armature", want: NONE, found: false},
		{name: "LeftHandPinky", want: NONE, found: false},
	}
	for _, tc := range cases {
		got, ok := MatchBoneName(tc.name)
		if ok != tc.found || got != tc.want {
			t.Fatalf("match mismatch: name=%s got=%s/%v want=%s/%v", tc.name, got, ok, tc.want, tc.found)
		}
	}
}

func TestPopulateFromSkeletonPrefersExactThenBoneOrder(t *testing.T) {
	skeleton := newTestSkeleton(t,
		"mixamorig:LeftArm",
		"LeftUpperArm",
		"Arm.R",
		"mixamorig:RightArm",
		"Hips",
		"Unrelated",
	)
	rig := NewRig()
	inserted := rig.PopulateFromSkeleton(skeleton)
	if inserted != 3 {
		t.Fatalf("inserted count mismatch: got=%d want=3", inserted)
	}
	want := map[BodyNode]string{
		LEFT_UPPER_ARM:  "LeftUpperArm",
		RIGHT_UPPER_ARM: "Arm.R",
		HIPS:            "Hips",
	}
	if diff := cmp.Diff(want, rig.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	if got := rig.PopulateFromSkeleton(skeleton); got != 0 {
		t.Fatalf("second populate should not insert: got=%d", got)
	}

	pmx := newTestSkeleton(t,
		"センター",
		"下半身",
		"上半身",
		"首",
		"頭",
		"左肩P",
		"左肩",
		"左肩C",
		"左腕",
		"左腕捩",
		"左ひじ",
		"左手首",
		"右肩P",
		"右肩",
		"右腕",
		"左足D",
		"左足",
		"左ひざ",
		"左足首",
	)
	pmxRig := NewRig()
	pmxRig.PopulateFromSkeleton(pmx)
	pmxWant := map[BodyNode]string{
		HIPS:            "下半身",
		SPINE:           "上半身",
		NECK:            "首",
		HEAD:            "頭",
		LEFT_SHOULDER:   "左肩",
		LEFT_UPPER_ARM:  "左腕",
		LEFT_LOWER_ARM:  "左ひじ",
		LEFT_HAND:       "左手首",
		RIGHT_SHOULDER:  "右肩",
		RIGHT_UPPER_ARM: "右腕",
		LEFT_UPPER_LEG:  "左足",
		LEFT_LOWER_LEG:  "左ひざ",
		LEFT_FOOT:       "左足首",
	}
	if diff := cmp.Diff(pmxWant, pmxRig.Snapshot()); diff != "" {
		t.Fatalf("pmx snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestPopulateFromSkeletonKeepsExplicitMappings(t *testing.T) {
	skeleton := newTestSkeleton(t, "Head", "Neck")
	custom := scene.NewTransform("custom_head")
	rig := NewRig()
	rig.Set(HEAD, custom)

	if got := rig.PopulateFromSkeleton(skeleton); got != 1 {
		t.Fatalf("inserted count mismatch: got=%d want=1", got)
	}
	if got, _ := rig.Get(HEAD); got != custom {
		t.Fatalf("explicit mapping should be kept")
	}
}

func TestPopulateFromSkeletonSkipsUnbuiltSkeleton(t *testing.T) {
	logger := useBufferLogger(t)
	skeleton := NewSkeleton(nil)
	if _, err := skeleton.AddBone("Hips", "", mmath.ZERO_VEC3); err != nil {
		t.Fatalf("add bone failed: %v", err)
	}
	rig := NewRig()
	if got := rig.PopulateFromSkeleton(skeleton); got != 0 {
		t.Fatalf("unbuilt skeleton should not populate: got=%d", got)
	}
	if got := rig.PopulateFromSkeleton(nil); got != 0 {
		t.Fatalf("nil skeleton should not populate: got=%d", got)
	}
	if len(logger.MessageBuffer().Lines()) != 2 {
		t.Fatalf("warning count mismatch: got=%v", logger.MessageBuffer().Lines())
	}
}

func TestRigChangeListenerSurvivesPanics(t *testing.T) {
	logger := useBufferLogger(t)
	rig := NewRig()
	changes := []RigChange{}
	rig.AddChangeListener(func(RigChange) { panic("listener failure") })
	id := rig.AddChangeListener(func(change RigChange) { changes = append(changes, change) })

	bone := scene.NewTransform("head")
	rig.Set(HEAD, bone)
	rig.Set(HEAD, nil)
	if len(changes) != 2 {
		t.Fatalf("change count mismatch: got=%d want=2", len(changes))
	}
	if changes[0].Current != bone || changes[1].Previous != bone || changes[1].Current != nil {
		t.Fatalf("change payload mismatch: got=%+v", changes)
	}
	if len(logger.MessageBuffer().Lines()) != 2 {
		t.Fatalf("listener panic should be logged per change: got=%d", len(logger.MessageBuffer().Lines()))
	}

	rig.RemoveChangeListener(id)
	rig.Set(HEAD, bone)
	if len(changes) != 2 {
		t.Fatalf("removed listener should not be notified")
	}
}

func TestSuggestBoneNames(t *testing.T) {
	skeleton := newTestSkeleton(t, "Hips", "LeftUpperArmTwist", "Spine")
	rig := NewRig()
	rig.Set(HIPS, scene.NewTransform("Hips"))

	suggestions := rig.SuggestBoneNames(LEFT_UPPER_ARM, skeleton, 3)
	if len(suggestions) != 1 || suggestions[0].BoneName != "LeftUpperArmTwist" {
		t.Fatalf("suggestion mismatch: got=%+v", suggestions)
	}
}
