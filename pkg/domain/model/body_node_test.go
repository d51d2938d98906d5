// 指示: miu200521358
package model

import "testing"

func TestBodyNodeFingerComposition(t *testing.T) {
	for _, chirality := range []Chirality{CHIRALITY_LEFT, CHIRALITY_RIGHT} {
		for _, finger := range AllFingerTypes() {
			for _, segment := range FingerSegments(finger) {
				node, ok := ComposeFinger(finger, segment, chirality)
				if !ok || !node.IsFinger() {
					t.Fatalf("compose failed: finger=%s segment=%s chirality=%s", finger, segment, chirality)
				}
				gotChirality, _ := node.FingerChirality()
				gotFinger, _ := node.FingerType()
				gotSegment, _ := node.FingerSegmentType()
				if gotChirality != chirality || gotFinger != finger || gotSegment != segment {
					t.Fatalf("decompose mismatch: node=%s got=%s/%s/%s", node, gotChirality, gotFinger, gotSegment)
				}
			}
		}
	}
	if _, ok := ComposeFinger(FINGER_THUMB, SEGMENT_INTERMEDIATE, CHIRALITY_LEFT); ok {
		t.Fatalf("thumb has no intermediate segment")
	}
	if got := LEFT_THUMB_TIP.String(); got != "LeftThumbTip" {
		t.Fatalf("name mismatch: got=%s", got)
	}
	if got := RIGHT_INDEX_INTERMEDIATE.String(); got != "RightIndexIntermediate" {
		t.Fatalf("name mismatch: got=%s", got)
	}
}

func TestBodyNodeFingerChiralityIsUndefinedForCoreNodes(t *testing.T) {
	chirality, ok := LEFT_HAND.FingerChirality()
	if ok || chirality != CHIRALITY_NONE {
		t.Fatalf("core node chirality should be undefined: got=%s ok=%v", chirality, ok)
	}
	if LEFT_HAND.IsFinger() || NONE.IsValid() {
		t.Fatalf("predicate mismatch")
	}
}

func TestBodyNodeMirrorAndSides(t *testing.T) {
	cases := []struct {
		node   BodyNode
		mirror BodyNode
		left   bool
		right  bool
	}{
		{node: LEFT_UPPER_ARM, mirror: RIGHT_UPPER_ARM, left: true},
		{node: RIGHT_FOOT, mirror: LEFT_FOOT, right: true},
		{node: HEAD, mirror: HEAD},
		{node: LEFT_PINKY_DISTAL, mirror: RIGHT_PINKY_DISTAL},
	}
	for _, tc := range cases {
		if got := tc.node.Mirror(); got != tc.mirror {
			t.Fatalf("mirror mismatch: node=%s got=%s want=%s", tc.node, got, tc.mirror)
		}
		if tc.node.IsLeftSide() != tc.left || tc.node.IsRightSide() != tc.right {
			t.Fatalf("side mismatch: node=%s left=%v right=%v", tc.node, tc.node.IsLeftSide(), tc.node.IsRightSide())
		}
	}
}

func TestParseBodyNode(t *testing.T) {
	for _, node := range AllBodyNodes() {
		parsed, ok := ParseBodyNode(node.String())
		if !ok || parsed != node {
			t.Fatalf("parse mismatch: name=%s got=%s", node, parsed)
		}
	}
	if node, ok := ParseBodyNode("  lefthand "); !ok || node != LEFT_HAND {
		t.Fatalf("parse should ignore case and spaces: got=%s ok=%v", node, ok)
	}
	if _, ok := ParseBodyNode("Tail"); ok {
		t.Fatalf("unknown name should not parse")
	}
}
