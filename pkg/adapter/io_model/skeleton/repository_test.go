// 指示: miu200521358
package skeleton

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "avatar.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture failed: %v", err)
	}
	return path
}

func TestSkeletonRepositoryCanLoad(t *testing.T) {
	repository := NewSkeletonRepository()
	if !repository.CanLoad("avatar.TOML") || repository.CanLoad("avatar.vrm") {
		t.Fatalf("extension check mismatch")
	}
	if got := repository.InferName(filepath.Join("work", "avatar.toml")); got != "avatar" {
		t.Fatalf("name mismatch: got=%s", got)
	}
}

func TestSkeletonRepositoryLoadsBipedFixture(t *testing.T) {
	repository := NewSkeletonRepository()
	document, err := repository.LoadDocument(filepath.Join("testdata", "mixamo_biped.toml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	skeleton := document.Skeleton
	if !skeleton.IsBuilt() || skeleton.BoneCount() != 17 {
		t.Fatalf("skeleton mismatch: built=%v count=%d", skeleton.IsBuilt(), skeleton.BoneCount())
	}
	head, _ := skeleton.FindBone("mixamorig:Head")
	if got := head.WorldPosition(); !got.NearEquals(mmath.NewVec3(0, 1.57, 0), 1e-9) {
		t.Fatalf("head world position mismatch: got=%s", got)
	}
	rightFoot, _ := skeleton.FindBone("mixamorig:RightFoot")
	if !rightFoot.LocalRotation().NearEquals(mmath.NewQuaternionFromDegrees(0, 10, 0), 1e-12) {
		t.Fatalf("rotation mismatch: got=%s", rightFoot.LocalRotation())
	}

	rig := model.NewRig()
	if applied := document.ApplyMapping(rig); applied != 1 {
		t.Fatalf("applied mismatch: got=%d want=1", applied)
	}
	rig.PopulateFromSkeleton(skeleton)
	if !rig.IsBiped() {
		t.Fatalf("fixture should be biped: missing=%v", rig.MissingBipedNodes())
	}
	snapshot := rig.Snapshot()
	want := map[model.BodyNode]string{
		model.CHEST:           "mixamorig:Spine1",
		model.LEFT_UPPER_ARM:  "mixamorig:LeftArm",
		model.RIGHT_LOWER_LEG: "mixamorig:RightLeg",
	}
	for node, boneName := range want {
		if snapshot[node] != boneName {
			t.Fatalf("mapping mismatch: node=%s got=%s want=%s", node, snapshot[node], boneName)
		}
	}
}

func TestSkeletonRepositoryRejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "empty", content: "name = \"x\"\n", want: "ボーンが定義されていません"},
		{name: "missing parent", content: "[[bones]]\nname = \"Arm\"\nparent = \"Body\"\n", want: "親ボーン"},
		{name: "bad position", content: "[[bones]]\nname = \"Hips\"\nposition = [0.0, 1.0]\n", want: "要素数"},
		{name: "unknown node", content: "[[bones]]\nname = \"Hips\"\n[rig]\nTail = \"Hips\"\n", want: "不明なノード名"},
		{name: "unknown bone", content: "[[bones]]\nname = \"Hips\"\n[rig]\nHips = \"Pelvis\"\n", want: "ボーンが見つかりません"},
		{name: "syntax", content: "[[bones]\n", want: "読み込みに失敗"},
	}
	repository := NewSkeletonRepository()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repository.Load(writeFixture(t, tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error mismatch: err=%v want=%s", err, tc.want)
			}
		})
	}
}

func TestSkeletonRepositoryUsesFileNameWhenUnnamed(t *testing.T) {
	document, err := NewSkeletonRepository().LoadDocument(writeFixture(t, "[[bones]]\nname = \"Hips\"\n"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if document.Name != "avatar" {
		t.Fatalf("name mismatch: got=%s", document.Name)
	}
	if diff := cmp.Diff([]string{"Hips"}, document.Skeleton.BoneNames()); diff != "" {
		t.Fatalf("bone names mismatch (-want +got):\n%s", diff)
	}
}
