// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	"github.com/tiendc/go-deepcopy"
)

const diagnosticSuggestionLimit = 3

// DiagnosticWarning は初期化時の警告を表す。
type DiagnosticWarning struct {
	ID      string
	Node    model.BodyNode
	Message string
}

// LandmarkDiagnostic はランドマーク1つ分の状態を表す。
type LandmarkDiagnostic struct {
	Node     model.BodyNode
	BoneName string
	Equipped bool
	Tracking bool
	Driving  bool
	Order    int
}

// MissingNodeDiagnostic は未割り当てノードと候補ボーン名を表す。
type MissingNodeDiagnostic struct {
	Node        model.BodyNode
	Suggestions []string
}

// DiagnosticReport はアバター1体分の診断結果を表す。
type DiagnosticReport struct {
	Avatar            string
	Initialized       bool
	Biped             bool
	MappedCount       int
	LeftHandFingers   bool
	RightHandFingers  bool
	Missing           []MissingNodeDiagnostic
	Landmarks         []LandmarkDiagnostic
	Warnings          []DiagnosticWarning
	GaitActive        bool
	Gait              GaitState
	ReinitializeCount int
}

// Diagnostics は現在の状態を診断結果として返す。
func (o *PoseOrchestrator) Diagnostics() DiagnosticReport {
	report := DiagnosticReport{
		Avatar:            o.name,
		Initialized:       o.initialized,
		GaitActive:        o.lastGaitActive,
		Gait:              o.gait.State(),
		ReinitializeCount: o.reinitCount,
		Warnings:          cloneWarnings(o.warnings),
	}
	if o.rig != nil {
		report.Biped = o.rig.IsBiped()
		report.MappedCount = o.rig.Len()
		report.LeftHandFingers = o.rig.HasHandFingers(model.CHIRALITY_LEFT)
		report.RightHandFingers = o.rig.HasHandFingers(model.CHIRALITY_RIGHT)
		for _, node := range o.rig.MissingBipedNodes() {
			missing := MissingNodeDiagnostic{Node: node}
			for _, suggestion := range o.rig.SuggestBoneNames(node, o.skeleton, diagnosticSuggestionLimit) {
				missing.Suggestions = append(missing.Suggestions, suggestion.BoneName)
			}
			report.Missing = append(report.Missing, missing)
		}
	}
	for _, node := range orchestratorLandmarks {
		landmark, exists := o.proxies[node]
		if !exists {
			continue
		}
		diagnostic := LandmarkDiagnostic{
			Node:     node,
			Equipped: landmark.poseNode.IsEquipped(),
			Tracking: landmark.poseNode.IsTracking(),
			Driving:  landmark.isDriving(),
			Order:    landmark.poseNode.UpdateOrder(),
		}
		if landmark.bone != nil {
			diagnostic.BoneName = landmark.bone.Name()
		}
		report.Landmarks = append(report.Landmarks, diagnostic)
	}
	return report
}

// cloneWarnings は警告一覧を複製する。再初期化時に元の配列は再利用される。
func cloneWarnings(warnings []DiagnosticWarning) []DiagnosticWarning {
	if len(warnings) == 0 {
		return nil
	}
	var cloned []DiagnosticWarning
	if err := deepcopy.Copy(&cloned, &warnings); err != nil {
		logPoseWarn("警告一覧の複製に失敗しました: %v", err)
		return append([]DiagnosticWarning(nil), warnings...)
	}
	return cloned
}
