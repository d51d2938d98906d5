// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	"github.com/miu200521358/mu_posebind/pkg/domain/scene"
	"github.com/miu200521358/mu_posebind/pkg/domain/tracking"
)

// PoseOrchestratorUpdateOrder はボーン書き込みの実行順。PoseNode より後に実行する。
const PoseOrchestratorUpdateOrder = 10000

// orchestratorLandmarks はプロキシを生成するランドマーク。
var orchestratorLandmarks = []model.BodyNode{
	model.HEAD,
	model.HIPS,
	model.CHEST,
	model.LEFT_HAND,
	model.RIGHT_HAND,
	model.LEFT_LOWER_ARM,
	model.RIGHT_LOWER_ARM,
	model.LEFT_FOOT,
	model.RIGHT_FOOT,
	model.LEFT_LOWER_LEG,
	model.RIGHT_LOWER_LEG,
}

// drivenLandmarks はリグのボーンへ書き込むランドマーク。祖先側のボーンを先に並べる。
var drivenLandmarks = []model.BodyNode{
	model.HIPS,
	model.HEAD,
	model.LEFT_HAND,
	model.RIGHT_HAND,
	model.LEFT_FOOT,
	model.RIGHT_FOOT,
}

// OrchestratorLandmarks はプロキシを生成するランドマーク一覧を返す。
func OrchestratorLandmarks() []model.BodyNode {
	return append([]model.BodyNode(nil), orchestratorLandmarks...)
}

// PoseOrchestratorDeps は PoseOrchestrator の依存を表す。
type PoseOrchestratorDeps struct {
	Scheduler  *scene.Scheduler
	Rig        *model.Rig
	Skeleton   model.ISkeleton
	SlotSet    *tracking.SlotSet
	AvatarRoot *scene.Transform
	// ProceduralFeet は足のトラッキングが無い場合に足運びを生成するか。
	ProceduralFeet bool
	GaitConfig     GaitConfig
	// LocalUser は自分のアバターか。
	LocalUser bool
	// Name は駆動の所有者名に使う。
	Name string
}

// landmarkProxy はランドマーク1つ分のプロキシと駆動を表す。
type landmarkProxy struct {
	node          model.BodyNode
	proxy         *scene.Transform
	poseNode      *PoseNode
	bone          *scene.Transform
	positionDrive *scene.Drive[mmath.Vec3]
	rotationDrive *scene.Drive[mmath.Quaternion]
}

func (l *landmarkProxy) isDriving() bool {
	return l.bone != nil && l.positionDrive.IsActive() && l.rotationDrive.IsActive()
}

func (l *landmarkProxy) releaseBone() {
	l.positionDrive.Release()
	l.rotationDrive.Release()
	l.bone = nil
}

// PoseOrchestrator はアバター1体分のプロキシを管理し、ボーンへ姿勢を書き込む。
type PoseOrchestrator struct {
	scheduler      *scene.Scheduler
	rig            *model.Rig
	skeleton       model.ISkeleton
	boundSkeleton  model.ISkeleton
	autoMapped     map[model.BodyNode]*scene.Transform
	slotSet        *tracking.SlotSet
	avatarRoot     *scene.Transform
	proxyRoot      *scene.Transform
	proceduralFeet bool
	localUser      bool
	name           string
	gait           *GaitGenerator

	proxies        map[model.BodyNode]*landmarkProxy
	initialized    bool
	rigDirty       bool
	rigListenerID  int
	hooks          []scene.HookHandle
	warnings       []DiagnosticWarning
	reinitCount    int
	lastGaitActive bool
}

// NewPoseOrchestrator は PoseOrchestrator を生成する。Setup までプロキシは作らない。
func NewPoseOrchestrator(deps PoseOrchestratorDeps) *PoseOrchestrator {
	avatarRoot := deps.AvatarRoot
	if avatarRoot == nil {
		avatarRoot = scene.NewTransform("avatar")
	}
	name := deps.Name
	if name == "" {
		name = avatarRoot.Name()
	}
	return &PoseOrchestrator{
		scheduler:      deps.Scheduler,
		rig:            deps.Rig,
		skeleton:       deps.Skeleton,
		slotSet:        deps.SlotSet,
		avatarRoot:     avatarRoot,
		proceduralFeet: deps.ProceduralFeet,
		localUser:      deps.LocalUser,
		name:           name,
		gait:           NewGaitGenerator(deps.GaitConfig),
		proxies:        map[model.BodyNode]*landmarkProxy{},
		autoMapped:     map[model.BodyNode]*scene.Transform{},
	}
}

// UpdateOrder は同期点内の実行順を返す。
func (o *PoseOrchestrator) UpdateOrder() int {
	return PoseOrchestratorUpdateOrder
}

// IsInitialized は Setup 済みか判定する。
func (o *PoseOrchestrator) IsInitialized() bool {
	return o.initialized
}

// ReinitializeCount は遅延再初期化の回数を返す。
func (o *PoseOrchestrator) ReinitializeCount() int {
	return o.reinitCount
}

// Gait は足運び生成器を返す。
func (o *PoseOrchestrator) Gait() *GaitGenerator {
	return o.gait
}

// AvatarRoot はアバターのルートノードを返す。
func (o *PoseOrchestrator) AvatarRoot() *scene.Transform {
	return o.avatarRoot
}

// SetSkeleton は骨格を差し替える。次の取得前同期点で再初期化を判定する。
func (o *PoseOrchestrator) SetSkeleton(skeleton model.ISkeleton) {
	o.skeleton = skeleton
}

// SetProceduralFeet は足運び生成の有効状態を設定する。
func (o *PoseOrchestrator) SetProceduralFeet(enabled bool) {
	o.proceduralFeet = enabled
	if !enabled {
		o.gait.Reset()
	}
}

// Proxy はランドマークのプロキシを返す。
func (o *PoseOrchestrator) Proxy(node model.BodyNode) (*scene.Transform, bool) {
	landmark, exists := o.proxies[node]
	if !exists {
		return nil, false
	}
	return landmark.proxy, true
}

// PoseNode はランドマークの PoseNode を返す。
func (o *PoseOrchestrator) PoseNode(node model.BodyNode) (*PoseNode, bool) {
	landmark, exists := o.proxies[node]
	if !exists {
		return nil, false
	}
	return landmark.poseNode, true
}

// IsDriving はランドマークがボーンを駆動中か判定する。
func (o *PoseOrchestrator) IsDriving(node model.BodyNode) bool {
	landmark, exists := o.proxies[node]
	return exists && landmark.isDriving()
}

// Setup はプロキシと PoseNode、ボーン駆動を生成する。2回目以降は何もしない。
func (o *PoseOrchestrator) Setup() error {
	if o.initialized {
		return nil
	}
	if o.scheduler == nil {
		return fmt.Errorf("フレーム進行が設定されていません: avatar=%s", o.name)
	}
	o.proxyRoot = scene.NewChildTransform(o.avatarRoot, "pose_proxies")
	for _, node := range orchestratorLandmarks {
		proxy := scene.NewChildTransform(o.proxyRoot, "proxy:"+node.String())
		poseNode := NewPoseNode(o.scheduler, proxy, node, PoseNodeOptions{
			Phase:     scene.PhaseAfterTrackingSample,
			LocalUser: o.localUser,
		})
		landmark := &landmarkProxy{
			node:          node,
			proxy:         proxy,
			poseNode:      poseNode,
			positionDrive: scene.NewDrive[mmath.Vec3](o.name + ":" + node.String()),
			rotationDrive: scene.NewDrive[mmath.Quaternion](o.name + ":" + node.String()),
		}
		o.proxies[node] = landmark
		if slot, ok := o.slotSet.Slot(node); ok {
			slot.Equip(poseNode)
		}
	}

	if o.rig != nil {
		o.rigListenerID = o.rig.AddChangeListener(func(model.RigChange) {
			o.rigDirty = true
		})
	}
	o.populateRig()
	o.bindBones()
	o.rigDirty = false

	o.hooks = append(o.hooks,
		o.scheduler.Subscribe(scene.PhaseBeforeTrackingSample, o),
		o.scheduler.Subscribe(scene.PhaseAfterTrackingSample, o),
	)
	o.initialized = true
	logPoseInfo("姿勢プロキシを初期化しました: avatar=%s landmarks=%d driving=%d",
		o.name, len(o.proxies), o.drivingCount())
	return nil
}

// populateRig は構築済み骨格から未割り当てノードを補完する。
// 骨格が差し替わった場合は、前の骨格から補完した割り当てだけを外してから補完し直す。
func (o *PoseOrchestrator) populateRig() {
	if o.skeleton == nil || !o.skeleton.IsBuilt() {
		return
	}
	if o.boundSkeleton != o.skeleton {
		o.clearAutoMapped()
	}
	o.boundSkeleton = o.skeleton
	if o.rig == nil {
		return
	}
	before := map[model.BodyNode]struct{}{}
	for _, node := range o.rig.Nodes() {
		before[node] = struct{}{}
	}
	o.rig.PopulateFromSkeleton(o.skeleton)
	for _, node := range o.rig.Nodes() {
		if _, exists := before[node]; exists {
			continue
		}
		bone, _ := o.rig.Get(node)
		o.autoMapped[node] = bone
	}
}

// clearAutoMapped は骨格から補完した割り当てを外す。明示的に設定された割り当ては残す。
func (o *PoseOrchestrator) clearAutoMapped() {
	if o.rig != nil {
		for node, bone := range o.autoMapped {
			if current, ok := o.rig.Get(node); ok && current == bone {
				o.rig.Set(node, nil)
			}
		}
	}
	o.autoMapped = map[model.BodyNode]*scene.Transform{}
}

// bindBones はリグに存在するボーンへ位置・回転の駆動を取得する。
func (o *PoseOrchestrator) bindBones() {
	o.warnings = o.warnings[:0]
	if o.rig == nil {
		o.addWarning(model.RigWarningBoneMissing, model.NONE, "リグが設定されていないためボーン駆動をスキップしました")
		return
	}
	if o.skeleton != nil && !o.skeleton.IsBuilt() {
		o.addWarning(model.RigWarningSkeletonNotBuilt, model.NONE, "骨格が未構築です")
	}
	if !o.rig.IsBiped() {
		o.addWarning(model.RigWarningNotBiped, model.NONE,
			fmt.Sprintf("最小二足歩行ノードが不足しています: missing=%v", o.rig.MissingBipedNodes()))
	}
	for _, hand := range []struct {
		node      model.BodyNode
		chirality model.Chirality
	}{
		{node: model.LEFT_HAND, chirality: model.CHIRALITY_LEFT},
		{node: model.RIGHT_HAND, chirality: model.CHIRALITY_RIGHT},
	} {
		if !o.rig.HasHandFingers(hand.chirality) {
			o.addWarning(model.RigWarningHandFingersMissing, hand.node, "指ボーンが不足しています")
		}
	}
	for _, node := range drivenLandmarks {
		landmark := o.proxies[node]
		bone, ok := o.rig.Get(node)
		if !ok {
			o.addWarning(model.RigWarningBoneMissing, node, "ボーンが割り当てられていないためスキップしました")
			continue
		}
		if err := landmark.positionDrive.Bind(bone.Position); err != nil {
			o.addWarning(model.RigWarningBoneAlreadyDriven, node, err.Error())
			continue
		}
		if err := landmark.rotationDrive.Bind(bone.Rotation); err != nil {
			landmark.positionDrive.Release()
			o.addWarning(model.RigWarningBoneAlreadyDriven, node, err.Error())
			continue
		}
		landmark.bone = bone
		landmark.poseNode.ApplyWorldPose(bone.WorldPosition(), bone.WorldRotation())
	}
}

func (o *PoseOrchestrator) releaseBones() {
	for _, landmark := range o.proxies {
		landmark.releaseBone()
	}
}

func (o *PoseOrchestrator) addWarning(id string, node model.BodyNode, message string) {
	o.warnings = append(o.warnings, DiagnosticWarning{ID: id, Node: node, Message: message})
	if node == model.NONE {
		logPoseWarn("%s: avatar=%s", message, o.name)
		return
	}
	logPoseWarn("%s: avatar=%s node=%s", message, o.name, node)
}

func (o *PoseOrchestrator) drivingCount() int {
	count := 0
	for _, landmark := range o.proxies {
		if landmark.isDriving() {
			count++
		}
	}
	return count
}

// OnFrame は同期点ごとの処理を行う。
func (o *PoseOrchestrator) OnFrame(phase scene.FramePhase, dt float64) {
	if !o.initialized {
		return
	}
	switch phase {
	case scene.PhaseBeforeTrackingSample:
		o.checkLateInitialization()
	case scene.PhaseAfterTrackingSample:
		o.applyProceduralGait(dt)
		o.writeBones()
	}
}

// checkLateInitialization は Setup 後の骨格構築やリグ変更を検出し、1回だけ再初期化する。
func (o *PoseOrchestrator) checkLateInitialization() {
	if o.skeleton != nil && o.skeleton.IsBuilt() && o.boundSkeleton != o.skeleton {
		o.populateRig()
		o.rigDirty = true
	}
	if !o.rigDirty {
		return
	}
	o.rigDirty = false
	o.releaseBones()
	o.bindBones()
	o.reinitCount++
	logPoseInfo("姿勢プロキシを再初期化しました: avatar=%s driving=%d", o.name, o.drivingCount())
}

// footTracking はどちらかの足が実トラッキング中か判定する。
func (o *PoseOrchestrator) footTracking() bool {
	for _, node := range []model.BodyNode{model.LEFT_FOOT, model.RIGHT_FOOT} {
		if landmark, ok := o.proxies[node]; ok && landmark.poseNode.IsTracking() {
			return true
		}
	}
	return false
}

// handTracking は手がトラッキング中か、デバイスが接続中か判定する。
func (o *PoseOrchestrator) handTracking(node model.BodyNode) bool {
	landmark, ok := o.proxies[node]
	if !ok {
		return false
	}
	if landmark.poseNode.IsTracking() {
		return true
	}
	slot := landmark.poseNode.EquippedSlot()
	return slot != nil && slot.IsDeviceActive()
}

// applyProceduralGait は足のトラッキングが無い場合に足と手のプロキシへ生成姿勢を書き込む。
func (o *PoseOrchestrator) applyProceduralGait(dt float64) {
	active := o.proceduralFeet && !o.footTracking()
	if !active {
		if o.lastGaitActive {
			o.gait.Reset()
		}
		o.lastGaitActive = false
		return
	}
	if !o.lastGaitActive {
		o.seedGaitFromProxies()
	}
	o.lastGaitActive = true

	root := o.avatarRoot.WorldPosition()
	headRotation := o.avatarRoot.WorldRotation()
	if head, ok := o.proxies[model.HEAD]; ok && head.poseNode.IsTracking() {
		headRotation = head.proxy.WorldRotation()
	}
	hipHeight := root.Y + o.gait.Config().HipHeight
	if hips, ok := o.proxies[model.HIPS]; ok && (hips.poseNode.IsTracking() || hips.isDriving()) {
		hipHeight = hips.proxy.WorldPosition().Y
	}

	pose := o.gait.Update(GaitInput{
		RootPosition:     root,
		HeadRotation:     headRotation,
		HipHeight:        hipHeight,
		LeftHandTracked:  o.handTracking(model.LEFT_HAND),
		RightHandTracked: o.handTracking(model.RIGHT_HAND),
	}, dt)

	o.applyProxyPose(model.LEFT_FOOT, pose.LeftFoot, pose.BodyRotation)
	o.applyProxyPose(model.RIGHT_FOOT, pose.RightFoot, pose.BodyRotation)
	if pose.LeftHandPlaced {
		o.applyProxyPose(model.LEFT_HAND, pose.LeftHand, pose.BodyRotation)
	}
	if pose.RightHandPlaced {
		o.applyProxyPose(model.RIGHT_HAND, pose.RightHand, pose.BodyRotation)
	}
}

// seedGaitFromProxies は足運び開始時に現在の足プロキシ位置を接地位置とする。
func (o *PoseOrchestrator) seedGaitFromProxies() {
	left, leftOK := o.proxies[model.LEFT_FOOT]
	right, rightOK := o.proxies[model.RIGHT_FOOT]
	if !leftOK || !rightOK || !left.isDriving() || !right.isDriving() {
		o.gait.Reset()
		return
	}
	ground := o.avatarRoot.WorldPosition().Y
	leftPos := left.proxy.WorldPosition()
	rightPos := right.proxy.WorldPosition()
	leftPos.Y = ground
	rightPos.Y = ground
	o.gait.Reset()
	o.gait.SetFootPositions(leftPos, rightPos)
}

func (o *PoseOrchestrator) applyProxyPose(node model.BodyNode, position mmath.Vec3, rotation mmath.Quaternion) {
	landmark, ok := o.proxies[node]
	if !ok {
		return
	}
	landmark.poseNode.ApplyWorldPose(position, rotation)
}

// writeBones は駆動中のプロキシのワールド姿勢をボーンの親空間へ変換して書き込む。
// 親空間は書き込み時点の値を使うため、祖先側から順に書き込む。
func (o *PoseOrchestrator) writeBones() {
	for _, node := range drivenLandmarks {
		landmark := o.proxies[node]
		if !landmark.isDriving() {
			continue
		}
		worldPosition := landmark.proxy.WorldPosition()
		worldRotation := landmark.proxy.WorldRotation()
		landmark.positionDrive.Set(landmark.bone.GlobalPointToParentLocal(worldPosition))
		landmark.rotationDrive.Set(landmark.bone.GlobalRotationToParentLocal(worldRotation))
	}
}

// Teardown は全駆動を解放し、PoseNode を破棄して同期点から外れる。
func (o *PoseOrchestrator) Teardown() {
	if !o.initialized {
		return
	}
	for _, handle := range o.hooks {
		o.scheduler.Unsubscribe(handle)
	}
	o.hooks = nil
	for _, node := range orchestratorLandmarks {
		landmark := o.proxies[node]
		landmark.releaseBone()
		landmark.poseNode.Destroy()
	}
	if o.rig != nil {
		o.rig.RemoveChangeListener(o.rigListenerID)
	}
	if o.proxyRoot != nil {
		_ = o.proxyRoot.SetParent(nil)
	}
	o.proxies = map[model.BodyNode]*landmarkProxy{}
	o.proxyRoot = nil
	o.boundSkeleton = nil
	o.gait.Reset()
	o.lastGaitActive = false
	o.initialized = false
	logPoseInfo("姿勢プロキシを破棄しました: avatar=%s", o.name)
}
