// 指示: miu200521358
package scene

import (
	"fmt"
	"runtime/debug"
	"sort"

	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
)

// FramePhase はフレーム内の同期点を表す。
type FramePhase int

const (
	// PhaseBeforeTrackingSample はトラッキング取得前の同期点。
	PhaseBeforeTrackingSample FramePhase = iota
	// PhaseAfterTrackingSample はトラッキング取得後の同期点。
	PhaseAfterTrackingSample
)

// String は同期点の表示名を返す。
func (p FramePhase) String() string {
	switch p {
	case PhaseBeforeTrackingSample:
		return "BeforeTrackingSample"
	case PhaseAfterTrackingSample:
		return "AfterTrackingSample"
	default:
		return fmt.Sprintf("FramePhase(%d)", int(p))
	}
}

// IFrameUpdatable はフレーム同期点で呼ばれる処理契約を表す。
type IFrameUpdatable interface {
	// UpdateOrder は同一同期点内の実行順を返す。小さいほど先に実行する。
	UpdateOrder() int
	// OnFrame は同期点ごとに呼ばれる。
	OnFrame(phase FramePhase, dt float64)
}

// HookHandle は同期点への登録を表す。
type HookHandle struct {
	phase FramePhase
	id    int
}

type frameHook struct {
	id        int
	updatable IFrameUpdatable
}

// Scheduler は2つの同期点を持つフレーム進行を表す。
type Scheduler struct {
	hooks  map[FramePhase][]frameHook
	nextID int
	frame  uint64
}

// NewScheduler はフレーム進行を生成する。
func NewScheduler() *Scheduler {
	return &Scheduler{hooks: map[FramePhase][]frameHook{}}
}

// Subscribe は同期点へ処理を登録する。
func (s *Scheduler) Subscribe(phase FramePhase, updatable IFrameUpdatable) HookHandle {
	s.nextID++
	s.hooks[phase] = append(s.hooks[phase], frameHook{id: s.nextID, updatable: updatable})
	return HookHandle{phase: phase, id: s.nextID}
}

// Unsubscribe は登録を解除する。未登録のハンドルは無視する。
func (s *Scheduler) Unsubscribe(handle HookHandle) {
	hooks := s.hooks[handle.phase]
	for i, hook := range hooks {
		if hook.id == handle.id {
			s.hooks[handle.phase] = append(hooks[:i:i], hooks[i+1:]...)
			return
		}
	}
}

// HookCount は同期点の登録数を返す。
func (s *Scheduler) HookCount(phase FramePhase) int {
	return len(s.hooks[phase])
}

// Frame は実行済みフレーム数を返す。
func (s *Scheduler) Frame() uint64 {
	return s.frame
}

// RunPhase は同期点の処理を実行順に呼び出す。
// 実行中の登録・解除は次回の呼び出しから反映する。
func (s *Scheduler) RunPhase(phase FramePhase, dt float64) {
	hooks := append([]frameHook(nil), s.hooks[phase]...)
	sort.SliceStable(hooks, func(i, j int) bool {
		return hooks[i].updatable.UpdateOrder() < hooks[j].updatable.UpdateOrder()
	})
	for _, hook := range hooks {
		if !s.isSubscribed(phase, hook.id) {
			continue
		}
		invokeFrameHook(phase, hook.updatable, dt)
	}
}

// RunFrame は取得前同期点、sample、取得後同期点の順に1フレームを進める。
func (s *Scheduler) RunFrame(dt float64, sample func()) {
	s.RunPhase(PhaseBeforeTrackingSample, dt)
	if sample != nil {
		sample()
	}
	s.RunPhase(PhaseAfterTrackingSample, dt)
	s.frame++
}

func (s *Scheduler) isSubscribed(phase FramePhase, id int) bool {
	for _, hook := range s.hooks[phase] {
		if hook.id == id {
			return true
		}
	}
	return false
}

// invokeFrameHook は1処理を呼び出す。panic は記録して握りつぶし、後続を止めない。
func invokeFrameHook(phase FramePhase, updatable IFrameUpdatable, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			logSceneWarn("フレーム処理で例外が発生しました: phase=%s target=%T err=%v\n%s", phase, updatable, r, debug.Stack())
		}
	}()
	updatable.OnFrame(phase, dt)
}

// logSceneWarn はシーン処理の警告ログを出力する。
func logSceneWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
