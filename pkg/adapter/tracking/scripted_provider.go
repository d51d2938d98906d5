// 指示: miu200521358
package tracking

import (
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	domaintracking "github.com/miu200521358/mu_posebind/pkg/domain/tracking"
	"github.com/miu200521358/mu_posebind/pkg/usecase/port/moutput"
)

// ScriptedProvider はメモリ上のサンプルを返すトラッキング入力。
type ScriptedProvider struct {
	samples map[model.BodyNode]domaintracking.TrackingSample
}

var _ moutput.ITrackingProvider = (*ScriptedProvider)(nil)

// NewScriptedProvider は空の ScriptedProvider を生成する。
func NewScriptedProvider() *ScriptedProvider {
	return &ScriptedProvider{samples: map[model.BodyNode]domaintracking.TrackingSample{}}
}

// SetSample はノードのサンプルを設定する。
func (p *ScriptedProvider) SetSample(node model.BodyNode, sample domaintracking.TrackingSample) {
	p.samples[node] = sample
}

// SetLost はノードをトラッキング喪失状態にする。姿勢は直前の値を保持する。
func (p *ScriptedProvider) SetLost(node model.BodyNode) {
	sample := p.samples[node]
	sample.IsTracking = false
	p.samples[node] = sample
}

// Clear は全サンプルを破棄する。
func (p *ScriptedProvider) Clear() {
	p.samples = map[model.BodyNode]domaintracking.TrackingSample{}
}

// Sample はノードのサンプルを返す。
func (p *ScriptedProvider) Sample(node model.BodyNode) (domaintracking.TrackingSample, bool) {
	sample, exists := p.samples[node]
	return sample, exists
}
