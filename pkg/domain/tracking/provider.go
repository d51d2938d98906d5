// 指示: miu200521358
// Package tracking はトラッキング入力を受ける Slot と装着プロトコルを提供する。
package tracking

import (
	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
)

// TrackingSample はトラッキング空間での1ランドマークの取得結果を表す。
type TrackingSample struct {
	Position       mmath.Vec3
	Rotation       mmath.Quaternion
	IsTracking     bool
	IsDeviceActive bool
}

// ITrackingProvider はランドマークごとの姿勢取得契約を表す。
type ITrackingProvider interface {
	// Sample は node の最新姿勢を返す。未対応ノードは false を返す。
	Sample(node model.BodyNode) (TrackingSample, bool)
}

// logTrackingWarn はトラッキング処理の警告ログを出力する。
func logTrackingWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}

// logTrackingDebug はトラッキング処理のデバッグログを出力する。
func logTrackingDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}
