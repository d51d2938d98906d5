// 指示: miu200521358
package moutput

import (
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	"github.com/miu200521358/mu_posebind/pkg/domain/tracking"
)

// ITrackingProvider はトラッキング入力の取得契約を表す。
type ITrackingProvider = tracking.ITrackingProvider

// ISkeleton は骨格構築結果の参照契約を表す。
type ISkeleton = model.ISkeleton

// ISkeletonReader は骨格定義ファイルの読み込み契約を表す。
type ISkeletonReader interface {
	CanLoad(path string) bool
	Load(path string) (*model.Skeleton, error)
}
