// 指示: miu200521358
// Package messages は診断表示に使うメッセージキーを提供する。
package messages

// メッセージキー一覧。キーは日本語表示文をそのまま使う。
const (
	HelpUsage = "使い方: mu_posebind -skeleton avatar.toml [-frames 120] [-dt 0.016] [-speed 1.2] [-lang ja]"

	HeaderDiagnostics = "診断結果: %s"
	LabelInitialized  = "初期化済み: %s"
	LabelBiped        = "二足歩行: %s (割り当て %d 件)"
	LabelHandFingers  = "指: 左=%s 右=%s"
	LabelMissing      = "未割り当てノード: %d 件"
	LabelMissingNode  = "  - %s"
	LabelSuggestions  = "  - %s (候補: %s)"
	LabelLandmarks    = "ランドマーク:"
	LabelLandmark     = "  - %s bone=%s 装着=%s トラッキング=%s 駆動=%s order=%d"
	LabelWarnings     = "警告: %d 件"
	LabelWarning      = "  - [%s] %s %s"
	LabelGait         = "足運び: %s 歩数=%d 速度=%.2f"
	LabelReinitialize = "再初期化回数: %d"
	LabelNone         = "なし"
	LabelYes          = "はい"
	LabelNo           = "いいえ"

	MessageSkeletonRequired = "骨格定義ファイルを指定してください (-skeleton)"
	MessageLoadFailed       = "骨格読み込みに失敗しました"
	MessageSetupFailed      = "初期化に失敗しました"

	LogSkeletonLoaded = "骨格読み込み成功: %s (%d ボーン)"
	LogSimulationDone = "シミュレーション完了: %d フレーム"
)
