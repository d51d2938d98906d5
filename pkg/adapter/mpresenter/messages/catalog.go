// 指示: miu200521358
package messages

import (
	"sync"

	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// englishMessages はキーに対応する英語表示文。
var englishMessages = map[string]string{
	HelpUsage:               "usage: mu_posebind -skeleton avatar.toml [-frames 120] [-dt 0.016] [-speed 1.2] [-lang en]",
	HeaderDiagnostics:       "Diagnostics: %s",
	LabelInitialized:        "Initialized: %s",
	LabelBiped:              "Biped: %s (%d mapped)",
	LabelHandFingers:        "Fingers: left=%s right=%s",
	LabelMissing:            "Missing nodes: %d",
	LabelMissingNode:        "  - %s",
	LabelSuggestions:        "  - %s (candidates: %s)",
	LabelLandmarks:          "Landmarks:",
	LabelLandmark:           "  - %s bone=%s equipped=%s tracking=%s driving=%s order=%d",
	LabelWarnings:           "Warnings: %d",
	LabelWarning:            "  - [%s] %s %s",
	LabelGait:               "Gait: %s steps=%d speed=%.2f",
	LabelReinitialize:       "Reinitializations: %d",
	LabelNone:               "none",
	LabelYes:                "yes",
	LabelNo:                 "no",
	MessageSkeletonRequired: "specify a skeleton file (-skeleton)",
	MessageLoadFailed:       "failed to load skeleton",
	MessageSetupFailed:      "failed to initialize",
	LogSkeletonLoaded:       "loaded skeleton: %s (%d bones)",
	LogSimulationDone:       "simulation finished: %d frames",
}

var registerOnce sync.Once

// Register はメッセージカタログを登録する。複数回呼んでも1回だけ登録する。
func Register() {
	registerOnce.Do(func() {
		for key, english := range englishMessages {
			if err := message.SetString(language.Japanese, key, key); err != nil {
				logCatalogWarn("メッセージ登録に失敗しました: lang=ja key=%s err=%v", key, err)
			}
			if err := message.SetString(language.English, key, english); err != nil {
				logCatalogWarn("メッセージ登録に失敗しました: lang=en key=%s err=%v", key, err)
			}
		}
	})
}

// NewPrinter は言語名に対応するプリンタを返す。不明な言語は日本語とする。
func NewPrinter(lang string) *message.Printer {
	Register()
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Japanese
	}
	base, _ := tag.Base()
	if base.String() == "en" {
		return message.NewPrinter(language.English)
	}
	return message.NewPrinter(language.Japanese)
}

// logCatalogWarn はメッセージ登録の警告ログを出力する。
func logCatalogWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
