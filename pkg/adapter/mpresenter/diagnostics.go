// 指示: miu200521358
// Package mpresenter は診断結果の表示整形を提供する。
package mpresenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/miu200521358/mu_posebind/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	"github.com/miu200521358/mu_posebind/pkg/usecase/minteractor"
	"golang.org/x/text/message"
)

// FormatDiagnostics は診断結果を lang の表示文で w へ書き出す。
func FormatDiagnostics(w io.Writer, report minteractor.DiagnosticReport, lang string) error {
	printer := messages.NewPrinter(lang)
	yesNo := func(value bool) string {
		if value {
			return printer.Sprintf(messages.LabelYes)
		}
		return printer.Sprintf(messages.LabelNo)
	}

	lines := []string{
		printer.Sprintf(messages.HeaderDiagnostics, report.Avatar),
		printer.Sprintf(messages.LabelInitialized, yesNo(report.Initialized)),
		printer.Sprintf(messages.LabelBiped, yesNo(report.Biped), report.MappedCount),
		printer.Sprintf(messages.LabelHandFingers, yesNo(report.LeftHandFingers), yesNo(report.RightHandFingers)),
		printer.Sprintf(messages.LabelMissing, len(report.Missing)),
	}
	for _, missing := range report.Missing {
		if len(missing.Suggestions) == 0 {
			lines = append(lines, printer.Sprintf(messages.LabelMissingNode, missing.Node.String()))
			continue
		}
		lines = append(lines, printer.Sprintf(messages.LabelSuggestions, missing.Node.String(), strings.Join(missing.Suggestions, ", ")))
	}

	lines = append(lines, printer.Sprintf(messages.LabelLandmarks))
	for _, landmark := range report.Landmarks {
		boneName := landmark.BoneName
		if boneName == "" {
			boneName = printer.Sprintf(messages.LabelNone)
		}
		lines = append(lines, printer.Sprintf(messages.LabelLandmark,
			landmark.Node.String(), boneName,
			yesNo(landmark.Equipped), yesNo(landmark.Tracking), yesNo(landmark.Driving),
			landmark.Order))
	}

	lines = append(lines, printer.Sprintf(messages.LabelWarnings, len(report.Warnings)))
	for _, warning := range report.Warnings {
		node := ""
		if warning.Node != model.NONE {
			node = warning.Node.String()
		}
		lines = append(lines, printer.Sprintf(messages.LabelWarning, warning.ID, node, warning.Message))
	}

	lines = append(lines,
		printer.Sprintf(messages.LabelGait, yesNo(report.GaitActive), report.Gait.StepCount, report.Gait.SmoothedVelocity.Length()),
		printer.Sprintf(messages.LabelReinitialize, report.ReinitializeCount),
	)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return fmt.Errorf("診断結果の出力に失敗しました: %w", err)
		}
	}
	return nil
}

// Printer は lang に対応するメッセージプリンタを返す。
func Printer(lang string) *message.Printer {
	return messages.NewPrinter(lang)
}
