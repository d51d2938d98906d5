// 指示: miu200521358
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/miu200521358/mu_posebind/pkg/adapter/io_model/skeleton"
	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	"github.com/miu200521358/mu_posebind/pkg/domain/scene"
	"github.com/miu200521358/mu_posebind/pkg/domain/tracking"
	"github.com/miu200521358/mu_posebind/pkg/infra/base/mlogging"
	envconfig "github.com/miu200521358/mu_posebind/pkg/infra/config"
	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
	"github.com/miu200521358/mu_posebind/pkg/usecase/minteractor"
)

const (
	statusPassed    = "passed"
	statusNotBiped  = "not_biped"
	statusNotMoving = "not_moving"
	statusFailed    = "failed"
)

// batchConfig はバッチ検査の実行設定を表す。
type batchConfig struct {
	FixtureRoot string
	Frames      int
	Speed       float64
	FailFast    bool
}

// checkEntry は1骨格分の検査入力を表す。
type checkEntry struct {
	Index      int
	SourcePath string
	ModelName  string
}

// checkResult は1骨格分の検査結果を表す。
type checkResult struct {
	Entry        checkEntry
	Status       string
	Duration     time.Duration
	Err          error
	Report       minteractor.DiagnosticReport
	FootDistance float64
}

// main は骨格定義を一括で読み込み、リグ補完と歩行再生の結果を検査する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括検査を実行し、終了コードを返す。
func run() int {
	logging.SetDefaultLogger(mlogging.NewLogger(os.Stderr))
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	entries, err := buildCheckEntries(config.FixtureRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "検査対象の列挙に失敗しました: %v\n", err)
		return 2
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "検査対象の骨格定義がありません")
		return 2
	}

	results := executeBatchCheck(config, entries)
	printBatchSummary(results)
	for _, result := range results {
		if result.Status != statusPassed {
			return 1
		}
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultFixtureRoot, err := resolveDefaultFixtureRoot()
	if err != nil {
		return batchConfig{}, err
	}
	fixtureRoot := flag.String("fixture-root", defaultFixtureRoot, "骨格定義(.toml)を置いたディレクトリ")
	frames := flag.Int("frames", 180, "歩行再生フレーム数")
	speed := flag.Float64("speed", 1.2, "歩行速度(m/s)")
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	flag.Parse()

	trimmedRoot := strings.TrimSpace(*fixtureRoot)
	if trimmedRoot == "" {
		return batchConfig{}, errors.New("fixture-root が空です")
	}
	if *frames <= 0 {
		return batchConfig{}, fmt.Errorf("frames は1以上を指定してください: %d", *frames)
	}
	return batchConfig{
		FixtureRoot: filepath.Clean(trimmedRoot),
		Frames:      *frames,
		Speed:       *speed,
		FailFast:    *failFast,
	}, nil
}

// resolveDefaultFixtureRoot はスクリプト配置ディレクトリ基準の既定入力先を返す。
func resolveDefaultFixtureRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(currentFilePath)))
	return filepath.Join(moduleRoot, "pkg", "adapter", "io_model", "skeleton", "testdata"), nil
}

// buildCheckEntries はディレクトリ直下の骨格定義から検査エントリを生成する。
func buildCheckEntries(root string) ([]checkEntry, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	repository := skeleton.NewSkeletonRepository()
	paths := []string{}
	for _, dirEntry := range dirEntries {
		path := filepath.Join(root, dirEntry.Name())
		if dirEntry.IsDir() || !repository.CanLoad(path) {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	entries := make([]checkEntry, 0, len(paths))
	for i, path := range paths {
		entries = append(entries, checkEntry{
			Index:      i + 1,
			SourcePath: path,
			ModelName:  repository.InferName(path),
		})
	}
	return entries, nil
}

// executeBatchCheck は全骨格の検査を順次実行する。
func executeBatchCheck(config batchConfig, entries []checkEntry) []checkResult {
	results := make([]checkResult, 0, len(entries))
	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] 検査開始: model=%s\n", entry.Index, total, entry.ModelName)
		result := checkEntryWalk(config, entry)
		results = append(results, result)
		switch result.Status {
		case statusPassed:
			fmt.Printf("[%d/%d] 検査成功: model=%s mapped=%d steps=%d foot=%.2f elapsed=%s\n",
				entry.Index, total, entry.ModelName, result.Report.MappedCount, result.Report.Gait.StepCount,
				result.FootDistance, result.Duration.Round(time.Millisecond))
		case statusNotBiped:
			missing := make([]string, 0, len(result.Report.Missing))
			for _, node := range result.Report.Missing {
				missing = append(missing, node.Node.String())
			}
			fmt.Printf("[%d/%d] 二足歩行判定NG: model=%s missing=%s\n", entry.Index, total, entry.ModelName, strings.Join(missing, ","))
		default:
			fmt.Printf("[%d/%d] 検査失敗: model=%s status=%s reason=%v\n", entry.Index, total, entry.ModelName, result.Status, result.Err)
		}
		if result.Status != statusPassed && config.FailFast {
			return results
		}
	}
	return results
}

// checkEntryWalk は1骨格分を読み込み、足運び生成で歩かせて足が追従したか検査する。
func checkEntryWalk(config batchConfig, entry checkEntry) checkResult {
	result := checkResult{Entry: entry, Status: statusFailed}
	startedAt := time.Now()
	defer func() {
		result.Duration = time.Since(startedAt)
	}()

	document, err := skeleton.NewSkeletonRepository().LoadDocument(entry.SourcePath)
	if err != nil {
		result.Err = err
		return result
	}
	avatar := scene.NewTransform(document.Name)
	if err := document.Skeleton.Root().SetParent(avatar); err != nil {
		result.Err = err
		return result
	}
	rig := model.NewRig()
	document.ApplyMapping(rig)

	scheduler := scene.NewScheduler()
	slots := tracking.NewSlotSet(nil, uuid.New(), minteractor.OrchestratorLandmarks()...)
	orchestrator := minteractor.NewPoseOrchestrator(minteractor.PoseOrchestratorDeps{
		Scheduler:      scheduler,
		Rig:            rig,
		Skeleton:       document.Skeleton,
		SlotSet:        slots,
		AvatarRoot:     avatar,
		ProceduralFeet: true,
		GaitConfig:     envconfig.LoadGaitConfigFromEnv(),
		LocalUser:      true,
		Name:           document.Name,
	})
	if err := orchestrator.Setup(); err != nil {
		result.Err = err
		return result
	}
	defer orchestrator.Teardown()

	dt := 1.0 / 60.0
	for frame := 1; frame <= config.Frames; frame++ {
		avatar.Position.Set(mmath.NewVec3(0, 0, config.Speed*dt*float64(frame)))
		scheduler.RunFrame(dt, func() { slots.Sample(nil) })
	}
	result.Report = orchestrator.Diagnostics()
	if !result.Report.Biped {
		result.Status = statusNotBiped
		return result
	}

	leftFoot, leftOK := rig.Get(model.LEFT_FOOT)
	if !leftOK {
		result.Status = statusNotBiped
		return result
	}
	result.FootDistance = leftFoot.WorldPosition().Horizontal().Distance(avatar.WorldPosition().Horizontal())
	if result.Report.Gait.StepCount == 0 || result.FootDistance > 1.0 {
		result.Status = statusNotMoving
		result.Err = fmt.Errorf("足が追従していません: steps=%d distance=%.2f", result.Report.Gait.StepCount, result.FootDistance)
		return result
	}
	result.Status = statusPassed
	return result
}

// printBatchSummary は検査結果の集計を標準出力へ表示する。
func printBatchSummary(results []checkResult) {
	counts := map[string]int{}
	for _, result := range results {
		counts[result.Status]++
	}
	fmt.Printf(
		"バッチ検査サマリ: total=%d passed=%d not_biped=%d not_moving=%d failed=%d\n",
		len(results),
		counts[statusPassed],
		counts[statusNotBiped],
		counts[statusNotMoving],
		counts[statusFailed],
	)
}
