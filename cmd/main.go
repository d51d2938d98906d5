// 指示: miu200521358
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/miu200521358/mu_posebind/pkg/adapter/io_model/skeleton"
	"github.com/miu200521358/mu_posebind/pkg/adapter/mpresenter"
	"github.com/miu200521358/mu_posebind/pkg/adapter/mpresenter/messages"
	adaptertracking "github.com/miu200521358/mu_posebind/pkg/adapter/tracking"
	"github.com/miu200521358/mu_posebind/pkg/domain/mmath"
	"github.com/miu200521358/mu_posebind/pkg/domain/model"
	"github.com/miu200521358/mu_posebind/pkg/domain/scene"
	"github.com/miu200521358/mu_posebind/pkg/domain/tracking"
	"github.com/miu200521358/mu_posebind/pkg/infra/base/mlogging"
	"github.com/miu200521358/mu_posebind/pkg/infra/config"
	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
	"github.com/miu200521358/mu_posebind/pkg/usecase/minteractor"
)

// headHeight は HMD を想定した頭部サンプルの高さ。
const headHeight = 1.6

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7DCFFF"))

// options はCLI引数を保持する。
type options struct {
	skeletonPath string
	frames       int
	dt           float64
	speed        float64
	lang         string
}

// main は骨格を読み込み、頭部トラッキングと足運び生成で歩行を再生して診断結果を表示する。
func main() {
	logging.SetDefaultLogger(mlogging.NewLogger(os.Stderr))
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	opts, err := parseOptions(args, errOut)
	if err != nil {
		return err
	}
	printer := mpresenter.Printer(opts.lang)

	repository := skeleton.NewSkeletonRepository()
	if !repository.CanLoad(opts.skeletonPath) {
		return fmt.Errorf("入力形式が未対応です: %s", opts.skeletonPath)
	}
	document, err := repository.LoadDocument(opts.skeletonPath)
	if err != nil {
		return fmt.Errorf("%s: %w", printer.Sprintf(messages.MessageLoadFailed), err)
	}
	fmt.Fprintln(out, titleStyle.Render("mu_posebind"))
	fmt.Fprintln(out, printer.Sprintf(messages.LogSkeletonLoaded, document.Name, document.Skeleton.BoneCount()))

	avatar := scene.NewTransform(document.Name)
	if err := document.Skeleton.Root().SetParent(avatar); err != nil {
		return err
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
		GaitConfig:     config.LoadGaitConfigFromEnv(),
		LocalUser:      true,
		Name:           document.Name,
	})
	if err := orchestrator.Setup(); err != nil {
		return fmt.Errorf("%s: %w", printer.Sprintf(messages.MessageSetupFailed), err)
	}
	defer orchestrator.Teardown()

	provider := adaptertracking.NewScriptedProvider()
	for frame := 1; frame <= opts.frames; frame++ {
		z := opts.speed * opts.dt * float64(frame)
		avatar.Position.Set(mmath.NewVec3(0, 0, z))
		provider.SetSample(model.HEAD, tracking.TrackingSample{
			Position:       mmath.NewVec3(0, headHeight, z),
			Rotation:       mmath.NewQuaternion(),
			IsTracking:     true,
			IsDeviceActive: true,
		})
		scheduler.RunFrame(opts.dt, func() { slots.Sample(provider) })
	}

	if err := mpresenter.FormatDiagnostics(out, orchestrator.Diagnostics(), opts.lang); err != nil {
		return err
	}
	fmt.Fprintln(out, printer.Sprintf(messages.LogSimulationDone, opts.frames))
	return nil
}

// parseOptions はCLI引数を解析する。
func parseOptions(args []string, errOut io.Writer) (options, error) {
	fs := flag.NewFlagSet("mu_posebind", flag.ContinueOnError)
	fs.SetOutput(errOut)
	skeletonPath := fs.String("skeleton", "", "骨格定義ファイルパス(.toml)")
	frames := fs.Int("frames", 120, "再生フレーム数")
	dt := fs.Float64("dt", 1.0/60.0, "1フレームの秒数")
	speed := fs.Float64("speed", 1.2, "アバターの移動速度(m/s)")
	lang := fs.String("lang", "ja", "表示言語(ja/en)")
	fs.Usage = func() {
		fmt.Fprintln(errOut, mpresenter.Printer(*lang).Sprintf(messages.HelpUsage))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if *skeletonPath == "" && fs.NArg() > 0 {
		*skeletonPath = fs.Arg(0)
	}
	if strings.TrimSpace(*skeletonPath) == "" {
		return options{}, errors.New(mpresenter.Printer(*lang).Sprintf(messages.MessageSkeletonRequired))
	}
	if *frames <= 0 {
		return options{}, fmt.Errorf("フレーム数は1以上を指定してください: %d", *frames)
	}
	if *dt <= 0 || math.IsNaN(*dt) || math.IsInf(*dt, 0) {
		return options{}, fmt.Errorf("dt は正の有限値を指定してください: %v", *dt)
	}
	if *speed < 0 || math.IsNaN(*speed) || math.IsInf(*speed, 0) {
		return options{}, fmt.Errorf("speed は0以上の有限値を指定してください: %v", *speed)
	}

	return options{
		skeletonPath: *skeletonPath,
		frames:       *frames,
		dt:           *dt,
		speed:        *speed,
		lang:         *lang,
	}, nil
}
