// 指示: miu200521358
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/miu200521358/mu_posebind/pkg/shared/base/logging"
	"github.com/miu200521358/mu_posebind/pkg/usecase/minteractor"
)

// ParseEnv は環境変数から設定を読み込む。
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadGaitConfigFromEnv は MU_POSEBIND_GAIT_* から足運び設定を読み込む。
// 解析できない場合は警告を出して既定値を返す。範囲外の値は既定値へ置き換える。
func LoadGaitConfigFromEnv() minteractor.GaitConfig {
	var config minteractor.GaitConfig
	if err := ParseEnv(&config); err != nil {
		logConfigWarn("足運び設定の読み込みに失敗したため既定値を使います: %v", err)
		return minteractor.DefaultGaitConfig()
	}
	return config.Normalized()
}

// logConfigWarn は設定処理の警告ログを出力する。
func logConfigWarn(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Warn(format, params...)
}
