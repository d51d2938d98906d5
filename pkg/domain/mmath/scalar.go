// 指示: miu200521358
package mmath

import "math"

// DegToRad は度をラジアンへ変換する。
func DegToRad(degree float64) float64 {
	return degree * math.Pi / 180.0
}

// RadToDeg はラジアンを度へ変換する。
func RadToDeg(radian float64) float64 {
	return radian * 180.0 / math.Pi
}

// Clamp は min-max で値をクランプする。
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// SmoothStep は 0..1 のエルミート補間係数 t²(3−2t) を返す。
func SmoothStep(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// SmoothStepVec3 は from→to を SmoothStep 係数で補間する。
func SmoothStepVec3(from, to Vec3, t float64) Vec3 {
	return from.Lerp(to, SmoothStep(t))
}

// ExpSmoothingFactor は指数平滑の dt 依存係数 1−e^(−rate·dt) を返す。
func ExpSmoothingFactor(rate, dt float64) float64 {
	if rate <= 0 || dt <= 0 {
		return 1
	}
	return 1 - math.Exp(-rate*dt)
}
