// 指示: miu200521358
// Package mmath は姿勢計算で使うベクトル・クォータニオン演算を提供する。
package mmath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 は3次元ベクトルを表す。
type Vec3 struct {
	r3.Vec
}

var (
	ZERO_VEC3   = Vec3{}
	ONE_VEC3    = Vec3{Vec: r3.Vec{X: 1, Y: 1, Z: 1}}
	UNIT_X_VEC3 = Vec3{Vec: r3.Vec{X: 1}}
	UNIT_Y_VEC3 = Vec3{Vec: r3.Vec{Y: 1}}
	UNIT_Z_VEC3 = Vec3{Vec: r3.Vec{Z: 1}}
)

// NewVec3 は成分指定でベクトルを生成する。
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{Vec: r3.Vec{X: x, Y: y, Z: z}}
}

// Added は加算結果を返す。
func (v Vec3) Added(other Vec3) Vec3 {
	return Vec3{Vec: r3.Add(v.Vec, other.Vec)}
}

// Subed は減算結果を返す。
func (v Vec3) Subed(other Vec3) Vec3 {
	return Vec3{Vec: r3.Sub(v.Vec, other.Vec)}
}

// MuledScalar はスカラー倍を返す。
func (v Vec3) MuledScalar(s float64) Vec3 {
	return Vec3{Vec: r3.Scale(s, v.Vec)}
}

// Muled は成分ごとの積を返す。
func (v Vec3) Muled(other Vec3) Vec3 {
	return NewVec3(v.X*other.X, v.Y*other.Y, v.Z*other.Z)
}

// Dived は成分ごとの商を返す。0 成分はそのまま 0 とする。
func (v Vec3) Dived(other Vec3) Vec3 {
	return NewVec3(safeDiv(v.X, other.X), safeDiv(v.Y, other.Y), safeDiv(v.Z, other.Z))
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Dot は内積を返す。
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(v.Vec, other.Vec)
}

// Cross は外積を返す。
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{Vec: r3.Cross(v.Vec, other.Vec)}
}

// Length は長さを返す。
func (v Vec3) Length() float64 {
	return r3.Norm(v.Vec)
}

// Distance は2点間距離を返す。
func (v Vec3) Distance(other Vec3) float64 {
	return v.Subed(other).Length()
}

// Normalized は正規化結果を返す。長さ0の場合はゼロベクトルを返す。
func (v Vec3) Normalized() Vec3 {
	if v.Length() <= 1e-12 {
		return ZERO_VEC3
	}
	return Vec3{Vec: r3.Unit(v.Vec)}
}

// Horizontal は Y 成分を 0 にしたベクトルを返す。
func (v Vec3) Horizontal() Vec3 {
	return NewVec3(v.X, 0, v.Z)
}

// Lerp は線形補間結果を返す。
func (v Vec3) Lerp(other Vec3, t float64) Vec3 {
	return v.Added(other.Subed(v).MuledScalar(t))
}

// NearEquals は各成分が epsilon 以内か判定する。
func (v Vec3) NearEquals(other Vec3, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon &&
		math.Abs(v.Y-other.Y) <= epsilon &&
		math.Abs(v.Z-other.Z) <= epsilon
}

// IsFinite は全成分が有限値か判定する。
func (v Vec3) IsFinite() bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// String は表示用文字列を返す。
func (v Vec3) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}
