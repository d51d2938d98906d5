// 指示: miu200521358
package mmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quaternion は回転を表すクォータニオン。
type Quaternion struct {
	q mgl64.Quat
}

// NewQuaternion は単位クォータニオンを生成する。
func NewQuaternion() Quaternion {
	return Quaternion{q: mgl64.QuatIdent()}
}

// NewQuaternionByValues は x,y,z,w 指定でクォータニオンを生成する。
func NewQuaternionByValues(x, y, z, w float64) Quaternion {
	return Quaternion{q: mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}}
}

// NewQuaternionFromAxisAngle は回転軸とラジアン角から生成する。
func NewQuaternionFromAxisAngle(axis Vec3, radians float64) Quaternion {
	n := axis.Normalized()
	if n.Length() == 0 {
		return NewQuaternion()
	}
	return Quaternion{q: mgl64.QuatRotate(radians, toMgl(n))}
}

// NewQuaternionFromDegrees はオイラー角(度)から生成する。回転順は Y→X→Z。
func NewQuaternionFromDegrees(xDegree, yDegree, zDegree float64) Quaternion {
	qx := NewQuaternionFromAxisAngle(UNIT_X_VEC3, DegToRad(xDegree))
	qy := NewQuaternionFromAxisAngle(UNIT_Y_VEC3, DegToRad(yDegree))
	qz := NewQuaternionFromAxisAngle(UNIT_Z_VEC3, DegToRad(zDegree))
	return qy.Muled(qx).Muled(qz)
}

// X は x 成分を返す。
func (q Quaternion) X() float64 { return q.q.V[0] }

// Y は y 成分を返す。
func (q Quaternion) Y() float64 { return q.q.V[1] }

// Z は z 成分を返す。
func (q Quaternion) Z() float64 { return q.q.V[2] }

// W は w 成分を返す。
func (q Quaternion) W() float64 { return q.q.W }

// IsZero は未初期化(全成分0)か判定する。
func (q Quaternion) IsZero() bool {
	return q.q.W == 0 && q.q.V[0] == 0 && q.q.V[1] == 0 && q.q.V[2] == 0
}

// orIdent は未初期化値を単位クォータニオンとして扱う。
func (q Quaternion) orIdent() mgl64.Quat {
	if q.IsZero() {
		return mgl64.QuatIdent()
	}
	return q.q
}

// Muled は q * other を返す。other の回転を先に適用する。
func (q Quaternion) Muled(other Quaternion) Quaternion {
	return Quaternion{q: q.orIdent().Mul(other.orIdent())}
}

// MulVec3 はベクトルを回転する。
func (q Quaternion) MulVec3(v Vec3) Vec3 {
	return fromMgl(q.orIdent().Normalize().Rotate(toMgl(v)))
}

// Inverted は逆回転を返す。
func (q Quaternion) Inverted() Quaternion {
	return Quaternion{q: q.orIdent().Inverse()}
}

// Normalized は正規化結果を返す。
func (q Quaternion) Normalized() Quaternion {
	return Quaternion{q: q.orIdent().Normalize()}
}

// Slerp は球面線形補間結果を返す。
func (q Quaternion) Slerp(other Quaternion, t float64) Quaternion {
	a := q.orIdent().Normalize()
	b := other.orIdent().Normalize()
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return Quaternion{q: mgl64.QuatSlerp(a, b, t).Normalize()}
}

// Yaw は前方(+Z)ベクトルの水平方向角(ラジアン)を返す。
func (q Quaternion) Yaw() float64 {
	forward := q.MulVec3(UNIT_Z_VEC3)
	if math.Hypot(forward.X, forward.Z) <= 1e-9 {
		up := q.MulVec3(UNIT_Y_VEC3)
		return math.Atan2(-up.X, -up.Z)
	}
	return math.Atan2(forward.X, forward.Z)
}

// YawOnly は Y 軸回りの回転成分のみを返す。
func (q Quaternion) YawOnly() Quaternion {
	return NewQuaternionFromAxisAngle(UNIT_Y_VEC3, q.Yaw())
}

// NearEquals は同一回転か判定する。q と -q は同一回転として扱う。
func (q Quaternion) NearEquals(other Quaternion, epsilon float64) bool {
	a := q.orIdent().Normalize()
	b := other.orIdent().Normalize()
	return math.Abs(math.Abs(a.Dot(b))-1) <= epsilon
}

// String は表示用文字列を返す。
func (q Quaternion) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f, %.4f)", q.X(), q.Y(), q.Z(), q.W())
}

func toMgl(v Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) Vec3 {
	return NewVec3(v[0], v[1], v[2])
}
