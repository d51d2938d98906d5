// 指示: miu200521358
package scene

import "github.com/miu200521358/mu_posebind/pkg/domain/merrors"

// Field は Drive による単一書き込みを受け付ける値を表す。
// 駆動されていない間はローカル編集(Set)がそのまま反映される。
type Field[T any] struct {
	name   string
	value  T
	driver *Drive[T]
}

// NewField は初期値付きのフィールドを生成する。
func NewField[T any](name string, value T) *Field[T] {
	return &Field[T]{name: name, value: value}
}

// Name はフィールド名を返す。
func (f *Field[T]) Name() string {
	return f.name
}

// Value は現在値を返す。
func (f *Field[T]) Value() T {
	return f.value
}

// Set はローカル編集で値を書き込む。駆動中は無視して false を返す。
func (f *Field[T]) Set(value T) bool {
	if f.driver != nil {
		return false
	}
	f.value = value
	return true
}

// IsDriven は駆動中か判定する。
func (f *Field[T]) IsDriven() bool {
	return f.driver != nil
}

// Drive はフィールドへの単一書き込み権を表す。
type Drive[T any] struct {
	owner  string
	target *Field[T]
}

// NewDrive は所有者名付きの Drive を生成する。
func NewDrive[T any](owner string) *Drive[T] {
	return &Drive[T]{owner: owner}
}

// Owner は所有者名を返す。
func (d *Drive[T]) Owner() string {
	return d.owner
}

// Bind はフィールドの書き込み権を取得する。
// 他の Drive が保持中の場合は DriveConflictError を返し、状態を変更しない。
func (d *Drive[T]) Bind(field *Field[T]) error {
	if field == nil {
		return nil
	}
	if field.driver != nil && field.driver != d {
		return merrors.NewDriveConflictError(field.name, field.driver.owner)
	}
	if d.target != nil && d.target != field {
		d.Release()
	}
	field.driver = d
	d.target = field
	return nil
}

// Release は書き込み権を解放する。未バインド時は何もしない。
func (d *Drive[T]) Release() {
	if d.target == nil {
		return
	}
	if d.target.driver == d {
		d.target.driver = nil
	}
	d.target = nil
}

// IsActive は書き込み権を保持しているか判定する。
func (d *Drive[T]) IsActive() bool {
	return d.target != nil && d.target.driver == d
}

// Target はバインド中のフィールドを返す。
func (d *Drive[T]) Target() *Field[T] {
	return d.target
}

// Set は保持中のフィールドへ値を書き込む。未保持の場合は false を返す。
func (d *Drive[T]) Set(value T) bool {
	if !d.IsActive() {
		return false
	}
	d.target.value = value
	return true
}
