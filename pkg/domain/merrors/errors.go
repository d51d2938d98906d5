// 指示: miu200521358
// Package merrors はドメイン共通のエラー種別を提供する。
package merrors

import (
	"errors"
	"fmt"
)

// ErrExclusiveUserConflict は排他ユーザーロックが別ユーザーで既に設定済みであることを表す。
var ErrExclusiveUserConflict = errors.New("排他ユーザーが既に別ユーザーで設定されています")

// DriveConflictError は単一書き込み先フィールドへの二重バインドを表す。
type DriveConflictError struct {
	Target string
	Holder string
}

// Error はエラーメッセージを返す。
func (e *DriveConflictError) Error() string {
	return fmt.Sprintf("フィールドは既に駆動されています: target=%s holder=%s", e.Target, e.Holder)
}

// NewDriveConflictError は二重バインドエラーを生成する。
func NewDriveConflictError(target string, holder string) error {
	return &DriveConflictError{Target: target, Holder: holder}
}

// IsDriveConflictError は err が二重バインドエラーか判定する。
func IsDriveConflictError(err error) bool {
	var target *DriveConflictError
	return errors.As(err, &target)
}
