package errors

import (
	"context"
	"errors"
	"fmt"
)

// Kind 错误分类，决定对外呈现方式
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error 带分类的业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is 同一指针或同 Kind 同 Message 视为相等，便于 errors.Is 匹配哨兵错误
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (e.Kind == t.Kind && e.Message == t.Message && t.Err == nil)
}

// ── 构造函数 ──

// Validation 输入格式错误，在边界处拦截，不进入存储层
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound 引用的记录不存在
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict 并发修改冲突
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Store 存储层失败，原始错误仅用于日志
func Store(err error) *Error {
	return &Error{Kind: KindStore, Message: "存储操作失败", Err: err}
}

// KindOf 返回错误链上第一个业务错误的分类
// 未分类的错误一律视为存储错误，超时同样归入存储错误
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// IsTimeout 请求超时或被取消
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// ErrDuplicate 唯一约束冲突
var ErrDuplicate = Conflict("记录已存在")
