package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindValidation, KindOf(Validation("bad")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindConflict, KindOf(ErrDuplicate))
	assert.Equal(t, KindStore, KindOf(Store(stderrors.New("conn reset"))))

	// 包装后仍可识别
	wrapped := fmt.Errorf("update: %w", NotFound("missing"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))

	// 未分类错误归入存储错误
	assert.Equal(t, KindStore, KindOf(stderrors.New("boom")))
	assert.Equal(t, KindStore, KindOf(context.DeadlineExceeded))
}

func TestErrorIsSentinel(t *testing.T) {
	sentinel := NotFound("员工不存在")
	wrapped := fmt.Errorf("get staff: %w", sentinel)

	assert.True(t, stderrors.Is(wrapped, sentinel))
	assert.False(t, stderrors.Is(wrapped, NotFound("排班不存在")))
	assert.False(t, stderrors.Is(wrapped, Validation("员工不存在")))
}

func TestStoreUnwrap(t *testing.T) {
	cause := stderrors.New("pq: connection refused")
	err := Store(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.True(t, IsTimeout(context.Canceled))
	assert.False(t, IsTimeout(stderrors.New("x")))
}
