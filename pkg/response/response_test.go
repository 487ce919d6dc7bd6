package response

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/KamineHiro/shift-maker/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func render(fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)
	var resp Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"校验", apperrors.Validation("日期格式无效"), http.StatusBadRequest, "日期格式无效"},
		{"包装后的未找到", fmt.Errorf("get: %w", apperrors.NotFound("员工不存在")), http.StatusNotFound, "员工不存在"},
		{"冲突", apperrors.Conflict("该期间已归档"), http.StatusConflict, "该期间已归档"},
		{"存储", apperrors.Store(stderrors.New("pq: connection refused")), http.StatusInternalServerError, "服务器内部错误"},
		{"未分类", stderrors.New("boom"), http.StatusInternalServerError, "服务器内部错误"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := render(func(c *gin.Context) { FromError(c, tt.err) })
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.msg, resp.Error)
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}

func TestMultiStatus(t *testing.T) {
	w, resp := render(func(c *gin.Context) {
		MultiStatus(c, gin.H{"failed": 1}, "1 天写入失败")
	})
	assert.Equal(t, http.StatusMultiStatus, w.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "1 天写入失败", resp.Error)
}

func TestOK_OmitsError(t *testing.T) {
	w, resp := render(func(c *gin.Context) { OK(c, []string{"2024-06-03"}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.NotContains(t, w.Body.String(), `"error"`)
}
