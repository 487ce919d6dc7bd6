package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/KamineHiro/shift-maker/internal/dto"
	"github.com/KamineHiro/shift-maker/internal/service"
	"github.com/KamineHiro/shift-maker/pkg/response"
)

// GroupHandler 小组与会话 HTTP 处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建 GroupHandler
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// CreateGroup 创建小组，返回两把密钥与管理会话
// @Summary 创建小组
// @Tags    group
// @Param   body body dto.CreateGroupRequest true "小组名称与管理密码"
// @Success 201 {object} response.Response{data=dto.CreateGroupResponse}
// @Router  /groups [post]
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.groupSvc.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, resp)
}

// EnterWithAccessKey 访问密钥换取员工会话
// @Summary 使用访问密钥进入小组
// @Tags    group
// @Param   body body dto.AccessKeyRequest true "访问密钥"
// @Success 200 {object} response.Response{data=dto.SessionResponse}
// @Router  /groups/access [post]
func (h *GroupHandler) EnterWithAccessKey(c *gin.Context) {
	var req dto.AccessKeyRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.groupSvc.ResolveAccessKey(c.Request.Context(), req.Key)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, resp)
}

// EnterWithAdminKey 管理密钥换取管理会话
// @Summary 使用管理密钥进入小组
// @Tags    group
// @Param   body body dto.AccessKeyRequest true "管理密钥"
// @Success 200 {object} response.Response{data=dto.SessionResponse}
// @Router  /groups/admin [post]
func (h *GroupHandler) EnterWithAdminKey(c *gin.Context) {
	var req dto.AccessKeyRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.groupSvc.ResolveAdminKey(c.Request.Context(), req.Key)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, resp)
}

// VerifyPassword 校验管理密码
// @Summary  校验管理密码
// @Tags     group
// @Security BearerAuth
// @Router   /groups/verify-password [post]
func (h *GroupHandler) VerifyPassword(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	var req dto.VerifyPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	valid, err := h.groupSvc.VerifyAdminPassword(c.Request.Context(), groupID, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, dto.VerifyPasswordResponse{Valid: valid})
}

// CurrentSession 当前会话所属小组
// @Summary  当前小组
// @Tags     session
// @Security BearerAuth
// @Success  200 {object} response.Response{data=dto.SessionResponse}
// @Router   /session [get]
func (h *GroupHandler) CurrentSession(c *gin.Context) {
	groupID, ok := MustGetGroupID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}
	_, exp := sessionToken(c)

	resp, err := h.groupSvc.Current(c.Request.Context(), groupID, role, exp)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, resp)
}

// Leave 退出小组，吊销当前会话
// @Summary  退出小组
// @Tags     session
// @Security BearerAuth
// @Router   /session/leave [post]
func (h *GroupHandler) Leave(c *gin.Context) {
	jti, exp := sessionToken(c)
	if err := h.groupSvc.Leave(c.Request.Context(), jti, exp); err != nil {
		fail(c, err)
		return
	}
	response.OK(c, nil)
}
