package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/wordly/internal/service"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
	contextUserIDKey   = "acting_user_id"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup 处理注册请求
func (a *API) Signup(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req, "用户名和密码不能为空") {
		return
	}

	user, err := a.users.Signup(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			respondError(c, http.StatusConflict, "用户名已被占用")
		case errors.Is(err, service.ErrUsernameInvalid):
			respondError(c, http.StatusBadRequest, "用户名长度需在 3-50 个字符之间")
		case errors.Is(err, service.ErrPasswordTooShort):
			respondError(c, http.StatusBadRequest, "密码至少需要 6 个字符")
		default:
			respondError(c, http.StatusInternalServerError, "注册失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{"id": user.ID, "username": user.Username},
	})
}

// Login 校验凭证并签发会话
func (a *API) Login(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req, "用户名和密码不能为空") {
		return
	}

	user, err := a.users.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "用户名或密码错误")
			return
		}
		respondError(c, http.StatusInternalServerError, "登录失败")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{"id": user.ID, "username": user.Username},
	})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AuthRequired 校验会话并把认证用户 ID 放进请求上下文。
// 下游 handler 只从上下文取值，不再回头读会话。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(sessionUserIDKey)
		userID, ok := raw.(uint)
		if !ok || userID == 0 {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

// currentUserID 返回认证中间件放入上下文的用户 ID。
func currentUserID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get(contextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := raw.(uint)
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}
