package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wordly/internal/service"
)

type createPostRequest struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	Slug        string `json:"slug"`
	Excerpt     string `json:"excerpt"`
	Published   bool   `json:"published"`
	CategoryIDs []uint `json:"categoryIds"`
}

// updatePostRequest 全部使用指针字段，保留"未提供"与"显式清空"的区别。
// categoryIds 缺席时不动关联，携带空列表时清空关联。
type updatePostRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Slug        *string `json:"slug"`
	Excerpt     *string `json:"excerpt"`
	Published   *bool   `json:"published"`
	CategoryIDs *[]uint `json:"categoryIds"`
}

// GetAdminPosts 后台文章列表，发布状态过滤完全由查询参数决定
func (a *API) GetAdminPosts(c *gin.Context) {
	filter := service.PostFilter{
		Limit:        parseIntQuery(c, "limit", 0),
		Offset:       parseIntQuery(c, "offset", 0),
		CategorySlug: c.Query("category"),
		Search:       c.Query("search"),
		Published:    parseBoolQuery(c, "published"),
		SortBy:       c.Query("sort"),
	}

	result, err := a.posts.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取文章列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":   postViews(result.Posts),
		"total":   result.Total,
		"hasMore": result.HasMore,
	})
}

// GetMyPosts 当前用户自己的文章列表
func (a *API) GetMyPosts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	filter := service.PostFilter{
		Limit:     parseIntQuery(c, "limit", 0),
		Offset:    parseIntQuery(c, "offset", 0),
		Search:    c.Query("search"),
		Published: parseBoolQuery(c, "published"),
		SortBy:    c.Query("sort"),
	}

	result, err := a.posts.ListMine(userID, filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取文章列表失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":   postViews(result.Posts),
		"total":   result.Total,
		"hasMore": result.HasMore,
	})
}

// GetDrafts 草稿列表，按最近更新排序
func (a *API) GetDrafts(c *gin.Context) {
	drafts, err := a.posts.Drafts()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取草稿列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": postViews(drafts)})
}

// GetAdminPost 按 ID 获取单篇文章
func (a *API) GetAdminPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "文章不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取文章失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": postView(*post)})
}

// GetMyStats 当前用户的文章统计
func (a *API) GetMyStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	stats, err := a.posts.StatsFor(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取统计数据失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     stats.Total,
		"published": stats.Published,
		"drafts":    stats.Drafts,
	})
}

// CreatePost 创建新文章，作者一律取会话中的认证用户
func (a *API) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	var req createPostRequest
	if !bindJSON(c, &req, "标题和正文不能为空") {
		return
	}

	post, err := a.posts.Create(userID, service.PostInput{
		Title:       req.Title,
		Content:     req.Content,
		Slug:        req.Slug,
		Excerpt:     req.Excerpt,
		Published:   req.Published,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		respondPostMutationError(c, err, "创建文章失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "文章创建成功", "post": postView(*post)})
}

// UpdatePost 部分更新文章
func (a *API) UpdatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	var req updatePostRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	post, err := a.posts.Update(id, userID, service.PostPatch{
		Title:       req.Title,
		Content:     req.Content,
		Slug:        req.Slug,
		Excerpt:     req.Excerpt,
		Published:   req.Published,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		respondPostMutationError(c, err, "更新文章失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "文章更新成功", "post": postView(*post)})
}

// DeletePost 删除文章，连接行一并清理
func (a *API) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	if err := a.posts.Delete(id, userID); err != nil {
		respondPostMutationError(c, err, "删除文章失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// TogglePublish 翻转发布状态
func (a *API) TogglePublish(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	post, err := a.posts.TogglePublish(id, userID)
	if err != nil {
		respondPostMutationError(c, err, "切换发布状态失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": postView(*post)})
}

func respondPostMutationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		respondError(c, http.StatusNotFound, "文章不存在")
	case errors.Is(err, service.ErrNotPostOwner):
		respondError(c, http.StatusForbidden, "没有权限操作这篇文章")
	case errors.Is(err, service.ErrPostSlugExists):
		respondError(c, http.StatusConflict, "该 slug 已被其他文章使用")
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrTitleTooLong),
		errors.Is(err, service.ErrContentRequired):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
