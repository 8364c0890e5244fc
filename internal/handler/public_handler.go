package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/wordly/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// renderMarkdown 把 Markdown 渲染为净化后的 HTML。
func renderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return sanitizer.Sanitize(buf.String()), nil
}

// GetPublicPosts 公开文章列表。发布状态在这里固定为已发布，
// 不依赖查询引擎兜底——这是公开调用方的责任所在。
func (a *API) GetPublicPosts(c *gin.Context) {
	published := true
	filter := service.PostFilter{
		Limit:        parseIntQuery(c, "limit", 0),
		Offset:       parseIntQuery(c, "offset", 0),
		CategorySlug: c.Query("category"),
		Search:       c.Query("search"),
		Published:    &published,
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

// GetPostBySlug 公开文章详情，附带净化后的 HTML 正文
func (a *API) GetPostBySlug(c *gin.Context) {
	post, err := a.posts.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "文章不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取文章失败")
		return
	}

	contentHTML, err := renderMarkdown(post.Content)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "渲染正文失败")
		return
	}

	view := postView(*post)
	view["contentHtml"] = contentHTML
	c.JSON(http.StatusOK, gin.H{"post": view})
}

// GetRelatedPosts 相关文章：共享分类的已发布文章
func (a *API) GetRelatedPosts(c *gin.Context) {
	related, err := a.posts.Related(c.Param("slug"), parseIntQuery(c, "limit", 3))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取相关文章失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": postViews(related)})
}

// GetCategories 全部分类，按名称排序并附带文章计数
func (a *API) GetCategories(c *gin.Context) {
	categories, err := a.categories.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取分类列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categoryViews(categories)})
}

// GetPopularCategories 按已发布文章数排序的分类
func (a *API) GetPopularCategories(c *gin.Context) {
	categories, err := a.categories.Popular(parseIntQuery(c, "limit", 5))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取分类列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categoryViews(categories)})
}

// GetCategory 按 slug 获取单个分类
func (a *API) GetCategory(c *gin.Context) {
	category, err := a.categories.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, "分类不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取分类失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": categoryView(*category)})
}

// GetCategoryPosts 分类下的已发布文章分页
func (a *API) GetCategoryPosts(c *gin.Context) {
	result, err := a.categories.GetWithPosts(
		c.Param("slug"),
		parseIntQuery(c, "limit", 0),
		parseIntQuery(c, "offset", 0),
	)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, "分类不存在")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取分类文章失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": categoryView(result.Category),
		"posts":    postViews(result.Posts),
		"total":    result.Total,
	})
}

// GetStats 全站统计：文章计数加上分类总数
func (a *API) GetStats(c *gin.Context) {
	stats, err := a.posts.Stats()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取统计数据失败")
		return
	}
	categoryTotal, err := a.categories.Count()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取统计数据失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":      stats.Total,
		"published":  stats.Published,
		"drafts":     stats.Drafts,
		"categories": categoryTotal,
	})
}

type previewRequest struct {
	Content string `json:"content"`
}

// PreviewMarkdown 编辑器实时预览：Markdown 进，净化后的 HTML 出
func (a *API) PreviewMarkdown(c *gin.Context) {
	var req previewRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	contentHTML, err := renderMarkdown(req.Content)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "渲染正文失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"html": contentHTML})
}
