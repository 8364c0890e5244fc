package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wordly/internal/service"
)

type createCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Slug        *string `json:"slug"`
}

// CreateCategory 创建新分类
func (a *API) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if !bindJSON(c, &req, "分类名称不能为空") {
		return
	}

	category, err := a.categories.Create(service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
	})
	if err != nil {
		respondCategoryMutationError(c, err, "创建分类失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "分类创建成功", "category": categoryView(*category)})
}

// UpdateCategory 部分更新分类
func (a *API) UpdateCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的分类ID")
		return
	}

	var req updateCategoryRequest
	if !bindJSON(c, &req, "请求格式不正确") {
		return
	}

	category, err := a.categories.Update(id, service.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
	})
	if err != nil {
		respondCategoryMutationError(c, err, "更新分类失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "分类更新成功", "category": categoryView(*category)})
}

// DeleteCategory 删除分类，仍被文章引用时拒绝并给出数量
func (a *API) DeleteCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的分类ID")
		return
	}

	if err := a.categories.Delete(id); err != nil {
		var inUse *service.CategoryInUseError
		switch {
		case errors.As(err, &inUse):
			respondError(c, http.StatusConflict, inUse.Error())
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, http.StatusNotFound, "分类不存在")
		default:
			respondError(c, http.StatusInternalServerError, "删除分类失败")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func respondCategoryMutationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, "分类不存在")
	case errors.Is(err, service.ErrCategorySlugExists):
		respondError(c, http.StatusConflict, "该 slug 已被其他分类使用")
	case errors.Is(err, service.ErrCategoryNameExists):
		respondError(c, http.StatusConflict, "分类名已存在")
	case errors.Is(err, service.ErrCategoryNameRequired),
		errors.Is(err, service.ErrCategoryNameTooLong):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
