package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/wordly/internal/db"
)

func TestCreateCategoryHandler(t *testing.T) {
	api, gdb, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newJSONContext(t, http.MethodPost, "/admin/api/categories", map[string]any{
		"name":        "Tech Notes",
		"description": "notes",
	})
	api.CreateCategory(c)
	if w.Code != http.StatusOK {
		t.Fatalf("create failed: %d: %s", w.Code, w.Body.String())
	}

	var category db.Category
	if err := gdb.Where("slug = ?", "tech-notes").First(&category).Error; err != nil {
		t.Fatalf("created category not found: %v", err)
	}

	// 重名直接 409
	c, w = newJSONContext(t, http.MethodPost, "/admin/api/categories", map[string]any{"name": "Tech Notes"})
	api.CreateCategory(c)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
}

func TestCreateCategoryMissingName(t *testing.T) {
	api, _, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newJSONContext(t, http.MethodPost, "/admin/api/categories", map[string]any{"description": "no name"})
	api.CreateCategory(c)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestUpdateCategoryNotFound(t *testing.T) {
	api, _, cleanup := setupTestDB(t)
	defer cleanup()

	c, w := newJSONContext(t, http.MethodPut, "/admin/api/categories/42", map[string]any{"name": "Renamed"})
	c.Params = gin.Params{gin.Param{Key: "id", Value: "42"}}
	api.UpdateCategory(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestDeleteCategoryBlockedWhileReferenced(t *testing.T) {
	api, gdb, cleanup := setupTestDB(t)
	defer cleanup()

	category := db.Category{Name: "Busy", Slug: "busy"}
	if err := gdb.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	post := db.Post{Title: "P", Content: "body", Slug: "p", UserID: 1}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	if err := gdb.Create(&db.PostCategory{PostID: post.ID, CategoryID: category.ID}).Error; err != nil {
		t.Fatalf("seed junction: %v", err)
	}
	id := strconv.Itoa(int(category.ID))

	c, w := newJSONContext(t, http.MethodDelete, "/admin/api/categories/"+id, nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: id}}
	api.DeleteCategory(c)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}

	// 解除引用后可删除
	if err := gdb.Where("post_id = ?", post.ID).Delete(&db.PostCategory{}).Error; err != nil {
		t.Fatalf("clear junction: %v", err)
	}

	c, w = newJSONContext(t, http.MethodDelete, "/admin/api/categories/"+id, nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: id}}
	api.DeleteCategory(c)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 after clearing, got %d", w.Code)
	}

	c, w = newJSONContext(t, http.MethodDelete, "/admin/api/categories/"+id, nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: id}}
	api.DeleteCategory(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 on second delete, got %d", w.Code)
	}
}
