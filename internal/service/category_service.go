package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wordly/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategorySlugExists   = errors.New("a category with this slug already exists")
	ErrCategoryNameExists   = errors.New("a category with this name already exists")
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrCategoryNameTooLong  = errors.New("category name must be at most 100 characters")
)

// CategoryInUseError 表示分类仍被文章引用，删除被业务规则拦下。
// 携带被阻塞的文章数量，供界面给出具体原因。
type CategoryInUseError struct {
	PostCount int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category is referenced by %d post(s)", e.PostCount)
}

// CategoryService wraps category related operations.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// CategoryInput represents fields accepted when creating a category.
type CategoryInput struct {
	Name        string
	Description string
	Slug        string
}

// CategoryPatch 表示部分更新，指针为 nil 的字段保持原值。
type CategoryPatch struct {
	Name        *string
	Description *string
	Slug        *string
}

// CategoryPostsResult 聚合分类及其已发布文章的分页数据。
type CategoryPostsResult struct {
	Category db.Category
	Posts    []db.Post
	Total    int64
}

// List returns all categories ordered by name, each with its live junction
// row count. 计数不区分发布状态，沿用原有行为。
func (s *CategoryService) List() ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.Model(&db.Category{}).
		Select("categories.*, COUNT(post_categories.post_id) AS post_count").
		Joins("LEFT JOIN post_categories ON post_categories.category_id = categories.id").
		Group("categories.id").
		Order("categories.name asc").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Popular 返回按已发布文章数降序排列的分类。
func (s *CategoryService) Popular(limit int) ([]db.Category, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 20 {
		limit = 20
	}

	var categories []db.Category
	if err := s.db.Model(&db.Category{}).
		Select("categories.*, COUNT(posts.id) AS post_count").
		Joins("LEFT JOIN post_categories ON post_categories.category_id = categories.id").
		Joins("LEFT JOIN posts ON posts.id = post_categories.post_id AND posts.published = ?", true).
		Group("categories.id").
		Order("post_count desc").
		Order("categories.name asc").
		Limit(limit).
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetBySlug fetches a single category by its slug.
func (s *CategoryService) GetBySlug(slug string) (*db.Category, error) {
	var category db.Category
	if err := s.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetWithPosts 返回分类及其已发布文章的分页。分类不存在报错，
// 没有文章时 Total 为 0 而不是错误。
func (s *CategoryService) GetWithPosts(slug string, limit, offset int) (*CategoryPostsResult, error) {
	category, err := s.GetBySlug(slug)
	if err != nil {
		return nil, err
	}

	limit, offset = normalizePage(limit, offset)
	result := &CategoryPostsResult{Category: *category}

	memberCond := s.db.Model(&db.PostCategory{}).
		Select("post_id").
		Where("category_id = ?", category.ID)

	if err := s.db.Model(&db.Post{}).
		Where("posts.id IN (?)", memberCond).
		Where("posts.published = ?", true).
		Count(&result.Total).Error; err != nil {
		return nil, err
	}

	var posts []db.Post
	if err := s.db.Model(&db.Post{}).
		Preload("Categories").
		Where("posts.id IN (?)", memberCond).
		Where("posts.published = ?", true).
		Order("posts.created_at desc, posts.id desc").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	for i := range posts {
		posts[i].PopulateDerivedFields()
	}

	result.Posts = posts
	return result, nil
}

// Count 返回分类总数。
func (s *CategoryService) Count() (int64, error) {
	var total int64
	if err := s.db.Model(&db.Category{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Create inserts a new category, deriving the slug from the name when absent.
func (s *CategoryService) Create(input CategoryInput) (*db.Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = GenerateSlug(name)
	}

	if err := s.ensureNameFree(name, 0); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(slug, 0); err != nil {
		return nil, err
	}

	category := db.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Update applies a partial update while keeping name and slug unique.
func (s *CategoryService) Update(id uint, patch CategoryPatch) (*db.Category, error) {
	var category db.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateCategoryName(name); err != nil {
			return nil, err
		}
		if err := s.ensureNameFree(name, category.ID); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if patch.Slug != nil {
		slug := strings.TrimSpace(*patch.Slug)
		if slug != "" && slug != category.Slug {
			if err := s.ensureSlugFree(slug, category.ID); err != nil {
				return nil, err
			}
			category.Slug = slug
		}
	}
	if patch.Description != nil {
		category.Description = strings.TrimSpace(*patch.Description)
	}

	if err := s.db.Save(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category unless posts still reference it. 引用检查在
// 删除前显式执行，不依赖外键报错，好让界面拿到可读的原因。
func (s *CategoryService) Delete(id uint) error {
	var category db.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	var referencing int64
	if err := s.db.Model(&db.PostCategory{}).
		Where("category_id = ?", category.ID).
		Count(&referencing).Error; err != nil {
		return err
	}
	if referencing > 0 {
		return &CategoryInUseError{PostCount: referencing}
	}

	return s.db.Unscoped().Delete(&db.Category{}, category.ID).Error
}

func (s *CategoryService) ensureSlugFree(slug string, excludeID uint) error {
	query := s.db.Model(&db.Category{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategorySlugExists
	}
	return nil
}

func (s *CategoryService) ensureNameFree(name string, excludeID uint) error {
	query := s.db.Model(&db.Category{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryNameExists
	}
	return nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return ErrCategoryNameRequired
	}
	if len([]rune(name)) > 100 {
		return ErrCategoryNameTooLong
	}
	return nil
}
