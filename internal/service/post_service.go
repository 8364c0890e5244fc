package service

import (
	"errors"
	"strings"

	"github.com/wordly/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrPostSlugExists  = errors.New("a post with this slug already exists")
	ErrNotPostOwner    = errors.New("caller is not the owner of this post")
	ErrTitleRequired   = errors.New("post title is required")
	ErrTitleTooLong    = errors.New("post title must be at most 255 characters")
	ErrContentRequired = errors.New("post content is required")
)

// 列表分页的默认值与上限
const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// PostFilter describes filters for listing posts.
// Published 为 nil 表示不过滤发布状态，草稿与已发布都会返回。
type PostFilter struct {
	Limit        int
	Offset       int
	CategorySlug string
	Search       string
	Published    *bool
	SortBy       string // "latest"（默认）或 "oldest"
}

// PostListResult aggregates a page of posts with the pre-pagination total.
type PostListResult struct {
	Posts   []db.Post
	Total   int64
	HasMore bool
}

// PostInput represents fields accepted when creating a post.
// 所有者永远取调用方传入的认证用户 ID，不从这里读取。
type PostInput struct {
	Title       string
	Content     string
	Slug        string
	Excerpt     string
	Published   bool
	CategoryIDs []uint
}

// PostPatch 表示部分更新。指针为 nil 代表字段未提供，保持原值。
// CategoryIDs 为 nil 时不动关联；非 nil（含空切片）时整体替换连接行。
type PostPatch struct {
	Title       *string
	Content     *string
	Slug        *string
	Excerpt     *string
	Published   *bool
	CategoryIDs *[]uint
}

// PostStats 汇总文章数量统计。
type PostStats struct {
	Total     int64
	Published int64
	Drafts    int64
}

// List provides paginated posts matching the filter, with categories and
// derived fields resolved. 分类 slug 不存在时返回空结果而不是错误。
func (s *PostService) List(filter PostFilter) (*PostListResult, error) {
	limit, offset := normalizePage(filter.Limit, filter.Offset)

	categoryCond, empty, err := s.categoryCondition(filter.CategorySlug)
	if err != nil {
		return nil, err
	}
	if empty {
		return &PostListResult{Posts: []db.Post{}}, nil
	}

	result := &PostListResult{}

	countQuery := applyPostFilters(s.db.Model(&db.Post{}), filter)
	if categoryCond != nil {
		countQuery = countQuery.Where("posts.id IN (?)", categoryCond)
	}
	if err := countQuery.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	dataQuery := applyPostFilters(s.db.Model(&db.Post{}).Preload("Categories"), filter)
	if categoryCond != nil {
		dataQuery = dataQuery.Where("posts.id IN (?)", categoryCond)
	}

	var posts []db.Post
	if err := dataQuery.
		Order(postOrder(filter.SortBy)).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	for i := range posts {
		posts[i].PopulateDerivedFields()
	}

	result.Posts = posts
	result.HasMore = int64(offset+limit) < result.Total
	return result, nil
}

// ListMine 返回指定用户自己的文章分页，过滤语义与 List 相同。
func (s *PostService) ListMine(userID uint, filter PostFilter) (*PostListResult, error) {
	limit, offset := normalizePage(filter.Limit, filter.Offset)

	result := &PostListResult{}

	countQuery := applyPostFilters(s.db.Model(&db.Post{}), filter).
		Where("posts.user_id = ?", userID)
	if err := countQuery.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	var posts []db.Post
	dataQuery := applyPostFilters(s.db.Model(&db.Post{}).Preload("Categories"), filter).
		Where("posts.user_id = ?", userID)
	if err := dataQuery.
		Order(postOrder(filter.SortBy)).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	for i := range posts {
		posts[i].PopulateDerivedFields()
	}

	result.Posts = posts
	result.HasMore = int64(offset+limit) < result.Total
	return result, nil
}

// Get fetches a post by id with categories preloaded.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Categories").Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	post.PopulateDerivedFields()
	return &post, nil
}

// GetBySlug fetches a post by its slug with categories and derived fields.
func (s *PostService) GetBySlug(slug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Categories").Preload("User").
		Where("slug = ?", slug).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	post.PopulateDerivedFields()
	return &post, nil
}

// Related 返回与指定文章共享至少一个分类的已发布文章。
// 排序：共享分类数降序，其后按创建时间降序、id 降序，保证确定性。
// 源文章不存在或没有分类时返回空列表而不是错误。
func (s *PostService) Related(slug string, limit int) ([]db.Post, error) {
	if limit <= 0 {
		limit = 3
	}

	var post db.Post
	if err := s.db.Select("id").Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []db.Post{}, nil
		}
		return nil, err
	}

	var categoryIDs []uint
	if err := s.db.Model(&db.PostCategory{}).
		Where("post_id = ?", post.ID).
		Pluck("category_id", &categoryIDs).Error; err != nil {
		return nil, err
	}
	if len(categoryIDs) == 0 {
		return []db.Post{}, nil
	}

	shared := s.db.Model(&db.PostCategory{}).
		Select("post_id, COUNT(category_id) AS shared_count").
		Where("category_id IN ?", categoryIDs).
		Where("post_id <> ?", post.ID).
		Group("post_id")

	var related []db.Post
	if err := s.db.Model(&db.Post{}).
		Preload("Categories").
		Joins("JOIN (?) AS shared ON shared.post_id = posts.id", shared).
		Where("posts.published = ?", true).
		Order("shared.shared_count desc, posts.created_at desc, posts.id desc").
		Limit(limit).
		Find(&related).Error; err != nil {
		return nil, err
	}

	for i := range related {
		related[i].PopulateDerivedFields()
	}
	return related, nil
}

// Drafts 返回所有草稿，按最近更新时间排序。
func (s *PostService) Drafts() ([]db.Post, error) {
	var drafts []db.Post
	if err := s.db.Preload("Categories").
		Where("published = ?", false).
		Order("updated_at desc, id desc").
		Find(&drafts).Error; err != nil {
		return nil, err
	}
	for i := range drafts {
		drafts[i].PopulateDerivedFields()
	}
	return drafts, nil
}

// Stats 返回全站文章统计。
func (s *PostService) Stats() (*PostStats, error) {
	return s.stats(s.db.Model(&db.Post{}))
}

// StatsFor 返回指定用户的文章统计。
func (s *PostService) StatsFor(userID uint) (*PostStats, error) {
	return s.stats(s.db.Model(&db.Post{}).Where("user_id = ?", userID))
}

func (s *PostService) stats(base *gorm.DB) (*PostStats, error) {
	stats := &PostStats{}
	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("published = ?", true).Count(&stats.Published).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("published = ?", false).Count(&stats.Drafts).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// Create persists a post owned by userID and attaches categories in one
// transaction. 传入的分类 ID 不做存在性校验，交由外键约束兜底。
func (s *PostService) Create(userID uint, input PostInput) (*db.Post, error) {
	title := strings.TrimSpace(input.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrContentRequired
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = GenerateSlug(title)
	}
	if err := s.ensureSlugFree(slug, 0); err != nil {
		return nil, err
	}

	excerpt := strings.TrimSpace(input.Excerpt)
	if excerpt == "" {
		excerpt = GenerateExcerpt(input.Content)
	}

	post := db.Post{
		Title:     title,
		Content:   input.Content,
		Slug:      slug,
		Excerpt:   excerpt,
		Published: input.Published,
		UserID:    userID,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		return insertPostCategories(tx, post.ID, input.CategoryIDs)
	}); err != nil {
		return nil, err
	}

	return s.Get(post.ID)
}

// Update applies a partial update after re-verifying ownership.
func (s *PostService) Update(id, userID uint, patch PostPatch) (*db.Post, error) {
	var existing db.Post
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrNotPostOwner
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		existing.Title = title
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return nil, ErrContentRequired
		}
		existing.Content = *patch.Content
	}
	if patch.Slug != nil {
		slug := strings.TrimSpace(*patch.Slug)
		if slug != "" && slug != existing.Slug {
			if err := s.ensureSlugFree(slug, existing.ID); err != nil {
				return nil, err
			}
			existing.Slug = slug
		}
	}
	if patch.Excerpt != nil {
		existing.Excerpt = strings.TrimSpace(*patch.Excerpt)
	}
	if patch.Published != nil {
		existing.Published = *patch.Published
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		// nil 表示请求未携带 categoryIds，关联保持不变；
		// 非 nil（包括空列表）整体替换连接行
		if patch.CategoryIDs == nil {
			return nil
		}
		if err := tx.Where("post_id = ?", existing.ID).Delete(&db.PostCategory{}).Error; err != nil {
			return err
		}
		return insertPostCategories(tx, existing.ID, *patch.CategoryIDs)
	}); err != nil {
		return nil, err
	}

	return s.Get(existing.ID)
}

// Delete removes a post and its junction rows after verifying ownership.
func (s *PostService) Delete(id, userID uint) error {
	var existing db.Post
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if existing.UserID != userID {
		return ErrNotPostOwner
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", existing.ID).Delete(&db.PostCategory{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&db.Post{}, existing.ID).Error
	})
}

// TogglePublish 相对自身读取翻转发布状态。同一行的并发写入遵循
// 后写覆盖语义，未引入乐观并发控制。
func (s *PostService) TogglePublish(id, userID uint) (*db.Post, error) {
	var existing db.Post
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if existing.UserID != userID {
		return nil, ErrNotPostOwner
	}

	if err := s.db.Model(&db.Post{}).
		Where("id = ?", existing.ID).
		Update("published", !existing.Published).Error; err != nil {
		return nil, err
	}

	return s.Get(existing.ID)
}

func (s *PostService) ensureSlugFree(slug string, excludeID uint) error {
	query := s.db.Model(&db.Post{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrPostSlugExists
	}
	return nil
}

// categoryCondition 把分类 slug 解析为连接表子查询。
// slug 不存在时第二个返回值为 true，表示结果集必然为空。
func (s *PostService) categoryCondition(categorySlug string) (*gorm.DB, bool, error) {
	if categorySlug == "" {
		return nil, false, nil
	}

	var category db.Category
	if err := s.db.Where("slug = ?", categorySlug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, true, nil
		}
		return nil, false, err
	}

	sub := s.db.Model(&db.PostCategory{}).
		Select("post_id").
		Where("category_id = ?", category.ID)
	return sub, false, nil
}

func applyPostFilters(query *gorm.DB, filter PostFilter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?)", search, search)
	}
	if filter.Published != nil {
		query = query.Where("posts.published = ?", *filter.Published)
	}
	return query
}

// postOrder 带上 id 作为次级排序键，避免相同时间戳下的不确定顺序
func postOrder(sortBy string) string {
	if strings.EqualFold(sortBy, "oldest") {
		return "posts.created_at asc, posts.id asc"
	}
	return "posts.created_at desc, posts.id desc"
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func validateTitle(title string) error {
	if title == "" {
		return ErrTitleRequired
	}
	if len([]rune(title)) > 255 {
		return ErrTitleTooLong
	}
	return nil
}

func insertPostCategories(tx *gorm.DB, postID uint, categoryIDs []uint) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]db.PostCategory, 0, len(categoryIDs))
	for _, categoryID := range categoryIDs {
		rows = append(rows, db.PostCategory{PostID: postID, CategoryID: categoryID})
	}
	return tx.Create(&rows).Error
}
