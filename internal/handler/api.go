package handler

import (
	"github.com/wordly/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	posts      *service.PostService
	categories *service.CategoryService
	users      *service.UserService
	uploadDir  string
	uploadURL  string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, uploadDir, uploadURL string) *API {
	return &API{
		db:         gdb,
		posts:      service.NewPostService(gdb),
		categories: service.NewCategoryService(gdb),
		users:      service.NewUserService(gdb),
		uploadDir:  uploadDir,
		uploadURL:  uploadURL,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
