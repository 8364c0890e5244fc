package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/wordly/internal/db"
)

// postView 把文章模型整理成响应格式，分类与派生字段一并带出。
func postView(post db.Post) gin.H {
	return gin.H{
		"id":          post.ID,
		"title":       post.Title,
		"content":     post.Content,
		"slug":        post.Slug,
		"excerpt":     post.Excerpt,
		"published":   post.Published,
		"userId":      post.UserID,
		"createdAt":   post.CreatedAt,
		"updatedAt":   post.UpdatedAt,
		"wordCount":   post.WordCount,
		"readingTime": post.ReadingTime,
		"categories":  categoryViews(post.Categories),
	}
}

func postViews(posts []db.Post) []gin.H {
	views := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		views = append(views, postView(post))
	}
	return views
}

func categoryView(category db.Category) gin.H {
	return gin.H{
		"id":          category.ID,
		"name":        category.Name,
		"slug":        category.Slug,
		"description": category.Description,
		"postCount":   category.PostCount,
		"createdAt":   category.CreatedAt,
	}
}

func categoryViews(categories []db.Category) []gin.H {
	views := make([]gin.H, 0, len(categories))
	for _, category := range categories {
		views = append(views, categoryView(category))
	}
	return views
}
