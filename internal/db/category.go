package db

import "gorm.io/gorm"

// Category 定义了分类模型。Name 与 Slug 均全局唯一。
// PostCount 由列表查询聚合填充，不落库。
type Category struct {
	gorm.Model
	Name        string `gorm:"size:100;uniqueIndex;not null"`
	Slug        string `gorm:"size:100;uniqueIndex;not null"`
	Description string
	Posts       []Post `gorm:"many2many:post_categories;"`
	PostCount   int64  `gorm:"->;-:migration"`
}
