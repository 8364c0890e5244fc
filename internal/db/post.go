package db

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// 阅读速度按每分钟 200 词估算
const wordsPerMinute = 200

// Post 定义了文章模型。Slug 全局唯一，WordCount/ReadingTime 为读取时计算的派生字段。
type Post struct {
	gorm.Model
	Title       string     `gorm:"size:255;not null"`
	Content     string     `gorm:"not null"`
	Slug        string     `gorm:"size:255;uniqueIndex;not null"`
	Excerpt     string
	Published   bool       `gorm:"default:false;index"`
	UserID      uint       `gorm:"index;not null"`
	User        User
	Categories  []Category `gorm:"many2many:post_categories;"`
	WordCount   int        `gorm:"-"`
	ReadingTime int        `gorm:"-"`
}

// PostCategory 是文章与分类的连接表，复合主键保证同一组合至多一行。
// 两侧任意一方删除时，连接行由删除事务一并清理。
type PostCategory struct {
	PostID     uint `gorm:"primaryKey"`
	CategoryID uint `gorm:"primaryKey"`
	CreatedAt  time.Time
}

// PopulateDerivedFields 计算正文的词数和预计阅读时长。
func (p *Post) PopulateDerivedFields() {
	p.WordCount = CountWords(p.Content)
	p.ReadingTime = EstimateReadingTime(p.Content)
}

// CountWords 返回按空白切分后的词数。
func CountWords(content string) int {
	return len(strings.Fields(content))
}

// EstimateReadingTime 返回按 200 wpm 向上取整的阅读分钟数。
func EstimateReadingTime(content string) int {
	words := CountWords(content)
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
