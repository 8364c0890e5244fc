package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open 打开（必要时创建）SQLite 数据库并执行自动迁移。
// databasePath 为空时将回退到默认值 wordly.db。
// 返回的句柄由调用方注入各个 service，生命周期归进程引导代码管理。
func Open(databasePath string) (*gorm.DB, error) {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "wordly.db"
	}

	if err := ensureParentDir(path); err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}

	return gdb, nil
}

// Migrate 注册连接表并为核心模型创建表结构。
// 测试直接对内存库调用它，所以与 Open 分开。
func Migrate(gdb *gorm.DB) error {
	// 连接表使用显式模型，保证复合主键 (post_id, category_id) 和 created_at 列存在
	if err := gdb.SetupJoinTable(&Post{}, "Categories", &PostCategory{}); err != nil {
		return err
	}
	if err := gdb.SetupJoinTable(&Category{}, "Posts", &PostCategory{}); err != nil {
		return err
	}

	return gdb.AutoMigrate(
		&User{},
		&Post{},
		&Category{},
	)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
