package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/wordly/internal/config"
	"github.com/wordly/internal/db"
	"github.com/wordly/internal/router"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库，句柄在这里构造并注入，由 main 负责关闭
	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	// 可选的引导管理员账号
	if err := db.EnsureUser(gdb, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	r := router.SetupRouter(gdb, cfg)
	log.Printf("wordly listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
