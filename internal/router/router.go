package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/wordly/internal/config"
	"github.com/wordly/internal/handler"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎和路由。数据库句柄由调用方注入。
func SetupRouter(gdb *gorm.DB, cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 会话中间件，cookie 存储。必须显式设置 cookie 选项：
	// 底层存储的默认值是 Secure + SameSite=None，纯 HTTP 部署下
	// 浏览器不会回传会话 cookie，登录态等于没有
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("wordly_session", store))

	api := handler.NewAPI(gdb, cfg.UploadDir, cfg.UploadURLPath)

	// 上传文件静态服务
	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// 公开接口
	public := r.Group("/api")
	{
		public.GET("/posts", api.GetPublicPosts)
		public.GET("/posts/:slug", api.GetPostBySlug)
		public.GET("/posts/:slug/related", api.GetRelatedPosts)

		public.GET("/categories", api.GetCategories)
		public.GET("/categories/popular", api.GetPopularCategories)
		public.GET("/categories/:slug", api.GetCategory)
		public.GET("/categories/:slug/posts", api.GetCategoryPosts)

		public.GET("/stats", api.GetStats)

		public.POST("/auth/signup", api.Signup)
		public.POST("/auth/login", api.Login)
		public.POST("/auth/logout", api.Logout)
	}

	// 需要认证的后台接口。分类的写操作同样放在这里：
	// 写接口一律要求登录，不保留公开写入面
	admin := r.Group("/admin/api")
	admin.Use(handler.AuthRequired())
	{
		admin.GET("/posts", api.GetAdminPosts)
		admin.GET("/posts/mine", api.GetMyPosts)
		admin.GET("/posts/drafts", api.GetDrafts)
		admin.GET("/posts/:id", api.GetAdminPost)
		admin.POST("/posts", api.CreatePost)
		admin.PUT("/posts/:id", api.UpdatePost)
		admin.DELETE("/posts/:id", api.DeletePost)
		admin.POST("/posts/:id/publish", api.TogglePublish)

		admin.POST("/categories", api.CreateCategory)
		admin.PUT("/categories/:id", api.UpdateCategory)
		admin.DELETE("/categories/:id", api.DeleteCategory)

		admin.GET("/stats", api.GetMyStats)
		admin.POST("/preview", api.PreviewMarkdown)
		admin.POST("/uploads", api.UploadImage)
	}

	return r
}
