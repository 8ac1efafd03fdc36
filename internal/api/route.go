package api

import (
	"Agora/internal/api/middleware"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware("/metrics", "/healthz"))
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		feedGroup := apiGroup.Group("/feed")
		{
			authOptGroup := feedGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("/discover", group.FeedHandler.GetDiscoverFeed)
				authOptGroup.GET("/recommend", group.FeedHandler.GetRecommendations)
			}

			authGroup := feedGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.GET("/following", group.FeedHandler.GetFollowingFeed)
			}
		}

		postGroup := apiGroup.Group("/posts")
		postGroup.Use(middleware.AuthOptionalMiddleware())
		{
			postGroup.GET("/detail/:post_id", group.PostActionHandler.GetPostDetail)
			postGroup.GET("/comments/:post_id", group.PostActionHandler.GetComments)
		}

		postActionGroup := apiGroup.Group("/post/action")
		postActionGroup.Use(middleware.AuthMiddleware())
		{
			postActionGroup.POST("/likes/:post_id", group.PostActionHandler.LikePost)
			postActionGroup.POST("/collects/:post_id", group.PostActionHandler.CollectPost)
			postActionGroup.POST("/comments", group.PostActionHandler.CreateComment)
			postActionGroup.DELETE("/comments/:comment_id", group.PostActionHandler.DeleteComment)
			postActionGroup.GET("/quota", group.PostActionHandler.GetQuota)
		}

		relationGroup := apiGroup.Group("/relation")
		relationGroup.Use(middleware.AuthMiddleware())
		{
			relationGroup.POST("/follow/:user_id", group.RelationHandler.FollowUser)
			relationGroup.POST("/category/:category_id", group.RelationHandler.FollowCategory)
			relationGroup.POST("/block/:user_id", group.RelationHandler.BlockUser)
			relationGroup.POST("/hide", group.RelationHandler.HidePost)
		}

		moderationGroup := apiGroup.Group("/moderation")
		moderationGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles(consts.RoleModerator, consts.RoleAdmin))
		{
			moderationGroup.POST("", group.ModerationHandler.Moderate)
		}

		// 未配置 Mongo 时不提供通知箱
		if group.SysBoxHandler != nil {
			sysbox := apiGroup.Group("/sysbox")
			sysbox.Use(middleware.AuthMiddleware())
			{
				sysbox.GET("/list", group.SysBoxHandler.GetNotificationList)
				sysbox.GET("/unread", group.SysBoxHandler.GetUnreadCount)
				sysbox.POST("/read", group.SysBoxHandler.MarkRead)
				sysbox.POST("/read/all", group.SysBoxHandler.MarkAllRead)
			}
		}
	}

	return r
}
