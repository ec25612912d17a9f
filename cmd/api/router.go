package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-hub-api/internal/handler"
	"github.com/noah-isme/campus-hub-api/internal/middleware"
	"github.com/noah-isme/campus-hub-api/internal/service"
	"github.com/noah-isme/campus-hub-api/pkg/config"
	"github.com/noah-isme/campus-hub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-hub-api/pkg/middleware/cors"
	"github.com/noah-isme/campus-hub-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/campus-hub-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	board      *handler.BoardHandler
	attendance *handler.AttendanceHandler
	lectures   *handler.LectureHandler
	chat       *handler.ChatHandler
	dashboard  *handler.DashboardHandler
	session    *handler.SessionHandler
	reports    *handler.ReportHandler
	metrics    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, sessionSvc *service.SessionService, h routeHandlers) *gin.Engine {
	devMode := cfg.Env != config.EnvProduction

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)
	if devMode {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(ratelimit.New(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst).Middleware())
	api.Use(middleware.WithResponseMeta())

	if devMode {
		api.PUT("/session", h.session.Store)
		api.DELETE("/session", h.session.Clear)
	}
	if h.reports != nil {
		api.GET("/attendance/reports/download/:token", h.reports.Download)
	}

	authed := api.Group("")
	authed.Use(middleware.Session(sessionSvc, devMode))

	authed.GET("/session", h.session.Current)
	authed.GET("/feed", h.board.Feed)
	authed.GET("/dashboard", h.dashboard.Summary)
	authed.GET("/alerts", h.board.Alerts)

	authed.POST("/posts", h.board.CreatePost)
	authed.DELETE("/posts/:type/:id", h.board.DeletePost)
	authed.POST("/posts/:type/:id/likes", h.board.Like)
	authed.POST("/posts/:type/:id/comments", h.board.AddComment)
	authed.POST("/posts/:type/:id/alert", h.board.ToggleHighAlert)
	authed.POST("/posts/:type/:id/report", h.board.ReportPost)

	authed.GET("/lectures", h.lectures.List)
	authed.POST("/lectures", h.lectures.Add)

	authed.GET("/attendance", h.attendance.Data)
	authed.GET("/attendance/percent", h.attendance.Percent)
	authed.POST("/attendance", h.attendance.Record)
	authed.POST("/attendance/topics", middleware.RequirePrivileged(), h.attendance.OpenTopic)

	if h.reports != nil {
		privileged := authed.Group("/attendance/reports")
		privileged.Use(middleware.RequirePrivileged())
		privileged.POST("", h.reports.Create)
		privileged.GET("/:id", h.reports.Status)
	}

	authed.GET("/doubts", h.chat.List)
	authed.POST("/doubts", h.chat.Ask)
	authed.POST("/doubts/:id/answers", h.chat.Answer)

	return r
}
