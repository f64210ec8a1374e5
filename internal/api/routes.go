package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/autoload-next-post/infrastructure/jwt"
	"github.com/jonesrussell/autoload-next-post/internal/ajax"
	"github.com/jonesrussell/autoload-next-post/internal/handler"
)

// Routes bundles the handlers mounted by SetupRoutes.
type Routes struct {
	Ajax      *ajax.Dispatcher
	Notice    *handler.NoticeHandler
	Detect    *handler.DetectHandler
	Metrics   http.Handler
	JWTSecret string
}

// SetupRoutes configures all service routes.
// Health routes are registered by the infrastructure gin builder.
func SetupRoutes(router *gin.Engine, r Routes) {
	if r.Metrics != nil {
		router.GET("/metrics", gin.WrapH(r.Metrics))
	}

	// admin-ajax resolves the caller context from an optional token
	adminAjax := router.Group("")
	adminAjax.Use(jwt.OptionalMiddleware(r.JWTSecret))
	r.Ajax.Register(adminAjax)

	router.GET("/wp-admin/notices", r.Notice.HandleNotice)

	v1 := router.Group("/api/v1")
	if r.JWTSecret != "" {
		v1.Use(jwt.Middleware(r.JWTSecret))
	}
	v1.POST("/selectors/detect", r.Detect.HandleDetect)
}
