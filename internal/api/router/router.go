package router

import (
	"github.com/wb-go/wbf/ginext"

	"image-resizer/internal/api/handlers/task"
	"image-resizer/internal/middleware"
)

func Setup(h *task.Handler) *ginext.Engine {
	r := ginext.New()

	r.Use(middleware.CORSMiddleware())
	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	api := r.Group("/api")

	api.POST("/tasks", h.Create)    // submitting a source image
	api.GET("/tasks/:id", h.Get)    // polling task status

	return r
}
