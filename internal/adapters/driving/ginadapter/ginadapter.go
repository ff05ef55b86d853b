// Package ginadapter mounts generated controllers on a gin router.
package ginadapter

import (
	"net/http"
	"strings"

	"crudrouter/internal/adapters/driving/httpadapter"

	"github.com/gin-gonic/gin"
)

// Mount registers the default routes of c on group. The id comes from the :id parameter.
func Mount(group gin.IRouter, c *httpadapter.Controller) {
	for _, route := range c.Routes() {
		handlers := []gin.HandlerFunc{}

		switch route.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			handlers = append(handlers, SizeLimit(c.MaxRequestSize()))
		}
		handlers = append(handlers, Handle(route.Handler))

		group.Handle(route.Method, ginPath(route.Path), handlers...)
	}
}

// Handle adapts a controller handler to gin.
func Handle(h httpadapter.Handler) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		h(ctx.Writer, ctx.Request, ctx.Param(httpadapter.IDParam))
	}
}

func SizeLimit(maxSize int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxSize)
		ctx.Next()
	}
}

// ginPath turns chi's "/{id}" into gin's "/:id" and the root into the group itself.
func ginPath(path string) string {
	if path == "/" {
		return ""
	}
	return strings.ReplaceAll(path, "{"+httpadapter.IDParam+"}", ":"+httpadapter.IDParam)
}
