package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mindsukoon.app/companion/internal/http/middleware"
)

var _ = Describe("Middleware", func() {
	serve := func(engine *gin.Engine, headers map[string]string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w.Code
	}

	Describe("Recovery", func() {
		It("turns panics into 500s", func() {
			engine := gin.New()
			engine.Use(middleware.Recovery(), middleware.Logger())
			engine.GET("/", func(*gin.Context) { panic("boom") })

			Expect(serve(engine, nil)).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("RequireAdminKey", func() {
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }

		It("accepts the matching key", func() {
			engine := gin.New()
			engine.GET("/", middleware.RequireAdminKey("k"), ok)
			Expect(serve(engine, map[string]string{middleware.AdminKeyHeader: "k"})).To(Equal(http.StatusOK))
		})

		It("rejects a wrong key", func() {
			engine := gin.New()
			engine.GET("/", middleware.RequireAdminKey("k"), ok)
			Expect(serve(engine, map[string]string{middleware.AdminKeyHeader: "nope"})).To(Equal(http.StatusUnauthorized))
		})

		It("locks the route when no key is configured", func() {
			engine := gin.New()
			engine.GET("/", middleware.RequireAdminKey(""), ok)
			Expect(serve(engine, map[string]string{middleware.AdminKeyHeader: ""})).To(Equal(http.StatusForbidden))
		})
	})
})
