package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

// originAllowed accepts requests without an Origin, any localhost origin, and
// origins containing one of the configured entries. An empty list turns the
// check off.
func originAllowed(origins []string) func(r *http.Request, origin string) bool {
	return func(_ *http.Request, origin string) bool {
		if origin == "" || len(origins) == 0 {
			return true
		}
		if u, err := url.Parse(origin); err == nil && u.Hostname() == "localhost" {
			return true
		}
		for _, o := range origins {
			if o != "" && strings.Contains(origin, o) {
				return true
			}
		}
		return false
	}
}

// corsMiddleware runs go-chi/cors in front of the gin chain. Preflight
// requests are answered by cors and stop there.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cc := cors.New(cors.Options{
		AllowOriginFunc:  originAllowed(origins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{headerSnapshotStale},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return func(c *gin.Context) {
		passed := false
		cc.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}
