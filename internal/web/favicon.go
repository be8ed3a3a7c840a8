// internal/web/favicon.go
package web

import (
    "net/http"

    "github.com/gin-gonic/gin"
)

// The service's own icon: a magnifying glass over a square tile.
const faviconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 32 32" width="32" height="32">
  <rect x="1" y="1" width="30" height="30" rx="6" fill="#0f766e"/>
  <rect x="6" y="6" width="12" height="12" rx="2" fill="#ccfbf1"/>
  <circle cx="17" cy="17" r="7" fill="none" stroke="#ffffff" stroke-width="3"/>
  <line x1="22" y1="22" x2="27" y2="27" stroke="#ffffff" stroke-width="3" stroke-linecap="round"/>
</svg>`

func (s *Server) serveFavicon(c *gin.Context) {
    c.Header("Cache-Control", "public, max-age=86400")
    c.Data(http.StatusOK, "image/svg+xml", []byte(faviconSVG))
}
