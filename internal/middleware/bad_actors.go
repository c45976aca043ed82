package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Paths probed by scanners; none of them exist here, so drop the requests
// before they reach the router.
var badPaths = []string{
	".env", "php", "mysql", "cgi-bin", "wp-login.php", "wp-admin",
	"xmlrpc.php", "config.php", "passwd", "shadow", "backup",
	"bin/bash", "bin/sh", "cmd.exe", "powershell", "shell", "exec",
	"actuator", "geoserver", "luci", "manager/html", "web-console",
	"login.do", "favicon.ico", "tomcat", "bconsole",
}

func BlockBadActorsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestPath := c.Request.URL.Path

		for _, path := range badPaths {
			if strings.Contains(requestPath, path) {
				c.JSON(403, gin.H{"error": "Forbidden"})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
