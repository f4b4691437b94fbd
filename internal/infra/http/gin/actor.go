package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

// ActorHeader carries the already-authenticated caller identity. Token
// verification happens at the edge; this service trusts the resolved id.
const ActorHeader = "X-Actor-ID"

func requireActor(c *gin.Context) (string, bool) {
	actor := strings.TrimSpace(c.GetHeader(ActorHeader))
	if actor == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + ActorHeader + " header"})
		return "", false
	}
	return actor, true
}
