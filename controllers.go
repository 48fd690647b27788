package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// -----------------------------
// Helper functions
// -----------------------------

func jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"message": msg})
}

// dbError hides unexpected database failures behind a generic message;
// the real error only goes to the server log.
func dbError(c *gin.Context, err error) {
	log.Printf("unexpected error: %v", err)
	jsonError(c, http.StatusInternalServerError, "Something went wrong!")
}

// getUserIDFromContext expects AuthMiddleware to set "user_id" (uint) in context.
// If not present -> unauthorized.
func getUserIDFromContext(c *gin.Context) (uint, bool) {
	uid, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	userID, ok := uid.(uint)
	return userID, ok
}
