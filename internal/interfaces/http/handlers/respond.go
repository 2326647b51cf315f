package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/store-backend/internal/pkg/apperror"
)

// respondError writes the mapped error and attaches the cause for the access log
func respondError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	_ = c.Error(err)
	c.JSON(httpErr.Status, gin.H{
		"error": httpErr.Message,
		"code":  httpErr.Code,
	})
}

func parseID(c *gin.Context, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, apperror.Newf(apperror.KindInvalidInput, "Invalid %s ID", what))
		return 0, false
	}
	return uint(id), true
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"code":    string(apperror.KindInvalidInput),
		"details": err.Error(),
	})
}
