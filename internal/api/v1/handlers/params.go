package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"interview-capture/internal/api/errors"
)

// pathID parses a positive integer path parameter
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequestError("Invalid " + name)
	}
	return id, nil
}

// pathIndex parses a non-negative integer path parameter
func pathIndex(c *gin.Context, name string) (int, error) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 0 {
		return 0, errors.NewBadRequestError("Invalid " + name)
	}
	return n, nil
}
