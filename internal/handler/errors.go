package handler

import (
	"errors"
	"log"
	"net/http"

	"food_marketplace/internal/apiclient"

	"github.com/gin-gonic/gin"
)

// backendStatus maps a backend call error to the status the screen answers with.
// Client errors of the backend pass through; anything else is a bad gateway.
func backendStatus(err error) int {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondFailure(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func respondBackendError(c *gin.Context, action string, err error) {
	status := backendStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Error %s: %v", action, err)
	}
	respondFailure(c, status, apiclient.Message(err))
}
