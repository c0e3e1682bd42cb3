// Package handlers wires the HTTP endpoints to the publish service.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ismdrobiul489-sudo/steemit-posting/internal/logging"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/monitoring"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/publisher"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/steem"
)

var (
	logger        logging.Logger
	service       *publisher.Publisher
	healthChecker *monitoring.HealthChecker
	author        string
	keyConfigured bool
)

// Init initializes the handlers with the publish service and health checker
func Init(log logging.Logger, pub *publisher.Publisher, checker *monitoring.HealthChecker, authorAccount string, postingKeySet bool) {
	logger = log
	service = pub
	healthChecker = checker
	author = authorAccount
	keyConfigured = postingKeySet
}

// CreatePost accepts a publish request and runs it through the full pipeline.
// The response status follows the error kind: validation problems are the
// client's fault, signing problems mean the configured credential is bad, and
// everything downstream is a server-side failure.
func CreatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithFields(logging.Fields{
			"client_ip": c.ClientIP(),
			"error":     err.Error(),
		}).Warn("Rejected malformed request body")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "Request body must be valid JSON",
			ErrorKind: publisher.KindValidation,
		})
		return
	}

	if len(req.Tags) == 0 {
		req.Tags = []string{"steemit"}
	}

	beneficiaries := make([]steem.Beneficiary, len(req.Beneficiaries))
	for i, b := range req.Beneficiaries {
		beneficiaries[i] = steem.Beneficiary{Account: b.Account, Weight: b.Weight}
	}

	result := service.Publish(c.Request.Context(), publisher.Request{
		Title:         req.Title,
		Body:          req.Body,
		Tags:          req.Tags,
		Community:     req.Community,
		SelfVote:      req.SelfVote,
		Beneficiaries: beneficiaries,
	})

	if !result.Success {
		c.JSON(statusForKind(result.ErrorKind), ErrorResponse{
			Error:     result.Message,
			ErrorKind: result.ErrorKind,
		})
		return
	}

	c.JSON(http.StatusCreated, PostResponse{
		Success:  true,
		Author:   result.Author,
		Permlink: result.Permlink,
		URL:      result.URL,
		Tags:     result.Tags,
	})
}

// GetHealth reports service health plus the configured identity, so operators
// can confirm which account the instance posts as without reading env vars.
func GetHealth(c *gin.Context) {
	health := healthChecker.CheckHealth()

	statusCode := http.StatusOK
	if health.Status == monitoring.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":         health.Status,
		"service":        health.Service,
		"version":        health.Version,
		"timestamp":      health.Timestamp,
		"checks":         health.Checks,
		"author":         author,
		"key_configured": keyConfigured,
	})
}

func statusForKind(kind string) int {
	switch kind {
	case publisher.KindValidation:
		return http.StatusBadRequest
	case publisher.KindSigning:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
