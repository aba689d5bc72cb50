package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/panelmgmt/pms-core/internal/dto"
	"github.com/panelmgmt/pms-core/internal/service"
	"github.com/rs/zerolog/log"
)

// WriteError maps service sentinels onto HTTP statuses and writes the
// structured error payload. Unrecognized errors become opaque 500s so
// internals never leak to clients.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrDeadlineExceeded):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrInsufficientPool):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrUpstream):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Message: "Upstream dependency failed"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled service error")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
	}
}

// WriteBindError reports a malformed or invalid request body.
func WriteBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
}
