package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/interfaces/http/dto"
)

// BaseHandler provides the shared response helpers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates the base handler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// Success writes a 200 envelope
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.Response{Success: true, Data: data})
}

// Created writes a 201 envelope
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.Response{Success: true, Data: data})
}

// Error writes the error envelope with the mapped status
func (h *BaseHandler) Error(c *gin.Context, err error) {
	status := dto.HTTPStatus(err)
	if status >= 500 {
		h.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	c.JSON(status, dto.Response{
		Success: false,
		Error:   &dto.ErrorBody{Code: dto.ErrorCode(err), Message: err.Error()},
	})
}

// pagination reads page and page_size from the query string
func pagination(c *gin.Context) shared.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return shared.Pagination{Page: page, PageSize: size}
}

// BadRequest writes a 400 envelope for binding failures
func (h *BaseHandler) BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.Response{
		Success: false,
		Error:   &dto.ErrorBody{Code: "INVALID_INPUT", Message: err.Error()},
	})
}
