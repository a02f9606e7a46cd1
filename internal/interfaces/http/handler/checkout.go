package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appcheckout "github.com/portal/backend/internal/application/checkout"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/interfaces/http/dto"
)

// CheckoutHandler exposes the checkout flow over HTTP
type CheckoutHandler struct {
	BaseHandler
	orchestrator *appcheckout.OrchestratorService
	recovery     *appcheckout.RecoveryService
}

// NewCheckoutHandler creates the checkout handler
func NewCheckoutHandler(orchestrator *appcheckout.OrchestratorService, recovery *appcheckout.RecoveryService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		BaseHandler:  NewBaseHandler(logger),
		orchestrator: orchestrator,
		recovery:     recovery,
	}
}

// RegisterRoutes mounts the checkout routes
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/checkout/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSession)
		sessions.POST("/:id/cart", h.RetryCart)
		sessions.POST("/:id/addresses", h.AddAddresses)
		sessions.POST("/:id/payment", h.ProcessPayment)
		sessions.POST("/:id/recover", h.Recover)
		sessions.POST("/:id/abandon", h.Abandon)
	}
}

// CreateSession starts a session and creates the remote cart
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var input appcheckout.CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, err)
		return
	}
	if input.IdempotencyKey == "" {
		input.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	result, err := h.orchestrator.CreateSession(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// ListSessions returns the user's sessions. With resumable=true only the
// sessions recovery could act on are returned.
func (h *CheckoutHandler) ListSessions(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		h.BadRequest(c, shared.NewDomainError("INVALID_INPUT", "invalid user id"))
		return
	}

	if c.Query("resumable") == "true" {
		results, err := h.recovery.FindResumable(c.Request.Context(), userID)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.Success(c, dto.ListResponse{Items: results, Total: int64(len(results)), Page: 1, Size: len(results)})
		return
	}

	page := pagination(c)
	results, total, err := h.orchestrator.ListSessions(c.Request.Context(), userID, page)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, dto.ListResponse{Items: results, Total: total, Page: page.Page, Size: page.Limit()})
}

// GetSession returns the session state
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	id, err := h.sessionID(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}
	result, err := h.orchestrator.GetSession(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// RetryCart re-runs cart creation for a session stuck at the first step
func (h *CheckoutHandler) RetryCart(c *gin.Context) {
	id, err := h.sessionID(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}
	result, err := h.orchestrator.RetryCart(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// AddAddresses submits the buyer's addresses
func (h *CheckoutHandler) AddAddresses(c *gin.Context) {
	id, err := h.sessionID(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}
	var input appcheckout.AddAddressesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, err)
		return
	}

	result, err := h.orchestrator.AddAddresses(c.Request.Context(), id, input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// ProcessPayment finishes checkout with the widget's authorization
func (h *CheckoutHandler) ProcessPayment(c *gin.Context) {
	id, err := h.sessionID(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}
	var input appcheckout.ProcessPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, err)
		return
	}

	result, err := h.orchestrator.ProcessPayment(c.Request.Context(), id, input)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// Recover resolves where an interrupted session can resume
func (h *CheckoutHandler) Recover(c *gin.Context) {
	id, err := h.sessionID(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}
	result, err := h.recovery.Recover(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// Abandon closes a session without an order
func (h *CheckoutHandler) Abandon(c *gin.Context) {
	id, err := h.sessionID(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}
	result, err := h.orchestrator.AbandonSession(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

func (h *CheckoutHandler) sessionID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, shared.NewDomainError("INVALID_INPUT", "invalid session id")
	}
	return id, nil
}
