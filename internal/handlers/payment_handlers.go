package handlers

import (
	"errors"
	"net/http"

	"github.com/dillendillen/doya.app-sub001/internal/services"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PaymentHandler holds the payment service.
type PaymentHandler struct {
	paymentService services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ps services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

// RecordPayment handles POST /payments. With an invoice_id it settles that
// invoice; without one it records a standalone receipt.
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req services.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "RecordPayment: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	payment, err := h.paymentService.RecordPayment(req, actorID(c))
	if err != nil {
		utils.LogError(err, "RecordPayment: Error from paymentService.RecordPayment")
		if errors.Is(err, services.ErrInvoiceNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Invoice not found.", err.Error()))
		} else if errors.Is(err, services.ErrInvoiceClientMismatch) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Invoice belongs to a different client.", err.Error()))
		} else if errors.Is(err, services.ErrPaymentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondServiceError(c, err, "Failed to record payment.")
		}
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// GetPayments handles GET /payments with an optional clientId filter.
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	clientID, ok := queryInt64(c, "clientId")
	if !ok {
		return
	}

	payments, err := h.paymentService.GetPayments(clientID)
	if err != nil {
		utils.LogError(err, "GetPayments: Error from paymentService.GetPayments")
		respondServiceError(c, err, "Failed to fetch payments.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": payments})
}

// GetPaymentByID handles GET /payments/:id.
func (h *PaymentHandler) GetPaymentByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPaymentByID(id)
	if err != nil {
		utils.LogError(err, "GetPaymentByID: Error from paymentService.GetPaymentByID")
		if errors.Is(err, services.ErrPaymentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Payment not found.", err.Error()))
		} else {
			respondServiceError(c, err, "Failed to fetch payment.")
		}
		return
	}
	c.JSON(http.StatusOK, payment)
}

// UpdatePayment handles PATCH /payments/:id. Only the receipt itself is
// corrected; the linked invoice is never re-settled.
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdatePayment: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	payment, err := h.paymentService.UpdatePayment(id, req, actorID(c))
	if err != nil {
		utils.LogError(err, "UpdatePayment: Error from paymentService.UpdatePayment")
		if errors.Is(err, services.ErrPaymentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Payment not found to update.", err.Error()))
		} else if errors.Is(err, services.ErrPaymentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondServiceError(c, err, "Failed to update payment.")
		}
		return
	}
	c.JSON(http.StatusOK, payment)
}

// DeletePayment handles DELETE /payments/:id.
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.paymentService.DeletePayment(id, actorID(c)); err != nil {
		utils.LogError(err, "DeletePayment: Error from paymentService.DeletePayment")
		if errors.Is(err, services.ErrPaymentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Payment not found to delete.", err.Error()))
		} else {
			respondServiceError(c, err, "Failed to delete payment.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted successfully"})
}
