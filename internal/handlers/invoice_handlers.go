package handlers

import (
	"errors"
	"net/http"

	"github.com/dillendillen/doya.app-sub001/internal/services"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// InvoiceHandler exposes read access to invoices. Invoices are written only
// as side effects of package purchases and payments, so there are no
// create/update endpoints here.
type InvoiceHandler struct {
	paymentService services.PaymentService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(ps services.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{paymentService: ps}
}

// GetInvoices handles GET /invoices. Requires a clientId filter.
func (h *InvoiceHandler) GetInvoices(c *gin.Context) {
	clientID, ok := queryInt64(c, "clientId")
	if !ok {
		return
	}
	if clientID == nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "clientId query parameter is required.", "missing clientId"))
		return
	}

	invoices, err := h.paymentService.GetInvoicesByClient(*clientID)
	if err != nil {
		utils.LogError(err, "GetInvoices: Error from paymentService.GetInvoicesByClient")
		respondServiceError(c, err, "Failed to fetch invoices.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

// GetPendingInvoices handles GET /invoices/pending across all clients.
func (h *InvoiceHandler) GetPendingInvoices(c *gin.Context) {
	invoices, err := h.paymentService.GetPendingInvoices()
	if err != nil {
		utils.LogError(err, "GetPendingInvoices: Error from paymentService.GetPendingInvoices")
		respondServiceError(c, err, "Failed to fetch pending invoices.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

// GetInvoiceByID handles GET /invoices/:id.
func (h *InvoiceHandler) GetInvoiceByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.paymentService.GetInvoiceByID(id)
	if err != nil {
		utils.LogError(err, "GetInvoiceByID: Error from paymentService.GetInvoiceByID")
		if errors.Is(err, services.ErrInvoiceNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Invoice not found.", err.Error()))
		} else {
			respondServiceError(c, err, "Failed to fetch invoice.")
		}
		return
	}
	c.JSON(http.StatusOK, invoice)
}
