package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dillendillen/doya.app-sub001/internal/services"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ClientHandler holds the client service.
type ClientHandler struct {
	clientService services.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(cs services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: cs}
}

func (h *ClientHandler) respondClientError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrClientNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
	case errors.Is(err, services.ErrNoteNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Note not found.", err.Error()))
	case errors.Is(err, services.ErrClientDuplicate):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Client with this email already exists.", err.Error()))
	case errors.Is(err, services.ErrClientValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		respondServiceError(c, err, fallback)
	}
}

// CreateClient handles POST /clients.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req services.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateClient: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	client, err := h.clientService.CreateClient(req, actorID(c))
	if err != nil {
		utils.LogError(err, "CreateClient: Error from clientService.CreateClient")
		h.respondClientError(c, err, "Failed to create client.")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClients handles GET /clients with pagination and name/email search.
func (h *ClientHandler) GetClients(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	var searchTerm *string
	if search := c.Query("search"); search != "" {
		searchTerm = &search
	}

	result, err := h.clientService.GetClients(page, pageSize, searchTerm)
	if err != nil {
		utils.LogError(err, "GetClients: Error from clientService.GetClients")
		h.respondClientError(c, err, "Failed to fetch clients.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetClientByID handles GET /clients/:id.
func (h *ClientHandler) GetClientByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	client, err := h.clientService.GetClientByID(id)
	if err != nil {
		utils.LogError(err, "GetClientByID: Error from clientService.GetClientByID")
		h.respondClientError(c, err, "Failed to fetch client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClient handles PATCH /clients/:id.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateClient: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	client, err := h.clientService.UpdateClient(id, req, actorID(c))
	if err != nil {
		utils.LogError(err, "UpdateClient: Error from clientService.UpdateClient")
		h.respondClientError(c, err, "Failed to update client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient handles DELETE /clients/:id.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.clientService.DeleteClient(id, actorID(c)); err != nil {
		utils.LogError(err, "DeleteClient: Error from clientService.DeleteClient")
		h.respondClientError(c, err, "Failed to delete client.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}

// AddNote handles POST /clients/:id/notes.
func (h *ClientHandler) AddNote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AddNote: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	note, err := h.clientService.AddNote(id, req, actorID(c))
	if err != nil {
		utils.LogError(err, "AddNote: Error from clientService.AddNote")
		h.respondClientError(c, err, "Failed to add note.")
		return
	}
	c.JSON(http.StatusCreated, note)
}

// GetNotes handles GET /clients/:id/notes.
func (h *ClientHandler) GetNotes(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	notes, err := h.clientService.GetNotes(id)
	if err != nil {
		utils.LogError(err, "GetNotes: Error from clientService.GetNotes")
		h.respondClientError(c, err, "Failed to fetch notes.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notes})
}

// DeleteNote handles DELETE /clients/:id/notes/:noteId.
func (h *ClientHandler) DeleteNote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	noteID, ok := parseIDParam(c, "noteId")
	if !ok {
		return
	}

	if err := h.clientService.DeleteNote(id, noteID, actorID(c)); err != nil {
		utils.LogError(err, "DeleteNote: Error from clientService.DeleteNote")
		h.respondClientError(c, err, "Failed to delete note.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}
