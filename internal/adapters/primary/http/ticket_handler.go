package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/it-support-portal/internal/adapters/primary/validation"
	"github.com/lorrc/it-support-portal/internal/core/domain"
	"github.com/lorrc/it-support-portal/internal/core/ports"
	"github.com/lorrc/it-support-portal/internal/core/views"
	"github.com/lorrc/it-support-portal/internal/infrastructure/logging"
)

// TicketHandler serves the JSON ticket API
type TicketHandler struct {
	store        ports.TicketStore
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(store ports.TicketStore, errorHandler *ErrorHandler, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{
		store:        store,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "ticket"),
	}
}

// RegisterRoutes sets up the routing for all ticket endpoints. writeMW wraps
// only the mutating routes.
func (h *TicketHandler) RegisterRoutes(r chi.Router, writeMW ...func(http.Handler) http.Handler) {
	writes := r.With(writeMW...)

	r.Get("/", h.HandleListTickets)
	writes.Post("/", h.HandleCreateTicket)

	r.Get("/views/my-tickets", h.HandleMyTicketsView)
	r.Get("/views/dashboard", h.HandleDashboardView)

	r.Get("/{ticketID}", h.HandleGetTicket)
	writes.Patch("/{ticketID}", h.HandleUpdateTicket)
}

// --- Request DTOs ---

// CreateTicketRequest defines the expected JSON body for creating a ticket
type CreateTicketRequest struct {
	Name  string `json:"name"`
	Issue string `json:"issue"`
}

// Validate validates the create ticket request
func (r *CreateTicketRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("name", r.Name).
		Required("issue", r.Issue)

	return v.Err()
}

// UpdateTicketRequest defines the expected JSON body for triaging a ticket
type UpdateTicketRequest struct {
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// Validate validates the update request
func (r *UpdateTicketRequest) Validate() error {
	v := validation.NewValidator()

	validation.OneOf(v.Required("status", r.Status), "status", r.Status, domain.Statuses)
	validation.OneOf(v.Required("priority", r.Priority), "priority", r.Priority, domain.Priorities)

	return v.Err()
}

// --- Handlers ---

// HandleListTickets handles GET /tickets, optionally filtered by ?status=
func (h *TicketHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	tickets := h.store.All()
	var filter map[string]string

	if status := validation.QueryParam(r, "status"); status != nil {
		if err := validation.OneOf(validation.NewValidator(), "status", *status, domain.Statuses).Err(); err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}

		filtered := make([]domain.Ticket, 0, len(tickets))
		for _, t := range tickets {
			if t.Status == domain.TicketStatus(*status) {
				filtered = append(filtered, t)
			}
		}
		tickets = filtered
		filter = map[string]string{"status": *status}
	}

	WriteList(w, tickets, filter)
}

// HandleCreateTicket handles POST /tickets
func (h *TicketHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[CreateTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.store.Create(r.Context(), domain.TicketParams{
		Name:  req.Name,
		Issue: req.Issue,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteCreated(w, ticket)
}

// HandleGetTicket handles GET /tickets/{ticketID}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, err := validation.ParseID("ticketID", chi.URLParam(r, "ticketID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.store.Get(ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, ticket)
}

// HandleUpdateTicket handles PATCH /tickets/{ticketID}
func (h *TicketHandler) HandleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, err := validation.ParseID("ticketID", chi.URLParam(r, "ticketID"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	ctx := logging.WithTicketID(r.Context(), ticketID)

	req, err := validation.DecodeAndValidate[UpdateTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.store.Update(ctx, ports.UpdateTicketParams{
		TicketID: ticketID,
		Status:   domain.TicketStatus(req.Status),
		Priority: domain.TicketPriority(req.Priority),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, ticket, "Ticket updated successfully")
}

// HandleMyTicketsView handles GET /tickets/views/my-tickets
func (h *TicketHandler) HandleMyTicketsView(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, views.BuildMyTickets(h.store.All()))
}

// HandleDashboardView handles GET /tickets/views/dashboard
func (h *TicketHandler) HandleDashboardView(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, views.BuildDashboard(h.store.All()))
}
