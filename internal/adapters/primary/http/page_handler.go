package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/it-support-portal/internal/adapters/primary/validation"
	"github.com/lorrc/it-support-portal/internal/core/domain"
	apperrors "github.com/lorrc/it-support-portal/internal/core/errors"
	"github.com/lorrc/it-support-portal/internal/core/pages"
	"github.com/lorrc/it-support-portal/internal/core/ports"
	"github.com/lorrc/it-support-portal/internal/infrastructure/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxFormBytes = 64 << 10

// Notices shown after a successful form submission, keyed by ?notice=.
var notices = map[string]string{
	"created": "Ticket submitted successfully!",
	"updated": "Ticket updated successfully!",
}

type navLink struct {
	Href   string
	Label  string
	Active bool
}

type formValues struct {
	Name  string
	Issue string
}

type pageData struct {
	Title  string
	Nav    []navLink
	Screen pages.Screen
	Notice string
	Alert  string
	Form   formValues
	Errors map[string][]string
}

// PageHandler renders the server-side portal: one HTML document with the
// three page sections, only the active one visible.
type PageHandler struct {
	store      ports.TicketStore
	controller *pages.Controller
	tmpl       *template.Template
	logger     *slog.Logger
}

// NewPageHandler parses the embedded templates.
func NewPageHandler(store ports.TicketStore, controller *pages.Controller, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &PageHandler{
		store:      store,
		controller: controller,
		tmpl:       tmpl,
		logger:     logger.With("handler", "page"),
	}, nil
}

// RegisterRoutes sets up the HTML routes. writeMW wraps only the form posts.
func (h *PageHandler) RegisterRoutes(r chi.Router, writeMW ...func(http.Handler) http.Handler) {
	writes := r.With(writeMW...)

	r.Get("/", h.HandleIndex)
	r.Get("/pages/{page}", h.HandleShowPage)
	writes.Post("/tickets", h.HandleSubmitTicket)
	writes.Post("/it-dashboard/tickets/{ticketID}", h.HandleUpdateTicket)
}

// HandleIndex handles GET / and shows the start page
func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithPage(r.Context(), pages.DefaultPage)
	screen := h.controller.Default(ctx)
	h.render(w, r, http.StatusOK, pageData{Screen: screen, Notice: notices[r.URL.Query().Get("notice")]})
}

// HandleShowPage handles GET /pages/{page}
func (h *PageHandler) HandleShowPage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "page")
	ctx := logging.WithPage(r.Context(), name)

	screen := h.controller.Show(ctx, name)
	status := http.StatusOK
	if !screen.Found() {
		h.logger.WarnContext(ctx, "page not found", "error", apperrors.ErrUnknownPage)
		status = http.StatusNotFound
	}

	h.render(w, r, status, pageData{Screen: screen, Notice: notices[r.URL.Query().Get("notice")]})
}

// HandleSubmitTicket handles the log-ticket form POST /tickets
func (h *PageHandler) HandleSubmitTicket(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithPage(r.Context(), pages.LogTicket)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, pages.LogTicket, "The form could not be read.")
		return
	}

	form := formValues{Name: r.PostForm.Get("name"), Issue: r.PostForm.Get("issue")}

	_, err := h.store.Create(ctx, domain.TicketParams{Name: form.Name, Issue: form.Issue})
	if err != nil {
		var verrs *apperrors.ValidationErrors
		if errors.As(err, &verrs) {
			h.render(w, r, http.StatusUnprocessableEntity, pageData{
				Screen: h.controller.Show(ctx, pages.LogTicket),
				Form:   form,
				Errors: verrs.Errors,
			})
			return
		}
		h.logger.ErrorContext(ctx, "create ticket failed", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, pages.LogTicket, "The ticket could not be saved. Please try again.")
		return
	}

	redirect(w, r, pages.MyTickets, "created")
}

// HandleUpdateTicket handles the dashboard Save form POST /it-dashboard/tickets/{ticketID}
func (h *PageHandler) HandleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithPage(r.Context(), pages.ITDashboard)

	ticketID, err := validation.ParseID("ticketID", chi.URLParam(r, "ticketID"))
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, pages.ITDashboard, "Invalid ticket ID.")
		return
	}
	ctx = logging.WithTicketID(ctx, ticketID)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, pages.ITDashboard, "The form could not be read.")
		return
	}

	_, err = h.store.Update(ctx, ports.UpdateTicketParams{
		TicketID: ticketID,
		Status:   domain.TicketStatus(r.PostForm.Get("status")),
		Priority: domain.TicketPriority(r.PostForm.Get("priority")),
	})
	switch {
	case err == nil:
		redirect(w, r, pages.ITDashboard, "updated")
	case errors.Is(err, apperrors.ErrTicketNotFound):
		h.renderError(w, r, http.StatusNotFound, pages.ITDashboard, "Ticket not found.")
	case errors.Is(err, apperrors.ErrInvalidStatus), errors.Is(err, apperrors.ErrInvalidPriority):
		h.renderError(w, r, http.StatusUnprocessableEntity, pages.ITDashboard, "Choose a valid status and priority.")
	default:
		h.logger.ErrorContext(ctx, "update ticket failed", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, pages.ITDashboard, "The ticket could not be saved. Please try again.")
	}
}

// redirect sends the browser to a page after a successful POST so a reload
// does not resubmit the form.
func redirect(w http.ResponseWriter, r *http.Request, page, notice string) {
	target := "/pages/" + page + "?" + url.Values{"notice": {notice}}.Encode()
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, status int, page, message string) {
	h.render(w, r, status, pageData{
		Screen: h.controller.Show(r.Context(), page),
		Alert:  message,
	})
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	data.Title = "IT Support Portal"
	for _, page := range h.controller.Sections() {
		data.Nav = append(data.Nav, navLink{
			Href:   "/pages/" + page,
			Label:  pages.Title(page),
			Active: data.Screen.Active == page,
		})
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "portal", data); err != nil {
		h.logger.ErrorContext(r.Context(), "render page failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
