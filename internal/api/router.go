package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mbreeze/inkwell/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// dataRoot is used to resolve the attachments directory.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, sseHandler http.Handler, dataRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAttachmentHandler(dataRoot)
	em := NewEditorManager(svc, nil)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents CRUD.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)
	r.Get("/documents/{id}", h.GetDocument)
	r.Put("/documents/{id}", h.UpdateDocument)
	r.Delete("/documents/{id}", h.DeleteDocument)
	r.Get("/documents/{id}/markdown", h.ExportMarkdown)
	r.Get("/documents/{id}/stats", h.DocumentStats)

	// Editing sessions. The render host long-polls /commands and posts
	// its events back; everything else is driven by the app chrome.
	r.Route("/editor/{id}", func(r chi.Router) {
		r.Post("/open", em.Open)
		r.Get("/", em.State)
		r.Delete("/", em.Close)
		r.Get("/commands", em.NextCommand)
		r.Post("/events", em.DeliverEvent)
		r.Post("/view", em.SwitchView)
		r.Post("/edit", em.Edit)
		r.Post("/format", em.Format)
		r.Post("/insert", em.Insert)
		r.Post("/save", em.Save)
	})

	// Search and navigation.
	r.Get("/search", h.Search)
	r.Get("/recent", h.Recent)
	r.Get("/categories", h.Categories)

	// Editor settings.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.PutSettings)

	// Conversion and the terminal panel.
	r.Post("/convert", h.Convert)
	r.Post("/terminal", h.Terminal)

	// Attachments upload (auth-protected).
	r.Post("/attachments", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
