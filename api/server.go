/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/parts/*          Catalog and stock ledger
  /api/inventory/*      Audit trail
  /api/sales/*          Counter sales
  /api/jobs/*           Workshop jobs
  /api/reports/*        Shift closing
  /api/receipts/*       Receipt lookup
  /api/notifications/*  Notification drawer
  /api/staff/*          Accounts and technicians
  /api/summary          Dashboard aggregates
  /api/admin/*          Reset (dev only)
  /*                    Static files (frontend)

STATIC FILE SERVING:
  In production, serves the built frontend from web/dist/.
  Falls back to index.html for client-side routing.

SECURITY NOTE:
  Role gating reads the X-Staff-Role header; there is no authentication
  middleware. See handlers.go.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", headerStaffRole, headerStaffName},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Parts and stock ledger
		r.Route("/parts", func(r chi.Router) {
			r.Get("/", h.ListParts)
			r.Post("/", h.SavePart)
			r.Get("/low-stock", h.ListLowStock)
			r.Get("/{id}", h.GetPart)
			r.Delete("/{id}", h.DeletePart)
			r.Post("/{id}/adjust", h.AdjustStock)
			r.Get("/{id}/logs", h.ListPartLogs)
		})

		// Audit trail
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/logs", h.ListLogs)
		})

		// Sales
		r.Route("/sales", func(r chi.Router) {
			r.Post("/checkout", h.Checkout)
			r.Get("/", h.ListSales)
			r.Get("/{id}", h.GetSale)
		})

		// Workshop
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", h.CreateJob)
			r.Get("/", h.ListJobs)
			r.Get("/{id}", h.GetJob)
			r.Post("/{id}/status", h.AdvanceJob)
			r.Post("/{id}/complete", h.CompleteJob)
		})

		// Shift closing
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", h.ListReports)
			r.Post("/close", h.CloseDay)
		})

		// Receipts
		r.Route("/receipts", func(r chi.Router) {
			r.Get("/{id}", h.GetReceipt)
		})

		// Notification drawer
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Post("/read-all", h.MarkNotificationsRead)
			r.Delete("/{id}", h.DeleteNotification)
		})

		// Staff
		r.Route("/staff", func(r chi.Router) {
			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", h.ListAccounts)
				r.Post("/", h.CreateAccount)
				r.Delete("/{id}", h.DeleteAccount)
			})
			r.Route("/technicians", func(r chi.Router) {
				r.Get("/", h.ListTechnicians)
				r.Post("/", h.CreateTechnician)
				r.Delete("/{id}", h.DeleteTechnician)
			})
		})

		// Dashboard
		r.Get("/summary", h.GetSummary)

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Post("/reset", h.ResetData)
		})
	})

	// Serve static files (frontend build)
	// First try ./web/dist, then relative to the executable
	staticDir := "./web/dist"
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, r.URL.Path)
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Dealer Core</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Dealer Core API</h1>
<p>The frontend is not built yet. Run <code>cd web && npm install && npm run build</code></p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/parts">/api/parts</a> - Parts catalog</li>
<li><a href="/api/sales">/api/sales</a> - Open sales</li>
<li><a href="/api/jobs">/api/jobs</a> - Workshop jobs</li>
<li><a href="/api/summary">/api/summary</a> - Dashboard summary</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}
