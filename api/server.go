/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the staff app
  5. Locale:     Accept-Language for notification text

ROUTE GROUPS:
  /api/auth/*              Public (self-registration is teacher only)
  /api/live                Bearer token, header or ?token= (EventSource)
  /api/*                   Bearer token required
  admin subset             Bearer token of an ADMIN identity
  /api/scenarios/*         Demo data (only when devRoutes is set)
  /*                       Static files (staff app)

STATIC FILE SERVING:
  Serves the built web app from web/dist/ when present, falling back to
  index.html for client-side routing.

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Authenticate, RequireAdmin, Locale
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

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	// DevRoutes mounts the scenario and reset endpoints.
	DevRoutes bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))
	r.Use(h.Locale)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.With(h.AuthenticateStream).Get("/live", h.LiveStream)

		if opts.DevRoutes {
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.Post("/load", h.LoadScenario)
				r.Post("/reset", h.ResetLedger)
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticate)

			r.Get("/me", h.Me)
			r.Get("/balances", h.MyBalances)
			r.Get("/leave-types", h.ListLeaveTypes)

			// Punch routes
			r.Route("/punches", func(r chi.Router) {
				r.Post("/", h.RecordPunch)
				r.Get("/today", h.TodayPunches)
			})

			// Leave request routes
			r.Route("/leave-requests", func(r chi.Router) {
				r.Post("/", h.SubmitLeave)
				r.Get("/mine", h.MyLeaveRequests)
				r.With(RequireAdmin).Get("/", h.ListLeaveRequests)
				r.With(RequireAdmin).Post("/{id}/approve", h.ApproveRequest)
				r.With(RequireAdmin).Post("/{id}/reject", h.RejectRequest)
			})

			// Notification routes
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.ListNotifications)
				r.Delete("/", h.ClearNotifications)
				r.Post("/read-all", h.MarkAllNotificationsRead)
				r.Post("/{id}/read", h.MarkNotificationRead)
			})

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)

				r.Route("/attendance", func(r chi.Router) {
					r.Get("/daily", h.DailyView)
					r.Get("/export", h.ExportAttendance)
					r.Post("/manual", h.ManualEntry)
					r.Delete("/{id}", h.DeleteLogEntry)
				})
				r.Post("/leave-types", h.AddLeaveType)
				r.Delete("/leave-types/{id}", h.RemoveLeaveType)
				r.Route("/users", func(r chi.Router) {
					r.Get("/", h.ListUsers)
					r.Post("/", h.EnrollUser)
					r.Get("/{id}", h.GetUser)
					r.Put("/{id}", h.UpdateUser)
					r.Get("/{id}/balances", h.UserBalances)
					r.Post("/{id}/reset-device", h.ResetDevice)
				})
				r.Get("/stats", h.Dashboard)
			})
		})
	})

	// Serve static files (web app)
	staticDir := "./web/dist"
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, filepath.Clean(r.URL.Path))
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
<head><title>EduTime</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>EduTime API</h1>
<p>The staff app is not built. Sign in with <code>POST /api/auth/login</code> and call the API with the returned bearer token.</p>
<ul>
<li><code>POST /api/punches</code> - punch in or out</li>
<li><code>POST /api/leave-requests</code> - apply for leave</li>
<li><code>GET /api/attendance/daily</code> - today's attendance (admin)</li>
<li><code>GET /api/live</code> - arrivals and departures as they happen</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}
