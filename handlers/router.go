package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"nationportal/config"
)

func SetupRouter(app App) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(NewStructuredLogger(app.Logger()))
	mux.Use(middleware.Recoverer)
	mux.Use(NewSecurityHeadersMiddleware(app.ImageOrigin()))

	// Static file servers
	mux.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.UploadDir()))))
	mux.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(app.StaticDir()))))
	mux.Handle("/metrics", app.Metrics().Handler())

	mux.Group(func(r chi.Router) {
		r.Use(LimitBody(config.MaxFileSize + 1<<20))
		r.Use(SessionMiddleware(app))
		r.Use(CSRFMiddleware)

		r.Get("/api/document", MakeHandler(app, HandleDocument))

		// Session actions
		r.Post("/login/citizen", MakeHandler(app, HandleCitizenLogin))
		r.Post("/login/admin", MakeHandler(app, HandleAdminLogin))
		r.Post("/logout", MakeHandler(app, HandleLogout))
		r.Post("/profile/password", MakeHandler(app, HandleChangePassword))

		// Forum actions
		r.Post("/forum/post", MakeHandler(app, HandleCreatePost))
		r.Post("/forum/delete", MakeHandler(app, HandleDeletePost))
		r.Post("/forum/report", MakeHandler(app, HandleReportPost))

		// Admin console actions
		r.Post("/admin/stats", MakeHandler(app, HandleUpdateStats))
		r.Post("/admin/military", MakeHandler(app, HandleUpdateMilitary))
		r.Post("/admin/economy", MakeHandler(app, HandleUpdateEconomy))
		r.Post("/admin/history", MakeHandler(app, HandleUpdateHistory))
		r.Post("/admin/citizens/add", MakeHandler(app, HandleAddCitizen))
		r.Post("/admin/citizens/remove", MakeHandler(app, HandleRemoveCitizen))
		r.Post("/admin/reset", MakeHandler(app, HandleFactoryReset))
		r.Post("/admin/backup", MakeHandler(app, HandleDocumentBackup))
		r.Post("/admin/emblem", MakeHandler(app, HandleEmblemUpload))

		// Page-serving router
		r.Get("/", MakeHandler(app, HandlePage))
		r.Get("/{menu}", MakeHandler(app, HandlePage))
	})

	mux.NotFound(MakeHandler(app, HandleNotFound))

	return mux
}
