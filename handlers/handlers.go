// nationportal/handlers/handlers.go

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nationportal/config"
	"nationportal/metrics"
	"nationportal/models"
	"nationportal/session"
	"nationportal/views"
)

// App is an interface that defines the dependencies our handlers need.
type App interface {
	Sessions() *session.Manager
	RateLimiter() *models.RateLimiter
	Storage() models.StorageService
	Metrics() *metrics.Metrics
	Logger() *slog.Logger
	UploadDir() string
	StaticDir() string
	DataFile() string
	ImageOrigin() string
}

// respondJSON sends a JSON response with a given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}, app App) {
	response, err := json.Marshal(payload)
	if err != nil {
		app.Logger().Error("Failed to marshal JSON payload", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte(`{"error":"Failed to marshal JSON response"}`)); werr != nil {
			app.Logger().Error("Failed to write internal server error response", "error", werr)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		app.Logger().Error("Failed to write JSON response", "error", err)
	}
}

// MakeHandler adapts an App-aware handler to http.HandlerFunc.
func MakeHandler(app App, fn func(http.ResponseWriter, *http.Request, App)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, app)
	}
}

type eraView struct {
	Key   models.Era
	Label string
	Text  string
}

var eraLabels = map[models.Era]string{
	models.EraAncient:      "고대",
	models.EraMedieval:     "중세",
	models.EraModern:       "근대",
	models.EraContemporary: "현대",
}

func eraViews(doc *models.NationDocument) []eraView {
	out := make([]eraView, 0, len(models.Eras))
	for _, era := range models.Eras {
		out = append(out, eraView{Key: era, Label: eraLabels[era], Text: *doc.Details.History.Text(era)})
	}
	return out
}

// HandlePage serves every content page through the view router.
func HandlePage(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandlePage")
	sess := SessionFrom(r)
	id := sess.Identity()

	page := views.Resolve(chi.URLParam(r, "menu"), id)
	data := map[string]interface{}{"Active": string(page)}
	if label := views.Label(page); label != "" {
		data["Title"] = label
	}

	switch page {
	case views.PageNotFound:
		renderStatus(w, r, app, http.StatusNotFound, "layout.html", "notfound.html", data)
		return
	case views.PageAccessDenied:
		logger.Info("Gated page requested", "menu", chi.URLParam(r, "menu"), "role", id.Role().String())
		renderStatus(w, r, app, http.StatusForbidden, "layout.html", "denied.html", data)
		return
	}

	doc, err := sess.Document()
	if err != nil {
		renderError(w, r, app, logger, err)
		return
	}
	data["Doc"] = doc

	switch page {
	case views.PageHistory:
		data["Eras"] = eraViews(doc)
	case views.PageForum:
		category := r.URL.Query().Get("category")
		posts, err := sess.FilterPosts(category)
		if err != nil {
			renderError(w, r, app, logger, err)
			return
		}
		data["Posts"] = posts
		data["Category"] = category
		data["MaxTitleLen"] = config.MaxTitleLen
		data["MaxContentLen"] = config.MaxContentLen
		data["MaxReasonLen"] = config.MaxReasonLen
	case views.PageAdmin:
		data["Eras"] = eraViews(doc)
		data["StatsFields"] = statsFieldViews(doc)
		data["ReportedPosts"] = reportedPosts(doc)
		data["DataFile"] = app.DataFile()
	case views.PageProfile:
		c, _ := id.Citizen()
		data["Citizen"] = c
	}

	render(w, r, app, "layout.html", string(page)+".html", data)
}

// HandleDocument returns the current document as JSON. Passwords are blanked
// for everyone but the admin.
func HandleDocument(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleDocument")
	sess := SessionFrom(r)

	doc, err := sess.Document()
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	if !sess.Identity().IsAdmin() {
		for i := range doc.Users {
			doc.Users[i].Password = ""
		}
	}
	respondJSON(w, http.StatusOK, doc, app)
}

// HandleNotFound serves unknown paths outside the page router.
func HandleNotFound(w http.ResponseWriter, r *http.Request, app App) {
	renderStatus(w, r, app, http.StatusNotFound, "layout.html", "notfound.html", nil)
}

func reportedPosts(doc *models.NationDocument) []models.Post {
	var out []models.Post
	for _, p := range doc.Posts {
		if len(p.Reports) > 0 {
			out = append(out, p)
		}
	}
	return out
}
