// nationportal/handlers/render.go

package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"nationportal/config"
	"nationportal/models"
	"nationportal/utils"
	"nationportal/views"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	templates *template.Template
)

// LoadTemplates parses the embedded page templates.
func LoadTemplates() error {
	funcMap := template.FuncMap{
		"formatDate":   func(m models.Millis) string { return m.Time().Format("2006-01-02") },
		"formatNumber": formatNumber,
		"join":         strings.Join,
		"default": func(dflt, val string) string {
			if val == "" {
				return dflt
			}
			return val
		},
	}
	t, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	templates = t
	return nil
}

// render executes a content template inside the layout with a 200 status.
func render(w http.ResponseWriter, r *http.Request, app App, layout, contentTmpl string, data map[string]interface{}) {
	renderStatus(w, r, app, http.StatusOK, layout, contentTmpl, data)
}

func renderStatus(w http.ResponseWriter, r *http.Request, app App, status int, layout, contentTmpl string, data map[string]interface{}) {
	logger := app.Logger().With("handler", "render", "template", contentTmpl)
	if data == nil {
		data = make(map[string]interface{})
	}

	id := models.Anonymous()
	if sess := SessionFrom(r); sess != nil {
		id = sess.Identity()
	}
	c, isCitizen := id.Citizen()

	data["AppTitle"] = config.AppTitle
	data["AppVersion"] = config.AppVersion
	data["MaxFileSizeMB"] = config.MaxFileSize / 1024 / 1024
	data["Placeholder"] = utils.PlaceholderPath
	data["Menu"] = views.Menu(id)
	data["IsAnonymous"] = id.IsAnonymous()
	data["IsAdmin"] = id.IsAdmin()
	data["IsCitizen"] = isCitizen
	switch {
	case id.IsAdmin():
		data["UserDisplay"] = config.AdminDisplayLabel
	case isCitizen:
		data["UserDisplay"] = c.Username + " " + config.CitizenSuffix
	}
	if csrfToken, ok := r.Context().Value(CSRFTokenKey).(string); ok {
		data["csrfToken"] = csrfToken
	}
	if _, ok := data["Title"]; !ok {
		data["Title"] = config.AppTitle
	}
	if _, ok := data["Active"]; !ok {
		data["Active"] = ""
	}

	contentBuf := new(bytes.Buffer)
	if err := templates.ExecuteTemplate(contentBuf, contentTmpl, data); err != nil {
		logger.Error("Error rendering content template", "error", err)
		http.Error(w, "Failed to render page content", http.StatusInternalServerError)
		return
	}
	data["Content"] = template.HTML(contentBuf.String())

	pageBuf := new(bytes.Buffer)
	if err := templates.ExecuteTemplate(pageBuf, layout, data); err != nil {
		logger.Error("Error rendering layout template", "layout", layout, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := pageBuf.WriteTo(w); err != nil {
		logger.Error("Failed to write page", "error", err)
	}
}

// formatNumber renders an integer with thousands separators.
func formatNumber(n int64) string {
	return humanize.Comma(n)
}
