// nationportal/handlers/actions.go
package handlers

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"nationportal/config"
	"nationportal/utils"
)

const rateLimitMessage = "요청이 너무 많습니다. 잠시 후 다시 시도하세요."

// allow applies the per-IP rate limiter to one class of action.
func allow(w http.ResponseWriter, r *http.Request, app App, class string) bool {
	ip := utils.GetIPAddress(r)
	if app.RateLimiter().Allow(class + ":" + ip) {
		return true
	}
	app.Logger().Warn("Rate limit exceeded", "ip", ip, "class", class)
	respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": rateLimitMessage}, app)
	return false
}

func observe(app App, op string, start time.Time, err error) {
	app.Metrics().ObserveMutation(op, err, time.Since(start))
}

// HandleCitizenLogin logs the session in as a stored citizen.
func HandleCitizenLogin(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleCitizenLogin")
	if !allow(w, r, app, "login") {
		return
	}

	c, err := SessionFrom(r).LoginCitizen(r.FormValue("username"), r.FormValue("password"))
	app.Metrics().ObserveLogin("citizen", err)
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"success": c.Username + " " + config.CitizenSuffix + "님, 환영합니다.", "redirect": "/"}, app)
}

// HandleAdminLogin checks the admin code.
func HandleAdminLogin(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleAdminLogin")
	if !allow(w, r, app, "login") {
		return
	}

	err := SessionFrom(r).LoginAdmin(r.FormValue("code"))
	app.Metrics().ObserveLogin("admin", err)
	if err != nil {
		logger.Warn("Admin login rejected", "ip", utils.GetIPAddress(r))
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "승인 코드가 틀립니다."}, app)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"redirect": "/admin"}, app)
}

// HandleLogout ends the portal session.
func HandleLogout(w http.ResponseWriter, r *http.Request, app App) {
	sess := SessionFrom(r)
	sess.Logout()
	app.Sessions().Destroy(sess.ID())
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"redirect": "/"}, app)
}

// HandleChangePassword replaces the citizen's password and logs them out.
func HandleChangePassword(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleChangePassword")
	newPassword := r.FormValue("new_password")
	if newPassword == "" {
		badRequest(w, app, "새 비밀번호를 입력하세요.")
		return
	}

	start := time.Now()
	err := SessionFrom(r).ChangePassword(newPassword)
	observe(app, "change_password", start, err)
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"success": "비밀번호가 변경되었습니다. 다시 로그인하세요.", "redirect": "/"}, app)
}

// HandleCreatePost publishes a forum post.
func HandleCreatePost(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleCreatePost")

	title := strings.TrimSpace(r.FormValue("title"))
	content := strings.TrimSpace(r.FormValue("content"))
	if title == "" || content == "" {
		badRequest(w, app, "제목과 내용을 입력하세요.")
		return
	}
	if utf8.RuneCountInString(title) > config.MaxTitleLen || utf8.RuneCountInString(content) > config.MaxContentLen {
		badRequest(w, app, "제목 또는 내용이 너무 깁니다.")
		return
	}
	if !allow(w, r, app, "post") {
		return
	}

	start := time.Now()
	post, err := SessionFrom(r).CreatePost(title, content, r.FormValue("category"))
	observe(app, "create_post", start, err)
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	logger.Info("Post created", "post_id", post.ID, "author", post.Author, "category", string(post.Category))
	respondJSON(w, http.StatusOK, map[string]string{"success": "등록되었습니다!", "redirect": "/forum"}, app)
}

// HandleDeletePost removes a post. Admin only.
func HandleDeletePost(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleDeletePost")
	postID := r.FormValue("post_id")

	start := time.Now()
	err := SessionFrom(r).DeletePost(postID)
	observe(app, "delete_post", start, err)
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	logger.Info("Post deleted", "post_id", postID)
	respondJSON(w, http.StatusOK, map[string]string{"success": "삭제되었습니다."}, app)
}

// HandleReportPost files a citizen report against a post.
func HandleReportPost(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleReportPost")
	postID := r.FormValue("post_id")
	reason := strings.TrimSpace(r.FormValue("reason"))
	if utf8.RuneCountInString(reason) > config.MaxReasonLen {
		badRequest(w, app, "신고 사유가 너무 깁니다.")
		return
	}
	if !allow(w, r, app, "post") {
		return
	}

	start := time.Now()
	err := SessionFrom(r).ReportPost(postID, reason)
	observe(app, "report_post", start, err)
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	logger.Info("Post reported", "post_id", postID)
	respondJSON(w, http.StatusOK, map[string]string{"success": "신고가 접수되었습니다."}, app)
}
