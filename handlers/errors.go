package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"nationportal/database"
	"nationportal/models"
)

// statusFor maps a core error to an HTTP status and the message shown to the user.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrAuthFailure):
		return http.StatusUnauthorized, "정보가 일치하지 않습니다."
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusForbidden, "접근 권한이 없습니다."
	case errors.Is(err, models.ErrDuplicateUsername):
		return http.StatusConflict, "이미 존재하는 아이디입니다."
	case errors.Is(err, models.ErrPostNotFound):
		return http.StatusNotFound, "게시물을 찾을 수 없습니다."
	case errors.Is(err, models.ErrInvalidCategory):
		return http.StatusBadRequest, "알 수 없는 게시판 분류입니다."
	case errors.Is(err, models.ErrUnknownField):
		return http.StatusBadRequest, "알 수 없는 항목입니다."
	case errors.Is(err, database.ErrNothingToBackup):
		return http.StatusConflict, "아직 저장된 데이터가 없습니다."
	case errors.Is(err, models.ErrCorruptDocument):
		return http.StatusInternalServerError, "국가 데이터 파일이 손상되었습니다. 관리자에게 문의하세요."
	case errors.Is(err, models.ErrPersistence):
		return http.StatusInternalServerError, "저장에 실패했습니다. 잠시 후 다시 시도하세요."
	}
	return http.StatusInternalServerError, "알 수 없는 오류가 발생했습니다."
}

// respondError answers an action with the mapped status and message.
func respondError(w http.ResponseWriter, app App, logger *slog.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "status", status, "error", err)
	} else {
		logger.Warn("Request rejected", "status", status, "error", err)
	}
	respondJSON(w, status, map[string]string{"error": msg}, app)
}

// renderError answers a page request with the error page.
func renderError(w http.ResponseWriter, r *http.Request, app App, logger *slog.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Page failed", "status", status, "error", err)
	}
	renderStatus(w, r, app, status, "layout.html", "error.html", map[string]interface{}{
		"Title":        "오류",
		"ErrorMessage": msg,
	})
}

func badRequest(w http.ResponseWriter, app App, msg string) {
	respondJSON(w, http.StatusBadRequest, map[string]string{"error": msg}, app)
}
