// nationportal/handlers/admin.go
package handlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"nationportal/config"
	"nationportal/models"
	"nationportal/session"
	"nationportal/utils"
)

var statsLabels = map[string]string{
	"formalName":      "국가 정식 명칭",
	"englishName":     "영문 명칭",
	"officialName":    "공식 약칭",
	"motto":           "국가 표어",
	"territory":       "영토",
	"capital":         "수도",
	"language":        "공용어",
	"currency":        "화폐",
	"population":      "인구",
	"totalGdp":        "GDP",
	"hdi":             "HDI",
	"area":            "영토 면적",
	"politicalSystem": "정치 체제",
	"headOfState":     "국가 원수",
	"historyOverview": "역사 개요",
	"flag":            "국기 이미지 URL",
	"coatOfArms":      "국장 이미지 URL",
}

type statsFieldView struct {
	Key   string
	Label string
	Value string
}

func statsFieldViews(doc *models.NationDocument) []statsFieldView {
	fields := doc.Stats.Fields()
	out := make([]statsFieldView, 0, len(models.StatsFieldNames))
	for _, key := range models.StatsFieldNames {
		out = append(out, statsFieldView{Key: key, Label: statsLabels[key], Value: *fields[key]})
	}
	return out
}

var errBadNumber = errors.New("not an integer")

// militaryPatchFromForm reads the counters present in the form.
func militaryPatchFromForm(r *http.Request) (session.MilitaryPatch, bool, error) {
	var patch session.MilitaryPatch
	if err := r.ParseForm(); err != nil {
		return patch, false, err
	}
	present := false
	int64Field := func(name string, dst **int64) error {
		raw, ok := r.PostForm[name]
		if !ok || strings.TrimSpace(raw[0]) == "" {
			return nil
		}
		v, err := strconv.ParseInt(strings.TrimSpace(raw[0]), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", name, errBadNumber)
		}
		*dst = &v
		present = true
		return nil
	}
	counters := []struct {
		name string
		dst  **int64
	}{
		{"troopCount", &patch.TroopCount},
		{"tankCount", &patch.TankCount},
		{"shipCount", &patch.ShipCount},
		{"aircraftCount", &patch.AircraftCount},
		{"nuclearWarheads", &patch.NuclearWarheads},
	}
	for _, c := range counters {
		if err := int64Field(c.name, c.dst); err != nil {
			return patch, false, err
		}
	}
	if raw, ok := r.PostForm["readinessLevel"]; ok && strings.TrimSpace(raw[0]) != "" {
		v, err := strconv.Atoi(strings.TrimSpace(raw[0]))
		if err != nil {
			return patch, false, fmt.Errorf("readinessLevel: %w", errBadNumber)
		}
		patch.ReadinessLevel = &v
		present = true
	}
	return patch, present, nil
}

var militaryKeys = map[string]bool{
	"troopCount": true, "tankCount": true, "shipCount": true,
	"aircraftCount": true, "nuclearWarheads": true, "readinessLevel": true,
}

// HandleUpdateStats saves the console's basic-information form. Military
// counters submitted with it are applied as well.
func HandleUpdateStats(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleUpdateStats")
	sess := SessionFrom(r)
	if !sess.Identity().IsAdmin() {
		respondError(w, app, logger, models.ErrUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		badRequest(w, app, "요청을 해석할 수 없습니다.")
		return
	}
	patch := make(map[string]string)
	for key, values := range r.PostForm {
		if key == "csrf_token" || militaryKeys[key] {
			continue
		}
		patch[key] = values[0]
	}
	military, hasMilitary, err := militaryPatchFromForm(r)
	if err != nil {
		badRequest(w, app, "숫자 항목의 값이 올바르지 않습니다.")
		return
	}

	start := time.Now()
	err = sess.UpdateConsole(patch, military)
	observe(app, "update_console", start, err)
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	logger.Info("Nation stats updated", "fields", len(patch), "military", hasMilitary)
	respondJSON(w, http.StatusOK, map[string]string{"success": "국가 정보가 성공적으로 업데이트되었습니다."}, app)
}

// HandleUpdateMilitary saves the defense counters.
func HandleUpdateMilitary(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleUpdateMilitary")
	patch, _, err := militaryPatchFromForm(r)
	if err != nil {
		badRequest(w, app, "숫자 항목의 값이 올바르지 않습니다.")
		return
	}

	start := time.Now()
	err = SessionFrom(r).UpdateMilitaryNumbers(patch)
	observe(app, "update_military", start, err)
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"success": "국방 수치가 저장되었습니다."}, app)
}

// HandleUpdateEconomy saves the growth rate and the comma-separated industry list.
func HandleUpdateEconomy(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleUpdateEconomy")

	industries := []string{}
	for _, part := range strings.Split(r.FormValue("keyIndustries"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			industries = append(industries, part)
		}
	}

	start := time.Now()
	err := SessionFrom(r).UpdateEconomy(r.FormValue("gdpGrowthRate"), industries)
	observe(app, "update_economy", start, err)
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"success": "경제 지표가 저장되었습니다."}, app)
}

// HandleUpdateHistory saves the narrative of one era.
func HandleUpdateHistory(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleUpdateHistory")

	start := time.Now()
	err := SessionFrom(r).UpdateHistory(models.Era(r.FormValue("era")), r.FormValue("text"))
	observe(app, "update_history", start, err)
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"success": "역사 기록이 저장되었습니다."}, app)
}

// HandleAddCitizen issues a citizen account.
func HandleAddCitizen(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleAddCitizen")
	username, password := r.FormValue("username"), r.FormValue("password")
	if username == "" || password == "" {
		badRequest(w, app, "ID와 PW를 모두 입력하세요.")
		return
	}

	start := time.Now()
	_, err := SessionFrom(r).AddCitizen(username, password)
	observe(app, "add_citizen", start, err)
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"success": "발급 완료"}, app)
}

// HandleRemoveCitizen deletes a citizen account.
func HandleRemoveCitizen(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleRemoveCitizen")
	username := r.FormValue("username")

	start := time.Now()
	err := SessionFrom(r).RemoveCitizen(username)
	observe(app, "remove_citizen", start, err)
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	logger.Info("Citizen removed", "username", username)
	respondJSON(w, http.StatusOK, map[string]string{"success": "삭제되었습니다."}, app)
}

// HandleFactoryReset deletes the persisted document and reloads the default.
func HandleFactoryReset(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleFactoryReset")
	sess := SessionFrom(r)

	start := time.Now()
	err := sess.FactoryReset()
	observe(app, "factory_reset", start, err)
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	if err := sess.Reload(); err != nil {
		respondError(w, app, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"success": "초기화되었습니다.", "redirect": "/"}, app)
}

// HandleDocumentBackup copies the persisted document into the backup directory.
func HandleDocumentBackup(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleDocumentBackup")

	path, err := SessionFrom(r).BackupDocument()
	if err != nil {
		respondError(w, app, logger, err)
		return
	}
	logger.Info("Document backup created", "path", path)
	respondJSON(w, http.StatusOK, map[string]string{"success": "백업 완료: " + filepath.Base(path)}, app)
}

// HandleEmblemUpload replaces the flag or coat of arms with an uploaded image.
func HandleEmblemUpload(w http.ResponseWriter, r *http.Request, app App) {
	logger := app.Logger().With("handler", "HandleEmblemUpload")
	sess := SessionFrom(r)
	if !sess.Identity().IsAdmin() {
		respondError(w, app, logger, models.ErrUnauthorized)
		return
	}
	kind, err := session.ParseEmblemKind(r.FormValue("kind"))
	if err != nil {
		respondError(w, app, logger, err)
		return
	}

	url, err := processImage(r, app, logger)
	if err != nil {
		logger.Warn("Emblem upload rejected", "error", err)
		badRequest(w, app, "이미지를 처리할 수 없습니다: "+err.Error())
		return
	}

	start := time.Now()
	err = sess.SetEmblem(kind, url)
	observe(app, "set_emblem", start, err)
	if err != nil {
		if derr := app.Storage().Remove(r.Context(), url); derr != nil {
			logger.Error("Failed to remove orphaned emblem", "url", url, "error", derr)
		}
		respondError(w, app, logger, err)
		return
	}
	logger.Info("Emblem updated", "kind", string(kind), "url", url)
	respondJSON(w, http.StatusOK, map[string]string{"success": "이미지가 변경되었습니다."}, app)
}

// processImage validates the "image" upload, fits it into the emblem bounds,
// re-encodes it and hands it to the storage service.
func processImage(r *http.Request, app App, logger *slog.Logger) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", fmt.Errorf("no image was uploaded")
		}
		return "", fmt.Errorf("could not get form file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Error("Failed to close upload file", "error", err)
		}
	}()

	limitedReader := &io.LimitedReader{R: file, N: config.MaxFileSize + 1}
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return "", fmt.Errorf("could not read file data: %w", err)
	}
	if limitedReader.N == 0 {
		return "", fmt.Errorf("file is larger than the %dMB limit", config.MaxFileSize/1024/1024)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("file is empty")
	}

	// Magic byte validation
	contentType := http.DetectContentType(data)
	allowedTypes := map[string]bool{
		"image/jpeg": true, "image/png": true, "image/gif": true, "image/webp": true,
	}
	if !allowedTypes[contentType] {
		logger.Warn("Admin uploaded file with invalid MIME type", "detected_type", contentType, "filename", header.Filename)
		return "", fmt.Errorf("unsupported file type: %s", contentType)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("invalid image format: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() > config.MaxEmblemWidth || b.Dy() > config.MaxEmblemHeight {
		img = imaging.Fit(img, config.MaxEmblemWidth, config.MaxEmblemHeight, imaging.Lanczos)
	}

	// PNG keeps transparency; everything else becomes JPEG.
	out := new(bytes.Buffer)
	ext, mime := "jpeg", "image/jpeg"
	if format == "png" {
		ext, mime = "png", "image/png"
		err = imaging.Encode(out, img, imaging.PNG)
	} else {
		err = imaging.Encode(out, img, imaging.JPEG, imaging.JPEGQuality(90))
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	hash := sha256.Sum256(data)
	filename := fmt.Sprintf("%d_%s.%s", utils.GetTime().UnixNano(), hex.EncodeToString(hash[:])[:12], ext)
	url, err := app.Storage().Put(r.Context(), filename, out.Bytes(), mime)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}
