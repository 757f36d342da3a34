package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/venuslab/glowup/internal/utils"
	"github.com/venuslab/glowup/pkg/cropper"
	"github.com/venuslab/glowup/pkg/processing"
	"github.com/venuslab/glowup/pkg/quality"
	"github.com/venuslab/glowup/pkg/session"
	"github.com/venuslab/glowup/pkg/types"
)

const maxUploadBytes = 15 << 20

// ChatHandler runs one consultation turn.
func (s *Server) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	m := s.machineFor(userIDFrom(r), r)
	reply, advanced := m.Chat(r.Context(), req.Message)

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"reply": reply,
		"ready": advanced || m.Stage() != session.StageConsultation,
		"stage": m.Stage(),
	})
}

// CaptureHandler admits a photo and runs the analysis cycle. It
// accepts either a multipart "photo" field or a raw image body.
func (s *Server) CaptureHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	data, err := readUpload(r)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "could not read photo upload")
		return
	}
	img, err := s.proc.DecodeUpload(data)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "unsupported image format")
		return
	}

	m := s.machineFor(userIDFrom(r), r)
	if err := m.Capture(r.Context(), img); err != nil {
		var qerr *quality.Error
		switch {
		case errors.As(err, &qerr):
			RespondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":     "photo rejected",
				"reason":    qerr.Reason,
				"luminance": qerr.Luminance,
			})
		case errors.Is(err, session.ErrWrongStage), errors.Is(err, session.ErrSuperseded):
			RespondError(w, http.StatusConflict, err.Error())
		default:
			log.Printf("capture failed for user %s: %v", userIDFrom(r), err)
			RespondError(w, http.StatusBadGateway, "analysis failed, please retry")
		}
		return
	}

	snap := m.Snapshot()
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"stage":    m.Stage(),
		"analysis": snap.Analysis,
	})
}

func readUpload(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		if header.Filename != "" && !utils.IsImageFile(header.Filename) {
			return nil, fmt.Errorf("unsupported file type: %s", header.Filename)
		}
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

// StylesHandler returns the current recommendation page.
func (s *Server) StylesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	m := s.machineFor(userIDFrom(r), r)
	styles, tier := m.StylePage()
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"styles": styles,
		"tier":   tier,
		"stage":  m.Stage(),
	})
}

// NextStylesHandler advances to the next recommendation page.
func (s *Server) NextStylesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	m := s.machineFor(userIDFrom(r), r)
	styles, tier := m.NextStylePage()
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"styles": styles,
		"tier":   tier,
	})
}

// SelectStyleHandler commits a style choice, saves the transformed
// image and records the look in the user's history.
func (s *Server) SelectStyleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Style types.MakeupStyle `json:"style"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Style.ID == "" {
		RespondError(w, http.StatusBadRequest, "style is required")
		return
	}

	userID := userIDFrom(r)
	m := s.machineFor(userID, r)
	if err := m.SelectStyle(r.Context(), req.Style); err != nil {
		switch {
		case errors.Is(err, session.ErrWrongStage), errors.Is(err, session.ErrNoAnalysis),
			errors.Is(err, session.ErrSuperseded):
			RespondError(w, http.StatusConflict, err.Error())
		default:
			log.Printf("style selection failed for user %s: %v", userID, err)
			RespondError(w, http.StatusBadGateway, "could not generate your look, please try another style")
		}
		return
	}

	snap := m.Snapshot()
	imageURL := s.persistResult(r, userID, req.Style, snap)

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"stage":     m.Stage(),
		"breakdown": snap.Breakdown,
		"image_url": imageURL,
	})
}

// persistResult writes the transformed photo to the output directory
// and appends a history record. Failures are logged, never surfaced;
// the look itself already succeeded.
func (s *Server) persistResult(r *http.Request, userID string, style types.MakeupStyle, snap session.Session) string {
	if s.opts.OutputDir == "" || snap.ProcessedPhoto == nil {
		return ""
	}
	if err := utils.EnsureDir(s.opts.OutputDir); err != nil {
		log.Printf("failed to create output dir: %v", err)
		return ""
	}
	path := utils.ResultFilename(s.opts.OutputDir, userID, style.ID)
	if err := s.proc.SaveImage(snap.ProcessedPhoto, path, 90); err != nil {
		log.Printf("failed to save result image: %v", err)
		return ""
	}
	imageURL := "/results/" + filepath.Base(path)

	if s.opts.History != nil {
		if _, err := s.opts.History.Save(r.Context(), userID, imageURL, style.Name); err != nil {
			log.Printf("failed to record try-on history for user %s: %v", userID, err)
		}
	}
	return imageURL
}

// SessionHandler reports the journey state.
func (s *Server) SessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	m := s.machineFor(userIDFrom(r), r)
	snap := m.Snapshot()
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"stage":          m.Stage(),
		"analysis":       snap.Analysis,
		"selected_style": snap.SelectedStyle,
		"breakdown":      snap.Breakdown,
		"has_photo":      snap.RawPhoto != nil,
		"has_result":     snap.ProcessedPhoto != nil,
		"transcript":     m.Transcript(),
	})
}

// CloseUpHandler renders the close-up crop for a breakdown area.
func (s *Server) CloseUpHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	area := types.Area(r.URL.Query().Get("area"))
	switch area {
	case types.AreaFace, types.AreaBrows, types.AreaEyes, types.AreaLips:
	default:
		RespondError(w, http.StatusBadRequest, "area must be one of Face, Brows, Eyes, Lips")
		return
	}

	m := s.machineFor(userIDFrom(r), r)
	img, err := m.CloseUp(area)
	switch {
	case errors.Is(err, cropper.ErrPending):
		RespondJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
		return
	case errors.Is(err, session.ErrWrongStage):
		RespondError(w, http.StatusConflict, "no transformed photo available")
		return
	case err != nil:
		RespondError(w, http.StatusInternalServerError, "failed to crop region")
		return
	}

	data, err := processing.EncodeJPEG(img, 90)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode crop")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(data)
}

// NavigateHandler moves the journey to a requested stage.
func (s *Server) NavigateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Stage session.Stage `json:"stage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "stage is required")
		return
	}

	m := s.machineFor(userIDFrom(r), r)
	if err := m.NavigateTo(req.Stage); err != nil {
		RespondError(w, http.StatusConflict, "navigation not allowed")
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"stage": m.Stage()})
}

// RestartHandler clears the journey back to consultation.
func (s *Server) RestartHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	m := s.machineFor(userIDFrom(r), r)
	m.Restart()
	RespondJSON(w, http.StatusOK, map[string]interface{}{"stage": m.Stage()})
}

// HistoryHandler lists the user's saved looks (GET, latest first) or
// appends one explicitly (POST).
func (s *Server) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if s.opts.History == nil {
			RespondJSON(w, http.StatusOK, map[string]interface{}{"records": []types.TryOnRecord{}})
			return
		}
		records, err := s.opts.History.List(r.Context(), userIDFrom(r))
		if err != nil {
			log.Printf("failed to list history for user %s: %v", userIDFrom(r), err)
			RespondError(w, http.StatusInternalServerError, "failed to fetch history")
			return
		}
		RespondJSON(w, http.StatusOK, map[string]interface{}{"records": records})

	case http.MethodPost:
		if s.opts.History == nil {
			RespondError(w, http.StatusServiceUnavailable, "history is not available")
			return
		}
		var req struct {
			ImageURL  string `json:"processed_image_url"`
			StyleName string `json:"style_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ImageURL == "" || req.StyleName == "" {
			RespondError(w, http.StatusBadRequest, "processed_image_url and style_name are required")
			return
		}
		rec, err := s.opts.History.Save(r.Context(), userIDFrom(r), req.ImageURL, req.StyleName)
		if err != nil {
			log.Printf("failed to save history for user %s: %v", userIDFrom(r), err)
			RespondError(w, http.StatusInternalServerError, "failed to save history")
			return
		}
		RespondJSON(w, http.StatusCreated, rec)

	default:
		RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
