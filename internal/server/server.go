// Package server exposes the extraction engine over HTTP: direct file
// uploads and public Google Sheets links.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomsheet/roomsheet-go/pkg/roomsheet"
	"github.com/roomsheet/roomsheet-go/pkg/roomsheet/models"
)

// maxUploadBytes caps multipart upload parsing.
const maxUploadBytes = 20 << 20

// sheetIDRe pulls the document ID out of a Google Sheets share link.
var sheetIDRe = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// Server handles conversion requests.
type Server struct {
	engine    *roomsheet.Engine
	log       *zap.Logger
	uploadDir string
	http      *resty.Client
}

// New creates a Server downloading remote sheets into uploadDir.
func New(engine *roomsheet.Engine, log *zap.Logger, uploadDir string) *Server {
	client := resty.New().
		SetTimeout(60 * time.Second).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Server{
		engine:    engine,
		log:       log,
		uploadDir: uploadDir,
		http:      client,
	}
}

// Routes returns the HTTP mux for the service.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /convert", s.handleConvert)
	mux.HandleFunc("POST /convert-url", s.handleConvertURL)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// handleConvert processes an uploaded workbook. The original filename
// becomes the file_source_id stamped on every record.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	s.log.Info("received file", zap.String("filename", header.Filename))

	records, err := s.engine.ProcessReader(r.Context(), file, header.Filename)
	if err != nil {
		s.log.Error("processing failed", zap.String("filename", header.Filename), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeRecords(w, records)
}

// handleConvertURL downloads a public Google Sheet and processes it. The
// original share URL becomes the file_source_id.
func (s *Server) handleConvertURL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "no URL provided")
		return
	}

	exportURL, ok := ExportURL(req.URL)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid Google Sheets URL")
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		s.log.Error("upload dir unavailable", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "upload dir unavailable")
		return
	}
	tempPath := filepath.Join(s.uploadDir, "remote_"+uuid.NewString()+".xlsx")
	defer os.Remove(tempPath)

	s.log.Info("downloading sheet", zap.String("url", exportURL))
	resp, err := s.http.R().
		SetContext(r.Context()).
		SetOutput(tempPath).
		Get(exportURL)
	if err != nil || resp.IsError() {
		s.log.Error("download failed", zap.String("url", exportURL), zap.Error(err))
		writeError(w, http.StatusInternalServerError,
			"failed to download the Google Sheet; make sure it is public (anyone with the link can view)")
		return
	}

	records, err := s.engine.ProcessFile(r.Context(), tempPath, req.URL)
	if err != nil {
		s.log.Error("processing failed", zap.String("url", req.URL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeRecords(w, records)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// ExportURL translates a Google Sheets share link into its xlsx export URL.
func ExportURL(url string) (string, bool) {
	m := sheetIDRe.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return "https://docs.google.com/spreadsheets/d/" + m[1] + "/export?format=xlsx", true
}

func writeRecords(w http.ResponseWriter, records []models.RoomRecord) {
	if records == nil {
		records = []models.RoomRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"total":   len(records),
		"records": records,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
