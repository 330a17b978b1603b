package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/kensa/internal/evaluator"
	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/internal/storage"
	"github.com/hyperjump/kensa/pkg/utils"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

var errTooLarge = errors.New("upload too large")

// submissionRequest is the JSON body for check and evaluate.
type submissionRequest struct {
	Text string `json:"text"`
	Name string `json:"name,omitempty"`
}

// checkResponse is a match result with the verdict for the configured threshold.
type checkResponse struct {
	*models.MatchResult
	Verdict models.Verdict `json:"verdict"`
}

// readSubmission accepts either a JSON body or a multipart form with "file", "text" and "name" fields.
func (s *Server) readSubmission(w http.ResponseWriter, r *http.Request) (evaluator.Submission, error) {
	limit := s.config.Server.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var sub evaluator.Submission
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req submissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return sub, classifyBodyError(err, "invalid request body")
		}
		sub.Text = req.Text
		sub.Name = req.Name
		return sub, nil
	}

	if err := r.ParseMultipartForm(limit); err != nil {
		return sub, classifyBodyError(err, "invalid multipart form")
	}
	sub.Text = r.FormValue("text")
	sub.Name = r.FormValue("name")
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return sub, nil
	}
	if err != nil {
		return sub, fmt.Errorf("invalid file field: %w", err)
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return sub, classifyBodyError(err, "failed to read upload")
	}
	sub.Content = content
	sub.FileName = header.Filename
	if sub.Name == "" {
		sub.Name = header.Filename
	}
	return sub, nil
}

func classifyBodyError(err error, msg string) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errTooLarge
	}
	return errors.New(msg)
}

func (s *Server) respondSubmissionError(w http.ResponseWriter, err error) {
	if errors.Is(err, errTooLarge) {
		s.respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload exceeds %d bytes", s.config.Server.MaxUploadBytes))
		return
	}
	s.respondError(w, http.StatusBadRequest, err.Error())
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	sub, err := s.readSubmission(w, r)
	if err != nil {
		s.respondSubmissionError(w, err)
		return
	}
	text := s.evaluator.SubmissionText(sub)
	if utils.IsBlank(text) {
		s.respondError(w, http.StatusBadRequest, evaluator.ErrEmptySubmission.Error())
		return
	}
	s.logger.Debug("check request", zap.String("name", sub.Name), zap.Int("chars", len(text)))
	result := s.evaluator.Check(text)
	s.respondJSON(w, http.StatusOK, checkResponse{
		MatchResult: &result,
		Verdict:     models.VerdictFor(result.Percent, s.evaluator.Threshold()),
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	sub, err := s.readSubmission(w, r)
	if err != nil {
		s.respondSubmissionError(w, err)
		return
	}
	s.logger.Debug("evaluate request", zap.String("name", sub.Name))
	report, err := s.evaluator.Evaluate(r.Context(), sub)
	if errors.Is(err, evaluator.ErrEmptySubmission) {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("evaluation failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "report history not enabled")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil || limit <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	ctx := r.Context()
	if fp := r.URL.Query().Get("fingerprint"); fp != "" {
		s.listReportsByFingerprint(w, r, fp)
		return
	}
	reports, err := s.storage.ListReports(ctx, offset, limit)
	if err != nil {
		s.logger.Error("list reports failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.storage.CountReports(ctx)
	if err != nil {
		s.logger.Error("count reports failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reports == nil {
		reports = []*models.Report{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"total":   total,
		"offset":  offset,
		"limit":   limit,
	})
}

// listReportsByFingerprint returns every report for the same submission text, newest first.
func (s *Server) listReportsByFingerprint(w http.ResponseWriter, r *http.Request, fp string) {
	reports, err := s.storage.FindByFingerprint(r.Context(), fp)
	if err != nil {
		s.logger.Error("find reports failed", zap.String("fingerprint", fp), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reports == nil {
		reports = []*models.Report{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports":     reports,
		"total":       len(reports),
		"fingerprint": fp,
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "report history not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	report, err := s.storage.GetReport(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.logger.Error("get report failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "report history not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete report request", zap.String("id", id))
	err := s.storage.DeleteReport(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleCorpus(w http.ResponseWriter, r *http.Request) {
	dir := s.evaluator.CorpusDir()
	entries, err := s.evaluator.Scanner().Entries(dir)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "corpus directory not found: "+dir)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"directory": dir,
		"entries":   entries,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	dir := s.evaluator.CorpusDir()
	resp := map[string]interface{}{
		"scorer":               s.evaluator.ScorerName(),
		"corpus_directory":     dir,
		"plagiarism_threshold": s.evaluator.Threshold(),
	}
	if entries, err := s.evaluator.Scanner().Entries(dir); err == nil {
		comparable := 0
		for _, e := range entries {
			if e.Comparable {
				comparable++
			}
		}
		resp["corpus_files"] = len(entries)
		resp["corpus_comparable"] = comparable
	} else {
		resp["corpus_warning"] = err.Error()
	}
	paths := []string{dir}
	if s.storage != nil {
		count, err := s.storage.CountReports(r.Context())
		if err != nil {
			s.logger.Error("status: count reports failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["reports"] = count
		resp["database_path"] = s.config.Storage.DatabasePath
		paths = append(paths, s.config.Storage.DatabasePath)
	}
	if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
