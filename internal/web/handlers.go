package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"trendd/internal/dormancy"
	"trendd/internal/reportstore"
)

const dateField = "2006-01-02"

type indexData struct {
	Flashes []string
}

type resultsData struct {
	Token  string
	Report *dormancy.Report
}

type customerData struct {
	Token    string
	Customer dormancy.CustomerAggregate
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var flashes []string
	if msg := r.URL.Query().Get("flash"); msg != "" {
		flashes = append(flashes, msg)
	}

	s.render(w, "index.html", indexData{Flashes: flashes})
}

// handleUpload accepts a multipart ledger export, runs the pipeline and
// stores the result under a fresh token. Month mode is selected by
// target_month; start_date/end_date select range mode.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.Server.MaxUploadMb) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.flashRedirect(w, r, "Upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.flashRedirect(w, r, "No file selected")
		return
	}
	defer file.Close()

	path, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.log.Error("saving upload failed", "error", err)
		s.flashRedirect(w, r, "Could not save the uploaded file")
		return
	}

	s.log.Info("file uploaded", "path", path, "size", header.Size)

	report, err := s.analyze(r, path)
	if err != nil {
		var rangeErr *dormancy.DateRangeUnavailableError
		if errors.As(err, &rangeErr) {
			s.flashRedirect(w, r, rangeErr.Error())
			return
		}

		s.flashRedirect(w, r, fmt.Sprintf("Error processing file: %v", err))
		return
	}

	token, err := s.store.Put(r.Context(), report)
	if err != nil {
		s.log.Error("storing report failed", "error", err)
		http.Error(w, "failed to store report", http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resultsData{Token: token, Report: report})
		return
	}

	s.render(w, "results.html", resultsData{Token: token, Report: report})
}

func (s *Server) analyze(r *http.Request, path string) (*dormancy.Report, error) {
	startRaw := strings.TrimSpace(r.FormValue("start_date"))
	endRaw := strings.TrimSpace(r.FormValue("end_date"))

	if startRaw != "" && endRaw != "" {
		start, err := time.Parse(dateField, startRaw)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q", startRaw)
		}

		end, err := time.Parse(dateField, endRaw)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q", endRaw)
		}

		report, _, err := s.pipeline.AnalyzeRange(path, start, end)

		return report, err
	}

	report, _ := s.pipeline.AnalyzeMonth(path, r.FormValue("target_month"))

	return report, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	report, err := s.store.Get(r.Context(), token)
	if errors.Is(err, reportstore.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.log.Error("report lookup failed", "token", token, "error", err)
		http.Error(w, "report lookup failed", http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resultsData{Token: token, Report: report})
		return
	}

	s.render(w, "results.html", resultsData{Token: token, Report: report})
}

func (s *Server) handleCustomer(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, "bad customer name", http.StatusBadRequest)
		return
	}

	report, err := s.store.Get(r.Context(), token)
	if errors.Is(err, reportstore.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.log.Error("report lookup failed", "token", token, "error", err)
		http.Error(w, "report lookup failed", http.StatusInternalServerError)
		return
	}

	customer, ok := report.Customer(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.render(w, "customer.html", customerData{Token: token, Customer: customer})
}

// saveUpload writes the uploaded file under the configured upload dir with
// a sanitized filename.
func (s *Server) saveUpload(file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.cfg.Server.UploadDir, 0o755); err != nil {
		return "", err
	}

	name := filepath.Base(filepath.Clean(filename))
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}

	path := filepath.Join(s.cfg.Server.UploadDir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}

	return path, nil
}

func (s *Server) flashRedirect(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/?flash="+url.QueryEscape(msg), http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
