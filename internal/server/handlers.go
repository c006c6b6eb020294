package server

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kamusis/roster-cli/internal/apply"
	"github.com/kamusis/roster-cli/internal/diff"
	apperrors "github.com/kamusis/roster-cli/internal/errors"
	"github.com/kamusis/roster-cli/internal/logger"
	"github.com/kamusis/roster-cli/internal/roster"
	"github.com/kamusis/roster-cli/internal/sheet"
)

const changesHeader = "X-Roster-Changes"

var contentTypes = map[sheet.Format]string{
	sheet.XLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	sheet.CSV:  "text/csv; charset=utf-8",
}

type personTitle struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type titleChange struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

type multipleTitles struct {
	Name  string `json:"name"`
	Year1 string `json:"year1"`
	Year2 string `json:"year2"`
}

type anomalyEntry struct {
	Name string   `json:"name"`
	Near []string `json:"near"`
}

// summary keeps the key names existing upload clients read.
type summary struct {
	Resignations   int `json:"resignations"`
	NewHires       int `json:"new_hires"`
	TitleChanges   int `json:"title_changes"`
	MultipleTitles int `json:"multiple_titles"`
	Unchanged      int `json:"unchanged"`
	Anomalies      int `json:"anomalies"`
}

// analysis is the /analyze response body.
type analysis struct {
	Resigned       []personTitle    `json:"resigned"`
	TitleChanges   []titleChange    `json:"title_changes"`
	NewHires       []personTitle    `json:"new_hires"`
	MultipleTitles []multipleTitles `json:"multiple_titles"`
	Anomalies      []anomalyEntry   `json:"anomalies"`
	Summary        summary          `json:"summary"`
}

func newAnalysis(res *diff.Result) analysis {
	a := analysis{
		Resigned:       flatten(res.Resigned),
		TitleChanges:   make([]titleChange, 0, len(res.TitleChanges)),
		NewHires:       flatten(res.NewHires),
		MultipleTitles: make([]multipleTitles, 0, len(res.MultipleTitles)),
		Anomalies:      make([]anomalyEntry, 0, len(res.Anomalies)),
	}
	sum := res.Summary()
	a.Summary = summary{
		Resignations:   sum.Resigned,
		NewHires:       sum.NewHires,
		TitleChanges:   sum.TitleChanges,
		MultipleTitles: sum.MultipleTitles,
		Unchanged:      sum.Unchanged,
		Anomalies:      sum.Anomalies,
	}
	for _, c := range res.TitleChanges {
		a.TitleChanges = append(a.TitleChanges, titleChange{Name: c.Name, From: c.From, To: c.To})
	}
	for _, m := range res.MultipleTitles {
		a.MultipleTitles = append(a.MultipleTitles, multipleTitles{
			Name:  m.Name,
			Year1: strings.Join(m.Year1Titles, ", "),
			Year2: strings.Join(m.Year2Titles, ", "),
		})
	}
	for _, p := range res.Anomalies {
		a.Anomalies = append(a.Anomalies, anomalyEntry{Name: p.Name, Near: p.Near})
	}
	return a
}

func flatten(groups []diff.TitleGroup) []personTitle {
	out := make([]personTitle, 0)
	for _, g := range groups {
		for _, n := range g.Names {
			out = append(out, personTitle{Name: n, Title: g.Title})
		}
	}
	return out
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if err := s.parseUpload(w, r, "file1", "file2"); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.compare(r, "file1", "file2")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newAnalysis(res))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if err := s.parseUpload(w, r, "excel_file", "data_file1", "data_file2"); err != nil {
		s.fail(w, r, err)
		return
	}
	year := strings.TrimSpace(r.FormValue("year_column"))
	if year == "" {
		s.fail(w, r, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "Please specify the year column"))
		return
	}

	f, hdr, err := r.FormFile("excel_file")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer f.Close()
	format, err := sheet.FormatOf(hdr.Filename)
	if err != nil {
		s.fail(w, r, apperrors.New(apperrors.ErrUnsupportedFormat, http.StatusBadRequest, "Only .xlsx and .csv roster files are allowed"))
		return
	}
	table, err := sheet.Read(f, format)
	if err != nil {
		if apperrors.HTTPStatusCode(err) >= http.StatusInternalServerError {
			err = apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "cannot read %s: %v", hdr.Filename, err)
		}
		s.fail(w, r, err)
		return
	}

	res, err := s.compare(r, "data_file1", "data_file2")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	updated, changeLog, err := apply.Apply(table, year, apply.FromResult(res), s.opts.Apply)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := sheet.Save(updated, &buf, format); err != nil {
		s.fail(w, r, fmt.Errorf("cannot encode updated roster: %w", err))
		return
	}
	logger.FromContext(r.Context()).Info("roster updated", "year", year, "changes", len(changeLog))
	w.Header().Set(changesHeader, strconv.Itoa(len(changeLog)))
	attach(w, filepath.Base(apply.OutputPath(hdr.Filename, "", year)), format, buf.Bytes())
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.opts.MaxUploadBytes {
		s.fail(w, r, s.tooLarge())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	var years []string
	for _, y := range strings.Split(r.FormValue("year_columns"), ",") {
		if y = strings.TrimSpace(y); y != "" {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		s.fail(w, r, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "Please specify at least one year column"))
		return
	}
	format := sheet.XLSX
	if v := r.FormValue("format"); v != "" {
		f, err := sheet.FormatOf(v)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		format = f
	}

	table, err := sheet.Template(years)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := sheet.Save(table, &buf, format); err != nil {
		s.fail(w, r, fmt.Errorf("cannot encode template: %w", err))
		return
	}
	attach(w, "faculty_template"+string(format), format, buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.opts.Version,
	})
}

// parseUpload reads the multipart body within the upload limit and checks
// that every named file field is present.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request, fields ...string) error {
	if r.ContentLength > s.opts.MaxUploadBytes {
		return s.tooLarge()
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return s.tooLarge()
		}
		return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "cannot read upload: %v", err)
	}
	for _, field := range fields {
		files := r.MultipartForm.File[field]
		if len(files) == 0 || files[0].Filename == "" {
			return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
				"Please upload all required files (%s)", strings.Join(fields, ", "))
		}
	}
	return nil
}

func (s *Server) tooLarge() error {
	return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusRequestEntityTooLarge,
		"upload exceeds %d KB", s.opts.MaxUploadBytes>>10)
}

// compare parses two uploaded snapshots and diffs them, recording the
// analysis metrics either way.
func (s *Server) compare(r *http.Request, field1, field2 string) (*diff.Result, error) {
	start := time.Now()
	res, err := s.compareUploads(r, field1, field2)
	s.opts.Metrics.ObserveAnalysis(res, err, time.Since(start))
	return res, err
}

func (s *Server) compareUploads(r *http.Request, field1, field2 string) (*diff.Result, error) {
	r1, err := snapshot(r, field1)
	if err != nil {
		return nil, err
	}
	r2, err := snapshot(r, field2)
	if err != nil {
		return nil, err
	}
	res := s.opts.Engine.Compare(r1, r2)
	logger.FromContext(r.Context()).Info("snapshots compared",
		"year1_names", r1.Len(), "year2_names", r2.Len(), "events", len(res.Events()))
	return res, nil
}

func snapshot(r *http.Request, field string) (*roster.Roster, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "missing upload %s", field)
	}
	defer f.Close()
	if !strings.EqualFold(filepath.Ext(hdr.Filename), ".txt") {
		return nil, apperrors.New(apperrors.ErrUnsupportedFormat, http.StatusBadRequest, "Only .txt files are allowed for faculty data")
	}
	rst, err := roster.Parse(f)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "cannot read %s: %v", hdr.Filename, err)
	}
	if rst.Empty() {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"%s contains no `Title: names` lines", hdr.Filename)
	}
	return rst, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	msg := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	} else {
		logger.FromContext(r.Context()).Warn("request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, r, status, msg)
}

func attach(w http.ResponseWriter, name string, format sheet.Format, body []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
