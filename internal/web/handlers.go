package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/makoto1101/check-publication-status/internal/feed"
	"github.com/makoto1101/check-publication-status/internal/listing"
	"github.com/makoto1101/check-publication-status/internal/reconcile"
	"github.com/makoto1101/check-publication-status/internal/report"
	"github.com/makoto1101/check-publication-status/internal/store"
)

// multipartMemory is how much of a run upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status": "ok",
		"runs":   s.service.Limiter().Status(),
	})
}

// channelView describes one registered channel.
type channelView struct {
	Channel    listing.Channel `json:"channel"`
	Label      string          `json:"label"`
	FileMarker string          `json:"file_marker"`
	Portal     bool            `json:"portal"`
	Companion  listing.Channel `json:"companion,omitempty"`
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	defs := listing.All()
	out := make([]channelView, 0, len(defs))
	for _, d := range defs {
		out = append(out, channelView{
			Channel:    d.Channel,
			Label:      d.Label,
			FileMarker: d.FileMarker,
			Portal:     d.Portal(),
			Companion:  d.Companion,
		})
	}
	render.JSON(w, r, out)
}

// handleCreateRun runs a reconciliation over the multipart "files" field.
// Optional fields: base, as_of (YYYYMMDD or YYYY-MM-DD), item_codes and
// vendor_codes (one per line).
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Run.MaxFileSize*int64(s.cfg.Run.MaxFiles))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, r, fmt.Errorf("request body: %w", feed.ErrFileTooLarge))
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		respondError(w, r, fmt.Errorf("%w: no files uploaded", errBadRequest))
		return
	}
	if len(headers) > s.cfg.Run.MaxFiles {
		respondError(w, r, fmt.Errorf("%w: %d files exceeds the limit of %d", errBadRequest, len(headers), s.cfg.Run.MaxFiles))
		return
	}

	uploads := make([]reconcile.Upload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			respondError(w, r, fmt.Errorf("open %s: %w", h.Filename, err))
			return
		}
		data, err := feed.ReadAll(f, s.cfg.Run.MaxFileSize)
		f.Close()
		if err != nil {
			respondError(w, r, fmt.Errorf("%s: %w", h.Filename, err))
			return
		}
		uploads = append(uploads, reconcile.Upload{Name: h.Filename, Data: data})
	}

	base := strings.TrimSpace(r.FormValue("base"))
	if base == "" {
		base = s.cfg.Listing.DefaultBase
	}
	req := reconcile.Request{
		Files:       uploads,
		Base:        listing.Channel(base),
		AsOf:        normalizeDate(r.FormValue("as_of")),
		ItemCodes:   splitLines(r.FormValue("item_codes")),
		VendorCodes: splitLines(r.FormValue("vendor_codes")),
	}

	run, err := s.service.Run(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newRunView(run, report.Filter{}, 1))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.service.List(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if runs == nil {
		runs = []store.Summary{}
	}
	render.JSON(w, r, runs)
}

// handleGetRun returns one page of a run's rows after filtering.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	render.JSON(w, r, newRunView(run, filter, page))
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id, err := parseRunID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.service.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportRun downloads the filtered rows as XLSX or CSV.
func (s *Server) handleExportRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	q := r.URL.Query()
	format := report.FormatXLSX
	if v := q.Get("format"); v != "" {
		if format, err = report.ParseFormat(v); err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}

	cols := report.Layout(run.Base, run.Channels)
	rows := filter.Apply(run.Rows)

	var buf bytes.Buffer
	contentType := format.ContentType()
	switch format {
	case report.FormatCSV:
		cs := report.ParseCharset(q.Get("charset"))
		err = report.WriteCSV(&buf, cols, rows, cs)
		if cs == report.UTF8 {
			contentType += "; charset=utf-8"
		} else {
			contentType += "; charset=Shift_JIS"
		}
	default:
		err = report.WriteXLSX(&buf, cols, rows)
	}
	if err != nil {
		respondError(w, r, fmt.Errorf("export run %s: %w", run.ID, err))
		return
	}

	name := report.FileName(time.Now(), baseLabel(run.Base), run.AsOf, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("export write failed", "run_id", run.ID, "error", err)
	}
}

// loadRun fetches the run named by the URL, writing the error response
// itself when that fails.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*store.Run, bool) {
	id, err := parseRunID(r)
	if err != nil {
		respondError(w, r, err)
		return nil, false
	}
	run, err := s.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return nil, false
	}
	return run, true
}

func parseRunID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad run id: %v", errBadRequest, err)
	}
	return id, nil
}

// parseFilter reads q, vendor, check (OK, 要確認 or review) and periodic
// (true/false, 〇/×) from the query string.
func parseFilter(r *http.Request) (report.Filter, error) {
	q := r.URL.Query()
	f := report.Filter{
		Text:       strings.TrimSpace(q.Get("q")),
		VendorCode: strings.TrimSpace(q.Get("vendor")),
	}
	if v := strings.TrimSpace(q.Get("check")); v != "" {
		var flag listing.CheckFlag
		if strings.EqualFold(v, "review") {
			flag = listing.NeedsReview
		} else if err := flag.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			return report.Filter{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		f.Check = &flag
	}
	if v := strings.TrimSpace(q.Get("periodic")); v != "" {
		var periodic bool
		switch v {
		case report.PeriodicYes:
			periodic = true
		case report.PeriodicNo:
			periodic = false
		default:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return report.Filter{}, fmt.Errorf("%w: periodic must be a boolean", errBadRequest)
			}
			periodic = b
		}
		f.Periodic = &periodic
	}
	return f, nil
}

// splitLines splits a textarea value into trimmed, non-empty lines.
func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// normalizeDate accepts YYYYMMDD as well as YYYY-MM-DD and YYYY/MM/DD.
func normalizeDate(s string) string {
	return strings.NewReplacer("-", "", "/", "").Replace(strings.TrimSpace(s))
}

func baseLabel(ch listing.Channel) string {
	if def, ok := listing.Lookup(ch); ok {
		return def.Label
	}
	return string(ch)
}
