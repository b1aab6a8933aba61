package http

import (
	"fmt"
	"net/http"
	"time"

	"saldo/internal/i18n"
	"saldo/internal/log"
	"saldo/internal/services"
)

// handleImport accepts a JSON export file as the "file" multipart part
// and reconciles it record by record. The report names every record that
// was skipped.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		BadRequestError(i18n.MustTranslate(lang, "importFail")).Write(w)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		BadRequestError(i18n.MustTranslate(lang, "importFail")).Write(w)
		return
	}
	defer file.Close()

	report, err := s.importer.ImportAll(r.Context(), file)
	if err != nil {
		// Only a file that is not valid JSON fails the whole call.
		BadRequestError(i18n.MustTranslate(lang, "importFail")).Write(w)
		return
	}

	resp := NewResponse().Payload(report)
	if len(report.Failed) > 0 {
		resp.NotifyError(fmt.Sprintf("%s (%d skipped)",
			i18n.MustTranslate(lang, "importSuccess"), len(report.Failed)))
	} else {
		resp.NotifySuccess(i18n.MustTranslate(lang, "importSuccess"))
	}
	resp.Write(w)
}

// handleExport streams the full record set as a downloadable JSON file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", services.Filename(time.Now())))

	if err := s.exporter.Export(r.Context(), w); err != nil {
		// Headers are already on the wire; all we can do is log.
		s.logger.ErrorContext(r.Context(), "Export failed", log.FieldError, err)
	}
}
