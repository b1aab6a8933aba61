package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"saldo/internal/blob"
	"saldo/internal/core"
	"saldo/internal/i18n"
	"saldo/internal/log"
	"saldo/internal/services"
	"saldo/internal/store"
)

// maxUploadBytes bounds multipart request bodies (attachment included).
const maxUploadBytes = 10 << 20

// handleListExpenses returns the projected balance lines, optionally
// narrowed by ?q= (name substring), ?from= and ?to= (inclusive dates).
// Filtering happens after projection so running balances always reflect
// the full record set.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	lines, err := s.ledger.ListProjected(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List expenses failed", log.FieldError, err)
		InternalServerError("something went wrong").Write(w)
		return
	}

	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	from, err := parseDateParam(r, "from")
	if err != nil {
		BadRequestError("malformed 'from' date").Write(w)
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		BadRequestError("malformed 'to' date").Write(w)
		return
	}

	filtered := lines[:0:0]
	for _, line := range lines {
		if q != "" && !strings.Contains(strings.ToLower(line.Name), q) {
			continue
		}
		if from != nil && line.OccurredOn.Before(*from) {
			continue
		}
		if to != nil && line.OccurredOn.After(to.Time) {
			continue
		}
		filtered = append(filtered, line)
	}
	if filtered == nil {
		filtered = []core.BalanceLine{}
	}

	NewResponse().Payload(filtered).Write(w)
}

func parseDateParam(r *http.Request, name string) (*core.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// handleCreateExpense accepts a multipart form: name, occurredOn and
// amount fields plus an optional "attachment" file part.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		BadRequestError(i18n.MustTranslate(lang, "addFail")).Write(w)
		return
	}

	e, err := core.Normalize(core.RawRecord{
		Name:       r.FormValue("name"),
		OccurredOn: r.FormValue("occurredOn"),
		Amount:     r.FormValue("amount"),
	})
	if err != nil {
		BadRequestError(i18n.MustTranslate(lang, "addFail")).Write(w)
		return
	}

	var attachment *services.Attachment
	if file, header, ferr := r.FormFile("attachment"); ferr == nil {
		defer file.Close()
		attachment = &services.Attachment{
			Filename: filepath.Base(header.Filename),
			Size:     header.Size,
			Content:  file,
		}
	}

	id, err := s.ledger.Create(r.Context(), e, attachment)
	if err != nil {
		if id != "" {
			// The record exists but its attachment did not make it.
			NewResponse().
				Status(http.StatusInternalServerError).
				Payload(map[string]string{"id": id}).
				NotifyError(i18n.MustTranslate(lang, "uploadFail")).
				Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Create expense failed", log.FieldError, err)
		BadRequestError(i18n.MustTranslate(lang, "addFail")).Write(w)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		Payload(map[string]string{"id": id}).
		NotifySuccess(i18n.MustTranslate(lang, "addSuccess")).
		Write(w)
}

// handleUpdateExpense replaces every field of the identified record with
// the JSON body.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)

	var raw core.RawRecord
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		BadRequestError(i18n.MustTranslate(lang, "updateFail")).Write(w)
		return
	}
	e, err := core.Normalize(raw)
	if err != nil {
		BadRequestError(i18n.MustTranslate(lang, "updateFail")).Write(w)
		return
	}
	e.ID = r.PathValue("id")

	if err := s.ledger.Update(r.Context(), e); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFoundError(i18n.MustTranslate(lang, "updateFail")).Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Update expense failed",
			log.FieldRecordID, e.ID, log.FieldError, err)
		InternalServerError(i18n.MustTranslate(lang, "updateFail")).Write(w)
		return
	}

	NewResponse().
		NotifySuccess(i18n.MustTranslate(lang, "updateSuccess")).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)
	id := r.PathValue("id")

	if err := s.ledger.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFoundError(i18n.MustTranslate(lang, "deleteFail")).Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Delete expense failed",
			log.FieldRecordID, id, log.FieldError, err)
		InternalServerError(i18n.MustTranslate(lang, "deleteFail")).Write(w)
		return
	}

	NewResponse().
		NotifySuccess(i18n.MustTranslate(lang, "deleteSuccess")).
		Write(w)
}

// handleAttachment redirects to the blob download URL for the record's
// attachment.
func (s *Server) handleAttachment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	url, err := s.ledger.AttachmentURL(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, blob.ErrNotFound) {
			NotFoundError("attachment not found").Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Attachment URL lookup failed",
			log.FieldRecordID, id, log.FieldError, err)
		InternalServerError("something went wrong").Write(w)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}
