package server

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/playperu/eastertrail/internal/upload"
)

// multipartMemory is how much of a form is buffered in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// formFile pulls the "file" part out of a multipart upload.
func formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return nil, nil, false
		}
		writeError(w, http.StatusBadRequest, "Missing file")
		return nil, nil, false
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file")
		return nil, nil, false
	}
	return f, hdr, true
}

func writeUploadResult(w http.ResponseWriter, logger *slog.Logger, saved upload.Saved, err error) {
	if errors.Is(err, upload.ErrInvalidSlot) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		logger.Error("storing upload", "error", err)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}
	logger.Info("upload stored", "filename", saved.Filename)
	writeJSON(w, http.StatusOK, saved)
}

func handleUploadBackground(logger *slog.Logger, store *upload.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, hdr, ok := formFile(w, r)
		if !ok {
			return
		}
		defer f.Close()

		saved, err := store.SaveBackground(r.FormValue("day"), hdr.Filename, f)
		writeUploadResult(w, logger, saved, err)
	}
}

func handleUploadItem(logger *slog.Logger, store *upload.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, hdr, ok := formFile(w, r)
		if !ok {
			return
		}
		defer f.Close()

		saved, err := store.SaveItem(r.FormValue("day"), r.FormValue("index"), hdr.Filename, f)
		writeUploadResult(w, logger, saved, err)
	}
}

func handleListBackgrounds(logger *slog.Logger, store *upload.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListBackgrounds()
		if err != nil {
			logger.Error("listing backgrounds", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list backgrounds")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleListItems(logger *slog.Logger, store *upload.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListItems()
		if err != nil {
			logger.Error("listing item images", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list items")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
