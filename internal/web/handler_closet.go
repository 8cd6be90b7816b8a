package web

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/vbonduro/closet/internal/domain"
	"github.com/vbonduro/closet/internal/inventory"
	"github.com/vbonduro/closet/internal/service"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCloset(w http.ResponseWriter, r *http.Request) {
	f := inventory.Filter{Limit: s.maxVisible}
	if c := r.URL.Query().Get("category"); c != "" {
		cat, err := domain.ParseCategory(c)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgBadCategory})
			return
		}
		f.Category = cat
	}
	if all := r.URL.Query().Get("all"); all != "" {
		showAll, err := strconv.ParseBool(all)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "all must be true or false"})
			return
		}
		f.ShowAll = showAll
	}
	s.writeJSON(w, http.StatusOK, s.closet.List(f))
}

type uploadResult struct {
	Name  string               `json:"name"`
	Item  *domain.ClothingItem `json:"item,omitempty"`
	Error string               `json:"error,omitempty"`
}

// handleUploads ingests every "image" file of a multipart form. Each file
// gets its own result; the request succeeds even when some files fail.
func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse form"})
		return
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image file required"})
		return
	}

	results := make([]uploadResult, len(files))
	var uploads []service.Upload
	var slots []int
	for i, fh := range files {
		results[i].Name = fh.Filename
		up, err := s.readUpload(fh)
		if err != nil {
			results[i].Error = msgImageLoad
			continue
		}
		uploads = append(uploads, up)
		slots = append(slots, i)
	}

	for j, res := range s.closet.Ingest(r.Context(), uploads) {
		out := &results[slots[j]]
		out.Item = res.Item
		if res.Err != nil {
			status, msg := errorResponse(res.Err)
			if status == http.StatusInternalServerError {
				s.logger.Error("ingest failed", "name", res.Name, "error", res.Err)
			}
			out.Error = msg
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse form"})
		return
	}
	files := r.MultipartForm.File["image"]
	if len(files) != 1 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exactly one image file required"})
		return
	}

	up, err := s.readUpload(files[0])
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgImageLoad})
		return
	}

	item, err := s.closet.Capture(r.Context(), up)
	s.writeAdded(w, r, item, err)
}

type surpriseRequest struct {
	Category string `json:"category" validate:"required"`
	Gender   string `json:"gender" validate:"omitempty,oneof=girl boy"`
}

func (s *Server) handleSurprise(w http.ResponseWriter, r *http.Request) {
	var req surpriseRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}
	cat, err := domain.ParseCategory(req.Category)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgBadCategory})
		return
	}
	gender := domain.Gender(req.Gender)
	if gender == "" {
		gender = domain.GenderGirl
	}

	item, err := s.closet.Surprise(r.Context(), cat, gender)
	s.writeAdded(w, r, item, err)
}

// writeAdded reports a single added item. When the closet is full the item
// stays for this session but was not saved, so both are returned.
func (s *Server) writeAdded(w http.ResponseWriter, r *http.Request, item *domain.ClothingItem, err error) {
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusCreated, item)
	case item != nil && errors.Is(err, inventory.ErrClosetFull):
		s.logger.Warn("item added but not saved", "item_id", item.ID, "error", err)
		s.writeJSON(w, http.StatusInsufficientStorage, map[string]any{"error": msgClosetFull, "item": item})
	default:
		s.writeError(w, r, err)
	}
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := s.closet.Remove(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, domain.Theme(domain.Gender(r.URL.Query().Get("gender"))))
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	reader, mimeType, err := s.photoStore.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "asset reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write asset failed", "key", r.PathValue("key"), "error", err)
	}
}

func (s *Server) readUpload(fh *multipart.FileHeader) (service.Upload, error) {
	file, err := fh.Open()
	if err != nil {
		return service.Upload{}, err
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err := io.ReadAll(file)
	if err != nil {
		return service.Upload{}, err
	}
	mimeType, ok := allowedImageMIME(data)
	if !ok {
		return service.Upload{}, errUnsupportedImage
	}
	return service.Upload{Name: fh.Filename, Data: data, MimeType: mimeType}, nil
}
