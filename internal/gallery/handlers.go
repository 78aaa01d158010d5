package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/glimmerhub/keyset"
)

// Lister is the store surface the handlers depend on, split out so tests can
// substitute fakes.
type Lister interface {
	ListImages(ctx context.Context, params ListImagesParams) (*ImagePage, error)
	GetUser(ctx context.Context, id uint64) (*User, error)
	ListUserImages(ctx context.Context, userID uint64, limit, page int) (keyset.PagingData[Image], error)
	UpdateCaption(ctx context.Context, publicID string, caption string) (*Image, error)
}

type Handlers struct {
	store Lister
}

func NewHandlers(store Lister) *Handlers {
	return &Handlers{store: store}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeStoreError maps store failures to HTTP statuses: validation failures
// are the client's fault, missing rows are 404, flagged captions are 422,
// anything else is a 500 with the detail kept out of the response.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, keyset.ErrInvalidSortSpec) || errors.Is(err, keyset.ErrInvalidCursor):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrCaptionRejected):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("gallery: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ListImages handles GET /api/v1/images.
// Query parameters: limit, cursor (scalar cursor of the previous page),
// sort ("score desc, id").
func (h *Handlers) ListImages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, _ := strconv.Atoi(query.Get("limit"))

	page, err := h.store.ListImages(r.Context(), ListImagesParams{
		Limit:  limit,
		Cursor: query.Get("cursor"),
		Sort:   query.Get("sort"),
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// GetUser handles GET /api/v1/users/{userID}.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// userImagesResponse is the page/limit envelope with navigation links.
type userImagesResponse struct {
	keyset.PagingData[Image]
	keyset.PageLinks
}

// ListUserImages handles GET /api/v1/users/{userID}/images.
// Query parameters: page, limit. Responds with paging metadata and absolute
// next/prev page links derived from the request URL.
func (h *Handlers) ListUserImages(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	if _, err := h.store.GetUser(r.Context(), userID); err != nil {
		writeStoreError(w, err)
		return
	}

	data, err := h.store.ListUserImages(r.Context(), userID, limit, page)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userImagesResponse{
		PagingData: data,
		PageLinks:  keyset.GetPageLinks(absoluteRequestURL(r), data.CurrentPage, data.TotalPages),
	})
}

type updateCaptionRequest struct {
	Caption string `json:"caption"`
}

// UpdateCaption handles PATCH /api/v1/images/{imageID}/caption. The new
// caption is screened through moderation before it is stored.
func (h *Handlers) UpdateCaption(w http.ResponseWriter, r *http.Request) {
	var req updateCaptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	image, err := h.store.UpdateCaption(r.Context(), chi.URLParam(r, "imageID"), req.Caption)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, image)
}

// absoluteRequestURL rebuilds the absolute URL of the incoming request.
// r.URL of a server request carries only path and query.
func absoluteRequestURL(r *http.Request) *url.URL {
	cloned := *r.URL
	cloned.Host = r.Host
	cloned.Scheme = "http"
	if r.TLS != nil {
		cloned.Scheme = "https"
	}

	return &cloned
}
