package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/glimmerhub/keyset"
)

type fakeStore struct {
	imagePage  *ImagePage
	pagingData keyset.PagingData[Image]
	user       *User
	image      *Image
	err        error
}

func (f *fakeStore) ListImages(_ context.Context, _ ListImagesParams) (*ImagePage, error) {
	return f.imagePage, f.err
}

func (f *fakeStore) GetUser(_ context.Context, _ uint64) (*User, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.user, nil
}

func (f *fakeStore) ListUserImages(_ context.Context, _ uint64, _, _ int) (keyset.PagingData[Image], error) {
	return f.pagingData, f.err
}

func (f *fakeStore) UpdateCaption(_ context.Context, _ string, _ string) (*Image, error) {
	return f.image, f.err
}

func serve(store Lister, method, target string, body string) *httptest.ResponseRecorder {
	router := NewRouter(NewHandlers(store))

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func Test_ListImages_Handler(t *testing.T) {
	store := &fakeStore{
		imagePage: &ImagePage{
			Items:        []Image{{ID: 1, Caption: "sunset", Score: 90}},
			NextCursor:   "90:1",
			AppliedLimit: 10,
			Total:        42,
		},
	}

	rec := serve(store, http.MethodGet, "/api/v1/images?limit=10&sort=score+desc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page ImagePage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	require.Equal(t, "90:1", page.NextCursor)
	require.Equal(t, int64(42), page.Total)
}

func Test_ListImages_Handler_BadCursor(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("%w: non-numeric segment 'abc'", keyset.ErrInvalidCursor)}

	rec := serve(store, http.MethodGet, "/api/v1/images?cursor=abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_ListImages_Handler_BadSort(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("%w: unknown column alias 'password'", keyset.ErrInvalidSortSpec)}

	rec := serve(store, http.MethodGet, "/api/v1/images?sort=password", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_GetUser_Handler(t *testing.T) {
	store := &fakeStore{user: &User{ID: 7, Username: "ansel"}}

	rec := serve(store, http.MethodGet, "/api/v1/users/7", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var user User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "ansel", user.Username)
}

func Test_GetUser_Handler_NotFound(t *testing.T) {
	store := &fakeStore{err: gorm.ErrRecordNotFound}

	rec := serve(store, http.MethodGet, "/api/v1/users/9999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_GetUser_Handler_BadID(t *testing.T) {
	rec := serve(&fakeStore{}, http.MethodGet, "/api/v1/users/not-a-number", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_ListUserImages_Handler_Links(t *testing.T) {
	store := &fakeStore{
		user: &User{ID: 7, Username: "ansel"},
		pagingData: keyset.PagingData[Image]{
			Items:       []Image{{ID: 1, Caption: "sunset"}},
			TotalItems:  95,
			TotalPages:  5,
			CurrentPage: 2,
			PageSize:    20,
		},
	}

	rec := serve(store, http.MethodGet, "http://gallery.example.com/api/v1/users/7/images?page=2&limit=20", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		keyset.PagingData[Image]
		keyset.PageLinks
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Equal(t, 5, resp.TotalPages)
	require.NotNil(t, resp.NextPage)
	require.NotNil(t, resp.PrevPage)
	require.Contains(t, *resp.NextPage, "page=3")
	require.Contains(t, *resp.PrevPage, "page=1")
	require.Contains(t, *resp.NextPage, "gallery.example.com")
}

func Test_UpdateCaption_Handler_Flagged(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("%w: [harassment]", ErrCaptionRejected)}

	rec := serve(store, http.MethodPatch, "/api/v1/images/2b1f8b2e/caption", `{"caption":"nasty"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func Test_UpdateCaption_Handler_OK(t *testing.T) {
	store := &fakeStore{image: &Image{ID: 5, Caption: "a harbor at dusk"}}

	rec := serve(store, http.MethodPatch, "/api/v1/images/2b1f8b2e/caption", `{"caption":"a harbor at dusk"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var image Image
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &image))
	require.Equal(t, "a harbor at dusk", image.Caption)
}

func Test_UpdateCaption_Handler_BadJSON(t *testing.T) {
	rec := serve(&fakeStore{}, http.MethodPatch, "/api/v1/images/2b1f8b2e/caption", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
