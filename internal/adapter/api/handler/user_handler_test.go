package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilehub/internal/adapter/api"
	"profilehub/internal/adapter/api/handler"
	"profilehub/internal/adapter/api/middleware"
	"profilehub/internal/adapter/api/router"
	"profilehub/internal/domain/entity"
	"profilehub/internal/testutil"
	"profilehub/internal/usecase"
	"profilehub/pkg/response"
)

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

type testServer struct {
	e      *echo.Echo
	repo   *testutil.MemoryUserRepository
	stager *testutil.FakeStager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo := testutil.NewMemoryUserRepository()
	stager := testutil.NewFakeStager()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, u := range []*entity.User{
		{ID: "admin-1", Mobile: "9000000001", Name: "Admin", Role: entity.RoleAdmin, Version: 1, CreatedAt: now},
		{ID: "u-1", Mobile: "9000000002", Name: "Plain", Role: entity.RoleUser, Version: 1, CreatedAt: now.Add(time.Minute)},
	} {
		u.EnsureCollections()
		repo.Put(u)
	}

	handler.Setup(usecase.NewUserUseCase(repo), handler.NewFileHandler(stager, 1024))
	handler.SetupHealthHandler(repo)

	e := echo.New()
	e.HTTPErrorHandler = response.HTTPErrorHandler
	e.Validator = api.NewValidator()

	verifier := testutil.StaticVerifier{Tokens: map[string]string{
		adminToken: "admin-1",
		userToken:  "u-1",
	}}
	router.Setup(e, middleware.NewAuthMiddleware(verifier), middleware.NewAccessMiddleware(repo))

	return &testServer{e: e, repo: repo, stager: stager}
}

func (s *testServer) do(t *testing.T, req *http.Request, token string) *httptest.ResponseRecorder {
	t.Helper()
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var r io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req
}

type filePart struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func multipartRequest(t *testing.T, method, target string, values map[string]string, files ...filePart) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range values {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) entity.User {
	t.Helper()
	var u entity.User
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &u))
	return u
}

func png(name string) filePart {
	return filePart{field: "image", filename: name, contentType: "image/png", content: []byte("\x89PNG\r\n\x1a\nfake")}
}

func TestCreateUser(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, jsonRequest(http.MethodPost, "/v1/users", map[string]string{
		"mobile": "9123456789",
		"name":   "Asha",
		"email":  "Asha@Example.com",
	}), adminToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, `"1"`, rec.Header().Get("ETag"))

	user := decodeUser(t, rec)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, entity.DefaultRole, user.Role)
	assert.Empty(t, user.CompanyDetails)
	assert.Empty(t, user.Products)

	rec = s.do(t, jsonRequest(http.MethodPost, "/v1/users", map[string]string{"mobile": "9123456789"}), adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Mobile already taken", decode(t, rec).Error.Message)
}

func TestCreateUser_Validation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, jsonRequest(http.MethodPost, "/v1/users", map[string]string{"name": "No Mobile"}), adminToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	rec = s.do(t, jsonRequest(http.MethodPost, "/v1/users", map[string]string{"mobile": "1", "role": "root"}), adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, jsonRequest(http.MethodGet, "/v1/users/u-1", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, jsonRequest(http.MethodGet, "/v1/users/u-1", nil), "bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, rec).Error.Code)
}

func TestAccess_OwnProfileOrRight(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, jsonRequest(http.MethodGet, "/v1/users/u-1", nil), userToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"1"`, rec.Header().Get("ETag"))

	rec = s.do(t, jsonRequest(http.MethodGet, "/v1/users/admin-1", nil), userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, jsonRequest(http.MethodGet, "/v1/users", nil), userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, jsonRequest(http.MethodGet, "/v1/users/u-1", nil), adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, jsonRequest(http.MethodGet, "/v1/users/missing", nil), adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode(t, rec).Error.Message)
}

func TestUpdateUser_MultipartWithImage(t *testing.T) {
	s := newTestServer(t)

	req := multipartRequest(t, http.MethodPatch, "/v1/users/u-1", map[string]string{"name": "Renamed"}, png("me.png"))
	rec := s.do(t, req, userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `"2"`, rec.Header().Get("ETag"))

	user := decodeUser(t, rec)
	assert.Equal(t, "Renamed", user.Name)
	assert.Equal(t, "9000000002", user.Mobile)
	require.Len(t, user.Image, 1)
	assert.Equal(t, "/staged/image-1", user.Image[0].Path)
	assert.Len(t, s.stager.Staged, 1)
}

func TestUpdateCoverImage(t *testing.T) {
	s := newTestServer(t)

	part := png("cover.png")
	part.field = entity.CoverImageField
	rec := s.do(t, multipartRequest(t, http.MethodPatch, "/v1/users/cover-image/u-1", nil, part), userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	user := decodeUser(t, rec)
	assert.Len(t, user.CoverImage, 1)
	assert.Empty(t, user.Image)

	rec = s.do(t, jsonRequest(http.MethodDelete, "/v1/users/cover-image/u-1", nil), userToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeUser(t, rec).CoverImage)
}

func TestUpload_RejectsDisallowedType(t *testing.T) {
	s := newTestServer(t)

	part := filePart{field: "images", filename: "notes.txt", contentType: "text/plain", content: []byte("hi")}
	rec := s.do(t, multipartRequest(t, http.MethodPost, "/v1/users/gallery/u-1", nil, part), userToken)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	stored, err := s.repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Nil(t, stored.Gallery)
	assert.Equal(t, int64(1), stored.Version)
}

func TestUpload_TooLarge(t *testing.T) {
	s := newTestServer(t)

	part := png("big.png")
	part.content = bytes.Repeat([]byte("x"), 2048)
	rec := s.do(t, multipartRequest(t, http.MethodPatch, "/v1/users/u-1", nil, part), userToken)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, s.stager.Staged)
}

func TestGallery_UploadLimitAndDelete(t *testing.T) {
	s := newTestServer(t)

	var parts []filePart
	for i := 0; i < 11; i++ {
		p := png(fmt.Sprintf("g%d.png", i))
		p.field = "images"
		parts = append(parts, p)
	}
	rec := s.do(t, multipartRequest(t, http.MethodPost, "/v1/users/gallery/u-1", nil, parts...), userToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.stager.Staged)

	rec = s.do(t, multipartRequest(t, http.MethodPost, "/v1/users/gallery/u-1", nil, parts[:2]...), userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decodeUser(t, rec)
	require.NotNil(t, user.Gallery)
	require.Len(t, user.Gallery.Images, 2)

	rec = s.do(t, jsonRequest(http.MethodDelete, "/v1/users/gallery/u-1", map[string][]string{
		"imageNames": {user.Gallery.Images[0].Name()},
	}), userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user = decodeUser(t, rec)
	require.Len(t, user.Gallery.Images, 1)
	assert.Equal(t, "images-2", user.Gallery.Images[0].Name())

	rec = s.do(t, jsonRequest(http.MethodDelete, "/v1/users/gallery/u-1", map[string][]string{"imageNames": {}}), userToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_UnknownUserDiscardsStagedFiles(t *testing.T) {
	s := newTestServer(t)

	p := png("g.png")
	p.field = "images"
	rec := s.do(t, multipartRequest(t, http.MethodPost, "/v1/users/gallery/ghost", nil, p), adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, s.stager.Staged, 1)
	assert.Equal(t, []string{s.stager.Staged[0].Path}, s.stager.Discarded)
}

func TestIfMatch(t *testing.T) {
	s := newTestServer(t)

	req := jsonRequest(http.MethodPatch, "/v1/users/u-1", map[string]string{"bio": "stale"})
	req.Header.Set("If-Match", `"7"`)
	rec := s.do(t, req, userToken)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "VERSION_CONFLICT", decode(t, rec).Error.Code)

	req = jsonRequest(http.MethodPatch, "/v1/users/u-1", map[string]string{"bio": "fresh"})
	req.Header.Set("If-Match", `W/"1"`)
	rec = s.do(t, req, userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "fresh", decodeUser(t, rec).Bio)

	req = jsonRequest(http.MethodPatch, "/v1/users/u-1", map[string]string{"bio": "x"})
	req.Header.Set("If-Match", "abc")
	rec = s.do(t, req, userToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanyRoutes(t *testing.T) {
	s := newTestServer(t)

	logo := png("logo.png")
	logo.field = "company_image"
	rec := s.do(t, multipartRequest(t, http.MethodPost, "/v1/users/company/u-1",
		map[string]string{"company_name": "Acme", "company_email": "hi@acme.com"}, logo), userToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	user := decodeUser(t, rec)
	require.Len(t, user.CompanyDetails, 1)
	company := user.CompanyDetails[0]
	assert.Equal(t, "Acme", company.Name)
	assert.Len(t, company.Image, 1)

	rec = s.do(t, jsonRequest(http.MethodPatch, "/v1/users/company/u-1/"+company.ID,
		map[string]string{"company_address": "Main St"}), userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeUser(t, rec).CompanyDetails[0]
	assert.Equal(t, "Acme", updated.Name)
	assert.Equal(t, "Main St", updated.Address)

	rec = s.do(t, jsonRequest(http.MethodPatch, "/v1/users/company/u-1/"+company.ID,
		map[string]string{"company_website": "not a url"}), userToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, jsonRequest(http.MethodDelete, "/v1/users/company/u-1/"+company.ID+"/image", nil), userToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeUser(t, rec).CompanyDetails[0].Image)

	rec = s.do(t, jsonRequest(http.MethodDelete, "/v1/users/company/u-1/"+company.ID, nil), userToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeUser(t, rec).CompanyDetails)

	rec = s.do(t, jsonRequest(http.MethodDelete, "/v1/users/company/u-1/"+company.ID, nil), userToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SUB_RESOURCE_NOT_FOUND", decode(t, rec).Error.Code)
}

func TestOfficeTimingRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, jsonRequest(http.MethodPost, "/v1/users/office-timing/u-1",
		map[string]string{"start_time": "09:00", "end_time": "18:00"}), userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, jsonRequest(http.MethodGet, "/v1/users/office-timing/u-1", nil), userToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var timings []entity.OfficeTiming
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &timings))
	assert.Len(t, timings, 7)
	assert.Equal(t, "09:00", timings[0].StartTime)

	rec = s.do(t, jsonRequest(http.MethodPost, "/v1/users/office-timing/u-1",
		map[string]string{"start_time": "09:00"}), userToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSocialMediaAndFiles(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, jsonRequest(http.MethodPatch, "/v1/users/social-media/u-1",
		map[string]string{"u_twitter": "@plain"}), userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decodeUser(t, rec)
	require.NotNil(t, user.SocialMedia)
	assert.Equal(t, "@plain", user.SocialMedia.Twitter)

	doc := filePart{field: "documents", filename: "cv.pdf", contentType: "application/pdf", content: []byte("%PDF-1.4")}
	rec = s.do(t, multipartRequest(t, http.MethodPost, "/v1/users/files/u-1", nil, doc), userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user = decodeUser(t, rec)
	require.NotNil(t, user.Files)
	assert.Len(t, user.Files.Documents, 1)
}

func TestProductRoutes(t *testing.T) {
	s := newTestServer(t)

	img := png("p.png")
	img.field = "images"
	rec := s.do(t, multipartRequest(t, http.MethodPost, "/v1/users/product/u-1",
		map[string]string{"title": "Widget", "description": "Small"}, img), userToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	user := decodeUser(t, rec)
	require.Len(t, user.Products, 1)
	product := user.Products[0]
	assert.Equal(t, "Widget", product.Title)
	assert.Len(t, product.Images, 1)

	rec = s.do(t, jsonRequest(http.MethodPatch, "/v1/users/product/u-1/"+product.ID,
		map[string]string{"title": "Gadget"}), userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeUser(t, rec).Products[0]
	assert.Equal(t, "Gadget", updated.Title)
	assert.Empty(t, updated.Images)

	rec = s.do(t, jsonRequest(http.MethodDelete, "/v1/users/product/u-1/"+product.ID, nil), userToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeUser(t, rec).Products)

	rec = s.do(t, jsonRequest(http.MethodDelete, "/v1/users/product/u-1/nope", nil), userToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsers(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, jsonRequest(http.MethodGet, "/v1/users?sortBy=name:desc&limit=1&page=2", nil), adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page struct {
		Results      []entity.User `json:"results"`
		Page         int           `json:"page"`
		Limit        int           `json:"limit"`
		TotalPages   int           `json:"totalPages"`
		TotalResults int64         `json:"totalResults"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 1, page.Limit)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, int64(2), page.TotalResults)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Admin", page.Results[0].Name)

	rec = s.do(t, jsonRequest(http.MethodGet, "/v1/users?role=user", nil), adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
	require.Len(t, page.Results, 1)
	assert.Equal(t, "u-1", page.Results[0].ID)

	rec = s.do(t, jsonRequest(http.MethodGet, "/v1/users?sortBy=password:asc", nil), adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, jsonRequest(http.MethodDelete, "/v1/users/u-1", nil), adminToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, jsonRequest(http.MethodGet, "/v1/users/u-1", nil), adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, jsonRequest(http.MethodDelete, "/v1/users/u-1", nil), adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/v1/nothing", strings.NewReader("")), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec).Error.Code)
}
