package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shirtcatalog/internal/handlers"
	"shirtcatalog/internal/models"
	"shirtcatalog/internal/photostore"
	"shirtcatalog/internal/repositories"
	"shirtcatalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-image-payload")

// setupApp sets up a Fiber app backed by a private in-memory SQLite database and a
// temporary photo directory.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to connect to in-memory database")

	repo := repositories.NewGORMShirtRepository(db)
	require.NoError(t, repo.Migrate(t.Context()))
	t.Cleanup(func() { repo.Close() })

	photos, err := photostore.NewLocal(t.TempDir())
	require.NoError(t, err)

	catalogService := services.NewCatalogService(repo, photos, nil)

	app := fiber.New()
	handlers.NewCatalogHandler(catalogService).RegisterRoutes(app)
	handlers.NewPhotoHandler(photos).RegisterRoutes(app)
	return app
}

func multipartBody(t *testing.T, fields map[string]string, photoName string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if photoName != "" {
		part, err := w.CreateFormFile("photo", photoName)
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func createShirt(t *testing.T, app *fiber.App, fields map[string]string, photoName string, photo []byte) models.Shirt {
	t.Helper()
	body, contentType := multipartBody(t, fields, photoName, photo)
	req := httptest.NewRequest(http.MethodPost, "/catalog", body)
	req.Header.Set("Content-Type", contentType)

	status, respBody := do(t, app, req)
	require.Equal(t, http.StatusCreated, status, string(respBody))

	var shirt models.Shirt
	require.NoError(t, json.Unmarshal(respBody, &shirt))
	return shirt
}

// photoPath strips scheme and host from a photo reference.
func photoPath(t *testing.T, ref string) string {
	t.Helper()
	idx := strings.Index(ref, photostore.URLPrefix)
	require.GreaterOrEqual(t, idx, 0, "reference %q is not a stored photo", ref)
	return ref[idx:]
}

func TestCatalogLifecycle(t *testing.T) {
	app := setupApp(t)

	// Create with photo
	shirt := createShirt(t, app, map[string]string{"brand": "Acme", "size": "M", "price": "19.99"}, "front.png", pngBytes)
	assert.NotEmpty(t, shirt.ID)
	assert.Equal(t, "Acme", shirt.Brand)
	assert.Equal(t, "M", shirt.Size)
	assert.Equal(t, 19.99, shirt.Price)
	assert.True(t, strings.HasSuffix(shirt.PhotoRef, ".png"), shirt.PhotoRef)

	oldPhoto := photoPath(t, shirt.PhotoRef)
	status, body := do(t, app, httptest.NewRequest(http.MethodGet, oldPhoto, nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, pngBytes, body)

	// Get by ID
	status, body = do(t, app, httptest.NewRequest(http.MethodGet, "/catalog/"+shirt.ID, nil))
	require.Equal(t, http.StatusOK, status)
	var fetched models.Shirt
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, shirt, fetched)

	// Update price and photo
	newPNG := []byte("\x89PNG\r\n\x1a\nsecond-image")
	reqBody, contentType := multipartBody(t, map[string]string{"price": "24.50"}, "back.png", newPNG)
	req := httptest.NewRequest(http.MethodPut, "/catalog/"+shirt.ID, reqBody)
	req.Header.Set("Content-Type", contentType)
	status, body = do(t, app, req)
	require.Equal(t, http.StatusOK, status, string(body))

	var updated models.Shirt
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, shirt.ID, updated.ID)
	assert.Equal(t, "Acme", updated.Brand)
	assert.Equal(t, 24.5, updated.Price)
	assert.NotEqual(t, shirt.PhotoRef, updated.PhotoRef)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, oldPhoto, nil))
	assert.Equal(t, http.StatusNotFound, status, "replaced photo must be removed")
	newPhoto := photoPath(t, updated.PhotoRef)
	status, body = do(t, app, httptest.NewRequest(http.MethodGet, newPhoto, nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, newPNG, body)

	// Delete
	status, _ = do(t, app, httptest.NewRequest(http.MethodDelete, "/catalog/"+shirt.ID, nil))
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/catalog/"+shirt.ID, nil))
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, newPhoto, nil))
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, app, httptest.NewRequest(http.MethodDelete, "/catalog/"+shirt.ID, nil))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateShirtWithoutPhoto(t *testing.T) {
	app := setupApp(t)

	shirt := createShirt(t, app, map[string]string{"brand": "Acme", "size": "L", "price": "0"}, "", nil)
	assert.Equal(t, "", shirt.PhotoRef)
	assert.Equal(t, 0.0, shirt.Price)
}

func TestCreateShirtJSONBody(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodPost, "/catalog", strings.NewReader(`{"brand":"Globex","size":"XL","price":12.5}`))
	req.Header.Set("Content-Type", "application/json")
	status, body := do(t, app, req)
	require.Equal(t, http.StatusCreated, status, string(body))

	var shirt models.Shirt
	require.NoError(t, json.Unmarshal(body, &shirt))
	assert.Equal(t, "Globex", shirt.Brand)
	assert.Equal(t, 12.5, shirt.Price)

	req = httptest.NewRequest(http.MethodPost, "/catalog", strings.NewReader(`{"brand":`))
	req.Header.Set("Content-Type", "application/json")
	status, _ = do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCreateShirtValidation(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name   string
		fields map[string]string
		field  string
	}{
		{"missing brand", map[string]string{"size": "M", "price": "1"}, "brand"},
		{"missing size", map[string]string{"brand": "A", "price": "1"}, "size"},
		{"missing price", map[string]string{"brand": "A", "size": "M"}, "price"},
		{"negative price", map[string]string{"brand": "A", "size": "M", "price": "-5"}, "price"},
		{"non-numeric price", map[string]string{"brand": "A", "size": "M", "price": "cheap"}, "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.fields, "front.png", pngBytes)
			req := httptest.NewRequest(http.MethodPost, "/catalog", body)
			req.Header.Set("Content-Type", contentType)
			status, respBody := do(t, app, req)
			assert.Equal(t, http.StatusBadRequest, status)

			var payload struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(respBody, &payload))
			assert.Contains(t, payload.Fields, tt.field)
		})
	}

	// Nothing was stored.
	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	require.Equal(t, http.StatusOK, status)
	var list services.PageResult
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Empty(t, list.Data)
}

func TestListCatalogPagination(t *testing.T) {
	app := setupApp(t)

	var ids []string
	for i := 0; i < 5; i++ {
		shirt := createShirt(t, app, map[string]string{
			"brand": fmt.Sprintf("Brand %d", i),
			"size":  "M",
			"price": fmt.Sprintf("%d", 10+i),
		}, "", nil)
		ids = append(ids, shirt.ID)
	}

	list := func(query string) services.PageResult {
		status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/catalog"+query, nil))
		require.Equal(t, http.StatusOK, status, string(body))
		var result services.PageResult
		require.NoError(t, json.Unmarshal(body, &result))
		return result
	}

	result := list("?offset=0&limit=2")
	assert.True(t, result.Paginated)
	assert.Equal(t, int64(5), result.Total)
	require.Len(t, result.Data, 2)
	require.NotNil(t, result.TotalPages)
	assert.Equal(t, 3, *result.TotalPages)
	assert.Equal(t, 1, *result.Page)
	assert.Equal(t, ids[0], result.Data[0].ID)
	assert.Equal(t, ids[1], result.Data[1].ID)

	result = list("?offset=4&limit=2")
	require.Len(t, result.Data, 1)
	assert.Equal(t, ids[4], result.Data[0].ID)
	assert.Equal(t, 3, *result.Page)

	result = list("?offset=10&limit=2")
	assert.Empty(t, result.Data)
	assert.Equal(t, int64(5), result.Total)

	result = list("?page=2&per_page=2")
	assert.True(t, result.Paginated)
	require.Len(t, result.Data, 2)
	assert.Equal(t, ids[2], result.Data[0].ID)

	for _, query := range []string{"", "?offset=0", "?limit=abc&offset=0", "?offset=-1&limit=2", "?offset=0&limit=0"} {
		result = list(query)
		assert.False(t, result.Paginated, query)
		assert.Len(t, result.Data, 5, query)
		assert.Equal(t, int64(5), result.Total, query)
		assert.Nil(t, result.TotalPages, query)
	}
}

func TestInvalidAndMissingIDs(t *testing.T) {
	app := setupApp(t)
	absent := uuid.Must(uuid.NewV7()).String()

	update := func(id string) *http.Request {
		req := httptest.NewRequest(http.MethodPut, "/catalog/"+id, strings.NewReader("brand=X"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/catalog/not-an-id", nil),
		update("not-an-id"),
		httptest.NewRequest(http.MethodDelete, "/catalog/not-an-id", nil),
	} {
		status, _ := do(t, app, req)
		assert.Equal(t, http.StatusBadRequest, status, "%s %s", req.Method, req.URL.Path)
	}

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/catalog/"+absent, nil),
		update(absent),
		httptest.NewRequest(http.MethodDelete, "/catalog/"+absent, nil),
	} {
		status, _ := do(t, app, req)
		assert.Equal(t, http.StatusNotFound, status, "%s %s", req.Method, req.URL.Path)
	}
}

func TestUpdateWithoutPhotoKeepsPhoto(t *testing.T) {
	app := setupApp(t)

	shirt := createShirt(t, app, map[string]string{"brand": "Acme", "size": "M", "price": "10"}, "front.jpg", pngBytes)

	req := httptest.NewRequest(http.MethodPut, "/catalog/"+shirt.ID, strings.NewReader(`{"size":"S"}`))
	req.Header.Set("Content-Type", "application/json")
	status, body := do(t, app, req)
	require.Equal(t, http.StatusOK, status, string(body))

	var updated models.Shirt
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "S", updated.Size)
	assert.Equal(t, shirt.PhotoRef, updated.PhotoRef)

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, photoPath(t, shirt.PhotoRef), nil))
	assert.Equal(t, http.StatusOK, status)
}

func TestGetPhotoUnknownName(t *testing.T) {
	app := setupApp(t)

	status, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/uploads/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/uploads/..", nil))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFormValuesSurviveLaterRequests(t *testing.T) {
	repo := repositories.NewMemoryShirtRepository()
	photos, err := photostore.NewLocal(t.TempDir())
	require.NoError(t, err)

	app := fiber.New()
	handlers.NewCatalogHandler(services.NewCatalogService(repo, photos, nil)).RegisterRoutes(app)

	post := func(form string) models.Shirt {
		req := httptest.NewRequest(http.MethodPost, "/catalog", strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		status, body := do(t, app, req)
		require.Equal(t, http.StatusCreated, status, string(body))
		var shirt models.Shirt
		require.NoError(t, json.Unmarshal(body, &shirt))
		return shirt
	}

	first := post("brand=Nike&size=M&price=10")
	for i := 0; i < 20; i++ {
		post("brand=Puma&size=L&price=20")
	}

	req := httptest.NewRequest(http.MethodPut, "/catalog/"+first.ID, strings.NewReader("size=XS"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, body := do(t, app, req)
	require.Equal(t, http.StatusOK, status, string(body))
	for i := 0; i < 5; i++ {
		post("brand=Umbro&size=XL&price=30")
	}

	stored, err := repo.GetByID(t.Context(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nike", stored.Brand)
	assert.Equal(t, "XS", stored.Size)
	assert.Equal(t, 10.0, stored.Price)
}
