package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryList(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectQuery(`SELECT \* FROM "histories" ORDER BY date ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "title", "content", "image_url"}).
			AddRow(1, "1953-04-01", "개교", "...", env.store.PublicURL("histories/h1.png")).
			AddRow(2, "2024-03-01", "개교기념일", "...", nil))

	c, rec := env.request(t, http.MethodGet, "/api/histories/list", "", nil, "viewer")
	require.NoError(t, env.app.HistoryList(c))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=60")

	var res []HistoryInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res, 2)

	// Images come back with a render-endpoint companion for list display
	require.NotNil(t, res[0].ThumbnailURL)
	assert.Contains(t, *res[0].ThumbnailURL, "/render/image/public/"+testBucket+"/histories/h1.png")
	assert.Contains(t, *res[0].ThumbnailURL, "width=800")
	assert.Nil(t, res[1].ImageURL)
	assert.Nil(t, res[1].ThumbnailURL)
}

func TestHistoryCreateWithoutImage(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectBegin()
	env.mock.ExpectQuery(`INSERT INTO "histories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	env.mock.ExpectCommit()

	body, contentType := multipartBody(t, map[string]string{
		"date":    "2024-03-01",
		"title":   "개교기념일",
		"content": "line one\r\nline two",
	}, nil)

	c, rec := env.request(t, http.MethodPost, "/api/histories/save", contentType, body, "admin")
	require.NoError(t, env.app.HistoryCreate(c))

	require.Equal(t, http.StatusCreated, rec.Code)

	var res HistoryInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, uint(7), res.ID)
	assert.Equal(t, "개교기념일", res.Title)
	assert.Nil(t, res.ImageURL, "no upload means no image url")

	// Newlines normalized before the write
	assert.Equal(t, "line one\nline two", res.Content)

	assert.Empty(t, env.store.uploads)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHistoryCreateMissingFields(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, map[string]string{"title": "no date"}, nil)
	c, rec := env.request(t, http.MethodPost, "/api/histories/save", contentType, body, "admin")
	require.NoError(t, env.app.HistoryCreate(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryCreateRequiresWriterRole(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, map[string]string{
		"date": "2024-03-01", "title": "t", "content": "c",
	}, nil)

	t.Run("viewer", func(t *testing.T) {
		c, rec := env.request(t, http.MethodPost, "/api/histories/save", contentType, body, "viewer")
		require.NoError(t, env.app.HistoryCreate(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no session", func(t *testing.T) {
		c, rec := env.request(t, http.MethodPost, "/api/histories/save", contentType, strings.NewReader(""), "")
		require.NoError(t, env.app.HistoryCreate(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHistoryUpdateAddsFirstImage(t *testing.T) {
	env := newTestEnv(t)

	// Existing row has no image: the update must not schedule any deletion
	env.mock.ExpectQuery(`SELECT \* FROM "histories" WHERE "histories"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "title", "content", "image_url"}).
			AddRow(7, "2024-03-01", "개교기념일", "...", nil))
	env.mock.ExpectBegin()
	env.mock.ExpectExec(`UPDATE "histories" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	body, contentType := multipartBody(t, map[string]string{
		"date":    "2024-03-01",
		"title":   "개교기념일",
		"content": "...",
	}, map[string][]byte{"image": []byte("png-bytes")})

	c, rec := env.request(t, http.MethodPut, "/api/histories/7", contentType, body, "editor")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, env.app.HistoryUpdate(c))

	require.Equal(t, http.StatusOK, rec.Code)

	var res HistoryInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.ImageURL)
	assert.Contains(t, *res.ImageURL, "/object/public/"+testBucket+"/histories/")

	require.Len(t, env.store.uploads, 1)
	assert.Empty(t, env.store.removed)
	assert.False(t, env.mr.Exists("school:assets:cleanup"), "nil old image must not enqueue a deletion")

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestHistoryUpdateReplacesImage(t *testing.T) {
	env := newTestEnv(t)

	oldURL := env.store.PublicURL("histories/old.png")
	env.mock.ExpectQuery(`SELECT \* FROM "histories" WHERE "histories"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "title", "content", "image_url"}).
			AddRow(7, "2024-03-01", "개교기념일", "...", oldURL))
	env.mock.ExpectBegin()
	env.mock.ExpectExec(`UPDATE "histories" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	body, contentType := multipartBody(t, map[string]string{
		"date":    "2024-03-01",
		"title":   "개교기념일",
		"content": "updated",
	}, map[string][]byte{"image": []byte("new-png-bytes")})

	c, _ := env.request(t, http.MethodPut, "/api/histories/7", contentType, body, "editor")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, env.app.HistoryUpdate(c))

	// The superseded key went to the cleanup queue, not an inline delete
	items, err := env.mr.List("school:assets:cleanup")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0], "histories/old.png")
	assert.Empty(t, env.store.removed)
}

func TestHistoryUpdateNotFound(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectQuery(`SELECT \* FROM "histories" WHERE "histories"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	body, contentType := multipartBody(t, map[string]string{
		"date": "2024-03-01", "title": "t", "content": "c",
	}, nil)

	c, rec := env.request(t, http.MethodPut, "/api/histories/99", contentType, body, "admin")
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, env.app.HistoryUpdate(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryDeleteCleansImage(t *testing.T) {
	env := newTestEnv(t)

	oldURL := env.store.PublicURL("histories/gone.png")
	env.mock.ExpectQuery(`SELECT \* FROM "histories" WHERE "histories"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "image_url"}).AddRow(7, oldURL))
	env.mock.ExpectBegin()
	env.mock.ExpectExec(`DELETE FROM "histories"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	c, rec := env.request(t, http.MethodDelete, "/api/histories/7", "", nil, "admin")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, env.app.HistoryDelete(c))

	require.Equal(t, http.StatusOK, rec.Code)

	items, err := env.mr.List("school:assets:cleanup")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0], "histories/gone.png")

	assert.NoError(t, env.mock.ExpectationsWereMet())
}
