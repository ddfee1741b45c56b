package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"school-site-console/app/server/cleanup"
	"school-site-console/app/server/constants"
	"school-site-console/app/server/jwt"
	"school-site-console/app/server/storage"
)

const testBucket = "school-assets"

// fakeStore records calls instead of talking to the gateway.
type fakeStore struct {
	uploads []string
	removed []string

	uploadErr error
	signFail  bool // SignedURL degrades to nil, like a provider error
}

func (f *fakeStore) Upload(_ context.Context, key string, _ []byte, _ string, _ bool) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://store.example.com" + constants.StoragePublicObjectPath + testBucket + "/" + key
}

func (f *fakeStore) SignedURL(_ context.Context, key string, _ time.Duration) *string {
	if f.signFail {
		return nil
	}

	url := "https://store.example.com" + constants.StorageSignObjectPath + testBucket + "/" + key + "?X-Amz-Expires=3600"
	return &url
}

func (f *fakeStore) Remove(_ context.Context, keys []string) {
	f.removed = append(f.removed, keys...)
}

func (f *fakeStore) ExtractKey(raw string) string {
	return storage.ParseAssetRef(raw, testBucket).Key
}

type testEnv struct {
	app   *App
	e     *echo.Echo
	mock  sqlmock.Sqlmock
	store *fakeStore
	mr    *miniredis.Miniredis
	jwt   *jwt.JWT
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	j, err := jwt.New("test-secret")
	require.NoError(t, err)

	store := &fakeStore{}
	l := zap.NewNop()

	return &testEnv{
		app:   NewApp(l, db, j, store, cleanup.NewQueue(rdb, l), false, false),
		e:     echo.New(),
		mock:  mock,
		store: store,
		mr:    mr,
		jwt:   j,
	}
}

func (env *testEnv) token(t *testing.T, role string) string {
	t.Helper()

	token, err := env.jwt.SignToken(&jwt.User{
		ID:      1,
		LoginID: "admin",
		Role:    role,
		Name:    "Test Admin",
		Expires: time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	return token
}

func (env *testEnv) request(t *testing.T, method, target, contentType string, body io.Reader, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if role != "" {
		req.AddCookie(&http.Cookie{Name: constants.AuthCookieName, Value: env.token(t, role)})
	}
	rec := httptest.NewRecorder()

	return env.e.NewContext(req, rec), rec
}

func (env *testEnv) jsonRequest(t *testing.T, method, target, body, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	return env.request(t, method, target, echo.MIMEApplicationJSON, strings.NewReader(body), role)
}

// multipartBody builds a form with text fields plus optional files keyed by
// field name.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, data := range files {
		fw, err := w.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}
