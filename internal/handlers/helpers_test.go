package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stores-api/internal/blocklist"
	"stores-api/internal/logging"
	authmw "stores-api/internal/middleware/auth"
	"stores-api/internal/models"
	"stores-api/internal/mykafka"
	"stores-api/internal/notifier"
	"stores-api/internal/tokens"
	"stores-api/internal/transport"
)

type testEnv struct {
	T     *testing.T
	E     *echo.Echo
	DB    *gorm.DB
	Codec *tokens.Codec
	Guard *authmw.Guard
	A     *AuthHandler
	S     *StoreHandler
	I     *ItemHandler
	Tg    *TagHandler
}

type testValidator struct{ v *validator.Validate }

func (tv *testValidator) Validate(i interface{}) error {
	if err := tv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to connect to in-memory db")

	// A pooled second connection would see its own empty :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Store{}, &models.Item{}, &models.Tag{}),
		"failed to migrate tables")

	codec := tokens.NewCodec([]byte("test-access-secret"), []byte("test-refresh-secret"))
	bl := blocklist.NewMemory()

	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}

	env := &testEnv{
		T:     t,
		E:     e,
		DB:    db,
		Codec: codec,
		Guard: &authmw.Guard{Codec: codec, Blocklist: bl},
	}
	env.A = &AuthHandler{
		DB:        db,
		Codec:     codec,
		Blocklist: bl,
		Producer:  mykafka.Nop{},
		Notifier:  &notifier.Log{Logger: logging.New("error")},
	}
	env.S = &StoreHandler{DB: db}
	env.I = &ItemHandler{DB: db, Producer: mykafka.Nop{}}
	env.Tg = &TagHandler{DB: db}
	return env
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, headers ...http.Header) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, h := range headers {
		for k, vals := range h {
			for _, v := range vals {
				req.Header.Add(k, v)
			}
		}
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func bearer(token string) http.Header {
	h := http.Header{}
	h.Set(echo.HeaderAuthorization, "Bearer "+token)
	return h
}

func register(t *testing.T, env *testEnv, username, email string) {
	t.Helper()
	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": "password",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/user", payload)
	require.NoError(t, env.A.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func login(t *testing.T, env *testEnv, username string) transport.TokenPairResponse {
	t.Helper()
	payload := map[string]string{"username": username, "password": "password"}
	rec, c := env.doJSONRequest(http.MethodPost, "/login", payload)
	require.NoError(t, env.A.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.TokenPairResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	return resp
}

// registerAndLogin creates a user and returns its token pair. The first user
// registered in a fresh env gets id 1 and therefore the admin claim.
func registerAndLogin(t *testing.T, env *testEnv, username, email string) transport.TokenPairResponse {
	t.Helper()
	register(t, env, username, email)
	return login(t, env, username)
}

func httpErrCode(t *testing.T, err error) (int, string) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	if body, ok := he.Message.(echo.Map); ok {
		code, _ := body["error"].(string)
		return he.Code, code
	}
	return he.Code, ""
}

func createStore(t *testing.T, env *testEnv, name string) models.Store {
	t.Helper()
	rec, c := env.doJSONRequest(http.MethodPost, "/store", map[string]string{"name": name})
	require.NoError(t, env.S.CreateStore(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var store models.Store
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &store))
	return store
}

func createItem(t *testing.T, env *testEnv, name string, storeID uint) models.Item {
	t.Helper()
	rec, c := env.doJSONRequest(http.MethodPost, "/item", map[string]interface{}{
		"name":     name,
		"price":    9.99,
		"store_id": storeID,
	})
	require.NoError(t, env.I.CreateItem(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var item models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	return item
}

func createTag(t *testing.T, env *testEnv, name string, storeID uint) models.Tag {
	t.Helper()
	rec, c := env.doJSONRequest(http.MethodPost, "/store/:id/tag", map[string]string{"name": name})
	c.SetParamNames("id")
	c.SetParamValues(itoa(storeID))
	require.NoError(t, env.Tg.CreateTag(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var tag models.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tag))
	return tag
}

func itoa(v uint) string {
	return fmt.Sprint(v)
}
