package dirapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/cosmocode/sheetauth/storage/model"
)

// stubDirectory serves a fixed set of records and records mutations.
type stubDirectory struct {
	users       map[string]*model.UserRecord
	created     []string
	updated     map[string]model.FieldChanges
	invalidated int
	schemaValid bool
	fail        error
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		users: map[string]*model.UserRecord{
			"hans":  {Login: "hans", PasswordHash: "plain$wurst", Name: "Hans Wurst", Mail: "hans@example.com", Groups: []string{"user", "admin"}, SourceRow: 2},
			"erika": {Login: "erika", PasswordHash: "plain$geheim", Name: "Erika Muster", Mail: "erika@example.com", Groups: []string{"user"}, SourceRow: 3},
		},
		updated:     map[string]model.FieldChanges{},
		schemaValid: true,
	}
}

func (d *stubDirectory) Lookup(ctx context.Context, login string) (*model.UserRecord, error) {
	if d.fail != nil {
		return nil, d.fail
	}
	rec, ok := d.users[login]
	if !ok {
		return nil, model.NotFoundErrorFmt("user not found: %s", login)
	}
	return rec, nil
}

func (d *stubDirectory) Create(ctx context.Context, login, password, name, mail string, groups []string) error {
	if d.fail != nil {
		return d.fail
	}
	if _, exists := d.users[login]; exists {
		return model.AlreadyExistsErrorFmt("user already exists: %s", login)
	}
	d.users[login] = &model.UserRecord{Login: login, Name: name, Mail: mail, Groups: groups}
	d.created = append(d.created, login)
	return nil
}

func (d *stubDirectory) Update(ctx context.Context, login string, changes model.FieldChanges) error {
	if d.fail != nil {
		return d.fail
	}
	if _, ok := d.users[login]; !ok {
		return model.NotFoundErrorFmt("user not found: %s", login)
	}
	d.updated[login] = changes
	return nil
}

func (d *stubDirectory) Delete(ctx context.Context, logins []string) (int, error) {
	if d.fail != nil {
		return 0, d.fail
	}
	deleted := 0
	for _, login := range logins {
		if _, ok := d.users[login]; ok {
			delete(d.users, login)
			deleted++
		}
	}
	return deleted, nil
}

func (d *stubDirectory) Enumerate(ctx context.Context, start, limit int, filter model.FilterSpec) ([]*model.UserRecord, error) {
	if d.fail != nil {
		return nil, d.fail
	}
	records := make([]*model.UserRecord, 0, len(d.users))
	for _, login := range []string{"erika", "hans"} {
		rec, ok := d.users[login]
		if !ok || !filter.Matches(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (d *stubDirectory) VerifyCredential(ctx context.Context, login, secret string) (bool, error) {
	rec, ok := d.users[login]
	if !ok {
		return false, nil
	}
	return rec.PasswordHash == "plain$"+secret, nil
}

func (d *stubDirectory) ValidateSchema(ctx context.Context) (bool, error) {
	if d.fail != nil {
		return false, d.fail
	}
	return d.schemaValid, nil
}

func (d *stubDirectory) InvalidateCache() { d.invalidated++ }

func newTestAPI(dir Directory, opts Options) *fiber.App {
	app := fiber.New()
	Register(app.Group("/api/v1"), dir, opts)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, payload
}

func TestAPIListUsers(t *testing.T) {
	app := newTestAPI(newStubDirectory(), Options{})

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/users/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page []map[string]any
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page, 2)
	require.Equal(t, "erika", page[0]["user"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/users/?grps=admin", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page, 1)
	require.Equal(t, "hans", page[0]["user"])
}

func TestAPIGetUser(t *testing.T) {
	app := newTestAPI(newStubDirectory(), Options{})

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/users/hans", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(body, &rec))
	require.Equal(t, "hans", rec["user"])
	// the password hash must never leave the service
	require.NotContains(t, string(body), "wurst")

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/users/nobody", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPICreateUser(t *testing.T) {
	dir := newStubDirectory()
	app := newTestAPI(dir, Options{})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/users/", `{"user":"lisa","pass":"secret","mail":"lisa@example.com"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, []string{"lisa"}, dir.created)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/users/", `{"user":"hans","pass":"secret","mail":"hans@example.com"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/users/", `{"user":"nopass","mail":"x@example.com"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIUpdateUser(t *testing.T) {
	dir := newStubDirectory()
	app := newTestAPI(dir, Options{})

	resp, _ := doJSON(t, app, http.MethodPatch, "/api/v1/users/hans", `{"name":"Hansi"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.NotNil(t, dir.updated["hans"].Name)
	require.Equal(t, "Hansi", *dir.updated["hans"].Name)
	require.Nil(t, dir.updated["hans"].Mail)

	resp, _ = doJSON(t, app, http.MethodPatch, "/api/v1/users/nobody", `{"name":"X"}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIDeleteUsers(t *testing.T) {
	dir := newStubDirectory()
	app := newTestAPI(dir, Options{})

	resp, body := doJSON(t, app, http.MethodDelete, "/api/v1/users/", `{"users":["hans","nobody"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result map[string]int
	require.NoError(t, json.Unmarshal(body, &result))
	require.Equal(t, 1, result["deleted"])

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/users/erika", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/users/erika", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPISchemaAndPurge(t *testing.T) {
	dir := newStubDirectory()
	app := newTestAPI(dir, Options{})

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/schema", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"valid":true}`, string(body))

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/cache/purge", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, 1, dir.invalidated)
}

func TestAPIRemoteFailure(t *testing.T) {
	dir := newStubDirectory()
	dir.fail = model.RemoteUnavailableErrorFmt("sheets down")
	app := newTestAPI(dir, Options{})

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/users/", "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	dir.fail = model.ConfigurationError("no spreadsheet id configured")
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/users/", "")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPIBasicAuth(t *testing.T) {
	app := newTestAPI(newStubDirectory(), Options{BasicAuth: true})

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/users/", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Basic realm=directory", resp.Header.Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("hans:wurst")))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("hans:falsch")))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
