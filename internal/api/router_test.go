package api

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactdesk/internal/api/session"
	"contactdesk/internal/api/view"
	"contactdesk/internal/app/service"
	"contactdesk/internal/domain/repository"
	"contactdesk/internal/testutil"
)

const (
	testAdminUser = "admin@example.com"
	testAdminPass = "123456@a"
)

var (
	csrfPattern   = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)
	updatePattern = regexp.MustCompile(`/update/(\d+)`)
)

func newTestServer(t *testing.T, name string) (*httptest.Server, *http.Client) {
	t.Helper()

	db := testutil.OpenInMemoryDB(t, name)
	userRepo := repository.NewPgUserRepository(db)
	contactRepo := repository.NewPgContactRepository(db)

	authService := service.NewAuthService(userRepo, db)
	contactService := service.NewContactService(contactRepo, db)
	require.NoError(t, authService.EnsureSeedAdmin(context.Background(), testAdminUser, testAdminPass))

	sessions := session.NewManager("test-secret", false)
	views, err := view.New()
	require.NoError(t, err)

	ts := httptest.NewServer(NewRouter(authService, contactService, sessions, views))
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

func getBody(t *testing.T, client *http.Client, url string) (string, int) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body), resp.StatusCode
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) (string, int) {
	t.Helper()
	resp, err := client.PostForm(url, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body), resp.StatusCode
}

func extractCSRF(t *testing.T, body string) string {
	t.Helper()
	m := csrfPattern.FindStringSubmatch(body)
	require.NotNil(t, m, "no csrf token in page")
	return m[1]
}

// logIn walks the real flow: fetch the login page for a token, then submit
// the credentials.
func logIn(t *testing.T, ts *httptest.Server, client *http.Client) {
	t.Helper()
	body, status := getBody(t, client, ts.URL+"/login")
	require.Equal(t, http.StatusOK, status)

	body, status = postForm(t, client, ts.URL+"/login", url.Values{
		"csrf_token": {extractCSRF(t, body)},
		"username":   {testAdminUser},
		"password":   {testAdminPass},
	})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "Successfully logged in.")
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	ts, _ := newTestServer(t, "router_anon")

	noFollow := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := noFollow.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=%2F", resp.Header.Get("Location"))
}

func TestLoginFlowReturnsToRequestedPage(t *testing.T) {
	ts, client := newTestServer(t, "router_next")

	// Following the redirect lands on the login page with the warning flash
	// and the original path preserved in the form's target.
	body, status := getBody(t, client, ts.URL+"/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Please log in to continue.")
	assert.Contains(t, body, "Log in")

	// Submitting against /login?next=/ returns to the contact list.
	body, status = postForm(t, client, ts.URL+"/login?next=%2F", url.Values{
		"csrf_token": {extractCSRF(t, body)},
		"username":   {testAdminUser},
		"password":   {testAdminPass},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Successfully logged in.")
	assert.Contains(t, body, "Contacts")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts, client := newTestServer(t, "router_badcreds")

	body, _ := getBody(t, client, ts.URL+"/login")
	token := extractCSRF(t, body)

	body, status := postForm(t, client, ts.URL+"/login", url.Values{
		"csrf_token": {token},
		"username":   {testAdminUser},
		"password":   {"wrong-password"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Invalid username or password.")

	// Still anonymous.
	body, _ = getBody(t, client, ts.URL+"/")
	assert.Contains(t, body, "Please log in to continue.")
}

func TestContactLifecycle(t *testing.T) {
	ts, client := newTestServer(t, "router_crud")
	logIn(t, ts, client)

	body, _ := getBody(t, client, ts.URL+"/")
	token := extractCSRF(t, body)

	// Create
	body, status := postForm(t, client, ts.URL+"/", url.Values{
		"csrf_token": {token},
		"first_name": {"Jane"},
		"last_name":  {"Doe"},
		"email":      {"jane@example.com"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Record added successfully.")
	assert.Contains(t, body, "Jane")

	m := updatePattern.FindStringSubmatch(body)
	require.NotNil(t, m, "no update link for the new record")
	id, err := strconv.ParseInt(m[1], 10, 64)
	require.NoError(t, err)

	// Update form is prefilled
	body, status = getBody(t, client, ts.URL+"/update/"+m[1])
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `value="Jane"`)
	assert.Contains(t, body, `value="jane@example.com"`)

	// Update
	body, status = postForm(t, client, ts.URL+"/update/"+m[1], url.Values{
		"csrf_token": {extractCSRF(t, body)},
		"first_name": {"Janet"},
		"last_name":  {"O'Brien-Smith"},
		"email":      {"janet@example.com"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Record updated successfully.")
	assert.Contains(t, body, "Janet")
	assert.NotContains(t, body, `<td>jane@example.com</td>`)

	// Delete
	body, status = postForm(t, client, ts.URL+"/delete/"+strconv.FormatInt(id, 10), url.Values{
		"csrf_token": {token},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Record deleted.")
	assert.NotContains(t, body, "Janet")
}

func TestCreateRedisplaysValidationErrors(t *testing.T) {
	ts, client := newTestServer(t, "router_validation")
	logIn(t, ts, client)

	body, _ := getBody(t, client, ts.URL+"/")
	token := extractCSRF(t, body)

	body, status := postForm(t, client, ts.URL+"/", url.Values{
		"csrf_token": {token},
		"first_name": {"John3"},
		"last_name":  {"Robert; DROP TABLE students"},
		"email":      {"jane@example.com"},
	})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Please correct the highlighted errors.")
	assert.Contains(t, body, "Only letters, spaces, apostrophes, and hyphens allowed.")
	// The submitted values are echoed for correction.
	assert.Contains(t, body, `value="John3"`)
	// Nothing was stored.
	assert.Contains(t, body, "No contacts yet.")
}

func TestMutationsRequireCSRFToken(t *testing.T) {
	ts, client := newTestServer(t, "router_csrf")
	logIn(t, ts, client)

	resp, err := client.PostForm(ts.URL+"/", url.Values{
		"first_name": {"Jane"},
		"last_name":  {"Doe"},
		"email":      {"jane@example.com"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body, _ := getBody(t, client, ts.URL+"/")
	assert.Contains(t, body, "No contacts yet.")
}

func TestMissingRecordRenders404(t *testing.T) {
	ts, client := newTestServer(t, "router_404")
	logIn(t, ts, client)

	body, status := getBody(t, client, ts.URL+"/update/999")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Page not found")

	indexBody, _ := getBody(t, client, ts.URL+"/")
	resp, err := client.PostForm(ts.URL+"/delete/999", url.Values{
		"csrf_token": {extractCSRF(t, indexBody)},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Unknown routes get the same page.
	body, status = getBody(t, client, ts.URL+"/no-such-page")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Page not found")
}

func TestLogoutEndsTheSession(t *testing.T) {
	ts, client := newTestServer(t, "router_logout")
	logIn(t, ts, client)

	body, status := getBody(t, client, ts.URL+"/logout")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "You have been logged out.")

	// The old session no longer grants access.
	body, _ = getBody(t, client, ts.URL+"/")
	assert.Contains(t, body, "Please log in to continue.")
}
