package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/AdamBeresnev/matchday-pool/internal/config"
	"github.com/AdamBeresnev/matchday-pool/internal/db"
	"github.com/AdamBeresnev/matchday-pool/internal/pool"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/itbasis/go-clock"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var firstKickoff = time.Date(2025, time.September, 13, 8, 0, 0, 0, time.UTC)

type testServer struct {
	*httptest.Server
	app   *application
	clock *clock.Mock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "file://../../migrations"))

	cfg := &config.Config{
		DeadlineOffset:       pool.DefaultDeadlineOffset,
		SessionLifetime:      time.Hour,
		AdminEmails:          []string{"admin@example.com"},
		LeaderboardCacheSize: 16,
		LeaderboardCacheTTL:  time.Minute,
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(database.DB, 0)

	mock := clock.NewMock()
	mock.Set(firstKickoff.Add(-48 * time.Hour))

	app := newApplication(cfg, database, sessionManager, mock, nil)
	server := httptest.NewServer(newRouter(app))
	t.Cleanup(server.Close)

	return &testServer{Server: server, app: app, clock: mock}
}

// client returns an HTTP client with its own cookie jar that does not follow redirects.
func (s *testServer) client(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *testServer) do(t *testing.T, c *http.Client, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (s *testServer) register(t *testing.T, name string) *http.Client {
	t.Helper()

	c := s.client(t)
	status, body := s.do(t, c, http.MethodPost, "/api/register", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	return c
}

type matchResponse struct {
	ID string `json:"id"`
}

func (s *testServer) schedule(t *testing.T, admin *http.Client, matchday int, kickoff time.Time) string {
	t.Helper()

	status, body := s.do(t, admin, http.MethodPost, "/api/admin/matches", map[string]any{
		"homeTeam":    "Club Brugge",
		"awayTeam":    "Anderlecht",
		"matchday":    matchday,
		"kickoffTime": kickoff,
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var match matchResponse
	require.NoError(t, json.Unmarshal(body, &match))
	return match.ID
}

func predictionBody(matchday int, matchID string, home, away int) map[string]any {
	return map[string]any{
		"matchday": matchday,
		"predictions": []map[string]any{
			{"matchId": matchID, "homeScore": home, "awayScore": away},
		},
	}
}

type summaryResponse struct {
	Matchday         int  `json:"matchday"`
	TotalPoints      int  `json:"totalPoints"`
	ResultsAvailable bool `json:"resultsAvailable"`
	DeadlinePassed   bool `json:"deadlinePassed"`
	Scores           map[string]struct {
		Points *int `json:"points"`
	} `json:"scores"`
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	status, body := s.do(t, c, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(body))

	status, body = s.do(t, c, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "matchday_pool_http_requests_total")
}

func TestMutationsRequireAuth(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	status, _ := s.do(t, c, http.MethodPost, "/api/predictions", predictionBody(1, "00000000-0000-0000-0000-000000000000", 1, 0))
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, c, http.MethodPost, "/api/competitions", map[string]string{"name": "Poule"})
	assert.Equal(t, http.StatusUnauthorized, status)

	// Reads stay public
	status, _ = s.do(t, c, http.MethodGet, "/api/matches?matchday=1", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, c, http.MethodGet, "/api/leaderboard", nil)
	assert.Equal(t, http.StatusOK, status)
}

func (s *testServer) guest(t *testing.T) *http.Client {
	t.Helper()

	c := s.client(t)
	resp, err := c.PostForm(s.URL+"/auth/guest", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	return c
}

type guestSummary struct {
	Scores map[string]struct {
		Prediction struct {
			Home int `json:"home"`
			Away int `json:"away"`
		} `json:"prediction"`
	} `json:"scores"`
}

func TestGuestsDoNotSharePredictions(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "admin")
	matchID := s.schedule(t, admin, 1, firstKickoff)

	first := s.guest(t)
	second := s.guest(t)

	status, body := s.do(t, first, http.MethodPost, "/api/predictions", predictionBody(1, matchID, 2, 1))
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = s.do(t, second, http.MethodGet, "/api/predictions?matchday=1", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var summary guestSummary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Empty(t, summary.Scores, "another guest's predictions are not visible")

	status, body = s.do(t, second, http.MethodPost, "/api/predictions", predictionBody(1, matchID, 0, 0))
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = s.do(t, first, http.MethodGet, "/api/predictions?matchday=1", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	summary = guestSummary{}
	require.NoError(t, json.Unmarshal(body, &summary))
	require.Contains(t, summary.Scores, matchID)
	assert.Equal(t, 2, summary.Scores[matchID].Prediction.Home)
	assert.Equal(t, 1, summary.Scores[matchID].Prediction.Away)

	var firstMe, secondMe matchResponse
	_, body = s.do(t, first, http.MethodGet, "/api/me", nil)
	require.NoError(t, json.Unmarshal(body, &firstMe))
	_, body = s.do(t, second, http.MethodGet, "/api/me", nil)
	require.NoError(t, json.Unmarshal(body, &secondMe))
	assert.NotEqual(t, firstMe.ID, secondMe.ID)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	jan := s.register(t, "jan")

	status, _ := s.do(t, jan, http.MethodPost, "/api/admin/matches", map[string]any{
		"homeTeam": "Genk", "awayTeam": "Gent", "matchday": 1, "kickoffTime": firstKickoff,
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestImportFixtures(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "admin")
	jan := s.register(t, "jan")

	fixtures := "1;2025-09-13T08:00:00Z;Genk;Gent\n1;2025-09-13T18:00:00Z;Standard;Antwerp\n"

	req, err := http.NewRequest(http.MethodPost, s.URL+"/api/admin/fixtures", strings.NewReader(fixtures))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/plain")
	resp, err := admin.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	status, body := s.do(t, jan, http.MethodGet, "/api/matches?matchday=1", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var overview struct {
		Matches []matchResponse `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(body, &overview))
	assert.Len(t, overview.Matches, 2)

	req, err = http.NewRequest(http.MethodPost, s.URL+"/api/admin/fixtures", strings.NewReader("1;tomorrow;Genk;Gent"))
	require.NoError(t, err)
	resp, err = admin.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPredictionFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "admin")
	jan := s.register(t, "jan")

	matchID := s.schedule(t, admin, 1, firstKickoff)

	status, body := s.do(t, jan, http.MethodPost, "/api/predictions", predictionBody(1, matchID, 2, 1))
	require.Equal(t, http.StatusOK, status, string(body))

	var summary summaryResponse
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 1, summary.Matchday)
	require.Contains(t, summary.Scores, matchID)
	assert.Nil(t, summary.Scores[matchID].Points, "pending until the result is in")

	status, body = s.do(t, jan, http.MethodPost, "/api/predictions", predictionBody(1, matchID, -1, 0))
	assert.Equal(t, http.StatusBadRequest, status, string(body))
	assert.Contains(t, string(body), "predictions[0].homeScore")

	// Past the deadline nothing can change
	s.clock.Set(firstKickoff.Add(-11 * time.Hour))
	status, body = s.do(t, jan, http.MethodPost, "/api/predictions", predictionBody(1, matchID, 0, 0))
	assert.Equal(t, http.StatusForbidden, status, string(body))

	status, body = s.do(t, admin, http.MethodPost, "/api/admin/results", map[string]any{
		"matchId": matchID, "homeScore": 2, "awayScore": 1,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = s.do(t, jan, http.MethodGet, "/api/predictions?matchday=1", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 3, summary.TotalPoints)
	assert.True(t, summary.ResultsAvailable)
	assert.True(t, summary.DeadlinePassed)
	require.NotNil(t, summary.Scores[matchID].Points)
	assert.Equal(t, 3, *summary.Scores[matchID].Points)

	status, body = s.do(t, jan, http.MethodGet, "/api/leaderboard", nil)
	require.Equal(t, http.StatusOK, status)
	var rows []struct {
		Rank        int    `json:"rank"`
		Name        string `json:"name"`
		TotalPoints int    `json:"totalPoints"`
	}
	require.NoError(t, json.Unmarshal(body, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "jan", rows[0].Name)
	assert.Equal(t, 3, rows[0].TotalPoints)
	assert.Equal(t, 1, rows[0].Rank)
}

func TestCompetitionFlow(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "owner")
	friend := s.register(t, "friend")
	outsider := s.register(t, "outsider")

	status, body := s.do(t, owner, http.MethodPost, "/api/competitions", map[string]string{"name": "Kantoor"})
	require.Equal(t, http.StatusCreated, status, string(body))

	var competition struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body, &competition))

	status, _ = s.do(t, friend, http.MethodPost, "/api/competitions/join", map[string]string{"code": competition.Code})
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, friend, http.MethodPost, "/api/competitions/join", map[string]string{"code": "NOPE00"})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(t, friend, http.MethodGet, "/api/competitions/"+competition.ID+"/leaderboard", nil)
	require.Equal(t, http.StatusOK, status)
	var rows []json.RawMessage
	require.NoError(t, json.Unmarshal(body, &rows))
	assert.Len(t, rows, 2)

	status, _ = s.do(t, outsider, http.MethodGet, "/api/competitions/"+competition.ID+"/leaderboard", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, friend, http.MethodGet, "/api/competitions/not-a-uuid/leaderboard", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, friend, http.MethodGet, "/api/competitions", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "Kantoor")
}

func TestLoginAndLogout(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "jan")
	c := s.client(t)

	status, _ := s.do(t, c, http.MethodPost, "/api/login", map[string]string{"email": "jan@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, c, http.MethodPost, "/api/login", map[string]string{"email": "jan@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, status)

	status, body := s.do(t, c, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "jan@example.com")
	assert.NotContains(t, string(body), "password")

	status, _ = s.do(t, c, http.MethodPost, "/api/logout", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = s.do(t, c, http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, c, http.MethodPost, "/api/register", map[string]string{"name": "jan", "email": "jan@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, status)
}

func TestMatchdayPages(t *testing.T) {
	s := newTestServer(t)
	admin := s.register(t, "admin")
	matchID := s.schedule(t, admin, 1, firstKickoff)

	c := s.client(t)
	resp, err := c.Get(s.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, err = c.PostForm(s.URL+"/auth/guest", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, err = c.PostForm(s.URL+"/predictions", url.Values{
		"matchday":        {"1"},
		"home_" + matchID: {"1"},
		"away_" + matchID: {"1"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/?matchday=1", resp.Header.Get("Location"))

	resp, err = c.Get(s.URL + "/?matchday=1")
	require.NoError(t, err)
	page, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "Club Brugge")
	assert.Contains(t, string(page), `name="home_`+matchID+`" value="1"`)

	// Only one half of the score filled in
	resp, err = c.PostForm(s.URL+"/predictions", url.Values{
		"matchday":        {"1"},
		"home_" + matchID: {"2"},
		"away_" + matchID: {""},
	})
	require.NoError(t, err)
	page, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.True(t, strings.Contains(string(page), "awayScore"), "the page explains what is missing")
}

func TestLoginPage(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "jan")
	c := s.client(t)

	resp, err := c.Get(s.URL + "/login")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = c.PostForm(s.URL+"/login", url.Values{"email": {"jan@example.com"}, "password": {"nope-nope"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = c.PostForm(s.URL+"/login", url.Values{"email": {"jan@example.com"}, "password": {"password123"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestProviderLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "jan")

	testCases := []struct {
		name           string
		user           goth.User
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Email already used by a password account",
			user:           goth.User{Provider: "discord", UserID: "42", Email: "Jan@example.com", NickName: "jan"},
			expectedStatus: http.StatusConflict,
			expectedBody:   "already has an account",
		},
		{
			name:           "New account",
			user:           goth.User{Provider: "discord", UserID: "43", Email: "els@example.com", NickName: "els"},
			expectedStatus: http.StatusFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := s.app.sessionManager.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				s.app.completeProviderLogin(w, r, tc.user)
			}))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/discord/callback", nil))

			assert.Equal(t, tc.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.expectedBody)
		})
	}
}
