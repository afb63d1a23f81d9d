package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/czarnick89/workout-tracker/internal/config"
	"github.com/czarnick89/workout-tracker/internal/repository/gormrepo"
	"github.com/czarnick89/workout-tracker/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStorage records uploads in memory.
type fakeStorage struct {
	objects map[string][]byte
}

func (s *fakeStorage) PutObject(_ context.Context, key, _ string, body []byte) error {
	s.objects[key] = body
	return nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/" + key, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

type testServer struct {
	t       *testing.T
	router  *gin.Engine
	storage *fakeStorage
}

type serverOption func(*Services, *RouterOptions)

func withThrottle(cfg config.ThrottleConfig) serverOption {
	return func(_ *Services, opts *RouterOptions) {
		throttle, err := NewThrottle(cfg, hclog.NewNullLogger())
		if err != nil {
			panic(err)
		}
		opts.Throttle = throttle
	}
}

func withoutExport() serverOption {
	return func(s *Services, _ *RouterOptions) { s.Export = nil }
}

func newTestServer(t *testing.T, options ...serverOption) *testServer {
	t.Helper()
	db, err := gormrepo.Connect(gormrepo.Config{
		Driver:       gormrepo.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	}, hclog.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	logger := hclog.NewNullLogger()
	workouts := gormrepo.NewWorkoutRepository(db)
	exercises := gormrepo.NewExerciseRepository(db)
	store := &fakeStorage{objects: map[string][]byte{}}

	services := Services{
		Auth:      service.NewAuthService(gormrepo.NewUserRepository(db), gormrepo.NewRevokedTokenRepository(db), "test-secret", time.Minute, time.Hour),
		Workouts:  service.NewWorkoutService(workouts, logger),
		Exercises: service.NewExerciseService(exercises, workouts, logger),
		Sets:      service.NewSetService(gormrepo.NewSetRepository(db), exercises, logger),
		Export:    service.NewExportService(workouts, store, time.Minute, logger),
	}
	opts := RouterOptions{
		Logger:     logger,
		Pagination: config.PaginationConfig{PageSize: 10, MaxPageSize: 100},
	}
	for _, o := range options {
		o(&services, &opts)
	}

	return &testServer{t: t, router: NewRouter(services, opts), storage: store}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) tokens(username string) TokenPairResponse {
	s.t.Helper()
	creds := fmt.Sprintf(`{"username":%q,"password":"password123"}`, username)
	rec := s.do(http.MethodPost, "/api/auth/register/", "", creds)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/auth/token/", "", creds)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[TokenPairResponse](s.t, rec)
}

func (s *testServer) login(username string) string {
	return s.tokens(username).Access
}

func (s *testServer) createWorkout(token, body string) WorkoutResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/workouts/", token, body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[WorkoutResponse](s.t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type envelope struct {
	Error struct {
		Code    string          `json:"code"`
		Message json.RawMessage `json:"message"`
	} `json:"error"`
}

// assertError checks a string-message envelope.
func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	env := decode[envelope](t, rec)
	assert.Equal(t, code, env.Error.Code)
	var msg string
	require.NoError(t, json.Unmarshal(env.Error.Message, &msg))
	assert.Equal(t, message, msg)
}

// fieldErrors checks a validation envelope and returns its field map.
func fieldErrors(t *testing.T, rec *httptest.ResponseRecorder) map[string][]string {
	t.Helper()
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	env := decode[envelope](t, rec)
	assert.Equal(t, CodeValidation, env.Error.Code)
	var fields map[string][]string
	require.NoError(t, json.Unmarshal(env.Error.Message, &fields))
	return fields
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/ping", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestFrameworkErrors(t *testing.T) {
	s := newTestServer(t)

	t.Run("missing credentials", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/workouts/", "", "")
		assertError(t, rec, http.StatusUnauthorized, CodeAuthentication, MsgAuthentication)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/workouts/", "not-a-jwt", "")
		assertError(t, rec, http.StatusUnauthorized, CodeAuthentication, MsgAuthentication)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/nothing-here/", "", "")
		assertError(t, rec, http.StatusNotFound, CodeNotFound, MsgNotFound)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/ping", "", "")
		assertError(t, rec, http.StatusMethodNotAllowed, "405", `Method "POST" not allowed.`)
	})

	token := s.login("alice")

	t.Run("unsupported media type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/workouts/", strings.NewReader("date=2024-01-01"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		assertError(t, rec, http.StatusUnsupportedMediaType, "415",
			`Unsupported media type "application/x-www-form-urlencoded" in request.`)
	})

	t.Run("malformed json", func(t *testing.T) {
		fields := fieldErrors(t, s.do(http.MethodPost, "/api/workouts/", token, `{"date":`))
		require.Len(t, fields["non_field_errors"], 1)
		assert.True(t, strings.HasPrefix(fields["non_field_errors"][0], "JSON parse error - "))
	})

	t.Run("body is not an object", func(t *testing.T) {
		fields := fieldErrors(t, s.do(http.MethodPost, "/api/workouts/", token, `[1, 2]`))
		assert.Equal(t, []string{"Invalid data. Expected a dictionary, but got list."}, fields["non_field_errors"])
	})

	t.Run("non numeric id", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/workouts/abc/", token, "")
		assertError(t, rec, http.StatusNotFound, CodeNotFound, MsgNotFound)
	})
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	t.Run("register validation", func(t *testing.T) {
		fields := fieldErrors(t, s.do(http.MethodPost, "/api/auth/register/", "", `{"email":"nope","password":"short"}`))
		assert.Equal(t, []string{"This field is required."}, fields["username"])
		assert.Equal(t, []string{"Enter a valid email address."}, fields["email"])
		assert.Equal(t, []string{"Ensure this field has at least 8 characters."}, fields["password"])
	})

	t.Run("register with empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register/", nil)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		fields := fieldErrors(t, rec)
		assert.Contains(t, fields, "username")
		assert.Contains(t, fields, "password")
	})

	pair := s.tokens("alice")

	t.Run("duplicate username", func(t *testing.T) {
		fields := fieldErrors(t, s.do(http.MethodPost, "/api/auth/register/", "", `{"username":"alice","password":"password123"}`))
		assert.Equal(t, []string{service.MsgUsernameTaken}, fields["username"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/auth/token/", "", `{"username":"alice","password":"wrong-password"}`)
		assertError(t, rec, http.StatusUnauthorized, CodeAuthentication, MsgAuthentication)
	})

	t.Run("refresh", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/auth/token/refresh/", "", fmt.Sprintf(`{"refresh":%q}`, pair.Refresh))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		access := decode[AccessTokenResponse](t, rec).Access
		assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/workouts/", access, "").Code)

		rec = s.do(http.MethodPost, "/api/auth/token/refresh/", "", `{"refresh":"garbage"}`)
		assertError(t, rec, http.StatusUnauthorized, CodeAuthentication, MsgAuthentication)
	})

	t.Run("logout", func(t *testing.T) {
		fields := fieldErrors(t, s.do(http.MethodPost, "/api/auth/logout/", pair.Access, `{}`))
		assert.Equal(t, []string{"This field is required."}, fields["refresh"])

		fields = fieldErrors(t, s.do(http.MethodPost, "/api/auth/logout/", pair.Access, `{"refresh":"garbage"}`))
		assert.Equal(t, []string{"Invalid token"}, fields["refresh"])

		rec := s.do(http.MethodPost, "/api/auth/logout/", pair.Access, fmt.Sprintf(`{"refresh":%q}`, pair.Refresh))
		assert.Equal(t, http.StatusResetContent, rec.Code)
		assert.JSONEq(t, `{"detail":"Logout successful"}`, rec.Body.String())

		rec = s.do(http.MethodPost, "/api/auth/token/refresh/", "", fmt.Sprintf(`{"refresh":%q}`, pair.Refresh))
		assertError(t, rec, http.StatusUnauthorized, CodeAuthentication, MsgAuthentication)
	})

	t.Run("logout requires authentication", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/api/auth/logout/", "", fmt.Sprintf(`{"refresh":%q}`, pair.Refresh))
		assertError(t, rec, http.StatusUnauthorized, CodeAuthentication, MsgAuthentication)
	})
}

func TestWorkoutEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice")
	bob := s.login("bob")

	w := s.createWorkout(alice, `{"date":"2024-03-01","name":"Push","exercises":[{"name":"Bench"},{"name":"Press"}]}`)
	require.Len(t, w.Exercises, 2)
	assert.Equal(t, "2024-03-01", w.Date)
	assert.Equal(t, "", w.Notes)
	assert.NotZero(t, w.User)
	assert.Equal(t, "Bench", w.Exercises[0].Name)
	assert.Equal(t, "Press", w.Exercises[1].Name)
	assert.Less(t, w.Exercises[0].ID, w.Exercises[1].ID)
	path := fmt.Sprintf("/api/workouts/%d/", w.ID)

	t.Run("exercises render without sets", func(t *testing.T) {
		rec := s.do(http.MethodGet, path, alice, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var raw map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		first := raw["exercises"].([]any)[0].(map[string]any)
		assert.NotContains(t, first, "sets")
	})

	t.Run("other user sees not found", func(t *testing.T) {
		assertError(t, s.do(http.MethodGet, path, bob, ""), http.StatusNotFound, CodeNotFound, MsgNotFound)
		assertError(t, s.do(http.MethodPatch, path, bob, `{"name":"mine"}`), http.StatusNotFound, CodeNotFound, MsgNotFound)
		assertError(t, s.do(http.MethodDelete, path, bob, ""), http.StatusNotFound, CodeNotFound, MsgNotFound)
	})

	t.Run("put requires date, patch does not", func(t *testing.T) {
		fields := fieldErrors(t, s.do(http.MethodPut, path, alice, `{"name":"Pull"}`))
		assert.Equal(t, []string{"This field is required."}, fields["date"])

		rec := s.do(http.MethodPatch, path, alice, `{"notes":"felt strong"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decode[WorkoutResponse](t, rec)
		assert.Equal(t, "felt strong", got.Notes)
		assert.Len(t, got.Exercises, 2, "absent exercises key leaves children alone")
	})

	t.Run("update reconciles exercises", func(t *testing.T) {
		body := fmt.Sprintf(`{"date":"2024-03-01","exercises":[{"id":%d,"name":"Renamed"},{"name":"New"}]}`, w.Exercises[0].ID)
		rec := s.do(http.MethodPut, path, alice, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decode[WorkoutResponse](t, rec)
		require.Len(t, got.Exercises, 2)
		assert.Equal(t, w.Exercises[0].ID, got.Exercises[0].ID)
		assert.Equal(t, "Renamed", got.Exercises[0].Name)
		assert.Equal(t, "New", got.Exercises[1].Name)

		rec = s.do(http.MethodGet, fmt.Sprintf("/api/exercises/%d/", w.Exercises[1].ID), alice, "")
		assertError(t, rec, http.StatusNotFound, CodeNotFound, MsgNotFound)
	})

	t.Run("empty list deletes every exercise", func(t *testing.T) {
		rec := s.do(http.MethodPatch, path, alice, `{"exercises":[]}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Empty(t, decode[WorkoutResponse](t, rec).Exercises)
	})

	t.Run("delete", func(t *testing.T) {
		rec := s.do(http.MethodDelete, path, alice, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assertError(t, s.do(http.MethodGet, path, alice, ""), http.StatusNotFound, CodeNotFound, MsgNotFound)
	})
}

func TestWorkoutList(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice")
	bob := s.login("bob")

	for day := 1; day <= 12; day++ {
		s.createWorkout(alice, fmt.Sprintf(`{"date":"2024-03-%02d","name":"W%d"}`, day, day))
	}
	s.createWorkout(bob, `{"date":"2024-04-01","name":"Bob's"}`)

	t.Run("first page", func(t *testing.T) {
		rec := s.do(http.MethodGet, "/api/workouts/", alice, "")
		require.Equal(t, http.StatusOK, rec.Code)
		page := decode[PageResponse[WorkoutResponse]](t, rec)
		assert.EqualValues(t, 12, page.Count)
		require.Len(t, page.Results, 10)
		assert.Equal(t, "2024-03-12", page.Results[0].Date, "newest first by default")
		require.NotNil(t, page.Next)
		assert.Equal(t, "http://example.com/api/workouts/?page=2", *page.Next)
		assert.Nil(t, page.Previous)
	})

	t.Run("second page", func(t *testing.T) {
		page := decode[PageResponse[WorkoutResponse]](t, s.do(http.MethodGet, "/api/workouts/?page=2", alice, ""))
		assert.Len(t, page.Results, 2)
		assert.Nil(t, page.Next)
		require.NotNil(t, page.Previous)
		assert.Equal(t, "http://example.com/api/workouts/", *page.Previous)
	})

	t.Run("page size", func(t *testing.T) {
		page := decode[PageResponse[WorkoutResponse]](t, s.do(http.MethodGet, "/api/workouts/?page_size=5&page=3", alice, ""))
		assert.Len(t, page.Results, 2)
		require.NotNil(t, page.Previous)
		assert.Equal(t, "http://example.com/api/workouts/?page=2&page_size=5", *page.Previous)
	})

	t.Run("invalid page", func(t *testing.T) {
		assertError(t, s.do(http.MethodGet, "/api/workouts/?page=3", alice, ""), http.StatusNotFound, CodeNotFound, "Invalid page.")
		assertError(t, s.do(http.MethodGet, "/api/workouts/?page=zero", alice, ""), http.StatusNotFound, CodeNotFound, "Invalid page.")
		assertError(t, s.do(http.MethodGet, "/api/workouts/?page=1844674407370955162", alice, ""), http.StatusNotFound, CodeNotFound, "Invalid page.")
		assertError(t, s.do(http.MethodGet, "/api/workouts/?page_size=100&page=92233720368547760", alice, ""), http.StatusNotFound, CodeNotFound, "Invalid page.")
	})

	t.Run("filters and ordering", func(t *testing.T) {
		page := decode[PageResponse[WorkoutResponse]](t, s.do(http.MethodGet, "/api/workouts/?date=2024-03-05", alice, ""))
		require.EqualValues(t, 1, page.Count)
		assert.Equal(t, "W5", page.Results[0].Name)

		page = decode[PageResponse[WorkoutResponse]](t, s.do(http.MethodGet, "/api/workouts/?name=W7", alice, ""))
		require.EqualValues(t, 1, page.Count)

		page = decode[PageResponse[WorkoutResponse]](t, s.do(http.MethodGet, "/api/workouts/?ordering=date", alice, ""))
		assert.Equal(t, "2024-03-01", page.Results[0].Date)

		fields := fieldErrors(t, s.do(http.MethodGet, "/api/workouts/?date=yesterday", alice, ""))
		assert.Contains(t, fields, "date")
	})

	t.Run("empty first page", func(t *testing.T) {
		carol := s.login("carol")
		page := decode[PageResponse[WorkoutResponse]](t, s.do(http.MethodGet, "/api/workouts/", carol, ""))
		assert.EqualValues(t, 0, page.Count)
		assert.NotNil(t, page.Results)
		assert.Empty(t, page.Results)
	})
}

func TestExerciseAndSetEndpoints(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice")
	bob := s.login("bob")

	w := s.createWorkout(alice, `{"date":"2024-03-01","exercises":[{"name":"Squat"}]}`)
	bobs := s.createWorkout(bob, `{"date":"2024-03-01","exercises":[{"name":"Deadlift"}]}`)
	exerciseID := w.Exercises[0].ID

	t.Run("exercise with nested sets", func(t *testing.T) {
		body := fmt.Sprintf(`{"workout":%d,"name":"Row","sets":[{"set_number":1,"reps":10,"weight":"60"}]}`, w.ID)
		rec := s.do(http.MethodPost, "/api/exercises/", alice, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		got := decode[ExerciseDetailResponse](t, rec)
		assert.Equal(t, w.ID, got.Workout)
		require.Len(t, got.Sets, 1)
		assert.Equal(t, "60.00", got.Sets[0].Weight)
	})

	t.Run("exercise in foreign workout is denied", func(t *testing.T) {
		body := fmt.Sprintf(`{"workout":%d,"name":"Sneaky"}`, bobs.ID)
		rec := s.do(http.MethodPost, "/api/exercises/", alice, body)
		assertError(t, rec, http.StatusForbidden, CodePermission, MsgPermission)
	})

	t.Run("exercise in missing workout is a field error", func(t *testing.T) {
		fields := fieldErrors(t, s.do(http.MethodPost, "/api/exercises/", alice, `{"workout":9999,"name":"Ghost"}`))
		assert.Equal(t, []string{`Invalid pk "9999" - object does not exist.`}, fields["workout"])
	})

	t.Run("set validation aggregates", func(t *testing.T) {
		fields := fieldErrors(t, s.do(http.MethodPost, "/api/sets/", alice, `{"set_number":1,"reps":-1,"weight":"-5"}`))
		assert.Contains(t, fields, "exercise")
		assert.Contains(t, fields, "reps")
		assert.Contains(t, fields, "weight")
	})

	t.Run("weight precision", func(t *testing.T) {
		body := fmt.Sprintf(`{"exercise":%d,"set_number":1,"reps":5,"weight":"123.456"}`, exerciseID)
		fields := fieldErrors(t, s.do(http.MethodPost, "/api/sets/", alice, body))
		assert.Len(t, fields, 1)
		assert.Contains(t, fields, "weight")

		body = fmt.Sprintf(`{"exercise":%d,"set_number":1,"reps":5,"weight":"0.00"}`, exerciseID)
		rec := s.do(http.MethodPost, "/api/sets/", alice, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "0.00", decode[SetResponse](t, rec).Weight)
	})

	t.Run("set on foreign exercise is denied", func(t *testing.T) {
		body := fmt.Sprintf(`{"exercise":%d,"set_number":1,"reps":5,"weight":"10"}`, bobs.Exercises[0].ID)
		rec := s.do(http.MethodPost, "/api/sets/", alice, body)
		assertError(t, rec, http.StatusForbidden, CodePermission, MsgPermission)
	})

	t.Run("exercise detail includes sets", func(t *testing.T) {
		rec := s.do(http.MethodGet, fmt.Sprintf("/api/exercises/%d/", exerciseID), alice, "")
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[ExerciseDetailResponse](t, rec)
		require.Len(t, got.Sets, 1)
		assert.Equal(t, 5, got.Sets[0].Reps)
	})

	t.Run("lists are scoped and filtered", func(t *testing.T) {
		page := decode[PageResponse[ExerciseDetailResponse]](t,
			s.do(http.MethodGet, fmt.Sprintf("/api/exercises/?workout=%d", w.ID), alice, ""))
		assert.EqualValues(t, 2, page.Count)

		page = decode[PageResponse[ExerciseDetailResponse]](t,
			s.do(http.MethodGet, fmt.Sprintf("/api/exercises/?workout=%d", bobs.ID), alice, ""))
		assert.EqualValues(t, 0, page.Count)

		fields := fieldErrors(t, s.do(http.MethodGet, "/api/exercises/?workout=abc", alice, ""))
		assert.Contains(t, fields, "workout")

		sets := decode[PageResponse[SetResponse]](t,
			s.do(http.MethodGet, fmt.Sprintf("/api/sets/?exercise=%d", exerciseID), alice, ""))
		assert.EqualValues(t, 1, sets.Count)

		sets = decode[PageResponse[SetResponse]](t, s.do(http.MethodGet, "/api/sets/", bob, ""))
		assert.EqualValues(t, 0, sets.Count)
	})

	t.Run("set update and delete", func(t *testing.T) {
		sets := decode[PageResponse[SetResponse]](t,
			s.do(http.MethodGet, fmt.Sprintf("/api/sets/?exercise=%d", exerciseID), alice, ""))
		require.Len(t, sets.Results, 1)
		path := fmt.Sprintf("/api/sets/%d/", sets.Results[0].ID)

		rec := s.do(http.MethodPatch, path, alice, `{"weight":"42.5"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "42.50", decode[SetResponse](t, rec).Weight)

		fields := fieldErrors(t, s.do(http.MethodPut, path, alice, `{"weight":"42.5"}`))
		assert.Contains(t, fields, "reps")

		assertError(t, s.do(http.MethodGet, path, bob, ""), http.StatusNotFound, CodeNotFound, MsgNotFound)

		assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, path, alice, "").Code)
		assertError(t, s.do(http.MethodGet, path, alice, ""), http.StatusNotFound, CodeNotFound, MsgNotFound)
	})

	t.Run("exercise delete cascades", func(t *testing.T) {
		body := fmt.Sprintf(`{"exercise":%d,"set_number":2,"reps":3,"weight":"20"}`, exerciseID)
		rec := s.do(http.MethodPost, "/api/sets/", alice, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		setPath := fmt.Sprintf("/api/sets/%d/", decode[SetResponse](t, rec).ID)

		assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, fmt.Sprintf("/api/exercises/%d/", exerciseID), alice, "").Code)
		assertError(t, s.do(http.MethodGet, setPath, alice, ""), http.StatusNotFound, CodeNotFound, MsgNotFound)
	})
}

func TestExportEndpoint(t *testing.T) {
	s := newTestServer(t)
	alice := s.login("alice")
	bob := s.login("bob")
	w := s.createWorkout(alice, `{"date":"2024-03-01","name":"Push","exercises":[{"name":"Bench"}]}`)
	path := fmt.Sprintf("/api/workouts/%d/export/", w.ID)

	rec := s.do(http.MethodPost, path, alice, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[ExportResponse](t, rec)
	assert.Contains(t, s.storage.objects, got.Key)
	assert.Equal(t, "https://storage.test/"+got.Key, got.URL)

	assertError(t, s.do(http.MethodPost, path, bob, ""), http.StatusNotFound, CodeNotFound, MsgNotFound)

	t.Run("not registered without storage", func(t *testing.T) {
		s := newTestServer(t, withoutExport())
		alice := s.login("alice")
		w := s.createWorkout(alice, `{"date":"2024-03-01"}`)
		rec := s.do(http.MethodPost, fmt.Sprintf("/api/workouts/%d/export/", w.ID), alice, "")
		assertError(t, rec, http.StatusNotFound, CodeNotFound, MsgNotFound)
	})
}

func TestThrottle(t *testing.T) {
	s := newTestServer(t, withThrottle(config.ThrottleConfig{
		Enabled:  true,
		Store:    ThrottleStoreMemory,
		AnonRate: "2-M",
		UserRate: "1000-D",
	}))

	body := `{"username":"nobody","password":"password123"}`
	for i := 0; i < 2; i++ {
		rec := s.do(http.MethodPost, "/api/auth/token/", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := s.do(http.MethodPost, "/api/auth/token/", "", body)
	assertError(t, rec, http.StatusTooManyRequests, "429", msgThrottled)
}

func TestNewThrottle(t *testing.T) {
	throttle, err := NewThrottle(config.ThrottleConfig{Enabled: false}, hclog.NewNullLogger())
	require.NoError(t, err)
	assert.Nil(t, throttle)

	_, err = NewThrottle(config.ThrottleConfig{Enabled: true, AnonRate: "lots", UserRate: "1-S"}, hclog.NewNullLogger())
	assert.Error(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/ping", "", "")

	rec := s.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "workouts_http_requests_total")
}
