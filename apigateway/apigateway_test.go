package apigateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/sd"
	"github.com/google/uuid"
	"github.com/hashicorp/consul/api"
	"github.com/ichigozero/tasktracker/apigateway"
	"github.com/ichigozero/tasktracker/authsvc/pkg/authservice"
	"github.com/ichigozero/tasktracker/envelope"
	"github.com/ichigozero/tasktracker/tasksvc"
	taskclient "github.com/ichigozero/tasktracker/tasksvc/client"
	taskgorm "github.com/ichigozero/tasktracker/tasksvc/db/gorm"
	"github.com/ichigozero/tasktracker/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/tasktracker/tasksvc/pkg/taskservice"
	"github.com/ichigozero/tasktracker/tasksvc/pkg/tasktransport"
	"github.com/ichigozero/tasktracker/usersvc"
	userclient "github.com/ichigozero/tasktracker/usersvc/client"
	usergorm "github.com/ichigozero/tasktracker/usersvc/db/gorm"
	"github.com/ichigozero/tasktracker/usersvc/pkg/userendpoint"
	"github.com/ichigozero/tasktracker/usersvc/pkg/userservice"
	"github.com/ichigozero/tasktracker/usersvc/pkg/usertransport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newServer(t *testing.T, enc envelope.Encoder) *httptest.Server {
	t.Helper()

	db, err := libgorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &libgorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&usersvc.User{}, &tasksvc.Task{}))

	nop := log.NewNopLogger()
	var (
		users         = userservice.New(usergorm.NewUserRepository(db), nop)
		tasks         = taskservice.New(taskgorm.NewTaskRepository(db), nop)
		userEndpoints = userendpoint.New(users, nop)
		taskEndpoints = taskendpoint.New(tasks, nop)
		auth          = authservice.New(userEndpoints, nop)
	)

	srv := httptest.NewServer(apigateway.NewHTTPHandler(userEndpoints, taskEndpoints, auth, enc, nop))
	t.Cleanup(func() {
		srv.Close()
		sqlDB.Close()
	})
	return srv
}

type apiError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

type apiResponse struct {
	Status  int
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func (r apiResponse) into(t *testing.T, v interface{}) {
	t.Helper()
	require.True(t, r.Success, "response failed: %+v", r.Error)
	require.NoError(t, json.Unmarshal(r.Data, v))
}

func (r apiResponse) code() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Code
}

// call sends body as-is and sets x-user-id when userID is not empty.
func call(t *testing.T, srv *httptest.Server, method, path, userID, body string) apiResponse {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("x-user-id", userID)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := apiResponse{Status: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return out
}

func createUser(t *testing.T, srv *httptest.Server, email, name string) usersvc.User {
	t.Helper()
	resp := call(t, srv, "POST", "/api/users", "", `{"email":"`+email+`","name":"`+name+`"}`)
	require.Equal(t, http.StatusCreated, resp.Status)
	var u usersvc.User
	resp.into(t, &u)
	return u
}

func createTask(t *testing.T, srv *httptest.Server, userID uuid.UUID, body string) tasksvc.Task {
	t.Helper()
	resp := call(t, srv, "POST", "/api/tasks", userID.String(), body)
	require.Equal(t, http.StatusCreated, resp.Status, "%+v", resp.Error)
	var task tasksvc.Task
	resp.into(t, &task)
	return task
}

func TestScenario(t *testing.T) {
	srv := newServer(t, envelope.Encoder{})

	alice := createUser(t, srv, "alice@example.com", "Alice")

	task := createTask(t, srv, alice.ID, `{"title":"T1"}`)
	assert.Equal(t, tasksvc.StatusTodo, task.Status)
	assert.Equal(t, alice.ID, task.UserID)

	resp := call(t, srv, "POST", "/api/tasks/"+task.ID.String()+"/archive", alice.ID.String(), "")
	require.Equal(t, http.StatusOK, resp.Status)
	var archived tasksvc.Task
	resp.into(t, &archived)
	assert.Equal(t, tasksvc.StatusArchived, archived.Status)

	bob := createUser(t, srv, "bob@example.com", "Bob")

	resp = call(t, srv, "GET", "/api/tasks/"+task.ID.String(), bob.ID.String(), "")
	assert.Equal(t, http.StatusForbidden, resp.Status)
	assert.Equal(t, envelope.CodeForbidden, resp.code())

	resp = call(t, srv, "GET", "/api/tasks/"+uuid.New().String(), bob.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, envelope.CodeNotFound, resp.code())

	resp = call(t, srv, "GET", "/api/tasks", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, envelope.CodeUnauthenticated, resp.code())
	assert.False(t, resp.Success)
}

func TestHealth(t *testing.T) {
	srv := newServer(t, envelope.Encoder{})

	resp := call(t, srv, "GET", "/api/health", "", "")
	require.Equal(t, http.StatusOK, resp.Status)

	var health apigateway.HealthResponse
	resp.into(t, &health)
	assert.Equal(t, "ok", health.Status)
	assert.WithinDuration(t, time.Now(), health.Timestamp, time.Minute)
}

func TestUsers(t *testing.T) {
	srv := newServer(t, envelope.Encoder{})

	alice := createUser(t, srv, "alice@example.com", "Alice")
	assert.NotEqual(t, uuid.Nil, alice.ID)
	assert.Equal(t, "Alice", alice.Name)

	resp := call(t, srv, "POST", "/api/users", "", `{"email":"alice@example.com","name":"Second"}`)
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, envelope.CodeConflict, resp.code())

	resp = call(t, srv, "GET", "/api/users/"+alice.ID.String(), "", "")
	require.Equal(t, http.StatusOK, resp.Status)
	var got usersvc.User
	resp.into(t, &got)
	assert.Equal(t, "Alice", got.Name, "conflicting creation leaves the first user intact")

	resp = call(t, srv, "POST", "/api/users", "", `{"email":"Alice@example.com","name":" Alice "}`)
	require.Equal(t, http.StatusCreated, resp.Status, "email uniqueness is case-sensitive")
	var second usersvc.User
	resp.into(t, &second)
	assert.Equal(t, "Alice@example.com", second.Email)
	assert.Equal(t, " Alice ", second.Name)

	resp = call(t, srv, "POST", "/api/users", "", `{"email":"not-an-email","name":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, envelope.CodeValidation, resp.code())
	assert.Contains(t, string(resp.Error.Details), `"field":"email"`)
	assert.Contains(t, string(resp.Error.Details), `"field":"name"`)

	resp = call(t, srv, "POST", "/api/users", "", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, envelope.CodeValidation, resp.code())

	resp = call(t, srv, "GET", "/api/users/not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, envelope.CodeValidation, resp.code())

	resp = call(t, srv, "GET", "/api/users/"+uuid.New().String(), "", "")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, envelope.CodeNotFound, resp.code())
}

func TestAuthentication(t *testing.T) {
	srv := newServer(t, envelope.Encoder{})
	alice := createUser(t, srv, "alice@example.com", "Alice")

	for name, userID := range map[string]string{
		"missing":   "",
		"malformed": "alice",
		"unknown":   uuid.New().String(),
	} {
		resp := call(t, srv, "GET", "/api/tasks", userID, "")
		assert.Equal(t, http.StatusUnauthorized, resp.Status, name)
		assert.Equal(t, envelope.CodeUnauthenticated, resp.code(), name)
	}

	// Credentials are checked before the body.
	resp := call(t, srv, "POST", "/api/tasks", "", `{"title":""}`)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = call(t, srv, "GET", "/api/tasks?userId="+url.QueryEscape(alice.ID.String()), "", "")
	assert.Equal(t, http.StatusOK, resp.Status)

	resp = call(t, srv, "GET", "/api/tasks?userId="+uuid.New().String(), alice.ID.String(), "")
	assert.Equal(t, http.StatusOK, resp.Status, "the header wins over the query parameter")

	resp = call(t, srv, "GET", "/api/tasks", strings.ToUpper(alice.ID.String()), "")
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestTasks(t *testing.T) {
	srv := newServer(t, envelope.Encoder{})
	alice := createUser(t, srv, "alice@example.com", "Alice")
	bob := createUser(t, srv, "bob@example.com", "Bob")
	as := alice.ID.String()

	resp := call(t, srv, "GET", "/api/tasks", as, "")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `[]`, string(resp.Data))

	first := createTask(t, srv, alice.ID, `{"title":"first","description":"notes"}`)
	require.NotNil(t, first.Description)
	assert.Equal(t, "notes", *first.Description)
	second := createTask(t, srv, alice.ID, `{"title":"second","status":"DONE"}`)
	assert.Equal(t, tasksvc.StatusDone, second.Status)
	createTask(t, srv, bob.ID, `{"title":"bob's"}`)

	blank := createTask(t, srv, bob.ID, `{"title":"   "}`)
	assert.Equal(t, "   ", blank.Title)
	assert.Equal(t, tasksvc.StatusTodo, blank.Status)

	resp = call(t, srv, "GET", "/api/tasks", as, "")
	var listed []tasksvc.Task
	resp.into(t, &listed)
	assert.Len(t, listed, 2)

	resp = call(t, srv, "GET", "/api/tasks?status=DONE", as, "")
	listed = nil
	resp.into(t, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)

	resp = call(t, srv, "GET", "/api/tasks?status=BLOCKED", as, "")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, envelope.CodeValidation, resp.code())

	for _, body := range []string{
		`{}`,
		`{"title":""}`,
		`{"title":"` + strings.Repeat("x", 201) + `"}`,
		`{"title":"ok","status":"BLOCKED"}`,
		`{"title":"ok","description":"` + strings.Repeat("x", 2001) + `"}`,
		`not json`,
	} {
		resp = call(t, srv, "POST", "/api/tasks", as, body)
		assert.Equal(t, http.StatusBadRequest, resp.Status, body)
		assert.Equal(t, envelope.CodeValidation, resp.code(), body)
	}

	resp = call(t, srv, "GET", "/api/tasks/not-a-uuid", as, "")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestUpdateTask(t *testing.T) {
	srv := newServer(t, envelope.Encoder{})
	alice := createUser(t, srv, "alice@example.com", "Alice")
	bob := createUser(t, srv, "bob@example.com", "Bob")
	as := alice.ID.String()

	task := createTask(t, srv, alice.ID, `{"title":"T1","description":"notes"}`)
	path := "/api/tasks/" + task.ID.String()

	resp := call(t, srv, "PATCH", path, as, `{"status":"IN_PROGRESS"}`)
	require.Equal(t, http.StatusOK, resp.Status)
	var updated tasksvc.Task
	resp.into(t, &updated)
	assert.Equal(t, tasksvc.StatusInProgress, updated.Status)
	assert.Equal(t, "T1", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "notes", *updated.Description)

	resp = call(t, srv, "PATCH", path, as, `{"description":null}`)
	require.Equal(t, http.StatusOK, resp.Status)
	updated = tasksvc.Task{}
	resp.into(t, &updated)
	assert.Nil(t, updated.Description)
	assert.Equal(t, tasksvc.StatusInProgress, updated.Status)

	resp = call(t, srv, "PATCH", path, as, `{"description":""}`)
	require.Equal(t, http.StatusOK, resp.Status)
	updated = tasksvc.Task{}
	resp.into(t, &updated)
	require.NotNil(t, updated.Description, "an empty description is stored, not cleared")
	assert.Equal(t, "", *updated.Description)

	resp = call(t, srv, "GET", path, as, "")
	updated = tasksvc.Task{}
	resp.into(t, &updated)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "", *updated.Description)

	resp = call(t, srv, "PATCH", path, as, `{}`)
	require.Equal(t, http.StatusOK, resp.Status)
	updated = tasksvc.Task{}
	resp.into(t, &updated)
	assert.Equal(t, "T1", updated.Title)

	// userId in the body is ignored; the owner never changes.
	resp = call(t, srv, "PATCH", path, as, `{"title":"T2","userId":"`+bob.ID.String()+`"}`)
	require.Equal(t, http.StatusOK, resp.Status)
	updated = tasksvc.Task{}
	resp.into(t, &updated)
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, alice.ID, updated.UserID)

	resp = call(t, srv, "PATCH", path, as, `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = call(t, srv, "PATCH", path, bob.ID.String(), `{"title":"stolen"}`)
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = call(t, srv, "PATCH", "/api/tasks/"+uuid.New().String(), as, `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestArchiveAndDeleteTask(t *testing.T) {
	srv := newServer(t, envelope.Encoder{})
	alice := createUser(t, srv, "alice@example.com", "Alice")
	bob := createUser(t, srv, "bob@example.com", "Bob")
	as := alice.ID.String()

	task := createTask(t, srv, alice.ID, `{"title":"T1","status":"DONE"}`)
	path := "/api/tasks/" + task.ID.String()

	resp := call(t, srv, "POST", path+"/archive", bob.ID.String(), "")
	assert.Equal(t, http.StatusForbidden, resp.Status)

	for i := 0; i < 2; i++ {
		resp = call(t, srv, "POST", path+"/archive", as, "")
		require.Equal(t, http.StatusOK, resp.Status)
		var archived tasksvc.Task
		resp.into(t, &archived)
		assert.Equal(t, tasksvc.StatusArchived, archived.Status)
	}

	resp = call(t, srv, "POST", "/api/tasks/"+uuid.New().String()+"/archive", as, "")
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = call(t, srv, "DELETE", path, bob.ID.String(), "")
	assert.Equal(t, http.StatusForbidden, resp.Status)

	resp = call(t, srv, "DELETE", path, as, "")
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Nil(t, resp.Data)

	resp = call(t, srv, "GET", path, as, "")
	assert.Equal(t, http.StatusNotFound, resp.Status)

	resp = call(t, srv, "DELETE", path, as, "")
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestRouting(t *testing.T) {
	srv := newServer(t, envelope.Encoder{})

	resp := call(t, srv, "GET", "/api/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, envelope.CodeNotFound, resp.code())

	resp = call(t, srv, "GET", "/elsewhere", "", "")
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, envelope.CodeNotFound, resp.code())

	resp = call(t, srv, "DELETE", "/api/health", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Status)
	assert.Equal(t, envelope.CodeMethodNotAllowed, resp.code())

	resp = call(t, srv, "PUT", "/api/users", "", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Status)
}

func TestMetrics(t *testing.T) {
	srv := newServer(t, envelope.Encoder{})

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPClients(t *testing.T) {
	srv := newServer(t, envelope.Encoder{})
	ctx := context.Background()

	users, err := usertransport.NewHTTPClient(srv.URL, log.NewNopLogger())
	require.NoError(t, err)
	tasks, err := tasktransport.NewHTTPClient(srv.URL, log.NewNopLogger())
	require.NoError(t, err)

	alice, err := users.CreateUser(ctx, "alice@example.com", "Alice")
	require.NoError(t, err)
	bob, err := users.CreateUser(ctx, "bob@example.com", "Bob")
	require.NoError(t, err)

	_, err = users.CreateUser(ctx, "alice@example.com", "Again")
	assert.ErrorIs(t, err, usersvc.ErrEmailTaken)

	found, err := users.User(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)

	_, err = users.User(ctx, uuid.New())
	assert.ErrorIs(t, err, usersvc.ErrUserNotFound)

	notes := "notes"
	task, err := tasks.CreateTask(ctx, alice.ID, "T1", &notes, "")
	require.NoError(t, err)
	assert.Equal(t, tasksvc.StatusTodo, task.Status)

	done := tasksvc.StatusDone
	task, err = tasks.UpdateTask(ctx, alice.ID, task.ID, tasksvc.Patch{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, tasksvc.StatusDone, task.Status)
	require.NotNil(t, task.Description)
	assert.Equal(t, "notes", *task.Description)

	task, err = tasks.UpdateTask(ctx, alice.ID, task.ID, tasksvc.Patch{SetDescription: true})
	require.NoError(t, err)
	assert.Nil(t, task.Description)

	listed, err := tasks.Tasks(ctx, alice.ID, tasksvc.StatusDone)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = tasks.Task(ctx, bob.ID, task.ID)
	assert.ErrorIs(t, err, tasksvc.ErrForbidden)

	_, err = tasks.Tasks(ctx, uuid.New(), "")
	assert.Error(t, err)

	task, err = tasks.ArchiveTask(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, tasksvc.StatusArchived, task.Status)

	require.NoError(t, tasks.DeleteTask(ctx, alice.ID, task.ID))

	_, err = tasks.Task(ctx, alice.ID, task.ID)
	assert.ErrorIs(t, err, tasksvc.ErrTaskNotFound)
}

func TestBalancedClients(t *testing.T) {
	srv := newServer(t, envelope.Encoder{})
	ctx := context.Background()

	instancer := sd.FixedInstancer{strings.TrimPrefix(srv.URL, "http://")}
	users := userclient.NewWithInstancer(instancer, log.NewNopLogger(), 3, time.Second)
	tasks := taskclient.NewWithInstancer(instancer, log.NewNopLogger(), 3, time.Second)

	var alice usersvc.User
	require.Eventually(t, func() bool {
		var err error
		alice, err = users.CreateUser(ctx, "alice@example.com", "Alice")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	var task tasksvc.Task
	require.Eventually(t, func() bool {
		var err error
		task, err = tasks.CreateTask(ctx, alice.ID, "T1", nil, tasksvc.StatusInProgress)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, tasksvc.StatusInProgress, task.Status)
	assert.Equal(t, alice.ID, task.UserID)

	got, err := tasks.Task(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "T1", got.Title)
}

// catalog answers the first lookup with a single healthy instance and
// holds later blocking queries until the test ends.
type catalog struct {
	host string
	port int
	done chan struct{}

	mtx      sync.Mutex
	served   bool
	services []string
}

func (c *catalog) Register(*api.AgentServiceRegistration) error   { return nil }
func (c *catalog) Deregister(*api.AgentServiceRegistration) error { return nil }

func (c *catalog) Service(service, _ string, _ bool, _ *api.QueryOptions) ([]*api.ServiceEntry, *api.QueryMeta, error) {
	c.mtx.Lock()
	c.services = append(c.services, service)
	served := c.served
	c.served = true
	c.mtx.Unlock()

	if served {
		<-c.done
		return nil, nil, errors.New("catalog closed")
	}
	return []*api.ServiceEntry{{
		Node:    &api.Node{Address: c.host},
		Service: &api.AgentService{Service: service, Address: c.host, Port: c.port},
	}}, &api.QueryMeta{LastIndex: 1}, nil
}

func newCatalog(t *testing.T, srv *httptest.Server) *catalog {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	c := &catalog{host: u.Hostname(), port: port, done: make(chan struct{})}
	t.Cleanup(func() { close(c.done) })
	return c
}

func TestConsulClients(t *testing.T) {
	srv := newServer(t, envelope.Encoder{})
	ctx := context.Background()

	userCatalog := newCatalog(t, srv)
	users, err := userclient.New(userCatalog, log.NewNopLogger(), 3, time.Second)
	require.NoError(t, err)
	taskCatalog := newCatalog(t, srv)
	tasks, err := taskclient.New(taskCatalog, log.NewNopLogger(), 3, time.Second)
	require.NoError(t, err)

	var alice usersvc.User
	require.Eventually(t, func() bool {
		alice, err = users.CreateUser(ctx, "alice@example.com", "Alice")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	found, err := users.User(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", found.Email)

	var task tasksvc.Task
	require.Eventually(t, func() bool {
		var err error
		task, err = tasks.CreateTask(ctx, alice.ID, "T1", nil, "")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, alice.ID, task.UserID)

	listed, err := tasks.Tasks(ctx, alice.ID, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, task.ID, listed[0].ID)

	for _, c := range []*catalog{userCatalog, taskCatalog} {
		c.mtx.Lock()
		require.NotEmpty(t, c.services)
		assert.Equal(t, taskclient.ServiceName, c.services[0])
		c.mtx.Unlock()
	}
}
