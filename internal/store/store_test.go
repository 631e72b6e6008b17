package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kidandcat/tracker/internal/api"
	"github.com/kidandcat/tracker/internal/auth"
	"github.com/kidandcat/tracker/internal/db"
	"github.com/kidandcat/tracker/internal/localstate"
	"github.com/kidandcat/tracker/internal/mockdata"
	"github.com/kidandcat/tracker/internal/model"
	"github.com/kidandcat/tracker/internal/server"
)

const password = "pw"

var fixedNow = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func seqIDs(ids ...string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		if n <= len(ids) {
			return ids[n-1]
		}
		return fmt.Sprintf("gen-%d", n)
	}
}

func testMock(ids ...string) *MockBackend {
	return &MockBackend{NewID: seqIDs(ids...), Now: func() time.Time { return fixedNow }}
}

// liveServer runs the development backend over a seeded database.
func liveServer(t *testing.T) (*httptest.Server, *db.DB) {
	t.Helper()
	d, err := db.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	_, err = d.Seed(context.Background(), hash)
	require.NoError(t, err)

	srv := httptest.NewServer(server.NewAPI(d, zap.NewNop()).Router())
	t.Cleanup(srv.Close)
	return srv, d
}

// deadURL returns an address nothing listens on.
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func newStore(t *testing.T, baseURL string, opts ...Option) (*Store, *localstate.Memory) {
	t.Helper()
	state := localstate.NewMemory()
	client := api.New(baseURL+"/api/v1", state, api.WithTimeout(2*time.Second))
	return New(client, state, zap.NewNop(), opts...), state
}

func token(t *testing.T, s localstate.Store) string {
	t.Helper()
	tok, err := localstate.Token(context.Background(), s)
	require.NoError(t, err)
	return tok
}

func issueByTitle(issues []model.Issue, title string) (model.Issue, bool) {
	for _, i := range issues {
		if i.Title == title {
			return i, true
		}
	}
	return model.Issue{}, false
}

func TestNewStartsUnauthenticatedWithMockData(t *testing.T) {
	s, _ := newStore(t, deadURL(t))

	snap := s.Snapshot()
	assert.Equal(t, Unauthenticated, snap.Session)
	assert.Nil(t, snap.User)
	assert.False(t, snap.UseAPI)
	assert.False(t, snap.IsLoading)
	assert.Equal(t, mockdata.Issues(), snap.Issues)
	assert.Equal(t, mockdata.Users(), snap.Users)
	assert.Equal(t, mockdata.Projects(), snap.Projects)
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := newStore(t, deadURL(t))

	snap := s.Snapshot()
	snap.Issues[0].Title = "changed"
	snap.Issues[2].Comments[0].Text = "changed"
	snap.Users = nil

	fresh := s.Snapshot()
	assert.Equal(t, mockdata.Issues()[0].Title, fresh.Issues[0].Title)
	assert.Equal(t, mockdata.Issues()[2].Comments[0].Text, fresh.Issues[2].Comments[0].Text)
	assert.Len(t, fresh.Users, 4)
}

func TestLogin_FallsBackToMockDirectoryWhenOffline(t *testing.T) {
	s, state := newStore(t, deadURL(t))

	ok := s.Login(context.Background(), "admin@example.com", "anything")
	require.True(t, ok)

	u := s.User()
	require.NotNil(t, u)
	assert.Equal(t, "1", u.ID)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.False(t, s.UseAPI())
	assert.Equal(t, Authenticated, s.Session())
	assert.Empty(t, token(t, state))
}

func TestLogin_MockDirectoryMatchesEmailCaseInsensitively(t *testing.T) {
	s, _ := newStore(t, deadURL(t))

	require.True(t, s.Login(context.Background(), "  Jane@Example.COM ", ""))
	assert.Equal(t, "3", s.User().ID)
}

func TestLogin_UnknownEmailOffline(t *testing.T) {
	s, _ := newStore(t, deadURL(t))

	assert.False(t, s.Login(context.Background(), "nobody@example.com", "pw"))
	assert.Nil(t, s.User())
	assert.Equal(t, Unauthenticated, s.Session())
}

func TestLogin_AgainstAPI(t *testing.T) {
	srv, _ := liveServer(t)
	s, state := newStore(t, srv.URL)

	require.True(t, s.Login(context.Background(), "jane@example.com", password))

	snap := s.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, "Jane Smith", snap.User.Name)
	assert.True(t, snap.UseAPI)
	assert.False(t, snap.IsLoading)
	assert.NotEmpty(t, token(t, state))
	assert.Len(t, snap.Issues, 5)
	assert.Len(t, snap.Users, 4)
	assert.Len(t, snap.Projects, 2)

	redirect, ok := issueByTitle(snap.Issues, "Fix login redirect")
	require.True(t, ok)
	assert.Equal(t, model.StatusReview, redirect.Status)
	require.Len(t, redirect.Comments, 2)
	assert.Equal(t, "Jane Smith", redirect.Comments[0].AuthorName)
}

func TestLogin_RejectedByAPIStillUsesLocalDirectory(t *testing.T) {
	srv, _ := liveServer(t)
	s, state := newStore(t, srv.URL)

	require.True(t, s.Login(context.Background(), "jane@example.com", "wrong"))
	assert.False(t, s.UseAPI())
	assert.Equal(t, "3", s.User().ID)
	assert.Empty(t, token(t, state))
}

func TestLogin_NormalizesTeamLeadToAdmin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/auth/login":
			fmt.Fprint(w, `{"token":"t","user":{"id":9,"name":"Lead","email":"lead@example.com","role":"team_lead"}}`)
		default:
			fmt.Fprint(w, `[]`)
		}
	}))
	defer srv.Close()
	s, _ := newStore(t, srv.URL)

	require.True(t, s.Login(context.Background(), "lead@example.com", "pw"))
	assert.Equal(t, model.RoleAdmin, s.User().Role)
	assert.Equal(t, "9", s.User().ID)
	assert.True(t, s.UseAPI())
	assert.Empty(t, s.Issues())
}

// rejectAfterAuth accepts login and register, then answers 401 to everything
// else, as a server does when the fresh session is revoked right away.
func rejectAfterAuth(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/auth/login", "/api/v1/auth/register":
			fmt.Fprint(w, `{"token":"t","user":{"id":1,"name":"Admin User","email":"admin@example.com","role":"admin"}}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"session expired"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLogin_UnauthorizedReloadReportsFailure(t *testing.T) {
	s, state := newStore(t, rejectAfterAuth(t).URL)

	assert.False(t, s.Login(context.Background(), "admin@example.com", "pw"))
	assert.Nil(t, s.User())
	assert.Equal(t, Unauthenticated, s.Session())
	assert.False(t, s.UseAPI())
	assert.Empty(t, token(t, state))
}

func TestRegister_UnauthorizedReloadReturnsError(t *testing.T) {
	s, state := newStore(t, rejectAfterAuth(t).URL)

	err := s.Register(context.Background(), model.UserInput{Name: "Admin User", Email: "admin@example.com", Password: "pw"})
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Nil(t, s.User())
	assert.Empty(t, token(t, state))
}

func TestReload_NormalizesListedRoles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/auth/login":
			fmt.Fprint(w, `{"token":"t","user":{"id":1,"name":"Admin","email":"admin@example.com","role":"admin"}}`)
		case "/api/v1/users":
			fmt.Fprint(w, `[{"id":1,"name":"Admin","email":"admin@example.com","role":"admin"},
				{"id":2,"name":"Lead","email":"lead@example.com","role":"team_lead"},
				{"id":3,"name":"Guest","email":"guest@example.com","role":"client"}]`)
		default:
			fmt.Fprint(w, `[]`)
		}
	}))
	defer srv.Close()
	s, _ := newStore(t, srv.URL)

	require.True(t, s.Login(context.Background(), "admin@example.com", "pw"))
	roles := map[string]model.Role{}
	for _, u := range s.Users() {
		roles[u.ID] = u.Role
	}
	assert.Equal(t, map[string]model.Role{"1": model.RoleAdmin, "2": model.RoleAdmin, "3": model.RoleUser}, roles)
}

func TestSnapshotCopiesAvatars(t *testing.T) {
	s, _ := newStore(t, deadURL(t))
	avatar := "https://example.com/a.png"
	s.update(func(sn *Snapshot) {
		sn.User = &model.User{ID: "1", Name: "Admin User", Avatar: &avatar}
		sn.Users[0].Avatar = &avatar
	})

	snap := s.Snapshot()
	*snap.User.Avatar = "changed"
	*snap.Users[0].Avatar = "changed"

	fresh := s.Snapshot()
	assert.Equal(t, "https://example.com/a.png", *fresh.User.Avatar)
	assert.Equal(t, "https://example.com/a.png", *fresh.Users[0].Avatar)
}

func TestLogout(t *testing.T) {
	srv, _ := liveServer(t)
	s, state := newStore(t, srv.URL)
	ctx := context.Background()
	require.True(t, s.Login(ctx, "john@example.com", password))
	before := s.Issues()

	require.NoError(t, s.Logout(ctx))

	snap := s.Snapshot()
	assert.Nil(t, snap.User)
	assert.False(t, snap.UseAPI)
	assert.Equal(t, Unauthenticated, snap.Session)
	assert.Empty(t, token(t, state))
	assert.Equal(t, before, snap.Issues)
}

func TestRestoreSession(t *testing.T) {
	ctx := context.Background()

	t.Run("no token", func(t *testing.T) {
		s, _ := newStore(t, deadURL(t))
		assert.Equal(t, Unauthenticated, s.RestoreSession(ctx))
		assert.Nil(t, s.User())
	})

	t.Run("valid token", func(t *testing.T) {
		srv, _ := liveServer(t)
		first, state := newStore(t, srv.URL)
		require.True(t, first.Login(ctx, "john@example.com", password))

		client := api.New(srv.URL+"/api/v1", state)
		s := New(client, state, zap.NewNop())
		assert.Equal(t, Authenticated, s.RestoreSession(ctx))
		assert.Equal(t, "John Doe", s.User().Name)
		assert.True(t, s.UseAPI())
		assert.Len(t, s.Issues(), 5)
	})

	t.Run("unauthorized clears token", func(t *testing.T) {
		srv, _ := liveServer(t)
		s, state := newStore(t, srv.URL)
		require.NoError(t, state.Set(ctx, localstate.TokenKey, "stale"))

		assert.Equal(t, Unauthenticated, s.RestoreSession(ctx))
		assert.Nil(t, s.User())
		assert.False(t, s.UseAPI())
		assert.Empty(t, token(t, state))
	})

	t.Run("network failure keeps token", func(t *testing.T) {
		s, state := newStore(t, deadURL(t))
		require.NoError(t, state.Set(ctx, localstate.TokenKey, "tok"))

		assert.Equal(t, Restoring, s.RestoreSession(ctx))
		assert.Nil(t, s.User())
		assert.False(t, s.IsLoading())
		assert.Equal(t, "tok", token(t, state))
	})

	t.Run("server error keeps token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"db down"}`, http.StatusInternalServerError)
		}))
		defer srv.Close()
		s, state := newStore(t, srv.URL)
		require.NoError(t, state.Set(ctx, localstate.TokenKey, "tok"))

		assert.Equal(t, Restoring, s.RestoreSession(ctx))
		assert.Nil(t, s.User())
		assert.Equal(t, "tok", token(t, state))
	})
}

func TestMock_UpdateIssueStatus(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, deadURL(t))
	require.True(t, s.Login(ctx, "admin@example.com", ""))

	require.NoError(t, s.UpdateIssueStatus(ctx, "3", model.StatusDone))

	want := mockdata.Issues()
	want[2].Status = model.StatusDone
	assert.Equal(t, want, s.Issues())

	err := s.UpdateIssueStatus(ctx, "nope", model.StatusDone)
	assert.ErrorIs(t, err, ErrIssueNotFound)
	assert.Equal(t, want, s.Issues())

	assert.Error(t, s.UpdateIssueStatus(ctx, "1", model.Status("blocked")))
}

func TestMock_CreateIssue(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, deadURL(t), WithMockBackend(testMock("3", "5", "m-1")))
	require.True(t, s.Login(ctx, "admin@example.com", ""))

	project := "2"
	err := s.CreateIssue(ctx, model.IssueInput{
		Title:     "Dark mode",
		Status:    model.StatusReview,
		Priority:  model.PriorityHigh,
		ProjectID: &project,
	})
	require.NoError(t, err)

	issues := s.Issues()
	require.Len(t, issues, 6)
	created := issues[0]
	assert.Equal(t, "m-1", created.ID, "ids already in use are skipped")
	assert.Equal(t, "Dark mode", created.Title)
	assert.Equal(t, model.StatusTodo, created.Status)
	assert.Equal(t, model.PriorityHigh, created.Priority)
	assert.Equal(t, "1", created.CreatedBy)
	assert.Equal(t, &project, created.ProjectID)
	assert.Equal(t, fixedNow, created.CreatedAt)
	assert.NotNil(t, created.Comments)
	assert.Empty(t, created.Comments)
	assert.Equal(t, mockdata.Issues(), issues[1:])

	assert.ErrorIs(t, s.CreateIssue(ctx, model.IssueInput{Title: "  "}), model.ErrTitleRequired)
	assert.Len(t, s.Issues(), 6)
}

func TestMock_AddComment(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, deadURL(t), WithMockBackend(testMock("c-1")))
	require.True(t, s.Login(ctx, "admin@example.com", ""))

	require.NoError(t, s.AddComment(ctx, "3", "  Looks good  "))

	issue, ok := s.IssueByID("3")
	require.True(t, ok)
	require.Len(t, issue.Comments, 3)
	last := issue.Comments[2]
	assert.Equal(t, "c-1", last.ID)
	assert.Equal(t, "Looks good", last.Text)
	assert.Equal(t, "1", last.AuthorID)
	assert.Equal(t, "Admin User", last.AuthorName)
	assert.Equal(t, mockdata.Issues()[2].Comments, issue.Comments[:2])

	assert.ErrorIs(t, s.AddComment(ctx, "3", "   "), ErrEmptyComment)
	assert.ErrorIs(t, s.AddComment(ctx, "404", "hi"), ErrIssueNotFound)
}

func TestMock_CreateProjectAndUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, deadURL(t), WithMockBackend(testMock("1", "p-9", "u-9")))
	require.True(t, s.Login(ctx, "admin@example.com", ""))

	require.NoError(t, s.CreateProject(ctx, model.ProjectInput{Name: "Ops"}))
	projects := s.Projects()
	require.Len(t, projects, 3)
	assert.Equal(t, "p-9", projects[2].ID)

	require.NoError(t, s.CreateUser(ctx, model.UserInput{Name: "Lee", Email: "Lee@Example.com", Role: model.RoleTeamLead}))
	users := s.Users()
	require.Len(t, users, 5)
	assert.Equal(t, "u-9", users[4].ID)
	assert.Equal(t, "lee@example.com", users[4].Email)
	assert.Equal(t, model.RoleAdmin, users[4].Role)

	err := s.CreateUser(ctx, model.UserInput{Name: "Dup", Email: "JOHN@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Len(t, s.Users(), 5)

	assert.ErrorIs(t, s.CreateProject(ctx, model.ProjectInput{}), model.ErrNameRequired)
}

func TestRemote_CreateIssueRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv, _ := liveServer(t)
	s, state := newStore(t, srv.URL)
	require.True(t, s.Login(ctx, "john@example.com", password))

	due := "2024-06-01"
	assignee := "3"
	in := model.IssueInput{
		Title:       "Crash on upload",
		Description: "Large files time out.",
		Priority:    model.PriorityLow,
		AssigneeID:  &assignee,
		DueDate:     &due,
	}
	require.NoError(t, s.CreateIssue(ctx, in))

	issues := s.Issues()
	require.Len(t, issues, 6)
	created := issues[0]
	assert.Equal(t, "6", created.ID)
	assert.Equal(t, "2", created.CreatedBy)

	fetched, err := api.New(srv.URL+"/api/v1", state).GetIssue(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Title, fetched.Title)
	assert.Equal(t, in.Description, fetched.Description)
	assert.Equal(t, in.Priority, fetched.Priority)
	assert.Equal(t, model.StatusTodo, fetched.Status)
	assert.Equal(t, &assignee, fetched.AssigneeID)
	assert.Equal(t, &due, fetched.DueDate)
}

func TestRemote_UpdateIssueStatusReloads(t *testing.T) {
	ctx := context.Background()
	srv, _ := liveServer(t)
	s, _ := newStore(t, srv.URL)
	require.True(t, s.Login(ctx, "admin@example.com", password))

	require.NoError(t, s.UpdateIssueStatus(ctx, "3", model.StatusDone))

	issue, ok := s.IssueByID("3")
	require.True(t, ok)
	assert.Equal(t, model.StatusDone, issue.Status)

	err := s.UpdateIssueStatus(ctx, "999", model.StatusDone)
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.True(t, s.UseAPI())
}

func TestRemote_AddCommentUsesServerAuthor(t *testing.T) {
	ctx := context.Background()
	srv, _ := liveServer(t)
	s, _ := newStore(t, srv.URL)
	require.True(t, s.Login(ctx, "john@example.com", password))

	require.NoError(t, s.AddComment(ctx, "3", "Deployed"))

	issue, ok := s.IssueByID("3")
	require.True(t, ok)
	require.Len(t, issue.Comments, 3)
	assert.Equal(t, "Deployed", issue.Comments[2].Text)
	assert.Equal(t, "John Doe", issue.Comments[2].AuthorName)
	assert.Equal(t, "2", issue.Comments[2].AuthorID)
}

func TestRemote_CreateProjectAndUserMerge(t *testing.T) {
	ctx := context.Background()
	srv, _ := liveServer(t)
	s, state := newStore(t, srv.URL)
	require.True(t, s.Login(ctx, "admin@example.com", password))
	adminToken := token(t, state)

	require.NoError(t, s.CreateProject(ctx, model.ProjectInput{Name: "Ops", Description: "Infra"}))
	projects := s.Projects()
	require.Len(t, projects, 3)
	assert.Equal(t, "Ops", projects[2].Name)
	assert.Equal(t, "3", projects[2].ID)

	require.NoError(t, s.CreateUser(ctx, model.UserInput{Name: "Lee", Email: "lee@example.com", Password: "pw"}))
	users := s.Users()
	require.Len(t, users, 5)
	assert.Equal(t, "lee@example.com", users[4].Email)
	assert.Equal(t, adminToken, token(t, state), "creating a user keeps the admin signed in")
	assert.Equal(t, "1", s.User().ID)
}

func TestRemote_CreateProjectForbiddenForUsers(t *testing.T) {
	ctx := context.Background()
	srv, _ := liveServer(t)
	s, _ := newStore(t, srv.URL)
	require.True(t, s.Login(ctx, "john@example.com", password))

	err := s.CreateProject(ctx, model.ProjectInput{Name: "Nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrValidation)
	assert.Len(t, s.Projects(), 2)
	assert.NotNil(t, s.User())
}

func TestRemote_UnauthorizedMutationEndsSession(t *testing.T) {
	ctx := context.Background()
	srv, _ := liveServer(t)
	s, state := newStore(t, srv.URL)
	require.True(t, s.Login(ctx, "john@example.com", password))

	require.NoError(t, state.Set(ctx, localstate.TokenKey, "revoked"))
	err := s.AddComment(ctx, "3", "hello")

	assert.ErrorIs(t, err, api.ErrUnauthorized)
	snap := s.Snapshot()
	assert.Nil(t, snap.User)
	assert.False(t, snap.UseAPI)
	assert.Equal(t, Unauthenticated, snap.Session)
	assert.Empty(t, token(t, state))
}

func TestReload_BootstrapFailureRevertsToMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/auth/login":
			fmt.Fprint(w, `{"token":"t","user":{"id":1,"name":"Admin User","email":"admin@example.com","role":"admin"}}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()
	s, state := newStore(t, srv.URL)

	require.True(t, s.Login(context.Background(), "admin@example.com", "pw"))

	snap := s.Snapshot()
	assert.False(t, snap.UseAPI)
	assert.False(t, snap.IsLoading)
	assert.NotNil(t, snap.User)
	assert.Equal(t, mockdata.Issues(), snap.Issues)
	assert.Equal(t, "t", token(t, state))

	// Later mutations go to the in-memory backend.
	require.NoError(t, s.UpdateIssueStatus(context.Background(), "1", model.StatusTodo))
}

func TestReload_ProjectFailureKeepsPreviousProjects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/auth/login":
			fmt.Fprint(w, `{"token":"t","user":{"id":1,"name":"A","email":"a@example.com","role":"user"}}`)
		case "/api/v1/issues":
			fmt.Fprint(w, `[{"id":10,"title":"Remote","status":"in_progress","priority":"high","created_by":1,"comments":null}]`)
		case "/api/v1/users":
			fmt.Fprint(w, `[{"id":1,"name":"A","email":"a@example.com","role":"user"}]`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	s, _ := newStore(t, srv.URL)

	require.True(t, s.Login(context.Background(), "a@example.com", "pw"))

	snap := s.Snapshot()
	assert.True(t, snap.UseAPI)
	require.Len(t, snap.Issues, 1)
	assert.Equal(t, model.StatusInProgress, snap.Issues[0].Status)
	assert.NotNil(t, snap.Issues[0].Comments)
	assert.Len(t, snap.Users, 1)
	assert.Equal(t, mockdata.Projects(), snap.Projects)
}

func TestReload_NoopInMockMode(t *testing.T) {
	s, _ := newStore(t, deadURL(t))
	require.True(t, s.Login(context.Background(), "admin@example.com", ""))
	assert.NoError(t, s.Reload(context.Background()))
	assert.Equal(t, mockdata.Issues(), s.Issues())
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, deadURL(t))

	var mu sync.Mutex
	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		got = append(got, snap)
		mu.Unlock()
	})

	require.True(t, s.Login(ctx, "admin@example.com", ""))
	require.NoError(t, s.UpdateIssueStatus(ctx, "2", model.StatusReview))

	mu.Lock()
	require.Len(t, got, 2)
	assert.Equal(t, Authenticated, got[0].Session)
	assert.Equal(t, model.StatusReview, got[1].Issues[1].Status)
	mu.Unlock()

	unsubscribe()
	require.NoError(t, s.Logout(ctx))
	mu.Lock()
	assert.Len(t, got, 2)
	mu.Unlock()
}

// gatedBackend holds CreateIssue until released, so a session change can land
// while the call is in flight.
type gatedBackend struct {
	*MockBackend
	entered chan struct{}
	release chan struct{}
}

func (b *gatedBackend) CreateIssue(ctx context.Context, actor *model.User, in model.IssueInput) (Patch, error) {
	close(b.entered)
	<-b.release
	return b.MockBackend.CreateIssue(ctx, actor, in)
}

func TestMutationResultDroppedAfterSessionChange(t *testing.T) {
	ctx := context.Background()
	gate := &gatedBackend{
		MockBackend: testMock("late"),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	s, _ := newStore(t, deadURL(t), WithMockBackend(gate))
	require.True(t, s.Login(ctx, "admin@example.com", ""))

	done := make(chan error, 1)
	go func() {
		done <- s.CreateIssue(ctx, model.IssueInput{Title: "In flight"})
	}()

	<-gate.entered
	require.NoError(t, s.Logout(ctx))
	close(gate.release)

	require.NoError(t, <-done)
	_, found := issueByTitle(s.Issues(), "In flight")
	assert.False(t, found)
}

func TestConcurrentMockMutationsAllApply(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, deadURL(t))
	require.True(t, s.Login(ctx, "admin@example.com", ""))

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.AddComment(ctx, "4", fmt.Sprintf("note %d", i))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	issue, ok := s.IssueByID("4")
	require.True(t, ok)
	assert.Len(t, issue.Comments, 10)
	ids := map[string]bool{}
	for _, c := range issue.Comments {
		ids[c.ID] = true
	}
	assert.Len(t, ids, 10)
}

func TestUserName(t *testing.T) {
	s, _ := newStore(t, deadURL(t))
	assert.Equal(t, "Jane Smith", s.UserName("3"))
	assert.Equal(t, "42", s.UserName("42"))
	assert.Equal(t, "", s.UserName(""))
	assert.True(t, errors.Is(fmt.Errorf("wrap: %w", ErrIssueNotFound), ErrIssueNotFound))
}
