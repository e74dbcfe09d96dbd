package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/sole_searcher/internal/models"
	"github.com/Skotchmaster/sole_searcher/internal/repo"
	"github.com/Skotchmaster/sole_searcher/internal/storage"
)

func newTestAuthService(r *repo.StorageRepo) (*AuthService, *eventRecorder) {
	rec := &eventRecorder{}
	svc := &AuthService{
		Repo:     r,
		Producer: rec,
		HashCost: bcrypt.MinCost,
	}
	svc.Load(context.Background())
	return svc, rec
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo()
	svc, _ := newTestAuthService(r)
	ctx := context.Background()

	_, err := svc.Register(ctx, "jane@example.com", "password1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "jane@example.com", "password2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	users, err := r.LoadUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAuthService_Register_Role(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		email string
		role  models.Role
	}{
		{name: "reserved admin email", email: "admin@solesearcher.com", role: models.RoleAdmin},
		{name: "admin email any case", email: "Admin@SoleSearcher.com", role: models.RoleAdmin},
		{name: "regular email", email: "jane@example.com", role: models.RoleUser},
		{name: "admin email with padding", email: " admin@solesearcher.com", role: models.RoleUser},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, _ := newTestRepo()
			svc, _ := newTestAuthService(r)

			u, err := svc.Register(context.Background(), tt.email, "password1")
			require.NoError(t, err)
			assert.Equal(t, tt.role, u.Role)
			assert.NotEmpty(t, u.ID)
		})
	}
}

func TestAuthService_Register_CustomAdminEmail(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo()
	svc := &AuthService{Repo: r, AdminEmail: "boss@shop.test", HashCost: bcrypt.MinCost}
	svc.Load(context.Background())

	u, err := svc.Register(context.Background(), "boss@shop.test", "password1")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo()
	svc, rec := newTestAuthService(r)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "jane@example.com", "password1")
	require.NoError(t, err)
	svc.Logout(ctx)
	require.Nil(t, svc.CurrentUser())

	_, err = svc.Login(ctx, "jane@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "JANE@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, err := svc.Login(ctx, "jane@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, registered, u)
	require.NotNil(t, svc.CurrentUser())
	assert.Equal(t, registered.ID, svc.CurrentUser().ID)

	assert.Equal(t, []string{"user_registered", "user_logged_out", "user_logged_in"}, rec.types())
	assert.Equal(t, TopicUserEvents, rec.events[0].Topic)
	assert.Equal(t, registered.ID, rec.events[0].Key)
}

func TestAuthService_Validation(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo()
	svc, _ := newTestAuthService(r)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "password1"},
		{name: "blank email", email: "   ", password: "password1"},
		{name: "empty password", email: "jane@example.com", password: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Register(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrValidation)

			_, err = svc.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_StoresHashedCredentials(t *testing.T) {
	t.Parallel()

	r, mem := newTestRepo()
	svc, _ := newTestAuthService(r)
	ctx := context.Background()

	_, err := svc.Register(ctx, "jane@example.com", "password1")
	require.NoError(t, err)

	raw, err := mem.Get(ctx, r.Keys.Users())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password1")

	users, err := r.LoadUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("password1")))
}

func TestAuthService_SessionSurvivesReload(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo()
	svc, _ := newTestAuthService(r)
	ctx := context.Background()

	u, err := svc.Register(ctx, "jane@example.com", "password1")
	require.NoError(t, err)

	reloaded, _ := newTestAuthService(r)
	require.NotNil(t, reloaded.CurrentUser())
	assert.Equal(t, u, *reloaded.CurrentUser())

	_, err = reloaded.Register(ctx, "jane@example.com", "password1")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	reloaded.Logout(ctx)
	session, err := r.LoadSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestAuthService_UnreadableStorage(t *testing.T) {
	t.Parallel()

	r, mem := newTestRepo()
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, r.Keys.Users(), []byte("{not json")))
	require.NoError(t, mem.Set(ctx, r.Keys.Session(), []byte("{not json")))

	svc, _ := newTestAuthService(r)
	assert.Nil(t, svc.CurrentUser())

	_, err := svc.Register(ctx, "jane@example.com", "password1")
	require.NoError(t, err)
}

func TestAuthService_WriteFailureKeepsMemoryState(t *testing.T) {
	t.Parallel()

	mem := storage.NewMemory()
	svc, _ := newTestAuthService(&repo.StorageRepo{Store: failingStore{Store: mem}})
	ctx := context.Background()

	u, err := svc.Register(ctx, "jane@example.com", "password1")
	require.NoError(t, err)
	require.NotNil(t, svc.CurrentUser())
	assert.Equal(t, u.ID, svc.CurrentUser().ID)

	svc.Logout(ctx)
	_, err = svc.Login(ctx, "jane@example.com", "password1")
	require.NoError(t, err)
}

func TestAuthService_NotifiesListeners(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo()
	svc, _ := newTestAuthService(r)
	ln := &sessionRecorder{}
	svc.AddListener(ln)
	ctx := context.Background()

	u, err := svc.Register(ctx, "jane@example.com", "password1")
	require.NoError(t, err)
	svc.Logout(ctx)

	require.Len(t, ln.calls, 2)
	require.NotNil(t, ln.calls[0])
	assert.Equal(t, u.ID, ln.calls[0].ID)
	assert.Nil(t, ln.calls[1])
}

func TestAuthService_Latency(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo()
	svc := &AuthService{Repo: r, HashCost: bcrypt.MinCost, Latency: 30 * time.Millisecond}
	svc.Load(context.Background())

	start := time.Now()
	fut := svc.RegisterAsync(context.Background(), "jane@example.com", "password1")
	select {
	case <-fut.Done():
		t.Fatal("register resolved before the latency elapsed")
	default:
	}
	u, err := fut.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.LoginAsync(ctx, "jane@example.com", "password1").Await(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuthService_ConcurrentLoginsKeepCartInStep(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo()
	svc, _ := newTestAuthService(r)
	cart := &CartService{Repo: r}
	svc.AddListener(cart)
	ctx := context.Background()

	emails := []string{"jane@example.com", "john@example.com"}
	for _, email := range emails {
		_, err := svc.Register(ctx, email, "password1")
		require.NoError(t, err)
	}

	for round := 0; round < 100; round++ {
		var wg sync.WaitGroup
		for _, email := range emails {
			email := email
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Login(ctx, email, "password1")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		u := svc.CurrentUser()
		require.NotNil(t, u)
		require.Equal(t, u.ID, cart.UserID(), "round %d", round)
	}
}

func TestAuthService_CancelDuringHashCommitsNothing(t *testing.T) {
	t.Parallel()

	r, _ := newTestRepo()
	rec := &eventRecorder{}
	svc := &AuthService{Repo: r, Producer: rec, HashCost: 12, Latency: 10 * time.Millisecond}
	svc.Load(context.Background())
	ln := &sessionRecorder{}
	svc.AddListener(ln)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(40*time.Millisecond, cancel)

	_, err := svc.Register(ctx, "jane@example.com", "password1")
	assert.ErrorIs(t, err, context.Canceled)

	assert.Nil(t, svc.CurrentUser())
	assert.Empty(t, ln.calls)
	assert.Empty(t, rec.types())
	users, err := r.LoadUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = svc.Register(context.Background(), "jane@example.com", "password1")
	assert.NoError(t, err)
}
