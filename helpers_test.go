package sessauth

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/univcore/sessauth/storage"
)

// fakeGateway is a scripted Gateway. Result fields are returned as-is; call
// counters let tests assert how often an endpoint was hit.
type fakeGateway struct {
	mu sync.Mutex

	loginResult    *LoginResult
	loginErr       error
	logoutErr      error
	refreshResult  *RefreshResult
	refreshErr     error
	currentUser    *RawUser
	currentUserErr error
	updateErr      error
	avatarResult   *AvatarResult
	avatarErr      error
	permissions    *PermissionList
	permissionsErr error

	// permissionsGate, when set, blocks Permissions until closed.
	permissionsGate chan struct{}

	loginCalls       int
	logoutCalls      int
	refreshCalls     int
	currentUserCalls int
	updateCalls      int
	permissionCalls  int
}

func (f *fakeGateway) Login(context.Context, Credentials) (*LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	return f.loginResult, f.loginErr
}

func (f *fakeGateway) Logout(context.Context, PrincipalKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeGateway) RefreshToken(context.Context, PrincipalKind) (*RefreshResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	return f.refreshResult, f.refreshErr
}

func (f *fakeGateway) CurrentUser(context.Context, PrincipalKind) (*RawUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentUserCalls++
	return f.currentUser, f.currentUserErr
}

func (f *fakeGateway) UpdateProfile(context.Context, PrincipalKind, ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	return f.updateErr
}

func (f *fakeGateway) UploadAvatar(context.Context, PrincipalKind, string, io.Reader) (*AvatarResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.avatarResult, f.avatarErr
}

func (f *fakeGateway) Permissions(context.Context, string) (*PermissionList, error) {
	f.mu.Lock()
	gate := f.permissionsGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.permissionCalls++
	return f.permissions, f.permissionsErr
}

func (f *fakeGateway) calls() (login, logout, refresh, perms int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.logoutCalls, f.refreshCalls, f.permissionCalls
}

func staffCreds() Credentials {
	return Credentials{Kind: KindStaff, Identifier: "a.karimov", Secret: "secret"}
}

func staffLoginResult(token string, perms ...string) *LoginResult {
	return &LoginResult{
		User: RawUser{
			ID:          7,
			FullName:    "Anvar Karimov",
			Email:       "a.karimov@example.edu",
			Role:        "teacher",
			Type:        "admin",
			Permissions: perms,
		},
		AccessToken: token,
	}
}

func newTestStore(t *testing.T, gw Gateway) *Store {
	t.Helper()
	s, err := New().
		WithGateway(gw).
		WithStorage(storage.NewMemory()).
		WithMetricsEnabled(true, true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// mintToken signs an HS256 token carrying the given permission claim. The
// default unverified codec decodes it regardless of the signing key.
func mintToken(t *testing.T, perms []string, expiresAt time.Time) string {
	t.Helper()
	claims := jwtv5.MapClaims{}
	if perms != nil {
		claims["permissions"] = perms
	}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
