package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sessauth "github.com/univcore/sessauth"
)

func TestLoginStaffUsesLoginField(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"data":{"user":{"id":7,"full_name":"Anvar","role":"teacher","type":"staff","permissions":["employees"]},"token":"tok-1"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.Login(context.Background(), sessauth.Credentials{
		Kind:       sessauth.KindStaff,
		Identifier: "a.karimov",
		Secret:     "pass",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if gotPath != "/staff/auth/login" {
		t.Fatalf("path = %q, want /staff/auth/login", gotPath)
	}
	if gotBody["login"] != "a.karimov" {
		t.Fatalf("body = %v, want login field", gotBody)
	}
	if _, ok := gotBody["student_id"]; ok {
		t.Fatal("staff login must not send student_id")
	}
	if result.AccessToken != "tok-1" || result.User.ID != 7 {
		t.Fatalf("result = %+v", result)
	}
}

func TestLoginStudentUsesStudentIDField(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"data":{"user":{"id":1},"token":"tok"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Login(context.Background(), sessauth.Credentials{
		Kind:       sessauth.KindStudent,
		Identifier: "S12345",
		Secret:     "pass",
	}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if gotPath != "/student/auth/login" {
		t.Fatalf("path = %q, want /student/auth/login", gotPath)
	}
	if gotBody["student_id"] != "S12345" {
		t.Fatalf("body = %v, want student_id field", gotBody)
	}
}

func TestLoginMapsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Login yoki parol xato"}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Login(context.Background(), sessauth.Credentials{
		Kind:       sessauth.KindStaff,
		Identifier: "x",
		Secret:     "y",
	})

	var gwErr *sessauth.GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gwErr.StatusCode != 401 || gwErr.Message != "Login yoki parol xato" {
		t.Fatalf("gwErr = %+v", gwErr)
	}
	if !errors.Is(err, sessauth.ErrInvalidCredentials) {
		t.Fatal("401 must unwrap to ErrInvalidCredentials")
	}
}

func TestAuthenticatedCallsCarryBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_, _ = io.WriteString(w, `{"data":{"id":7,"full_name":"Anvar"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithTokenProvider(func() string { return "tok-1" }))
	user, err := client.CurrentUser(context.Background(), sessauth.KindStaff)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}

	if gotAuth != "Bearer tok-1" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatal("expected a request id header")
	}
	if user.FullName != "Anvar" {
		t.Fatalf("user = %+v", user)
	}
}

func TestRefreshTokenEndpoint(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_, _ = io.WriteString(w, `{"data":{"token":"tok-2"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.RefreshToken(context.Background(), sessauth.KindStudent)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/student/auth/refresh-token" {
		t.Fatalf("%s %s, want POST /student/auth/refresh-token", gotMethod, gotPath)
	}
	if result.AccessToken != "tok-2" {
		t.Fatalf("token = %q", result.AccessToken)
	}
}

func TestUploadAvatarSendsMultipart(t *testing.T) {
	var gotContentType string
	var gotFilename string
	var gotFileBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		file, header, err := r.FormFile("image")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		body, _ := io.ReadAll(file)
		gotFileBody = string(body)
		_, _ = io.WriteString(w, `{"data":{"image_url":"https://cdn/a.png"}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.UploadAvatar(context.Background(), sessauth.KindStaff, "me.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("UploadAvatar failed: %v", err)
	}

	if !strings.HasPrefix(gotContentType, "multipart/form-data") {
		t.Fatalf("Content-Type = %q, want multipart", gotContentType)
	}
	if gotFilename != "me.png" || gotFileBody != "png-bytes" {
		t.Fatalf("file = %q %q", gotFilename, gotFileBody)
	}
	if result.ImageURL != "https://cdn/a.png" {
		t.Fatalf("result = %+v", result)
	}
}

func TestPermissionsUsesExplicitToken(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"data":{"permissions":["employees","schedule"]}}`)
	}))
	defer srv.Close()

	// TokenProvider returns a different token; Permissions must pin the one
	// passed explicitly.
	client := NewClient(srv.URL, WithTokenProvider(func() string { return "other" }))
	result, err := client.Permissions(context.Background(), "pinned-token")
	if err != nil {
		t.Fatalf("Permissions failed: %v", err)
	}

	if gotPath != "/auth/permissions" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer pinned-token" {
		t.Fatalf("Authorization = %q, want pinned token", gotAuth)
	}
	if len(result.Permissions) != 2 {
		t.Fatalf("permissions = %v", result.Permissions)
	}
}

func TestErrorWithoutBodyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "plain text panic page")
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.Logout(context.Background(), sessauth.KindStaff)

	var gwErr *sessauth.GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gwErr.StatusCode != 500 || gwErr.Message != "" {
		t.Fatalf("gwErr = %+v", gwErr)
	}
}
