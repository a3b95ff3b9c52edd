package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDoAttachesBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithCredentials(CredentialFunc(func() string { return "tok-123" })))
	if err := c.Get(context.Background(), "/api/auth/me", nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "Bearer tok-123" {
		t.Fatalf("Authorization = %q, want %q", got, "Bearer tok-123")
	}
}

func TestDoOmitsAuthorizationWhenLoggedOut(t *testing.T) {
	var sawHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Get(context.Background(), "/api/feed", nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sawHeader {
		t.Fatal("Authorization header sent with empty token")
	}
}

func TestErrorMessagePrecedence(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"Session is locked","error":"other"}`, "Session is locked"},
		{"error field", `{"error":"Invalid credentials"}`, "Invalid credentials"},
		{"neither field", `{"success":false}`, "Request failed"},
		{"unparseable body", `<html>gateway error</html>`, "Request failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			err := NewClient(srv.URL).Get(context.Background(), "/api/members", nil)
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if apiErr.Message != tc.want {
				t.Fatalf("Message = %q, want %q", apiErr.Message, tc.want)
			}
			if apiErr.Status != http.StatusBadRequest {
				t.Fatalf("Status = %d, want 400", apiErr.Status)
			}
		})
	}
}

func TestErrorKindPerStatus(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusConflict, KindConflict},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusInternalServerError, KindServer},
		{http.StatusNotFound, KindAPI},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{"error":"nope"}`))
		}))
		err := NewClient(srv.URL).Get(context.Background(), "/api/members", nil)
		srv.Close()

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: error = %v, want *Error", tc.status, err)
		}
		if apiErr.Kind != tc.want {
			t.Fatalf("status %d: Kind = %q, want %q", tc.status, apiErr.Kind, tc.want)
		}
	}
}

func TestNetworkFailureBecomesNetworkKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	err := NewClient(srv.URL).Get(context.Background(), "/api/feed", nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.Kind != KindNetwork {
		t.Fatalf("Kind = %q, want %q", apiErr.Kind, KindNetwork)
	}
	if apiErr.Status != 0 {
		t.Fatalf("Status = %d, want 0 for network failures", apiErr.Status)
	}
}

func TestBinaryExportSuccessReturnsRawBytes(t *testing.T) {
	payload := []byte("PK\x03\x04 docx bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		w.Write(payload)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).DoBinary(context.Background(), http.MethodGet, "/api/export/attendance/7")
	if err != nil {
		t.Fatalf("DoBinary failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload = %q, want %q", got, payload)
	}
}

func TestBinaryExportFailureCollapsesToGenericError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("stacktrace that must never surface"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).DoBinary(context.Background(), http.MethodGet, "/api/export/attendance/7")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if apiErr.Message != "Export failed" {
		t.Fatalf("Message = %q, want %q", apiErr.Message, "Export failed")
	}
}

func TestWithParamsOmitsEmptyValues(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(`{"success":true,"sessions":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Sessions.List(context.Background(), ""); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if query != "" {
		t.Fatalf("query = %q, want empty for blank type filter", query)
	}

	if _, err := c.Sessions.List(context.Background(), "core"); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if query != "type=core" {
		t.Fatalf("query = %q, want %q", query, "type=core")
	}
}

func TestJSONBodyAndContentType(t *testing.T) {
	var contentType string
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"success":true,"token":"t","user":{"id":1}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Auth.Login(context.Background(), "a@b.c", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", contentType)
	}
	if body["email"] != "a@b.c" || body["password"] != "secret" {
		t.Fatalf("body = %v", body)
	}
}

func TestMultipartBodyPassesThroughUnserialized(t *testing.T) {
	var contentType, fileContent, fileName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer file.Close()
			buf := make([]byte, 64)
			n, _ := file.Read(buf)
			fileContent = string(buf[:n])
			fileName = header.Filename
		}
		w.Write([]byte(`{"success":true,"added":2,"errors":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.Members.BatchAddFile(context.Background(), "roster.csv",
		strings.NewReader("Alice,a@x.y\nBob,b@x.y"))
	if err != nil {
		t.Fatalf("BatchAddFile failed: %v", err)
	}
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		t.Fatalf("Content-Type = %q, want multipart/form-data", contentType)
	}
	if fileName != "roster.csv" {
		t.Fatalf("filename = %q, want roster.csv", fileName)
	}
	if fileContent != "Alice,a@x.y\nBob,b@x.y" {
		t.Fatalf("file content = %q", fileContent)
	}
	if res.Added != 2 {
		t.Fatalf("Added = %d, want 2", res.Added)
	}
}

func TestBareArrayResponseDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title":"Idul Fitri","start":"2026-03-20"}]`))
	}))
	defer srv.Close()

	events, err := NewClient(srv.URL).Calendar.Events(context.Background())
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 1 || events[0].Title != "Idul Fitri" {
		t.Fatalf("events = %+v", events)
	}
}

func TestBaseURLTrailingSlashNormalized(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	if err := c.Get(context.Background(), "/api/feed", nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if path != "/api/feed" {
		t.Fatalf("path = %q, want /api/feed", path)
	}
}
