// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bureau-foundation/communicator/errcode"
)

// newTestClient creates an authenticated Client pointing at a test
// server. The session carries the token "test-token", user "user1",
// and team scope "team1".
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{ServerURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if err := client.setSession("test-token", "user1"); err != nil {
		t.Fatalf("setSession failed: %v", err)
	}
	client.SetTeamID("team1")
	t.Cleanup(func() { client.Close() })
	return client
}

func assertAuth(t *testing.T, request *http.Request, expectedToken string) {
	t.Helper()
	auth := request.Header.Get("Authorization")
	expected := "Bearer " + expectedToken
	if auth != expected {
		t.Errorf("unexpected auth header: got %q, want %q", auth, expected)
	}
}

func writeJSON(writer http.ResponseWriter, value any) {
	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(value)
}

func writeAPIError(writer http.ResponseWriter, statusCode int, id, message string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	json.NewEncoder(writer).Encode(apiError{
		ID:         id,
		Message:    message,
		RequestID:  "req-1",
		StatusCode: statusCode,
	})
}

func TestNewClientValidation(t *testing.T) {
	cases := []struct {
		name      string
		serverURL string
	}{
		{"empty", ""},
		{"no scheme", "chat.example.com"},
		{"bad scheme", "ftp://chat.example.com"},
		{"no host", "https://"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClient(ClientConfig{ServerURL: tc.serverURL})
			if !errcode.Is(err, errcode.InvalidArgument) {
				t.Errorf("expected InvalidArgument, got %v", err)
			}
		})
	}

	client, err := NewClient(ClientConfig{ServerURL: "https://chat.example.com/"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.ServerURL() != "https://chat.example.com" {
		t.Errorf("trailing slash not trimmed: %s", client.ServerURL())
	}
}

func TestServerErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		errorID    string
		want       errcode.Code
	}{
		{"expired session", http.StatusUnauthorized, "api.context.session_expired.app_error", errcode.AuthFailed},
		{"bad credentials", http.StatusUnauthorized, "api.user.login.invalid_credentials_email_username", errcode.AuthFailed},
		{"missing channel", http.StatusNotFound, "api.channel.get.not_found.app_error", errcode.NotFound},
		{"forbidden", http.StatusForbidden, "api.context.permissions.app_error", errcode.PermissionDenied},
		{"rate limited", http.StatusTooManyRequests, "api.context.rate_limit.app_error", errcode.RateLimited},
		{"server fault", http.StatusInternalServerError, "", errcode.Network},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				writeAPIError(writer, tc.statusCode, tc.errorID, "boom")
			}))

			_, err := client.Me(context.Background())
			if !errcode.Is(err, tc.want) {
				t.Errorf("expected code %v, got %v (err: %v)", tc.want, errcode.CodeOf(err), err)
			}

			var serverErr *errcode.Error
			if !errors.As(err, &serverErr) {
				t.Fatalf("error does not wrap *errcode.Error: %v", err)
			}
			if serverErr.HTTPStatus != tc.statusCode {
				t.Errorf("unexpected HTTP status: got %d, want %d", serverErr.HTTPStatus, tc.statusCode)
			}
			if tc.errorID != "" && serverErr.ServerErrorID != tc.errorID {
				t.Errorf("unexpected server error ID: %s", serverErr.ServerErrorID)
			}
		})
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusBadGateway)
		writer.Write([]byte("<html>bad gateway</html>"))
	}))

	_, err := client.Me(context.Background())
	if !errcode.Is(err, errcode.Network) {
		t.Errorf("expected Network, got %v", err)
	}
}

func TestRequireTeamScope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		t.Error("no request should reach the server")
	}))
	client.SetTeamID("")

	_, err := client.MyChannels(context.Background())
	if !errcode.Is(err, errcode.InvalidState) {
		t.Errorf("expected InvalidState, got %v", err)
	}
}

func TestTokenLifecycle(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, map[string]string{"status": "OK"})
	}))

	if client.Token() != "test-token" {
		t.Errorf("unexpected token: %q", client.Token())
	}
	if client.UserID() != "user1" {
		t.Errorf("unexpected user ID: %q", client.UserID())
	}

	client.clearSession()
	if client.Token() != "" {
		t.Error("token survived clearSession")
	}
	if client.UserID() != "" {
		t.Error("user ID survived clearSession")
	}
}
