// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"testing"

	"github.com/bureau-foundation/communicator/errcode"
)

func TestParseConnectConfig(t *testing.T) {
	payload := []byte(`{
		// operator-authored config, comments allowed
		"server": "https://chat.example.com",
		"credentials": {
			"token": "abc",
		},
		"team_id": "team1",
	}`)

	config, err := ParseConnectConfig(payload)
	if err != nil {
		t.Fatalf("ParseConnectConfig failed: %v", err)
	}
	if config.Server != "https://chat.example.com" {
		t.Errorf("unexpected server: %s", config.Server)
	}
	if config.Credentials.Token != "abc" {
		t.Errorf("unexpected token: %s", config.Credentials.Token)
	}
	if config.TeamID != "team1" {
		t.Errorf("unexpected team_id: %s", config.TeamID)
	}
}

func TestParseConnectConfigLoginForm(t *testing.T) {
	config, err := ParseConnectConfig([]byte(`{
		"server": "https://chat.example.com",
		"credentials": {"login_id": "alice@example.com", "password": "hunter2"}
	}`))
	if err != nil {
		t.Fatalf("ParseConnectConfig failed: %v", err)
	}
	if config.Credentials.LoginID != "alice@example.com" {
		t.Errorf("unexpected login_id: %s", config.Credentials.LoginID)
	}
}

func TestParseConnectConfigRejections(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"malformed", `{"server": }`},
		{"no server", `{"credentials": {"token": "abc"}}`},
		{"no credentials", `{"server": "https://chat.example.com"}`},
		{"both forms", `{
			"server": "https://chat.example.com",
			"credentials": {"token": "abc", "login_id": "alice", "password": "pw"}
		}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConnectConfig([]byte(tc.payload))
			if !errcode.Is(err, errcode.InvalidArgument) {
				t.Errorf("expected InvalidArgument, got %v", err)
			}
		})
	}
}
