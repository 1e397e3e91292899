// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/communicator/errcode"
)

// Credentials selects how Connect authenticates. Exactly one form must
// be populated: either Token alone, or LoginID and Password together.
type Credentials struct {
	// Token is a personal access token or an existing session token.
	Token string `json:"token,omitempty"`
	// LoginID is an email address or username, paired with Password.
	LoginID string `json:"login_id,omitempty"`
	// Password is the account password, paired with LoginID.
	Password string `json:"password,omitempty"`
	// MFACode is a one-time code for accounts with MFA enabled. Only
	// meaningful with the LoginID/Password form.
	MFACode string `json:"mfa_code,omitempty"`
}

// ConnectConfig is the payload for Connect.
type ConnectConfig struct {
	// Server is the base URL of the chat server (required).
	Server string `json:"server"`
	// Credentials is the authentication material (required).
	Credentials Credentials `json:"credentials"`
	// TeamID scopes team-bound directory calls. Optional; it can also
	// be set after connecting with SetTeamID.
	TeamID string `json:"team_id,omitempty"`
}

// Validate checks the structural rules: server present, exactly one
// credential form.
func (c ConnectConfig) Validate() error {
	if c.Server == "" {
		return errcode.New(errcode.InvalidArgument, "platform: connect config requires a server URL")
	}
	hasToken := c.Credentials.Token != ""
	hasLogin := c.Credentials.LoginID != "" || c.Credentials.Password != ""
	switch {
	case hasToken && hasLogin:
		return errcode.New(errcode.InvalidArgument, "platform: supply either a token or login_id/password, not both")
	case !hasToken && !hasLogin:
		return errcode.New(errcode.InvalidArgument, "platform: connect config carries no credentials")
	case hasLogin && (c.Credentials.LoginID == "" || c.Credentials.Password == ""):
		return errcode.New(errcode.InvalidArgument, "platform: login_id and password must both be present")
	}
	return nil
}

// ParseConnectConfig parses a connect payload. The payload is JSON
// with comments and trailing commas permitted, since these documents
// are frequently written by hand.
func ParseConnectConfig(data []byte) (ConnectConfig, error) {
	var config ConnectConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return ConnectConfig{}, fmt.Errorf("platform: parsing connect config: %w",
			errcode.Newf(errcode.InvalidArgument, "malformed document: %v", err))
	}
	if err := config.Validate(); err != nil {
		return ConnectConfig{}, err
	}
	return config, nil
}
