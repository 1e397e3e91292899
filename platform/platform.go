// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bureau-foundation/communicator/errcode"
	"github.com/bureau-foundation/communicator/lib/clock"
	"github.com/bureau-foundation/communicator/mattermost"
)

// defaultRequestTTL bounds how long a stream request waits for its
// correlated reply before the pending entry is discarded.
const defaultRequestTTL = 30 * time.Second

// ConnectionStatus is the connection state machine's current state.
type ConnectionStatus int

const (
	// Disconnected is the initial state and the terminal state of
	// every disconnect, whatever its cause.
	Disconnected ConnectionStatus = iota
	// Connecting covers the authentication handshake.
	Connecting
	// Connected means an authenticated session is held. An event
	// subscription may or may not be active.
	Connected
	// Disconnecting covers teardown: stream closing, logout in flight.
	Disconnecting
)

func (s ConnectionStatus) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnecting:
		return "disconnecting"
	default:
		return fmt.Sprintf("ConnectionStatus(%d)", int(s))
	}
}

// ConnectionInfo describes an established session.
type ConnectionInfo struct {
	ServerURL   string
	UserID      string
	Username    string
	DisplayName string
	TeamID      string
	ConnectedAt time.Time
}

// Options configures a Platform. The zero value is usable.
type Options struct {
	// Logger receives structured logs. Defaults to slog.Default().
	Logger *slog.Logger
	// HTTPClient is used for all directory calls. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
	// Dialer opens the event stream websocket. Defaults to
	// websocket.DefaultDialer.
	Dialer *websocket.Dialer
	// Clock supplies time for pending-request expiry. Defaults to the
	// real clock; tests inject a fake.
	Clock clock.Clock
	// RequestTTL is how long a stream request's correlation entry is
	// retained while waiting for its reply. Replies arriving after
	// expiry are discarded by mismatch. Defaults to 30 seconds.
	RequestTTL time.Duration
}

// Platform owns one connection to a chat server: the state machine,
// the directory client, the event stream, and the request correlator.
// All methods are safe for concurrent use. A Platform must not be
// shared with another Platform's transport or queue; each instance
// exclusively owns its session state.
type Platform struct {
	logger     *slog.Logger
	httpClient *http.Client
	dialer     *websocket.Dialer
	clock      clock.Clock
	requestTTL time.Duration

	mu     sync.Mutex
	status ConnectionStatus
	// epoch counts transitions into Disconnected. Connect captures it
	// when entering Connecting and refuses to finalize if it moved: a
	// handshake aborted by Disconnect stays aborted even if a newer
	// connect has put the machine back in Connecting by the time the
	// stale handshake completes.
	epoch   uint64
	client  *mattermost.Client
	info    *ConnectionInfo
	stream  *stream
	seq     int64
	pending map[int64]pendingRequest
	queue   []Event
}

// pendingRequest is the correlation record for an in-flight stream
// request.
type pendingRequest struct {
	kind     requestKind
	issuedAt time.Time
}

// New creates a disconnected Platform.
func New(options Options) *Platform {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	dialer := options.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}
	requestTTL := options.RequestTTL
	if requestTTL <= 0 {
		requestTTL = defaultRequestTTL
	}
	return &Platform{
		logger:     logger,
		httpClient: httpClient,
		dialer:     dialer,
		clock:      clk,
		requestTTL: requestTTL,
		pending:    make(map[int64]pendingRequest),
	}
}

// Connect authenticates against the configured server. Only legal from
// Disconnected; any failure settles back in Disconnected with no
// partial state.
func (p *Platform) Connect(ctx context.Context, config ConnectConfig) (*ConnectionInfo, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.status != Disconnected {
		current := p.status
		p.mu.Unlock()
		return nil, errcode.Newf(errcode.InvalidState,
			"platform: connect is only legal while disconnected (currently %s)", current)
	}
	p.status = Connecting
	connectEpoch := p.epoch
	p.mu.Unlock()

	client, err := mattermost.NewClient(mattermost.ClientConfig{
		ServerURL:  config.Server,
		HTTPClient: p.httpClient,
		Logger:     p.logger,
		Clock:      p.clock,
	})
	if err != nil {
		p.settleDisconnected(connectEpoch)
		return nil, err
	}

	var user *mattermost.User
	switch {
	case config.Credentials.Token != "":
		user, err = client.LoginWithToken(ctx, config.Credentials.Token)
	case config.Credentials.MFACode != "":
		user, err = client.LoginWithMFA(ctx, config.Credentials.LoginID, config.Credentials.Password, config.Credentials.MFACode)
	default:
		user, err = client.Login(ctx, config.Credentials.LoginID, config.Credentials.Password)
	}
	if err != nil {
		p.settleDisconnected(connectEpoch)
		return nil, fmt.Errorf("platform: connect failed: %w", err)
	}

	if config.TeamID != "" {
		client.SetTeamID(config.TeamID)
	}
	info := &ConnectionInfo{
		ServerURL:   client.ServerURL(),
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName(),
		TeamID:      config.TeamID,
		ConnectedAt: p.clock.Now(),
	}

	p.mu.Lock()
	if p.status != Connecting || p.epoch != connectEpoch {
		// A concurrent Disconnect aborted this handshake. The state may
		// already be Connecting again for a newer connect; the epoch
		// check keeps this stale session from being installed over it.
		p.mu.Unlock()
		client.Close()
		return nil, errcode.New(errcode.InvalidState, "platform: connect aborted by disconnect")
	}
	p.client = client
	p.info = info
	p.status = Connected
	p.mu.Unlock()

	p.logger.Info("platform connected",
		"server", info.ServerURL,
		"user_id", info.UserID,
		"team_id", info.TeamID,
	)
	return info, nil
}

// settleDisconnected returns a failed handshake to Disconnected. It is
// a no-op when the handshake was already aborted by Disconnect, so a
// stale connect failing late cannot knock down a newer session.
func (p *Platform) settleDisconnected(connectEpoch uint64) {
	p.mu.Lock()
	if p.status == Connecting && p.epoch == connectEpoch {
		p.status = Disconnected
		p.epoch++
	}
	p.mu.Unlock()
}

// Disconnect tears down the session: the event stream is closed,
// pending stream requests are dropped without replies (their sequence
// numbers are abandoned), the session is logged out, and the state
// settles in Disconnected. Legal from Connected or Connecting; calling
// it during the handshake aborts the in-flight Connect.
func (p *Platform) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	switch p.status {
	case Disconnected, Disconnecting:
		current := p.status
		p.mu.Unlock()
		return errcode.Newf(errcode.InvalidState,
			"platform: disconnect is only legal while connected or connecting (currently %s)", current)
	case Connecting:
		p.status = Disconnected
		p.epoch++
		p.mu.Unlock()
		return nil
	}

	p.status = Disconnecting
	activeStream := p.stream
	p.stream = nil
	client := p.client
	p.client = nil
	p.info = nil
	abandoned := len(p.pending)
	p.pending = make(map[int64]pendingRequest)
	p.queue = nil
	p.mu.Unlock()

	if activeStream != nil {
		activeStream.close()
	}
	if client != nil {
		if err := client.Logout(ctx); err != nil {
			p.logger.Warn("logout during disconnect failed", "error", err)
		}
		client.CloseIdleConnections()
	}

	p.mu.Lock()
	p.status = Disconnected
	p.epoch++
	p.mu.Unlock()

	p.logger.Info("platform disconnected", "abandoned_requests", abandoned)
	return nil
}

// IsConnected reports whether the state machine is in Connected. Pure
// state read, no network I/O.
func (p *Platform) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status == Connected
}

// Status returns the current connection state.
func (p *Platform) Status() ConnectionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// ConnectionInfo returns a copy of the established session's
// description, or nil when not connected.
func (p *Platform) ConnectionInfo() *ConnectionInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.info == nil {
		return nil
	}
	info := *p.info
	return &info
}

// SetTeamID changes the active team scope without reconnecting. It
// takes effect on the next team-scoped directory call.
func (p *Platform) SetTeamID(teamID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != Connected {
		return errcode.New(errcode.InvalidState, "platform: not connected")
	}
	p.client.SetTeamID(teamID)
	p.info.TeamID = teamID
	return nil
}

// Client returns the directory client for synchronous API calls, or an
// InvalidState error when not connected.
func (p *Platform) Client() (*mattermost.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != Connected {
		return nil, errcode.New(errcode.InvalidState, "platform: not connected")
	}
	return p.client, nil
}

// PollEvent pops the oldest queued event. The second return is false
// when the queue is empty, including before any subscription; polling
// never blocks and never fails.
func (p *Platform) PollEvent() (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return Event{}, false
	}
	event := p.queue[0]
	p.queue = p.queue[1:]
	if len(p.queue) == 0 {
		p.queue = nil
	}
	return event, true
}

// EventCount reports how many events are queued.
func (p *Platform) EventCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Close releases the Platform. A live session is disconnected first so
// the transport and session token are not leaked. Idempotent.
func (p *Platform) Close(ctx context.Context) error {
	p.mu.Lock()
	status := p.status
	p.mu.Unlock()
	if status == Connected || status == Connecting {
		return p.Disconnect(ctx)
	}
	return nil
}
