// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/bureau-foundation/communicator/errcode"
	"github.com/bureau-foundation/communicator/lib/netutil"
)

// streamPath is the real-time endpoint on every Mattermost server.
const streamPath = "/api/v4/websocket"

// requestKind is the semantic kind of a stream request, recorded in
// the correlation table so the reply event can be tagged with it.
type requestKind int

const (
	requestAllStatuses requestKind = iota
	requestUsersStatuses
	requestTyping
)

// action is the wire name of the request's websocket action.
func (k requestKind) action() string {
	switch k {
	case requestAllStatuses:
		return "get_statuses"
	case requestUsersStatuses:
		return "get_statuses_by_ids"
	case requestTyping:
		return "user_typing"
	default:
		return "unknown"
	}
}

// actionFrame is the wire shape of every client-to-server request.
type actionFrame struct {
	Seq    int64          `json:"seq"`
	Action string         `json:"action"`
	Data   map[string]any `json:"data"`
}

// stream is one live websocket subscription. The reader goroutine owns
// the read side; writes are serialized by writeMu.
type stream struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	done    chan struct{}
}

func (s *stream) writeJSON(value any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(value)
}

func (s *stream) close() {
	s.conn.Close()
	<-s.done
}

// websocketURL converts the server's HTTP base URL to the stream
// endpoint URL.
func websocketURL(serverURL string) string {
	wsURL := serverURL
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}
	return wsURL + streamPath
}

// SubscribeEvents opens the persistent event stream. Only legal while
// Connected with no active subscription. On failure the state stays
// Connected without a stream; the caller may retry.
func (p *Platform) SubscribeEvents(ctx context.Context) error {
	p.mu.Lock()
	if p.status != Connected {
		current := p.status
		p.mu.Unlock()
		return errcode.Newf(errcode.InvalidState,
			"platform: subscribe requires a connected session (currently %s)", current)
	}
	if p.stream != nil {
		p.mu.Unlock()
		return errcode.New(errcode.InvalidState, "platform: event subscription already active")
	}
	client := p.client
	p.seq++
	authSeq := p.seq
	p.mu.Unlock()

	wsURL := websocketURL(client.ServerURL())
	conn, response, err := p.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		// On a failed handshake gorilla returns the server's HTTP
		// response; its body explains the rejection.
		detail := ""
		if response != nil && response.Body != nil {
			detail = strings.TrimSpace(netutil.ErrorBody(response.Body))
			response.Body.Close()
		}
		if detail != "" {
			return fmt.Errorf("platform: opening event stream: %w",
				errcode.Newf(errcode.Network, "dial %s: %v: %s", wsURL, err, detail))
		}
		return fmt.Errorf("platform: opening event stream: %w",
			errcode.Newf(errcode.Network, "dial %s: %v", wsURL, err))
	}

	challenge := actionFrame{
		Seq:    authSeq,
		Action: "authentication_challenge",
		Data:   map[string]any{"token": client.Token()},
	}
	if err := conn.WriteJSON(challenge); err != nil {
		conn.Close()
		return fmt.Errorf("platform: authenticating event stream: %w",
			errcode.Newf(errcode.Network, "%v", err))
	}

	s := &stream{conn: conn, done: make(chan struct{})}
	p.mu.Lock()
	if p.status != Connected || p.stream != nil {
		p.mu.Unlock()
		conn.Close()
		close(s.done)
		return errcode.New(errcode.InvalidState, "platform: session changed while subscribing")
	}
	p.stream = s
	p.mu.Unlock()

	go p.readLoop(s)
	p.logger.Info("event stream subscribed", "url", wsURL)
	return nil
}

// UnsubscribeEvents closes the stream, discards queued-but-unread
// events, and silently fails all pending stream requests: no reply
// will ever arrive for their sequence numbers. It returns after the
// reader goroutine has exited, so no frame can race the cleared
// correlation table.
func (p *Platform) UnsubscribeEvents() error {
	p.mu.Lock()
	s := p.stream
	if s == nil {
		p.mu.Unlock()
		return errcode.New(errcode.InvalidState, "platform: no active event subscription")
	}
	p.stream = nil
	abandoned := len(p.pending)
	p.pending = make(map[int64]pendingRequest)
	drained := len(p.queue)
	p.queue = nil
	p.mu.Unlock()

	s.close()
	p.logger.Info("event stream unsubscribed",
		"abandoned_requests", abandoned,
		"drained_events", drained,
	)
	return nil
}

// RequestAllStatuses asks for the presence of every visible user. The
// reply arrives later as an EventStatusesReply whose SeqReply equals
// the returned sequence number.
func (p *Platform) RequestAllStatuses() (int64, error) {
	return p.sendStreamRequest(requestAllStatuses, map[string]any{})
}

// RequestUsersStatuses asks for the presence of a specific user set.
// Correlation works as for RequestAllStatuses.
func (p *Platform) RequestUsersStatuses(userIDs []string) (int64, error) {
	return p.sendStreamRequest(requestUsersStatuses, map[string]any{"user_ids": userIDs})
}

// SendTyping broadcasts a typing indicator for a channel. parentID
// scopes the indicator to a thread; empty means the channel itself.
// The server acknowledges with an EventAck.
func (p *Platform) SendTyping(channelID, parentID string) (int64, error) {
	if channelID == "" {
		return 0, errcode.New(errcode.InvalidArgument, "platform: SendTyping requires a channel ID")
	}
	data := map[string]any{"channel_id": channelID}
	if parentID != "" {
		data["parent_id"] = parentID
	}
	return p.sendStreamRequest(requestTyping, data)
}

// sendStreamRequest allocates the next sequence number, records the
// correlation entry, and sends the action frame. It returns the
// sequence number without waiting for the reply.
func (p *Platform) sendStreamRequest(kind requestKind, data map[string]any) (int64, error) {
	p.mu.Lock()
	s := p.stream
	if s == nil {
		p.mu.Unlock()
		return 0, errcode.New(errcode.InvalidState,
			"platform: no active event subscription (call SubscribeEvents first)")
	}
	p.seq++
	seq := p.seq
	p.pending[seq] = pendingRequest{kind: kind, issuedAt: p.clock.Now()}
	p.mu.Unlock()

	if err := s.writeJSON(actionFrame{Seq: seq, Action: kind.action(), Data: data}); err != nil {
		p.mu.Lock()
		delete(p.pending, seq)
		p.mu.Unlock()
		return 0, fmt.Errorf("platform: sending %s request: %w", kind.action(),
			errcode.Newf(errcode.Network, "%v", err))
	}
	return seq, nil
}

// readLoop is the stream's delivery path: it decodes frames and feeds
// the event queue until the transport dies or the stream is closed.
func (p *Platform) readLoop(s *stream) {
	defer close(s.done)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			p.streamEnded(s, err)
			return
		}
		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			p.logger.Warn("discarding undecodable stream frame", "error", err)
			continue
		}
		p.dispatchFrame(s, &f)
	}
}

// dispatchFrame routes one decoded frame: correlated replies consume
// their pending entry, server events convert directly. Frames arriving
// after the stream was detached (unsubscribe or disconnect racing the
// reader) are dropped without touching the correlation table.
func (p *Platform) dispatchFrame(s *stream, f *frame) {
	p.mu.Lock()
	if p.stream != s {
		p.mu.Unlock()
		return
	}

	expired := p.sweepExpiredLocked()

	var unmatched int64
	if f.SeqReply != 0 {
		request, ok := p.pending[f.SeqReply]
		if ok {
			delete(p.pending, f.SeqReply)
			p.queue = append(p.queue, replyEvent(request.kind, f))
		} else {
			unmatched = f.SeqReply
		}
	} else if f.Event != "" {
		if event, ok := convertFrame(f); ok {
			p.invalidateCachesLocked(event)
			p.queue = append(p.queue, event)
		}
	}
	p.mu.Unlock()

	if expired > 0 {
		p.logger.Debug("expired pending stream requests", "count", expired)
	}
	if unmatched != 0 {
		p.logger.Debug("ignoring reply with no pending request", "seq_reply", unmatched)
	}
}

// invalidateCachesLocked drops directory cache entries for the entity
// a stream event reports as changed, so the next cached lookup sees
// the server's current state. Pure map work, no network. Caller holds
// p.mu.
func (p *Platform) invalidateCachesLocked(event Event) {
	client := p.client
	if client == nil {
		return
	}
	switch event.Type {
	case EventStatusChanged:
		client.InvalidateUser(event.UserID)
	case EventChannelUpdated, EventChannelDeleted:
		channelID := event.ChannelID
		if event.Channel != nil {
			channelID = event.Channel.ID
		}
		client.InvalidateChannel(channelID)
	case EventUserJoinedChannel, EventUserLeftChannel:
		client.InvalidateChannel(event.ChannelID)
	}
}

// sweepExpiredLocked drops pending entries older than the request TTL.
// Their replies, if they ever arrive, are ignored by mismatch. Caller
// holds p.mu.
func (p *Platform) sweepExpiredLocked() int {
	now := p.clock.Now()
	expired := 0
	for seq, request := range p.pending {
		if now.Sub(request.issuedAt) > p.requestTTL {
			delete(p.pending, seq)
			expired++
		}
	}
	return expired
}

// replyEvent builds the correlated reply for a consumed pending entry.
func replyEvent(kind requestKind, f *frame) Event {
	event := Event{SeqReply: f.SeqReply}
	if f.Error != nil {
		event.Error = f.Error.Message
	}
	switch kind {
	case requestAllStatuses, requestUsersStatuses:
		event.Type = EventStatusesReply
		if event.Error == "" {
			event.Statuses = decodeStatusMap(f.Data)
		}
	default:
		event.Type = EventAck
	}
	return event
}

// streamEnded handles transport death observed by the reader. A
// deliberate teardown (unsubscribe, disconnect) has already detached
// the stream and is ignored here; an unexpected failure transitions
// the state machine to Disconnected. No synchronous caller is waiting,
// so the failure surfaces through IsConnected and the log, never the
// error channel.
func (p *Platform) streamEnded(s *stream, cause error) {
	p.mu.Lock()
	if p.stream != s {
		p.mu.Unlock()
		return
	}
	p.stream = nil
	abandoned := len(p.pending)
	p.pending = make(map[int64]pendingRequest)
	client := p.client
	p.client = nil
	p.info = nil
	p.status = Disconnected
	p.epoch++
	p.mu.Unlock()

	s.conn.Close()
	if client != nil {
		client.Close()
		client.CloseIdleConnections()
	}
	p.logger.Warn("event stream lost, session disconnected",
		"error", cause,
		"abandoned_requests", abandoned,
	)
}
