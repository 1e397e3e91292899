// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package platform implements the chat session engine: the connection
// state machine, the real-time event stream, and the asynchronous
// request correlator.
//
// A Platform owns one connection to a chat server. Connect drives
// authentication through the REST API; SubscribeEvents opens the
// persistent websocket and starts a reader goroutine that feeds the
// event queue. Callers drain the queue with PollEvent, which never
// blocks: server-pushed events and correlated replies to Request*
// calls arrive through the same FIFO, in transport arrival order.
//
// Stream requests (RequestAllStatuses, RequestUsersStatuses) return a
// sequence number immediately; the payload arrives later as an event
// whose SeqReply matches. Sequence numbers are unique for the lifetime
// of the Platform, so replies that straggle in across a resubscription
// are discarded by mismatch rather than misdelivered.
package platform
