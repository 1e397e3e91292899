// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mattermost is the remote directory client: synchronous
// request/response calls against a Mattermost server's REST API
// (API v4).
//
// [Client] holds the server URL, the HTTP transport, and, once
// authenticated, the session token in mmap-backed secret memory
// (locked against swap, excluded from core dumps). Authentication is
// either [Client.Login] (login ID + password, session token extracted
// from the Token response header) or [Client.LoginWithToken] (personal
// access token, validated with a /users/me round trip). All other
// methods are thin, synchronous wrappers over individual endpoints:
// users, statuses, channels, posts, threads, teams, reactions, emojis,
// preferences, and file transfer.
//
// Every call is a single attempt with no retry or backoff. Failures are
// returned as wrapped [*errcode.Error] values carrying the taxonomy
// code (mapped from the HTTP status and the server's error ID), the
// server's message, and its request ID for log correlation.
//
// User, channel, and team lookups have Cached* variants that serve
// repeat lookups from short-lived TTL caches (see cache.go); the
// platform package invalidates entries when a stream event reports the
// entity changed.
//
// The client is safe for concurrent use. It performs no background
// work; the real-time event stream lives in the platform package and
// borrows only the session token from here.
package mattermost
