// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"testing"
)

func TestNewFromBytesZeroesSource(t *testing.T) {
	source := []byte("hunter2")
	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	defer buffer.Close()

	if !bytes.Equal(source, make([]byte, len(source))) {
		t.Error("source slice was not zeroed")
	}
	if buffer.String() != "hunter2" {
		t.Errorf("String = %q, want %q", buffer.String(), "hunter2")
	}
	if buffer.Len() != 7 {
		t.Errorf("Len = %d, want 7", buffer.Len())
	}
}

func TestNewFromBytesRejectsEmpty(t *testing.T) {
	if _, err := NewFromBytes(nil); err == nil {
		t.Error("NewFromBytes accepted an empty source")
	}
	if _, err := NewFromString(""); err == nil {
		t.Error("NewFromString accepted an empty source")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	buffer, err := NewFromString("token-abc")
	if err != nil {
		t.Fatalf("NewFromString failed: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if buffer.String() != "" {
		t.Error("String returned data after Close")
	}
	if buffer.Len() != 0 {
		t.Error("Len nonzero after Close")
	}
}
