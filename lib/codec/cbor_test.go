// Copyright 2026 The Switchboot Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{
		"zulu":  1,
		"alpha": "two",
		"mike":  []int{3, 4, 5},
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding produced differing bytes:\n%x\n%x", first, second)
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	type v1 struct {
		ID    string `cbor:"id"`
		Extra string `cbor:"extra"`
	}
	type v0 struct {
		ID string `cbor:"id"`
	}

	data, err := Marshal(v1{ID: "r1", Extra: "from-a-newer-binary"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var decoded v0
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if decoded.ID != "r1" {
		t.Errorf("decoded.ID = %q, want %q", decoded.ID, "r1")
	}
}

func TestUnmarshalAnyUsesStringKeyedMaps(t *testing.T) {
	data, err := Marshal(map[string]any{"code": 0, "message": "ok"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if _, ok := decoded.(map[string]any); !ok {
		t.Errorf("decoded type = %T, want map[string]any", decoded)
	}
}
