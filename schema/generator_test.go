/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package schema_test

import (
	"encoding/json"
	"testing"

	"chainguard.dev/getcontext/schema"
	"github.com/google/go-cmp/cmp"
)

func TestKinds(t *testing.T) {
	want := []schema.Kind{schema.KindConversation, schema.KindTestSet}
	if diff := cmp.Diff(want, schema.Kinds()); diff != "" {
		t.Errorf("Kinds() (-want +got):\n%s", diff)
	}
}

func TestConversationSchema(t *testing.T) {
	s, err := schema.For(schema.KindConversation)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if s.Title != "Conversation" {
		t.Errorf("title: got = %q, wanted = %q", s.Title, "Conversation")
	}
	if diff := cmp.Diff([]string{"messages"}, s.Required); diff != "" {
		t.Errorf("required (-want +got):\n%s", diff)
	}

	messages, ok := s.Properties.Get("messages")
	if !ok {
		t.Fatal("missing messages property")
	}
	if messages.Items == nil {
		t.Fatal("messages has no item schema")
	}
	role, ok := messages.Items.Properties.Get("role")
	if !ok {
		t.Fatal("missing role property")
	}
	if diff := cmp.Diff([]any{"system", "assistant", "user"}, role.Enum); diff != "" {
		t.Errorf("role enum (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"role", "message"}, messages.Items.Required); diff != "" {
		t.Errorf("message required (-want +got):\n%s", diff)
	}
}

func TestTestSetSchema(t *testing.T) {
	s, err := schema.For(schema.KindTestSet)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "test_cases"}, s.Required); diff != "" {
		t.Errorf("required (-want +got):\n%s", diff)
	}
	cases, ok := s.Properties.Get("test_cases")
	if !ok || cases.Items == nil {
		t.Fatal("missing test_cases item schema")
	}
	if _, ok := cases.Items.Properties.Get("attributes"); !ok {
		t.Error("missing attributes property")
	}

	// The schema must serialize for editors to consume it.
	if _, err := json.Marshal(s); err != nil {
		t.Errorf("Marshal: %v", err)
	}
}

func TestUnknownKind(t *testing.T) {
	if _, err := schema.For("evaluation"); err == nil {
		t.Error("For(evaluation): got = nil, wanted an error")
	}
}
