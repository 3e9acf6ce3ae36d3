package utils

import (
	"testing"
	"time"
)

func TestExtractIDFromToken(t *testing.T) {
	t.Run("should round-trip the subject", func(t *testing.T) {
		token, err := GenerateToken("session-42", "rider@example.com", time.Hour)
		if err != nil {
			t.Fatal(err)
		}

		got, err := ExtractIDFromToken(token)
		if err != nil {
			t.Fatal(err)
		}
		if got != "session-42" {
			t.Errorf("got `%s`, want `%s`", got, "session-42")
		}
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		token, err := GenerateToken("session-42", "rider@example.com", -time.Minute)
		if err != nil {
			t.Fatal(err)
		}

		if _, err := ExtractIDFromToken(token); err == nil {
			t.Error("expected an error for an expired token")
		}
	})

	t.Run("should reject garbage", func(t *testing.T) {
		if _, err := ExtractIDFromToken("not.a.token"); err == nil {
			t.Error("expected an error for a malformed token")
		}
	})
}

func TestHashToken(t *testing.T) {
	if HashToken("a") == HashToken("b") {
		t.Error("different tokens should hash differently")
	}
	if len(HashToken("a")) != 64 {
		t.Errorf("got `%d`, want `%d` hex characters", len(HashToken("a")), 64)
	}
}
