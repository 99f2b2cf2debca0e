package storage

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestRandomStorageKey(t *testing.T) {
	key := RandomStorageKey()

	now := time.Now()
	prefix := fmt.Sprintf("files/%d/%d/%d/", now.Year(), int(now.Month()), now.Day())
	if !strings.HasPrefix(key, prefix) {
		t.Errorf("key %q does not start with %q", key, prefix)
	}

	if key == RandomStorageKey() {
		t.Errorf("keys are not unique")
	}
}

func TestURL_JoinsEndpointBucketAndKey(t *testing.T) {
	s := &S3Store{bucket: "vault", endpoint: "http://127.0.0.1:9000"}

	got := s.URL("files/2026/1/2/abc")
	want := "http://127.0.0.1:9000/vault/files/2026/1/2/abc"
	if got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}
