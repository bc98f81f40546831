package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  file-secret \n"), 0o600); err != nil {
		t.Fatalf("write secret file: %v", err)
	}

	t.Run("file takes precedence and is trimmed", func(t *testing.T) {
		secret, err := Load(Source{Name: "token", File: path, Value: "inline"})
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if secret != "file-secret" {
			t.Fatalf("unexpected secret: %q", secret)
		}
	})

	t.Run("env is consulted without a file", func(t *testing.T) {
		t.Setenv("RECRUITER_TEST_SECRET", "env-secret")
		secret, err := Load(Source{Name: "token", Env: "RECRUITER_TEST_SECRET", Value: "inline"})
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if secret != "env-secret" {
			t.Fatalf("unexpected secret: %q", secret)
		}
	})

	t.Run("falls back to inline value", func(t *testing.T) {
		secret, err := Load(Source{Name: "token", Env: "RECRUITER_TEST_UNSET", Value: " inline "})
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if secret != "inline" {
			t.Fatalf("unexpected secret: %q", secret)
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		if _, err := Load(Source{Name: "token", File: filepath.Join(t.TempDir(), "absent")}); err == nil {
			t.Fatal("expected error for a missing file")
		}
	})

	t.Run("empty source fails", func(t *testing.T) {
		if _, err := Load(Source{Name: "token"}); err == nil {
			t.Fatal("expected error for an empty source")
		}
	})
}
