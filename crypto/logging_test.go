package crypto

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		function string
	}{
		{"basic function", "DeriveKey"},
		{"empty function", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.function)

			if logger.function != tt.function {
				t.Errorf("NewLogger() function = %v, want %v", logger.function, tt.function)
			}
			if logger.fields["function"] != tt.function {
				t.Errorf("fields[function] = %v, want %v", logger.fields["function"], tt.function)
			}
			if logger.fields["package"] != "crypto" {
				t.Errorf("fields[package] = %v, want crypto", logger.fields["package"])
			}
		})
	}
}

func TestLoggerHelper_WithError(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	NewLogger("TestFunction").WithError(errors.New("boom"), "codec", "encode").Error("failed")

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("no log entry recorded")
	}
	if entry.Level != logrus.ErrorLevel {
		t.Errorf("level = %v, want error", entry.Level)
	}
	want := map[string]string{"error": "boom", "error_type": "codec", "operation": "encode", "package": "crypto"}
	for k, v := range want {
		if entry.Data[k] != v {
			t.Errorf("%s field = %v, want %s", k, entry.Data[k], v)
		}
	}
}

func TestRandUint64FromLogsFailure(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	if _, err := RandUint64From(strings.NewReader("short")); err == nil {
		t.Fatal("expected short read to fail")
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Data["operation"] != "read_random" {
		t.Errorf("expected read_random error entry, got %v", entry)
	}
}

func TestLoggerHelper_Output(t *testing.T) {
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	logrus.SetLevel(logrus.DebugLevel)
	defer func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	}()
	logrus.SetFormatter(&logrus.JSONFormatter{})
	defer logrus.SetFormatter(&logrus.TextFormatter{})

	NewLogger("DeriveKey").WithField("passphrase_size", 4).Debug("stretching")

	out := buf.String()
	for _, want := range []string{`"function":"DeriveKey"`, `"package":"crypto"`, `"passphrase_size":4`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %s", out, want)
		}
	}
}

func TestSecureFieldHash(t *testing.T) {
	fields := SecureFieldHash([]byte("secret key"), "key")
	if fields["key_size"] != 10 {
		t.Errorf("key_size = %v, want 10", fields["key_size"])
	}
	digest, ok := fields["key_digest"].(string)
	if !ok || len(digest) != 16 {
		t.Errorf("key_digest = %v, want 16 hex chars", fields["key_digest"])
	}
	if strings.Contains(digest, "secret") {
		t.Error("digest leaks plaintext")
	}

	empty := SecureFieldHash(nil, "key")
	if empty["key_digest"] != "nil" {
		t.Errorf("nil digest = %v, want nil", empty["key_digest"])
	}
}
