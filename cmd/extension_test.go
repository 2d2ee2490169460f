package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeExtension installs a shell script named fin-<name> in a directory
// prepended to PATH.
func writeExtension(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script extensions need a unix shell")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fin-"+name), []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("Failed to write extension: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return dir
}

func TestRunExtension(t *testing.T) {
	dir := writeExtension(t, "hello", `echo "$FIN_DIR|$FIN_CURRENCY|$*" > "$(dirname "$0")/out"`)

	oldDir, oldCurrency := *ledgerDir, *defaultCurrency
	t.Cleanup(func() { *ledgerDir, *defaultCurrency = oldDir, oldCurrency })
	*ledgerDir, *defaultCurrency = "/tmp/my-ledger", "EUR"

	found, code := RunExtension("hello", []string{"a", "b"})
	if !found || code != 0 {
		t.Fatalf("RunExtension() = %v, %d, want true, 0", found, code)
	}
	out, err := os.ReadFile(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("extension did not run: %v", err)
	}
	if got, want := strings.TrimSpace(string(out)), "/tmp/my-ledger|EUR|a b"; got != want {
		t.Errorf("extension saw %q, want %q", got, want)
	}
}

func TestRunExtension_ExitCode(t *testing.T) {
	writeExtension(t, "fail", "exit 3\n")
	if found, code := RunExtension("fail", nil); !found || code != 3 {
		t.Errorf("RunExtension() = %v, %d, want true, 3", found, code)
	}
}

func TestRunExtension_NotFound(t *testing.T) {
	if found, _ := RunExtension("does-not-exist-anywhere", nil); found {
		t.Error("RunExtension() found a missing extension")
	}
}
