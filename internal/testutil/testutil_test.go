// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFixedClock(t *testing.T) {
	t.Parallel()

	if got := FixedClock(time.Time{})(); !got.Equal(ReferenceTime) {
		t.Errorf("FixedClock(zero)() = %v, want %v", got, ReferenceTime)
	}

	at := time.Date(2030, time.January, 2, 3, 4, 5, 0, time.UTC)
	clock := FixedClock(at)
	if !clock().Equal(at) || !clock().Equal(at) {
		t.Errorf("FixedClock(%v) drifted", at)
	}
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	WriteFiles(t, dir, map[string]string{"a/b/c.lua": "return 1\n"})

	data, err := os.ReadFile(filepath.Join(dir, "a", "b", "c.lua"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "return 1\n" {
		t.Errorf("content = %q", data)
	}
}

func TestMemFs(t *testing.T) {
	t.Parallel()

	fs := MemFs(t, map[string]string{"/proj/lib/util.lua": "return {}\n"})
	if got := ReadFile(t, fs, "/proj/lib/util.lua"); got != "return {}\n" {
		t.Errorf("ReadFile() = %q", got)
	}
}
