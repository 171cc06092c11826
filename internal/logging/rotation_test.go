package logging

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newSmallWriter(t *testing.T, maxBytes int64, backups int, compress bool) (*RotatingWriter, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxBackups: backups, Compress: compress})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.maxBytes = maxBytes
	return rw, path
}

func TestNewRotatingWriter(t *testing.T) {
	t.Run("creates nested directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a", "b", "test.log")
		rw, err := NewRotatingWriter(path, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		defer rw.Close()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("log file was not created: %v", err)
		}
		if rw.Path() != path {
			t.Errorf("Path() = %q, want %q", rw.Path(), path)
		}
	})

	t.Run("appends to an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.log")
		if err := os.WriteFile(path, []byte("old\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		rw, err := NewRotatingWriter(path, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		if rw.Size() != 4 {
			t.Errorf("Size() = %d, want 4", rw.Size())
		}
		_, _ = rw.Write([]byte("new\n"))
		_ = rw.Close()

		data, _ := os.ReadFile(path)
		if string(data) != "old\nnew\n" {
			t.Errorf("content = %q", data)
		}
	})
}

func TestRotatingWriterRotation(t *testing.T) {
	t.Run("rotates past the limit", func(t *testing.T) {
		rw, path := newSmallWriter(t, 100, 3, false)
		for range 5 {
			_, _ = rw.Write([]byte("this is a test message that will trigger rotation\n"))
		}
		_ = rw.Close()

		if _, err := os.Stat(path + ".1"); err != nil {
			t.Error("backup .1 was not created")
		}
		if _, err := os.Stat(path); err != nil {
			t.Error("active log file missing after rotation")
		}
	})

	t.Run("keeps at most MaxBackups", func(t *testing.T) {
		rw, path := newSmallWriter(t, 50, 2, false)
		for range 10 {
			_, _ = rw.Write([]byte("this message will trigger rotation\n"))
		}
		_ = rw.Close()

		for _, suffix := range []string{".1", ".2"} {
			if _, err := os.Stat(path + suffix); err != nil {
				t.Errorf("backup %s should exist", suffix)
			}
		}
		if _, err := os.Stat(path + ".3"); err == nil {
			t.Error("backup .3 should not exist")
		}
	})

	t.Run("disabled when limit is zero", func(t *testing.T) {
		rw, path := newSmallWriter(t, 0, 3, false)
		for range 100 {
			_, _ = rw.Write([]byte("would rotate if enabled\n"))
		}
		_ = rw.Close()

		if _, err := os.Stat(path + ".1"); err == nil {
			t.Error("no backup should exist when rotation is disabled")
		}
	})
}

func TestRotatingWriterCompression(t *testing.T) {
	rw, path := newSmallWriter(t, 40, 2, true)
	for range 3 {
		_, _ = rw.Write([]byte("compress me compress me compress me\n"))
	}
	// Close waits for background compression.
	_ = rw.Close()

	f, err := os.Open(path + ".1.gz")
	if err != nil {
		t.Fatalf("compressed backup missing: %v", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader failed: %v", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !strings.Contains(string(data), "compress me") {
		t.Errorf("decompressed content = %q", data)
	}
	if _, err := os.Stat(path + ".1"); err == nil {
		t.Error("uncompressed backup should be removed")
	}
}

func TestRotatingWriterConcurrency(t *testing.T) {
	rw, _ := newSmallWriter(t, 1024, 5, false)
	defer rw.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			for range 50 {
				if _, err := rw.Write([]byte("concurrent line\n")); err != nil {
					t.Errorf("Write failed: %v", err)
					return
				}
			}
		})
	}
	wg.Wait()
}

func TestRotatingWriterClose(t *testing.T) {
	rw, _ := newSmallWriter(t, 0, 0, false)
	if err := rw.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
	if _, err := rw.Write([]byte("x")); err == nil {
		t.Error("Write after Close should fail")
	}
	if err := rw.Sync(); err != nil {
		t.Errorf("Sync after Close = %v, want nil", err)
	}
}

func TestNewLoggerWithRotation(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, LevelInfo, RotationConfig{MaxSizeMB: 1, MaxBackups: 1})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	rw, ok := logger.closer.(*RotatingWriter)
	if !ok {
		t.Fatalf("closer = %T, want *RotatingWriter", logger.closer)
	}
	rw.mu.Lock()
	rw.maxBytes = 200
	rw.mu.Unlock()

	for range 10 {
		logger.Info("rotating through the logger", "pad", strings.Repeat("x", 40))
	}
	_ = logger.Close()

	if _, err := os.Stat(filepath.Join(dir, FileName+".1")); err != nil {
		t.Errorf("expected rotated backup: %v", err)
	}
}

func TestDefaultRotationConfig(t *testing.T) {
	cfg := DefaultRotationConfig()
	if cfg.MaxSizeMB != 10 || cfg.MaxBackups != 3 || cfg.Compress {
		t.Errorf("DefaultRotationConfig() = %+v", cfg)
	}
}
