package cache

import (
	"bytes"
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *ChunkCache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "chunks.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheMissThenHit(t *testing.T) {
	c := openTestCache(t)
	key := Key{Seed: 42, X: 1, Y: -2, Z: 3, Size: 32, Digest: "abc"}

	if _, ok, err := c.Get(key); err != nil || ok {
		t.Fatalf("Get on empty cache = ok=%v err=%v, want miss", ok, err)
	}

	blob := bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x00}, 1024)
	if err := c.Put(key, blob); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !bytes.Equal(got, blob) {
		t.Fatalf("cached blob differs: got %d bytes, want %d", len(got), len(blob))
	}
}

func TestCacheKeyIsolation(t *testing.T) {
	c := openTestCache(t)
	base := Key{Seed: 1, X: 0, Y: 0, Z: 0, Size: 16, Digest: "d1"}
	if err := c.Put(base, []byte("payload")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	variants := []Key{
		{Seed: 2, X: 0, Y: 0, Z: 0, Size: 16, Digest: "d1"},
		{Seed: 1, X: 1, Y: 0, Z: 0, Size: 16, Digest: "d1"},
		{Seed: 1, X: 0, Y: 0, Z: 0, Size: 32, Digest: "d1"},
		{Seed: 1, X: 0, Y: 0, Z: 0, Size: 16, Digest: "d2"},
	}
	for _, k := range variants {
		if _, ok, err := c.Get(k); err != nil || ok {
			t.Errorf("Get(%+v) = ok=%v err=%v, want miss", k, ok, err)
		}
	}
}

func TestCachePutReplaces(t *testing.T) {
	c := openTestCache(t)
	key := Key{Seed: 7, Size: 8, Digest: "d"}

	if err := c.Put(key, []byte("old")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Put(key, []byte("new")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v, want hit", ok, err)
	}
	if string(got) != "new" {
		t.Errorf("got %q, want %q", got, "new")
	}
	if n, err := c.Count(); err != nil || n != 1 {
		t.Errorf("Count = %d, %v; want 1", n, err)
	}
}

func TestCachePurgeKeepsDigest(t *testing.T) {
	c := openTestCache(t)
	if err := c.Put(Key{Seed: 1, Size: 8, Digest: "keep"}, []byte("a")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Put(Key{Seed: 1, X: 1, Size: 8, Digest: "stale"}, []byte("b")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	removed, err := c.Purge("keep")
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Purge removed %d rows, want 1", removed)
	}
	if _, ok, _ := c.Get(Key{Seed: 1, Size: 8, Digest: "keep"}); !ok {
		t.Error("kept entry missing after purge")
	}
	if _, ok, _ := c.Get(Key{Seed: 1, X: 1, Size: 8, Digest: "stale"}); ok {
		t.Error("stale entry survived purge")
	}
}

func TestDigestStability(t *testing.T) {
	type settings struct {
		Seed  int64   `yaml:"seed"`
		Scale float64 `yaml:"scale"`
	}

	a, err := Digest(settings{Seed: 1, Scale: 0.5})
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	b, err := Digest(settings{Seed: 1, Scale: 0.5})
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if a != b {
		t.Errorf("same value digested differently: %s vs %s", a, b)
	}

	changed, _ := Digest(settings{Seed: 2, Scale: 0.5})
	if changed == a {
		t.Error("different value produced identical digest")
	}
}
