package cache

import (
	"bytes"
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/jonwraymond/rndsync/plane"
)

func TestMemoryService_GetPutClear(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	id, err := svc.Create(ctx, TierMemory, 4)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Test Get on empty cache
	if _, ok := svc.Get(ctx, id, plane.XYKey(0, 0)); ok {
		t.Error("Get on empty cache should return ok=false")
	}

	value := []byte("jpeg-bytes")
	if err := svc.Put(ctx, id, plane.XYKey(0, 0), Compressed(value)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := svc.Get(ctx, id, plane.XYKey(0, 0))
	if !ok {
		t.Fatal("Get after Put should return ok=true")
	}
	if !bytes.Equal(got.Bytes, value) {
		t.Errorf("Get returned %q, want %q", got.Bytes, value)
	}

	if err := svc.Clear(ctx, id); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := svc.Get(ctx, id, plane.XYKey(0, 0)); ok {
		t.Error("Get after Clear should return ok=false")
	}

	// The cache survives Clear.
	if err := svc.Put(ctx, id, plane.XYKey(1, 0), Compressed(value)); err != nil {
		t.Errorf("Put after Clear failed: %v", err)
	}
}

func TestMemoryService_Eviction(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	id, _ := svc.Create(ctx, TierMemory, 2)
	for z := 0; z < 3; z++ {
		if err := svc.Put(ctx, id, plane.XYKey(z, 0), Compressed([]byte{byte(z)})); err != nil {
			t.Fatalf("Put(%d) failed: %v", z, err)
		}
	}

	if _, ok := svc.Get(ctx, id, plane.XYKey(0, 0)); ok {
		t.Error("oldest entry should have been evicted")
	}
	if svc.Len(id) != 2 {
		t.Errorf("Len = %d, want 2", svc.Len(id))
	}
	if st := svc.Stats(); st.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", st.Evictions)
	}
}

func TestMemoryService_Resize(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	id, _ := svc.Create(ctx, TierMemory, 8)
	for z := 0; z < 5; z++ {
		_ = svc.Put(ctx, id, plane.XYKey(z, 0), Compressed([]byte{1}))
	}

	if err := svc.Resize(ctx, id, 2); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if svc.Len(id) != 2 {
		t.Errorf("Len after shrink = %d, want 2", svc.Len(id))
	}
	if err := svc.Resize(ctx, id, 0); !errors.Is(err, ErrInvalidEntries) {
		t.Errorf("Resize(0) = %v, want ErrInvalidEntries", err)
	}
}

func TestMemoryService_RemoveIsIdempotent(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	id, _ := svc.Create(ctx, TierOverflow, 1)
	if err := svc.Remove(ctx, id); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := svc.Remove(ctx, id); err != nil {
		t.Errorf("second Remove should not error, got: %v", err)
	}
	if err := svc.Put(ctx, id, plane.XYKey(0, 0), Compressed([]byte{1})); !errors.Is(err, ErrUnknownID) {
		t.Errorf("Put after Remove = %v, want ErrUnknownID", err)
	}
	if _, ok := svc.Get(ctx, id, plane.XYKey(0, 0)); ok {
		t.Error("Get after Remove should miss")
	}
}

func TestMemoryService_RejectsInvalidArtifact(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()
	id, _ := svc.Create(ctx, TierMemory, 1)

	both := Artifact{Bytes: []byte{1}, Raster: image.NewRGBA(image.Rect(0, 0, 1, 1))}
	if err := svc.Put(ctx, id, plane.XYKey(0, 0), both); !errors.Is(err, ErrInvalidArtifact) {
		t.Errorf("Put(both) = %v, want ErrInvalidArtifact", err)
	}
	if err := svc.Put(ctx, id, plane.XYKey(0, 0), Artifact{}); !errors.Is(err, ErrInvalidArtifact) {
		t.Errorf("Put(empty) = %v, want ErrInvalidArtifact", err)
	}
}

func TestMemoryService_SeparateIDs(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	a, _ := svc.Create(ctx, TierMemory, 4)
	b, _ := svc.Create(ctx, TierMemory, 4)
	if a == b {
		t.Fatal("Create should return distinct ids")
	}

	_ = svc.Put(ctx, a, plane.XYKey(0, 0), Compressed([]byte("a")))
	if _, ok := svc.Get(ctx, b, plane.XYKey(0, 0)); ok {
		t.Error("entries should not leak across cache ids")
	}
}

func TestMemoryService_Concurrent(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()
	id, _ := svc.Create(ctx, TierMemory, 16)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(z int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = svc.Put(ctx, id, plane.XYKey(z, j%4), Compressed([]byte{byte(j)}))
				svc.Get(ctx, id, plane.XYKey(z, j%4))
			}
		}(i)
	}
	wg.Wait()

	if st := svc.Stats(); st.Entries > 16 {
		t.Errorf("Entries = %d, exceeds budget 16", st.Entries)
	}
}

// TestMemoryService_Bytes verifies byte accounting across replace, evict and
// clear.
func TestMemoryService_Bytes(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()
	id, _ := svc.Create(ctx, TierMemory, 2)

	_ = svc.Put(ctx, id, plane.XYKey(0, 0), Compressed(make([]byte, 10)))
	_ = svc.Put(ctx, id, plane.XYKey(1, 0), Compressed(make([]byte, 20)))
	if got := svc.Stats().Bytes; got != 30 {
		t.Fatalf("Bytes = %d, want 30", got)
	}

	_ = svc.Put(ctx, id, plane.XYKey(1, 0), Compressed(make([]byte, 5)))
	if got := svc.Stats().Bytes; got != 15 {
		t.Errorf("Bytes after replace = %d, want 15", got)
	}

	_ = svc.Put(ctx, id, plane.XYKey(2, 0), Compressed(make([]byte, 7)))
	if got := svc.Stats().Bytes; got != 12 {
		t.Errorf("Bytes after eviction = %d, want 12", got)
	}

	_ = svc.Clear(ctx, id)
	if got := svc.Stats().Bytes; got != 0 {
		t.Errorf("Bytes after clear = %d, want 0", got)
	}
}
