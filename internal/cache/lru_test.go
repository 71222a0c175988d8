package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func byteCost(v []byte) int64 { return int64(len(v)) }

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU[string, []byte](1024, byteCost)

	if err := c.Put("key", []byte("value")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := c.Get("key")
	if !ok || string(got) != "value" {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	if !c.Contains("key") {
		t.Error("Contains returned false for existing key")
	}

	if st := c.Stats(); st.Size != 5 || st.Items != 1 || st.Hits != 1 {
		t.Errorf("Stats = %+v", st)
	}

	c.Delete("key")
	if c.Contains("key") || c.Stats().Size != 0 {
		t.Error("entry survived Delete")
	}

	if _, ok := c.Get("key"); ok {
		t.Error("Get after Delete succeeded")
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[string, []byte](100, byteCost)

	for i := 0; i < 5; i++ {
		if err := c.Put(fmt.Sprintf("key-%d", i), make([]byte, 20)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	// Touch key-0 and key-1 so key-2 and key-3 are the oldest.
	c.Get("key-0")
	c.Get("key-1")

	if err := c.Put("key-new", make([]byte, 30)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	for _, k := range []string{"key-0", "key-1", "key-4", "key-new"} {
		if !c.Contains(k) {
			t.Errorf("%s was evicted", k)
		}
	}

	for _, k := range []string{"key-2", "key-3"} {
		if c.Contains(k) {
			t.Errorf("%s should have been evicted", k)
		}
	}

	if st := c.Stats(); st.Evictions != 2 || st.Size != 90 {
		t.Errorf("Stats = %+v, want 2 evictions and size 90", st)
	}
}

func TestLRU_ReplaceUpdatesSize(t *testing.T) {
	c := NewLRU[string, []byte](100, byteCost)
	_ = c.Put("k", make([]byte, 10))
	_ = c.Put("k", make([]byte, 40))

	if st := c.Stats(); st.Size != 40 || st.Items != 1 {
		t.Fatalf("Stats = %+v", st)
	}
}

func TestLRU_ItemTooLarge(t *testing.T) {
	c := NewLRU[string, []byte](10, byteCost)
	if err := c.Put("big", make([]byte, 11)); !errors.Is(err, ErrItemTooLarge) {
		t.Fatalf("Put error = %v, want ErrItemTooLarge", err)
	}
}

func TestLRU_EntryLimit(t *testing.T) {
	c := NewLRU[int, string](2, nil)
	_ = c.Put(1, "a")
	_ = c.Put(2, "b")
	_ = c.Put(3, "c")

	if c.Len() != 2 || c.Contains(1) {
		t.Fatalf("Len = %d, Contains(1) = %v", c.Len(), c.Contains(1))
	}
}

func TestLRU_Clear(t *testing.T) {
	c := NewLRU[int, string](10, nil)
	_ = c.Put(1, "a")
	c.Clear()
	if c.Len() != 0 || c.Stats().Size != 0 {
		t.Fatal("Clear left entries behind")
	}
}

func TestStatsHitRate(t *testing.T) {
	if (Stats{}).HitRate() != 0 {
		t.Fatal("empty HitRate should be 0")
	}

	if got := (Stats{Hits: 3, Misses: 1}).HitRate(); got != 0.75 {
		t.Fatalf("HitRate = %v, want 0.75", got)
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU[int, int](50, nil)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = c.Put(g*1000+i, i)
				c.Get(g*1000 + i/2)
			}
		}(g)
	}

	wg.Wait()

	if c.Len() > 50 {
		t.Fatalf("Len = %d exceeds capacity", c.Len())
	}
}
