package omap_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/GitExl/WADMerge/internal/omap"
)

func TestAddPreservesInsertionOrder(t *testing.T) {
	m := omap.New[string, int]()
	m.Add("b", 2)
	m.Add("a", 1)
	m.Add("c", 3)

	if diff := cmp.Diff([]string{"b", "a", "c"}, m.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 1, 3}, m.Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
}

func TestAddDuplicateKeyShadowsLookupButKeepsBothInIteration(t *testing.T) {
	m := omap.New[string, int]()
	m.Add("x", 1)
	m.Add("x", 2)

	got, ok := m.Get("x")
	if !ok || got != 2 {
		t.Fatalf("Get(x) = %v, %v; want 2, true", got, ok)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d; want 2", m.Len())
	}
	_, v0 := m.At(0)
	_, v1 := m.At(1)
	if v0 != 1 || v1 != 2 {
		t.Fatalf("At(0)=%d At(1)=%d; want 1, 2", v0, v1)
	}
}

func TestUpdateReplacesInPlace(t *testing.T) {
	m := omap.New[string, int]()
	m.Add("a", 1)
	m.Add("b", 2)
	m.Update("a", 99)

	if diff := cmp.Diff([]int{99, 2}, m.Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d; want 2 (update must not append)", m.Len())
	}
}

func TestUpdateAppendsWhenAbsent(t *testing.T) {
	m := omap.New[string, int]()
	m.Update("a", 1)
	if m.Len() != 1 {
		t.Fatalf("Len() = %d; want 1", m.Len())
	}
	got, ok := m.Get("a")
	if !ok || got != 1 {
		t.Fatalf("Get(a) = %v, %v; want 1, true", got, ok)
	}
}

func TestSortOrdersByKeyAndRewritesIndex(t *testing.T) {
	m := omap.New[string, int]()
	m.Add("c", 3)
	m.Add("a", 1)
	m.Add("b", 2)
	m.Sort(func(a, b string) bool { return a < b })

	if diff := cmp.Diff([]string{"a", "b", "c"}, m.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if idx := m.IndexOf("b"); idx != 1 {
		t.Fatalf("IndexOf(b) = %d; want 1", idx)
	}
}

func TestContainsAndIndexOfOnMissingKey(t *testing.T) {
	m := omap.New[string, int]()
	if m.Contains("missing") {
		t.Fatal("Contains(missing) = true; want false")
	}
	if idx := m.IndexOf("missing"); idx != -1 {
		t.Fatalf("IndexOf(missing) = %d; want -1", idx)
	}
}
