package ecs

import "testing"

func TestGenerationalIDs(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	if !p.Alive(a) {
		t.Fatal("fresh entity not alive")
	}
	p.Destroy(a)
	if p.Alive(a) {
		t.Fatal("destroyed entity still alive")
	}
	b := p.Create()
	if b == a {
		t.Fatal("recycled index kept its old generation")
	}
	if b.Index() != a.Index() {
		t.Fatalf("index not recycled: %d vs %d", b.Index(), a.Index())
	}
	if p.Alive(a) {
		t.Fatal("stale handle resolves after recycle")
	}
}

func TestDeferredDestroy(t *testing.T) {
	w := NewWorld()
	id := w.CreateEntity()
	w.MarkForDestruction(id)
	if !w.Alive(id) {
		t.Fatal("entity died before the flush")
	}
	w.FlushDestroyQueue()
	if w.Alive(id) {
		t.Fatal("entity survived the flush")
	}
}

func TestRegistryEvictsComponents(t *testing.T) {
	type memory struct{ n int }
	w := NewWorld()
	store := NewPtrComponentStore[memory]()
	w.Registry().Register(store)

	id := w.CreateEntity()
	store.Set(id, &memory{n: 7})
	if !store.Has(id) {
		t.Fatal("component not stored")
	}
	w.MarkForDestruction(id)
	w.FlushDestroyQueue()
	if store.Has(id) {
		t.Fatal("component survived entity destruction")
	}
	if store.Len() != 0 {
		t.Fatalf("store leaks: len %d", store.Len())
	}
}

func TestEachVisitsAll(t *testing.T) {
	w := NewWorld()
	store := NewPtrComponentStore[int]()
	want := map[EntityID]int{}
	for i := 1; i <= 4; i++ {
		id := w.CreateEntity()
		v := i * 10
		store.Set(id, &v)
		want[id] = v
	}
	seen := 0
	store.Each(func(id EntityID, v *int) {
		if want[id] != *v {
			t.Errorf("entity %v has %d, want %d", id, *v, want[id])
		}
		seen++
	})
	if seen != 4 {
		t.Fatalf("visited %d components, want 4", seen)
	}
}
