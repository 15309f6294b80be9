// pkg/engine/colliders_test.go
package engine

import (
	"sync"
	"testing"

	"github.com/opd-ai/go-clothsim/pkg/physics"
)

func TestColliderManagerAddGet(t *testing.T) {
	manager := NewColliderManager()

	id, err := manager.Add("ball", physics.Vec3{0, 2, 0}, 1.5)
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if id == "" {
		t.Fatal("Add() returned an empty ID")
	}

	collider, ok := manager.Get(id)
	if !ok {
		t.Fatal("Get() did not find the collider")
	}
	if collider.Name != "ball" {
		t.Errorf("name = %q, expected ball", collider.Name)
	}
	if collider.Sphere.Radius != 1.5 {
		t.Errorf("radius = %v, expected 1.5", collider.Sphere.Radius)
	}
}

func TestColliderManagerRejectsBadRadius(t *testing.T) {
	manager := NewColliderManager()

	if _, err := manager.Add("flat", physics.Vec3{}, 0); err == nil {
		t.Error("expected an error for a zero radius")
	}
	if _, err := manager.Add("inverted", physics.Vec3{}, -1); err == nil {
		t.Error("expected an error for a negative radius")
	}
	if manager.Count() != 0 {
		t.Errorf("count = %d, expected 0 after rejected adds", manager.Count())
	}
}

func TestColliderManagerMove(t *testing.T) {
	manager := NewColliderManager()

	id, err := manager.Add("ball", physics.Vec3{0, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if err := manager.Move(id, physics.Vec3{3, 4, 5}); err != nil {
		t.Fatalf("Move() failed: %v", err)
	}

	collider, _ := manager.Get(id)
	if collider.Sphere.Center != (physics.Vec3{3, 4, 5}) {
		t.Errorf("center = %v, expected {3 4 5}", collider.Sphere.Center)
	}

	if err := manager.Move("missing", physics.Vec3{}); err == nil {
		t.Error("expected an error for an unknown ID")
	}
}

func TestColliderManagerRemove(t *testing.T) {
	manager := NewColliderManager()

	id, _ := manager.Add("ball", physics.Vec3{}, 1)
	if err := manager.Remove(id); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if manager.Count() != 0 {
		t.Errorf("count = %d, expected 0 after remove", manager.Count())
	}
	if err := manager.Remove(id); err == nil {
		t.Error("expected an error removing an already-removed collider")
	}
}

func TestColliderManagerSnapshotOrder(t *testing.T) {
	manager := NewColliderManager()

	first, _ := manager.Add("first", physics.Vec3{1, 0, 0}, 1)
	manager.Add("second", physics.Vec3{2, 0, 0}, 1)
	manager.Add("third", physics.Vec3{3, 0, 0}, 1)

	spheres := manager.Snapshot()
	if len(spheres) != 3 {
		t.Fatalf("snapshot has %d spheres, expected 3", len(spheres))
	}
	for i, wantX := range []float32{1, 2, 3} {
		if spheres[i].Center.X() != wantX {
			t.Errorf("sphere %d center X = %v, expected %v", i, spheres[i].Center.X(), wantX)
		}
	}

	// Removing the head keeps the remaining order.
	if err := manager.Remove(first); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	spheres = manager.Snapshot()
	if len(spheres) != 2 || spheres[0].Center.X() != 2 || spheres[1].Center.X() != 3 {
		t.Errorf("snapshot after remove = %v, expected centers X 2 then 3", spheres)
	}
}

func TestColliderManagerSnapshotIsCopy(t *testing.T) {
	manager := NewColliderManager()

	id, _ := manager.Add("ball", physics.Vec3{0, 0, 0}, 1)
	spheres := manager.Snapshot()

	if err := manager.Move(id, physics.Vec3{9, 9, 9}); err != nil {
		t.Fatalf("Move() failed: %v", err)
	}
	if spheres[0].Center != (physics.Vec3{0, 0, 0}) {
		t.Error("snapshot changed after a later Move")
	}
}

func TestColliderManagerConcurrentAccess(t *testing.T) {
	manager := NewColliderManager()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := manager.Add("ball", physics.Vec3{}, 1)
			if err != nil {
				t.Errorf("Add() failed: %v", err)
				return
			}
			manager.Snapshot()
			if err := manager.Move(id, physics.Vec3{1, 1, 1}); err != nil {
				t.Errorf("Move() failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if manager.Count() != 10 {
		t.Errorf("count = %d, expected 10", manager.Count())
	}
}
