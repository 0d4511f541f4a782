package room

import (
	"fmt"
	"sync"
	"testing"

	"github.com/freehand-live/freehand/internal/canvas"
)

func TestMembersInsertionOrder(t *testing.T) {
	r := NewRoom("test", 0)

	r.AddMember(Member{ID: "c1", Name: "User-1", Color: "hsl(10, 90%, 70%)"})
	r.AddMember(Member{ID: "c2", Name: "User-2", Color: "hsl(20, 90%, 70%)"})
	r.AddMember(Member{ID: "c3", Name: "User-3", Color: "hsl(30, 90%, 70%)"})

	// Cursor updates must not re-order the listing
	r.UpdateCursor("c1", canvas.Point{X: 5, Y: 5})

	members := r.ListMembers()
	if len(members) != 3 {
		t.Fatalf("Expected 3 members, got %d", len(members))
	}
	for i, want := range []string{"c1", "c2", "c3"} {
		if members[i].ID != want {
			t.Errorf("Member %d: expected %s, got %s", i, want, members[i].ID)
		}
	}
	if members[0].LastCursor == nil || members[0].LastCursor.X != 5 {
		t.Error("Cursor update not reflected in listing")
	}
}

func TestRemoveMemberDiscardsBuffer(t *testing.T) {
	r := NewRoom("test", 0)
	r.AddMember(Member{ID: "c1", Name: "User-1"})

	r.BeginStroke("c1", "#000000", 2, canvas.Point{X: 0, Y: 0})
	r.ExtendStroke("c1", canvas.Point{X: 1, Y: 1})

	if !r.RemoveMember("c1") {
		t.Fatal("RemoveMember should report the member existed")
	}
	if r.RemoveMember("c1") {
		t.Error("Second RemoveMember should report absence")
	}
	if r.ExtendStroke("c1", canvas.Point{X: 2, Y: 2}) {
		t.Error("Buffer should have been discarded on removal")
	}
	if _, ok := r.EndStroke("c1"); ok {
		t.Error("Nothing should commit after the buffer was discarded")
	}
}

func TestUpdateCursorUnknownMember(t *testing.T) {
	r := NewRoom("test", 0)
	if r.UpdateCursor("ghost", canvas.Point{X: 1, Y: 1}) {
		t.Error("Cursor update for an unknown member should be ignored")
	}
}

func TestEndStrokeCommitsToHistory(t *testing.T) {
	r := NewRoom("test", 0)

	r.BeginStroke("c1", "#112233", 4, canvas.Point{X: 0, Y: 0})
	r.ExtendStroke("c1", canvas.Point{X: 1, Y: 1})

	stroke, ok := r.EndStroke("c1")
	if !ok {
		t.Fatal("Eligible stroke should commit")
	}
	if stroke.AuthorID != "c1" || stroke.Color != "#112233" {
		t.Error("Committed stroke fields mismatch")
	}

	snapshot := r.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("Expected 1 stroke in history, got %d", len(snapshot))
	}
}

func TestRegistryLazyCreation(t *testing.T) {
	reg := NewRegistry(0)

	r1, created := reg.GetOrCreate("room-1")
	if !created {
		t.Error("First GetOrCreate should create the room")
	}
	r2, created := reg.GetOrCreate("room-1")
	if created {
		t.Error("Second GetOrCreate should reuse the room")
	}
	if r1 != r2 {
		t.Error("Same id should return the same room instance")
	}

	r3, _ := reg.GetOrCreate("room-2")
	if r3 == r1 {
		t.Error("Different rooms should have independent state")
	}
	if reg.Count() != 2 {
		t.Errorf("Expected 2 rooms, got %d", reg.Count())
	}
}

func TestRegistryDrop(t *testing.T) {
	reg := NewRegistry(0)
	reg.GetOrCreate("room-1")
	reg.Drop("room-1")

	if reg.Get("room-1") != nil {
		t.Error("Dropped room should be gone")
	}
	if reg.Count() != 0 {
		t.Errorf("Expected 0 rooms, got %d", reg.Count())
	}
}

func TestRegistryConcurrentGetOrCreate(t *testing.T) {
	reg := NewRegistry(0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, _ := reg.GetOrCreate("shared")
			r.AddMember(Member{ID: fmt.Sprintf("c%d", i)})
		}(i)
	}
	wg.Wait()

	if reg.Count() != 1 {
		t.Errorf("Expected 1 room, got %d", reg.Count())
	}
	if got := reg.Get("shared").MemberCount(); got != 100 {
		t.Errorf("Expected 100 members, got %d", got)
	}
}
