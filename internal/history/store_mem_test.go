package history_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/parleyhq/parley/internal/history"
	"github.com/parleyhq/parley/internal/provider"
)

// Compile-time interface guard.
var _ history.Store = (*history.InMemoryStore)(nil)

func testMsg(content string) provider.Message {
	return provider.Message{Role: provider.RoleUser, Content: content}
}

func TestInMemoryStore_AppendAndGetOrCreate(t *testing.T) {
	t.Parallel()

	store := history.NewInMemoryStore()

	msgs := []provider.Message{
		{Role: provider.RoleUser, Content: "hello"},
		{Role: provider.RoleAssistant, Content: "hi there"},
		{Role: provider.RoleUser, Content: "how are you?"},
	}

	for _, m := range msgs {
		if err := store.Append("s1", m); err != nil {
			t.Fatalf("Append: unexpected error: %v", err)
		}
	}

	all := store.GetOrCreate("s1")
	if len(all) != 3 {
		t.Fatalf("GetOrCreate: got %d messages, want 3", len(all))
	}
	for i, m := range all {
		if m.Content != msgs[i].Content {
			t.Errorf("GetOrCreate[%d].Content = %q, want %q", i, m.Content, msgs[i].Content)
		}
		if m.Role != msgs[i].Role {
			t.Errorf("GetOrCreate[%d].Role = %q, want %q", i, m.Role, msgs[i].Role)
		}
	}
}

func TestInMemoryStore_GetOrCreate_CreatesEmptySession(t *testing.T) {
	t.Parallel()

	store := history.NewInMemoryStore()

	if store.Exists("fresh") {
		t.Fatal("Exists before GetOrCreate: got true, want false")
	}

	msgs := store.GetOrCreate("fresh")
	if len(msgs) != 0 {
		t.Fatalf("GetOrCreate: got %d messages, want 0", len(msgs))
	}
	if !store.Exists("fresh") {
		t.Fatal("Exists after GetOrCreate: got false, want true")
	}

	// Creating twice is a no-op after the first.
	store.GetOrCreate("fresh")
	if got := store.Len("fresh"); got != 0 {
		t.Fatalf("Len after repeated GetOrCreate = %d, want 0", got)
	}
}

func TestInMemoryStore_GetOrCreate_ReturnsCopy(t *testing.T) {
	t.Parallel()

	store := history.NewInMemoryStore()

	if err := store.Append("s1", testMsg("original")); err != nil {
		t.Fatalf("Append: unexpected error: %v", err)
	}

	// Get a copy and mutate it.
	all := store.GetOrCreate("s1")
	all[0].Content = "mutated"

	// The store should still have the original.
	all2 := store.GetOrCreate("s1")
	if all2[0].Content != "original" {
		t.Fatalf("GetOrCreate after mutation: got %q, want %q", all2[0].Content, "original")
	}
}

func TestInMemoryStore_AppendExchange(t *testing.T) {
	t.Parallel()

	store := history.NewInMemoryStore()

	for i := 0; i < 3; i++ {
		ex := history.Exchange{
			User:      provider.UserMessage(fmt.Sprintf("question-%d", i)),
			Assistant: provider.AssistantMessage(fmt.Sprintf("answer-%d", i)),
		}
		if err := store.AppendExchange("s1", ex); err != nil {
			t.Fatalf("AppendExchange(%d): unexpected error: %v", i, err)
		}
	}

	all := store.GetOrCreate("s1")
	if len(all) != 6 {
		t.Fatalf("got %d messages, want 6", len(all))
	}
	for i, m := range all {
		wantRole := provider.RoleUser
		if i%2 == 1 {
			wantRole = provider.RoleAssistant
		}
		if m.Role != wantRole {
			t.Errorf("message %d: role = %q, want %q", i, m.Role, wantRole)
		}
	}
}

func TestInMemoryStore_Clear_PreservesKey(t *testing.T) {
	t.Parallel()

	store := history.NewInMemoryStore()

	for i := 0; i < 4; i++ {
		if err := store.Append("s1", testMsg(fmt.Sprintf("msg-%d", i))); err != nil {
			t.Fatalf("Append(%d): unexpected error: %v", i, err)
		}
	}

	if err := store.Clear("s1"); err != nil {
		t.Fatalf("Clear: unexpected error: %v", err)
	}

	if got := store.Len("s1"); got != 0 {
		t.Fatalf("Len after Clear = %d, want 0", got)
	}
	if !store.Exists("s1") {
		t.Fatal("Exists after Clear: got false, want true")
	}
}

func TestInMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	store := history.NewInMemoryStore()

	if err := store.Append("s1", testMsg("msg")); err != nil {
		t.Fatalf("Append: unexpected error: %v", err)
	}
	if err := store.Delete("s1"); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}

	if store.Exists("s1") {
		t.Fatal("Exists after Delete: got true, want false")
	}
	if got := store.Len("s1"); got != 0 {
		t.Fatalf("Len after Delete = %d, want 0", got)
	}

	// Deleting an unknown key is a no-op.
	if err := store.Delete("never-existed"); err != nil {
		t.Fatalf("Delete(unknown): unexpected error: %v", err)
	}
}

func TestInMemoryStore_SessionIsolation(t *testing.T) {
	t.Parallel()

	store := history.NewInMemoryStore()

	if err := store.Append("a", testMsg("for-a")); err != nil {
		t.Fatalf("Append(a): unexpected error: %v", err)
	}
	if err := store.Append("b", testMsg("for-b")); err != nil {
		t.Fatalf("Append(b): unexpected error: %v", err)
	}

	a := store.GetOrCreate("a")
	b := store.GetOrCreate("b")
	if len(a) != 1 || a[0].Content != "for-a" {
		t.Fatalf("session a: got %v", a)
	}
	if len(b) != 1 || b[0].Content != "for-b" {
		t.Fatalf("session b: got %v", b)
	}

	// Clearing one never affects the other.
	if err := store.Clear("a"); err != nil {
		t.Fatalf("Clear(a): unexpected error: %v", err)
	}
	if got := store.Len("b"); got != 1 {
		t.Fatalf("Len(b) after Clear(a) = %d, want 1", got)
	}
}

func TestInMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	store := history.NewInMemoryStore()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(goroutine int) {
			defer wg.Done()
			key := fmt.Sprintf("s%d", goroutine%3)
			for i := 0; i < 100; i++ {
				ex := history.Exchange{
					User:      provider.UserMessage(fmt.Sprintf("g%d-q%d", goroutine, i)),
					Assistant: provider.AssistantMessage(fmt.Sprintf("g%d-a%d", goroutine, i)),
				}
				if err := store.AppendExchange(key, ex); err != nil {
					t.Errorf("AppendExchange from goroutine %d, msg %d: unexpected error: %v", goroutine, i, err)
				}
				// Interleave reads to stress the RWMutex.
				store.GetOrCreate(key)
			}
		}(g)
	}
	wg.Wait()

	total := store.Len("s0") + store.Len("s1") + store.Len("s2")
	if total != 2000 {
		t.Fatalf("total messages = %d, want 2000", total)
	}

	// Every stored sequence must still alternate user/assistant.
	for _, key := range []string{"s0", "s1", "s2"} {
		msgs := store.GetOrCreate(key)
		for i, m := range msgs {
			wantRole := provider.RoleUser
			if i%2 == 1 {
				wantRole = provider.RoleAssistant
			}
			if m.Role != wantRole {
				t.Fatalf("session %s message %d: role = %q, want %q", key, i, m.Role, wantRole)
			}
		}
	}
}
