package arx

import "testing"

func TestFixedU64Resolve(t *testing.T) {
	f := fixedU64(42)
	if got := f.resolve(); got != 42 {
		t.Errorf("resolve() = %d, want 42", got)
	}
	// Idempotent: resolving again returns the same value.
	if got := f.resolve(); got != 42 {
		t.Errorf("second resolve() = %d, want 42", got)
	}
}

func TestDeferredU64ResolvesOnce(t *testing.T) {
	calls := 0
	f := deferredU64(func() uint64 {
		calls++
		return 7
	})

	if got := f.resolve(); got != 7 {
		t.Fatalf("resolve() = %d, want 7", got)
	}
	if got := f.resolve(); got != 7 {
		t.Fatalf("second resolve() = %d, want 7", got)
	}
	if calls != 1 {
		t.Errorf("generator invoked %d times, want 1 (resolution must be idempotent)", calls)
	}
}

func TestDeferredU64ClosesOverGrowingState(t *testing.T) {
	// A generator that closes over a slice which keeps growing after the
	// field is created observes the slice's state at resolve time.
	var children []int
	f := deferredU64(func() uint64 { return uint64(len(children)) })

	children = append(children, 1, 2, 3)
	if got := f.resolve(); got != 3 {
		t.Errorf("resolve() = %d, want 3 (generator should observe final state)", got)
	}
}
