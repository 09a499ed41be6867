package arx

// u64Field is a deferred value: a placeholder whose numeric value is
// supplied by a zero-argument generator at serialization time. Binding is
// late on purpose - a generator may close over collections that keep
// growing after the entry carrying this field was recorded, so the value
// is only read when resolve is called. The entry store's parent,
// firstChild and childCount fields are u64Field values; the tree builder
// and resolveAndSort set them with fixedU64.
//
// Resolution is idempotent: once resolved, the cached value is returned on
// every subsequent call without invoking the generator again.
type u64Field struct {
	resolved bool
	value    uint64
	gen      func() uint64
}

// fixedU64 returns an already-resolved field, used for values that are
// already known when they are set (an entry's parent, and the
// firstChild/childCount that resolveAndSort computes).
func fixedU64(v uint64) u64Field {
	return u64Field{resolved: true, value: v}
}

// deferredU64 returns a field bound to gen. gen must be safe to call exactly
// once, at finalize, after the tree builder has finished mutating whatever
// it closes over.
func deferredU64(gen func() uint64) u64Field {
	return u64Field{gen: gen}
}

// resolve invokes the generator (or returns the cached value) and returns
// the final u64. Safe to call more than once.
func (f *u64Field) resolve() uint64 {
	if !f.resolved {
		if f.gen != nil {
			f.value = f.gen()
		}
		f.resolved = true
	}
	return f.value
}
