package container

import "iter"

// tagger groups abstracts under tag names.
type tagger struct {
	tags map[string][]any
}

func newTagger() *tagger {
	return &tagger{tags: make(map[string][]any)}
}

func (t *tagger) add(abstracts []any, tags []string) {
	for _, tag := range tags {
		t.tags[tag] = append(t.tags[tag], abstracts...)
	}
}

func (t *tagger) ids(tag string) []any {
	ids := t.tags[tag]
	out := make([]any, len(ids))
	copy(out, ids)
	return out
}

// Tag associates abstracts with one or more tags. Duplicates are kept.
//
//	// Laravel: $app->tag([CpuReport::class, MemoryReport::class], 'reports')
//	c.Tag([]any{container.TypeOf[*CPUReport](), container.TypeOf[*MemoryReport]()}, "reports")
func (c *Container) Tag(abstracts []any, tags ...string) {
	c.tags.add(abstracts, tags)
}

// Tagged returns a lazy, single-pass handle over the abstracts tagged with tag.
// Each element is resolved through Make when the handle advances.
//
//	for report, err := range c.Tagged("reports").All() { ... }
func (c *Container) Tagged(tag string) *TaggedSet {
	return &TaggedSet{c: c, ids: c.tags.ids(tag)}
}

// TaggedSet is a lazy sequence of tagged services. It can be consumed once:
// an exhausted set yields nothing, call Tagged again for a fresh pass.
type TaggedSet struct {
	c    *Container
	ids  []any
	next int
}

// Len returns the number of tagged abstracts, consumed or not.
func (s *TaggedSet) Len() int { return len(s.ids) }

// Next resolves the next element. ok is false once the set is exhausted.
func (s *TaggedSet) Next() (instance any, ok bool, err error) {
	if s.next >= len(s.ids) {
		return nil, false, nil
	}
	abstract := s.ids[s.next]
	s.next++
	instance, err = s.c.Make(abstract)
	return instance, true, err
}

// All returns an iterator over the remaining elements. Iteration stops after
// the first error.
func (s *TaggedSet) All() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for {
			instance, ok, err := s.Next()
			if !ok {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(instance, nil) {
				return
			}
		}
	}
}

// Collect drains the remaining elements into a slice.
func (s *TaggedSet) Collect() ([]any, error) {
	out := make([]any, 0, len(s.ids)-s.next)
	for instance, err := range s.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, instance)
	}
	return out, nil
}
