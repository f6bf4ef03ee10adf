package shader

// InclusionStack records the files expanded so far for one stage. Entries are only ever
// pushed: a file stays on the stack for the rest of its stage, so a second use of it anywhere
// in that stage is recognized as a multi-use.
type InclusionStack struct {
	paths []string
	seen  map[string]struct{}
}

// newInclusionStack returns a stack seeded with the entry path.
func newInclusionStack(entry string) *InclusionStack {
	s := &InclusionStack{seen: make(map[string]struct{})}
	s.push(entry)
	return s
}

// Contains reports whether p is already on the stack.
func (s *InclusionStack) Contains(p string) bool {
	_, ok := s.seen[p]
	return ok
}

// Paths returns the stacked paths in push order.
func (s *InclusionStack) Paths() []string {
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// Len returns the number of stacked paths.
func (s *InclusionStack) Len() int {
	return len(s.paths)
}

func (s *InclusionStack) push(p string) {
	if s.Contains(p) {
		return
	}
	s.seen[p] = struct{}{}
	s.paths = append(s.paths, p)
}
