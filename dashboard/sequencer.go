package dashboard

// Sequencer hands out monotonically increasing request numbers per resource
// key. A response is applied only if its number is still the latest issued
// for that key, so the last request wins whatever order responses arrive in.
//
// Sequencer is not safe for concurrent use; it lives on the update loop.
type Sequencer struct {
	latest map[string]uint64
}

// Resource keys.
const (
	keyStatus  = "status"
	keyHistory = "history"
	keyDetail  = "detail"
)

func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Next issues a new request number for key, superseding all earlier ones.
func (s *Sequencer) Next(key string) uint64 {
	s.latest[key]++
	return s.latest[key]
}

// IsLatest reports whether seq is the most recent number issued for key.
func (s *Sequencer) IsLatest(key string, seq uint64) bool {
	return seq != 0 && s.latest[key] == seq
}

// Invalidate supersedes every in-flight request for key without issuing one.
func (s *Sequencer) Invalidate(key string) {
	s.latest[key]++
}
