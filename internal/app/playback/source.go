package playback

// LocalSource is a component able to produce audio on its own, such as a
// detail view with its own waveform player. Sources registered with the
// coordinator are paused whenever the coordinator starts producing audio.
type LocalSource interface {
	// SourceID identifies the source for registration.
	SourceID() string
	// PauseLocal stops the source's own output. It must not block and must
	// not call back into the coordinator.
	PauseLocal(reason string)
}

// Register adds a local source. The returned function removes it.
func (c *Coordinator) Register(src LocalSource) func() {
	c.sourcesMu.Lock()
	defer c.sourcesMu.Unlock()

	id := src.SourceID()
	c.sources[id] = src
	return func() {
		c.sourcesMu.Lock()
		defer c.sourcesMu.Unlock()
		if cur, ok := c.sources[id]; ok && cur == src {
			delete(c.sources, id)
		}
	}
}

// SourceCount returns the number of registered local sources.
func (c *Coordinator) SourceCount() int {
	c.sourcesMu.RLock()
	defer c.sourcesMu.RUnlock()
	return len(c.sources)
}

// Relinquish pauses the shared output so a local source can start its own
// playback. Returns true if the coordinator was playing.
func (c *Coordinator) Relinquish() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || !c.playing {
		return false
	}
	c.pauseLocked()
	c.sendEventLocked(EventStateChanged, nil)
	return true
}

// Holds reports whether the coordinator is producing audio for a track other
// than trackID. A local source bound to trackID must pause itself when true.
func (c *Coordinator) Holds(trackID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.playing && c.current.ID != trackID
}

// pauseSources asks every registered local source to stop.
// Must be called without c.mu held.
func (c *Coordinator) pauseSources(reason string) {
	c.sourcesMu.RLock()
	srcs := make([]LocalSource, 0, len(c.sources))
	for _, s := range c.sources {
		srcs = append(srcs, s)
	}
	c.sourcesMu.RUnlock()

	for _, s := range srcs {
		s.PauseLocal(reason)
	}
}
