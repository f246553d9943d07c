package memo

// armLocked (re)starts the expiry timer of a resolved entry.
//
// Each arm bumps the entry's generation so a timer that already fired, and
// whose callback is waiting on the lock, cannot remove the entry after a
// re-arm.
func (m *Memo[A, R]) armLocked(e *entry[R]) {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gen++
	gen := e.gen
	e.expiresAt = m.clock.Now().Add(m.ttl)
	e.timer = m.clock.AfterFunc(m.ttl, func() {
		m.expire(e, gen)
	})
}

// expire is the timer callback. It removes e only if e is still the entry
// stored under its key and has not been re-armed since.
func (m *Memo[A, R]) expire(e *entry[R], gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.entries[e.key]; !ok || current != e || e.gen != gen {
		return
	}
	m.removeLocked(e)
}

// removeLocked deletes a resolved entry and stops its timer.
func (m *Memo[A, R]) removeLocked(e *entry[R]) {
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(m.entries, e.key)
	e.waiters = nil

	m.metrics.RecordEviction()
	m.log.WithField("key", e.key).Debug("memo: evicted")
}
