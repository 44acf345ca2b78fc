package services

import "sync"

// teamLocks serializes admission-path mutations per team. The size and
// gender-balance checks read current membership and then write, so every
// admission for a given team must run the check-and-write section alone;
// sqlite (the default driver) cannot express a row lock, hence the
// in-process mutex. Cross-team single affiliation is still guarded by the
// conditional team_id update at commit time.
type teamLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newTeamLocks() *teamLocks {
	return &teamLocks{locks: make(map[uint]*sync.Mutex)}
}

// Lock acquires the mutex for the given team and returns its unlock func.
func (l *teamLocks) Lock(teamID uint) func() {
	l.mu.Lock()
	m, ok := l.locks[teamID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[teamID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Forget drops the lock entry for a deleted team.
func (l *teamLocks) Forget(teamID uint) {
	l.mu.Lock()
	delete(l.locks, teamID)
	l.mu.Unlock()
}
