package server

import "slices"

// TopScoreEntry represents a single entry on the leaderboard.
type TopScoreEntry struct {
	Username string
	Score    int
	clientID int // Used for deterministic tie-break when scores are equal
}

// leaderboard keeps the best score per username, highest first. Only the
// server's Run goroutine touches it.
type leaderboard struct {
	limit   int
	entries []TopScoreEntry
}

// insert records e and reports whether the visible board changed.
func (b *leaderboard) insert(e TopScoreEntry) bool {
	if e.Score <= 0 {
		return false
	}
	if i := slices.IndexFunc(b.entries, func(o TopScoreEntry) bool { return o.Username == e.Username }); i >= 0 {
		if b.entries[i].Score >= e.Score {
			return false
		}
		b.entries = slices.Delete(b.entries, i, i+1)
	}

	b.entries = append(b.entries, e)
	slices.SortStableFunc(b.entries, compareEntries)
	if len(b.entries) > b.limit {
		dropped := b.entries[b.limit]
		b.entries = b.entries[:b.limit]
		if dropped == e {
			return false
		}
	}
	return true
}

// compareEntries orders by score descending, then by client id so equal
// scores keep the earlier session first.
func compareEntries(a, b TopScoreEntry) int {
	if a.Score != b.Score {
		return b.Score - a.Score
	}
	return a.clientID - b.clientID
}
