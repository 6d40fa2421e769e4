package main

import "time"

// Buzzer serializes buzz attempts into one deterministic order per question
// round. Because the hub applies events one at a time, arrival order at the
// dispatcher is the ranking; timestamps are recorded for display only.
type Buzzer struct {
	entries []BuzzerEntry
	locked  bool
}

func newBuzzer() *Buzzer {
	return &Buzzer{locked: true}
}

// TryBuzz appends an entry for the player unless the buzzer is locked or the
// player already buzzed this round. A duplicate buzz is dropped, not reordered.
func (b *Buzzer) TryBuzz(playerID, playerName string, now time.Time) bool {
	if b.locked {
		return false
	}

	for _, e := range b.entries {
		if e.PlayerID == playerID {
			return false
		}
	}

	b.entries = append(b.entries, BuzzerEntry{
		PlayerID:   playerID,
		PlayerName: playerName,
		Timestamp:  now,
	})

	return true
}

func (b *Buzzer) Lock() {
	b.locked = true
}

func (b *Buzzer) Unlock() {
	b.locked = false
}

func (b *Buzzer) Locked() bool {
	return b.locked
}

// ResetRound clears the order; lock state is unaffected.
func (b *Buzzer) ResetRound() {
	b.entries = b.entries[:0]
}

// Remove strikes one player from the current round, keeping the relative
// order of everyone else.
func (b *Buzzer) Remove(playerID string) {
	dst := b.entries[:0]

	for _, e := range b.entries {
		if e.PlayerID == playerID {
			continue
		}
		dst = append(dst, e)
	}

	b.entries = dst
}

func (b *Buzzer) Order() []BuzzerEntry {
	out := make([]BuzzerEntry, len(b.entries))
	copy(out, b.entries)
	return out
}
