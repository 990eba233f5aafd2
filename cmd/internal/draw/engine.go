package draw

import (
	"math/rand/v2"
	"slices"
)

// maxDrawAttempts bounds the rejection-sampling loop. With >= 2 validated
// participants a dead end is rare (it needs the last unclaimed recipient to
// equal the last giver), so in practice the first or second attempt wins.
const maxDrawAttempts = 1000

// Perform computes a complete derangement over names: every name gives to
// exactly one other name, nobody gifts themselves, no recipient repeats.
//
// The algorithm is randomized greedy with restart: walk the givers in input
// order, pick each recipient uniformly from the unclaimed pool minus the
// giver, and throw the whole attempt away on a dead end. No uniformity over
// the set of valid derangements is guaranteed or required.
func Perform(names []string) (map[string]string, error) {
	if len(names) < 2 {
		return nil, ErrInsufficientParticipants
	}

	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		assignments := make(map[string]string, len(names))
		available := slices.Clone(names)
		valid := true

		for _, giver := range names {
			possible := withoutName(available, giver)
			if len(possible) == 0 {
				valid = false
				break
			}
			recipient := possible[rand.IntN(len(possible))]
			assignments[giver] = recipient
			available = withoutName(available, recipient)
		}

		if valid {
			return assignments, nil
		}
	}
	return nil, ErrDrawExhausted
}

// Claim picks one uniformly random recipient from pool minus self and
// returns it together with the shrunk pool. The input slice is left
// untouched; the caller commits the returned pool when it persists.
func Claim(pool []string, self string) (string, []string, error) {
	possible := withoutName(pool, self)
	if len(possible) == 0 {
		return "", nil, ErrPoolExhausted
	}
	recipient := possible[rand.IntN(len(possible))]
	return recipient, withoutName(pool, recipient), nil
}

func withoutName(names []string, drop string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != drop {
			out = append(out, n)
		}
	}
	return out
}
