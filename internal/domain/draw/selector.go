package draw

import (
	"errors"
	"math/rand/v2"
)

var ErrNoParticipants = errors.New("no participants to draw from")

// SelectWinner picks one element uniformly at random. Each call is
// independent; nothing is remembered between draws.
func SelectWinner[T any](participants []T) (T, error) {
	var zero T
	if len(participants) == 0 {
		return zero, ErrNoParticipants
	}
	return participants[rand.IntN(len(participants))], nil
}
