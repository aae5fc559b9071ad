package movement

import (
	"errors"

	"github.com/gridwalk/gridwalk/internal/grid"
)

// ErrEmptyQueue is returned when the head of an empty queue is requested.
// It marks a caller bug, not a runtime condition.
var ErrEmptyQueue = errors.New("movement: empty move queue")

// Move is one queued point-to-point destination. World is authoritative for
// steering; Cell is kept for reporting.
type Move struct {
	Cell  grid.Cell
	World grid.WorldPoint
}

func NewMove(cell grid.Cell, world grid.WorldPoint) Move {
	return Move{Cell: cell, World: world}
}

// Queue is a FIFO of pending moves. Element 0 is the active target.
// Owned by exactly one controller.
type Queue struct {
	moves []Move
}

func NewQueue() *Queue {
	return &Queue{moves: make([]Move, 0, 8)}
}

func (q *Queue) Count() int { return len(q.moves) }

// Append adds m at the tail.
func (q *Queue) Append(m Move) {
	q.moves = append(q.moves, m)
}

// Current returns the head of the queue.
func (q *Queue) Current() (Move, error) {
	if len(q.moves) == 0 {
		return Move{}, ErrEmptyQueue
	}
	return q.moves[0], nil
}

// Advance drops the head of the queue.
func (q *Queue) Advance() error {
	if len(q.moves) == 0 {
		return ErrEmptyQueue
	}
	q.moves = q.moves[1:]
	return nil
}

// Moves returns a copy of the pending moves, head first.
func (q *Queue) Moves() []Move {
	out := make([]Move, len(q.moves))
	copy(out, q.moves)
	return out
}

// each visits the pending moves in order without copying.
func (q *Queue) each(fn func(i int, m Move)) {
	for i, m := range q.moves {
		fn(i, m)
	}
}
