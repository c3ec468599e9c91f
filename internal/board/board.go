// Package board keeps the in-memory kanban ordering of the deal
// pipeline. The database owns stage membership; the board owns the
// position of cards inside each column.
package board

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/saqrcrm/sales-api/internal/domain"
)

// ErrCardNotFound is returned when a deal is not on the board
var ErrCardNotFound = errors.New("card not on board")

// Columns holds the card order of every pipeline stage
type Columns map[domain.DealStatus][]uuid.UUID

// Board is a single-writer container for kanban card order
type Board struct {
	mu      sync.Mutex
	columns Columns
}

// New creates an empty board with all pipeline columns present
func New() *Board {
	return &Board{columns: emptyColumns()}
}

func emptyColumns() Columns {
	return Columns{
		domain.DealStatusNewOpportunity:   {},
		domain.DealStatusMeetingScheduled: {},
		domain.DealStatusProposalSent:     {},
		domain.DealStatusNegotiation:      {},
		domain.DealStatusWon:              {},
		domain.DealStatusLost:             {},
	}
}

// Load rebuilds the board from deals, preserving the given slice order
// inside each column
func (b *Board) Load(deals []domain.Deal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.columns = emptyColumns()
	for i := range deals {
		b.columns[deals[i].Status] = append(b.columns[deals[i].Status], deals[i].ID)
	}
}

// Upsert places a card at the end of its column, moving it if it already
// sits elsewhere
func (b *Board) Upsert(dealID uuid.UUID, status domain.DealStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.removeLocked(dealID)
	b.columns[status] = append(b.columns[status], dealID)
}

// Remove drops a card from the board
func (b *Board) Remove(dealID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(dealID)
}

func (b *Board) removeLocked(dealID uuid.UUID) {
	for status, column := range b.columns {
		for i, id := range column {
			if id == dealID {
				b.columns[status] = append(column[:i], column[i+1:]...)
				return
			}
		}
	}
}

// Move repositions a card into a column, before the given card or at the
// end when beforeID is nil. The previous layout is returned so a failed
// persist can be rolled back with Restore.
func (b *Board) Move(dealID uuid.UUID, toStatus domain.DealStatus, beforeID *uuid.UUID) (Columns, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := b.snapshotLocked()

	found := false
	for _, column := range b.columns {
		for _, id := range column {
			if id == dealID {
				found = true
				break
			}
		}
	}
	if !found {
		return nil, ErrCardNotFound
	}

	b.removeLocked(dealID)

	column := b.columns[toStatus]
	insertAt := len(column)
	if beforeID != nil {
		for i, id := range column {
			if id == *beforeID {
				insertAt = i
				break
			}
		}
	}

	column = append(column, uuid.Nil)
	copy(column[insertAt+1:], column[insertAt:])
	column[insertAt] = dealID
	b.columns[toStatus] = column

	return snapshot, nil
}

// Restore rolls the board back to a snapshot taken by Move
func (b *Board) Restore(snapshot Columns) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.columns = snapshot
}

// Snapshot returns a deep copy of the current layout
func (b *Board) Snapshot() Columns {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Board) snapshotLocked() Columns {
	copied := make(Columns, len(b.columns))
	for status, column := range b.columns {
		cards := make([]uuid.UUID, len(column))
		copy(cards, column)
		copied[status] = cards
	}
	return copied
}

// Column returns the card order of a single column
func (b *Board) Column(status domain.DealStatus) []uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()

	column := b.columns[status]
	cards := make([]uuid.UUID, len(column))
	copy(cards, column)
	return cards
}
