package board_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saqrcrm/sales-api/internal/board"
	"github.com/saqrcrm/sales-api/internal/domain"
)

func TestBoard_Load(t *testing.T) {
	b := board.New()
	a, c := uuid.New(), uuid.New()
	b.Load([]domain.Deal{
		{BaseModel: domain.BaseModel{ID: a}, Status: domain.DealStatusNegotiation},
		{BaseModel: domain.BaseModel{ID: c}, Status: domain.DealStatusNegotiation},
	})

	assert.Equal(t, []uuid.UUID{a, c}, b.Column(domain.DealStatusNegotiation))
	assert.Empty(t, b.Column(domain.DealStatusNewOpportunity))
}

func TestBoard_Upsert(t *testing.T) {
	b := board.New()
	id := uuid.New()

	b.Upsert(id, domain.DealStatusNewOpportunity)
	assert.Equal(t, []uuid.UUID{id}, b.Column(domain.DealStatusNewOpportunity))

	// Moving the card leaves no copy behind
	b.Upsert(id, domain.DealStatusProposalSent)
	assert.Empty(t, b.Column(domain.DealStatusNewOpportunity))
	assert.Equal(t, []uuid.UUID{id}, b.Column(domain.DealStatusProposalSent))
}

func TestBoard_Move(t *testing.T) {
	t.Run("append to end when beforeID is nil", func(t *testing.T) {
		b := board.New()
		first, second := uuid.New(), uuid.New()
		b.Upsert(first, domain.DealStatusNegotiation)
		b.Upsert(second, domain.DealStatusNewOpportunity)

		_, err := b.Move(second, domain.DealStatusNegotiation, nil)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first, second}, b.Column(domain.DealStatusNegotiation))
	})

	t.Run("insert before a card", func(t *testing.T) {
		b := board.New()
		first, second, moved := uuid.New(), uuid.New(), uuid.New()
		b.Upsert(first, domain.DealStatusNegotiation)
		b.Upsert(second, domain.DealStatusNegotiation)
		b.Upsert(moved, domain.DealStatusNewOpportunity)

		_, err := b.Move(moved, domain.DealStatusNegotiation, &second)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first, moved, second}, b.Column(domain.DealStatusNegotiation))
	})

	t.Run("unknown beforeID appends", func(t *testing.T) {
		b := board.New()
		first, moved := uuid.New(), uuid.New()
		b.Upsert(first, domain.DealStatusNegotiation)
		b.Upsert(moved, domain.DealStatusNewOpportunity)

		missing := uuid.New()
		_, err := b.Move(moved, domain.DealStatusNegotiation, &missing)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first, moved}, b.Column(domain.DealStatusNegotiation))
	})

	t.Run("card not on board", func(t *testing.T) {
		b := board.New()
		_, err := b.Move(uuid.New(), domain.DealStatusNegotiation, nil)
		assert.ErrorIs(t, err, board.ErrCardNotFound)
	})

	t.Run("reorder within a column", func(t *testing.T) {
		b := board.New()
		first, second, third := uuid.New(), uuid.New(), uuid.New()
		b.Upsert(first, domain.DealStatusProposalSent)
		b.Upsert(second, domain.DealStatusProposalSent)
		b.Upsert(third, domain.DealStatusProposalSent)

		_, err := b.Move(third, domain.DealStatusProposalSent, &first)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{third, first, second}, b.Column(domain.DealStatusProposalSent))
	})
}

func TestBoard_MoveRestore(t *testing.T) {
	b := board.New()
	id := uuid.New()
	b.Upsert(id, domain.DealStatusNewOpportunity)

	snapshot, err := b.Move(id, domain.DealStatusNegotiation, nil)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, b.Column(domain.DealStatusNegotiation))

	// A failed persist rolls the board back to where it was
	b.Restore(snapshot)
	assert.Equal(t, []uuid.UUID{id}, b.Column(domain.DealStatusNewOpportunity))
	assert.Empty(t, b.Column(domain.DealStatusNegotiation))
}

func TestBoard_SnapshotIsIsolated(t *testing.T) {
	b := board.New()
	id := uuid.New()
	b.Upsert(id, domain.DealStatusWon)

	snapshot := b.Snapshot()
	snapshot[domain.DealStatusWon][0] = uuid.New()

	assert.Equal(t, []uuid.UUID{id}, b.Column(domain.DealStatusWon))
}
