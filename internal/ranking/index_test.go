package ranking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_OrderingAndTieBreak(t *testing.T) {
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	c := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	x := NewIndex()
	x.Update(c, decimal.NewFromInt(100))
	x.Update(b, decimal.NewFromInt(300))
	x.Update(a, decimal.NewFromInt(300))

	top := x.Top(3)
	require.Len(t, top, 3)
	assert.Equal(t, a, top[0].ID, "tie broken ascending by identifier")
	assert.Equal(t, b, top[1].ID)
	assert.Equal(t, c, top[2].ID)
}

func TestIndex_UpdateRepositions(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	x := NewIndex()
	x.Update(a, decimal.NewFromInt(10))
	x.Update(b, decimal.NewFromInt(20))

	require.Equal(t, b, x.Top(1)[0].ID)

	x.Update(a, decimal.NewFromInt(30))
	top := x.Top(2)
	assert.Equal(t, a, top[0].ID)
	assert.Equal(t, b, top[1].ID)
	assert.Equal(t, 2, x.Len(), "reposition must not duplicate the account")

	// Dropping to zero keeps the account ranked, last.
	x.Update(a, decimal.Zero)
	top = x.Top(2)
	assert.Equal(t, b, top[0].ID)
	assert.Equal(t, a, top[1].ID)
}

func TestIndex_TopClamps(t *testing.T) {
	x := NewIndex()
	x.Update(uuid.New(), decimal.NewFromInt(5))

	assert.Empty(t, x.Top(0))
	assert.Len(t, x.Top(10), 1)
	assert.Empty(t, x.Top(-1))
}

func TestIndex_TopReturnsCopy(t *testing.T) {
	a := uuid.New()
	x := NewIndex()
	x.Update(a, decimal.NewFromInt(5))

	top := x.Top(1)
	top[0].Balance = decimal.NewFromInt(999)

	assert.True(t, x.Top(1)[0].Balance.Equal(decimal.NewFromInt(5)))
}
