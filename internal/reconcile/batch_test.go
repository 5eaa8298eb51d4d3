package reconcile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerport-dev/ledgerport/internal/ledger"
)

func postings(accountIDs ...string) []ledger.Posting {
	out := make([]ledger.Posting, len(accountIDs))
	for i, id := range accountIDs {
		out[i] = ledger.Posting{ID: fmt.Sprintf("t-%d", i+1), AccountID: id}
	}
	return out
}

func TestGroupByAccount(t *testing.T) {
	groups := GroupByAccount(postings("a-1", "a-2", "a-1", "a-3", "a-2"))

	require.Len(t, groups, 3)
	assert.Equal(t, "a-1", groups[0].AccountID)
	assert.Equal(t, "a-2", groups[1].AccountID)
	assert.Equal(t, "a-3", groups[2].AccountID)

	require.Len(t, groups[0].Postings, 2)
	assert.Equal(t, "t-1", groups[0].Postings[0].ID)
	assert.Equal(t, "t-3", groups[0].Postings[1].ID, "input order kept within account")
}

func TestGroupByAccount_Empty(t *testing.T) {
	assert.Empty(t, GroupByAccount(nil))
}

func TestChunk(t *testing.T) {
	in := postings("a-1", "a-1", "a-1", "a-1", "a-1")

	batches := Chunk(in, 2)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)
	assert.Equal(t, "t-5", batches[2][0].ID)
}

func TestChunk_ExactFit(t *testing.T) {
	batches := Chunk(postings("a-1", "a-1"), 2)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 2)
}

func TestChunk_Empty(t *testing.T) {
	assert.Nil(t, Chunk(nil, BatchSize))
}
