package reconcile

import "github.com/ledgerport-dev/ledgerport/internal/ledger"

// BatchSize caps the postings per import call to bound payload size.
const BatchSize = 1000

// AccountPostings is the upload unit: all postings of one account, in
// reconciliation order. Batches of one account must be delivered in order;
// different accounts are independent.
type AccountPostings struct {
	AccountID string
	Postings  []ledger.Posting
}

// GroupByAccount splits postings by account id, keeping first-seen account
// order and the relative posting order within each account.
func GroupByAccount(postings []ledger.Posting) []AccountPostings {
	index := make(map[string]int)
	var groups []AccountPostings
	for _, p := range postings {
		i, ok := index[p.AccountID]
		if !ok {
			i = len(groups)
			index[p.AccountID] = i
			groups = append(groups, AccountPostings{AccountID: p.AccountID})
		}
		groups[i].Postings = append(groups[i].Postings, p)
	}
	return groups
}

// Chunk splits postings into batches of at most size.
func Chunk(postings []ledger.Posting, size int) [][]ledger.Posting {
	if len(postings) == 0 {
		return nil
	}
	var batches [][]ledger.Posting
	for start := 0; start < len(postings); start += size {
		end := start + size
		if end > len(postings) {
			end = len(postings)
		}
		batches = append(batches, postings[start:end])
	}
	return batches
}
