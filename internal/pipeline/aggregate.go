package pipeline

import (
	"sort"

	"golang-ledger-validator/internal/models"
	"golang-ledger-validator/internal/validator"
)

// Aggregate collects the per-pair records into the run summary, keyed by
// date column, balance column and pair. Keys keep the position of their
// first appearance.
//
// Several pairs can share a date or balance column. With the overwrite
// policy the last pair's records replace the earlier ones, matching the
// error column content. With the merge policy records are combined per row
// the same way the error column cells are.
func Aggregate(results []*validator.PairResult, policy validator.ErrorColumnPolicy) *models.Summary {
	dates := newGroupSet(models.ErrorKindDate)
	balances := newGroupSet(models.ErrorKindBalance)
	general := newGroupSet(models.ErrorKindGeneral)
	merge := policy == validator.PolicyMerge

	for _, r := range results {
		pair := r.Pair
		dates.add(pair.DateColumn, nil, r.DateErrors, merge)
		balances.add(pair.BalanceColumn, nil, r.BalanceErrors, merge)
		general.add(pair.String(), &pair, r.GeneralErrors, merge)
	}

	return &models.Summary{
		DateErrors:    dates.groups(),
		BalanceErrors: balances.groups(),
		GeneralErrors: general.groups(),
	}
}

type groupSet struct {
	kind  models.ErrorKind
	order []string
	byKey map[string]*models.ErrorGroup
}

func newGroupSet(kind models.ErrorKind) *groupSet {
	return &groupSet{kind: kind, byKey: make(map[string]*models.ErrorGroup)}
}

func (s *groupSet) add(key string, pair *models.Pair, records []models.ErrorRecord, merge bool) {
	g, ok := s.byKey[key]
	if !ok {
		g = &models.ErrorGroup{Kind: s.kind, Pair: pair, Records: []models.ErrorRecord{}}
		if s.kind != models.ErrorKindGeneral {
			g.Column = key
		}
		s.byKey[key] = g
		s.order = append(s.order, key)
	}

	if !merge || !ok {
		g.Records = append([]models.ErrorRecord{}, records...)
		return
	}
	g.Records = mergeRecords(g.Records, records)
}

func (s *groupSet) groups() []models.ErrorGroup {
	out := make([]models.ErrorGroup, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, *s.byKey[key])
	}
	return out
}

func mergeRecords(existing, added []models.ErrorRecord) []models.ErrorRecord {
	byRow := make(map[int]int, len(existing))
	merged := append([]models.ErrorRecord{}, existing...)
	for i, rec := range merged {
		byRow[rec.Row] = i
	}

	for _, rec := range added {
		if i, ok := byRow[rec.Row]; ok {
			merged[i].Message = validator.MergeMessages(merged[i].Message, rec.Message)
			continue
		}
		byRow[rec.Row] = len(merged)
		merged = append(merged, rec)
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Row < merged[j].Row })
	return merged
}
