// Package overlay composes the raw ledger with user corrections and rules
// into one effective record per transaction. The raw row is the source of
// truth and is never touched; overlays only change what is presented.
package overlay

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/khorochbd/khoroch/internal/model"
	"github.com/khorochbd/khoroch/internal/service"
)

// Resolver resolves effective records with a short-lived per-transaction
// cache. Staleness within the TTL is acceptable; staleness after an explicit
// Invalidate is not, so every overlay write must call Invalidate for the
// affected user.
type Resolver struct {
	storage service.Storage
	cache   map[string]cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

type cacheEntry struct {
	expires time.Time
	record  *model.EffectiveRecord
	userID  string
}

// NewResolver creates a resolver. TTL is expected in seconds, not minutes.
func NewResolver(storage service.Storage, ttl time.Duration) *Resolver {
	return &Resolver{
		storage: storage,
		cache:   make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Resolve returns the effective view of one transaction. Precedence per
// field: latest matching Correction, else first matching active Rule
// (most specific predicate first, then most recent), else the raw value.
func (r *Resolver) Resolve(ctx context.Context, transactionID string) (*model.EffectiveRecord, error) {
	r.mu.RLock()
	if e, ok := r.cache[transactionID]; ok && time.Now().Before(e.expires) {
		r.mu.RUnlock()
		return e.record, nil
	}
	r.mu.RUnlock()

	txn, err := r.storage.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	corrections, err := r.storage.GetCorrections(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	rules, err := r.storage.GetActiveRules(ctx, txn.UserID)
	if err != nil {
		return nil, err
	}

	record := compose(txn, corrections, rules)

	r.mu.Lock()
	r.cache[transactionID] = cacheEntry{
		record:  record,
		userID:  txn.UserID,
		expires: time.Now().Add(r.ttl),
	}
	r.mu.Unlock()

	return record, nil
}

// Invalidate drops every cached record belonging to the user. Called on any
// correction or rule write; a missed call only delays correctness by at most
// the TTL.
func (r *Resolver) Invalidate(userID string) {
	r.mu.Lock()
	for id, e := range r.cache {
		if e.userID == userID {
			delete(r.cache, id)
		}
	}
	r.mu.Unlock()
}

// SaveCorrection persists a correction and immediately drops the user's
// cached records, making the new effective view visible on the next resolve.
func (r *Resolver) SaveCorrection(ctx context.Context, c *model.Correction) error {
	if err := r.storage.SaveCorrection(ctx, c); err != nil {
		return err
	}
	r.Invalidate(c.UserID)
	return nil
}

// SaveRule persists a rule and invalidates the owning user's cache.
func (r *Resolver) SaveRule(ctx context.Context, rule *model.Rule) error {
	if err := r.storage.SaveRule(ctx, rule); err != nil {
		return err
	}
	r.Invalidate(rule.UserID)
	return nil
}

// SetRuleActive toggles a rule and invalidates the owning user's cache.
func (r *Resolver) SetRuleActive(ctx context.Context, userID string, id int64, active bool) error {
	if err := r.storage.SetRuleActive(ctx, id, active); err != nil {
		return err
	}
	r.Invalidate(userID)
	return nil
}

// compose applies the precedence order. Pure function; tested directly.
func compose(txn *model.RawTransaction, corrections []model.Correction, rules []model.Rule) *model.EffectiveRecord {
	record := &model.EffectiveRecord{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		AmountMinor:   txn.AmountMinor,
		Currency:      txn.Currency,
		Category:      txn.Category,
		Merchant:      txn.Merchant,
		Source: map[model.OverlayField]model.OverlaySource{
			model.FieldCategory: model.SourceRaw,
			model.FieldMerchant: model.SourceRaw,
			model.FieldCurrency: model.SourceRaw,
		},
	}

	// Rules first, so a correction written later can still win per field.
	applyRules(record, txn, rules)
	applyCorrections(record, corrections)

	return record
}

func applyRules(record *model.EffectiveRecord, txn *model.RawTransaction, rules []model.Rule) {
	matching := make([]model.Rule, 0, len(rules))
	for i := range rules {
		if rules[i].Matches(txn) {
			matching = append(matching, rules[i])
		}
	}
	// Most specific predicate first; recency breaks ties.
	sort.SliceStable(matching, func(i, j int) bool {
		if matching[i].Specificity() != matching[j].Specificity() {
			return matching[i].Specificity() > matching[j].Specificity()
		}
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})

	applied := map[model.OverlayField]bool{}
	for i := range matching {
		f := matching[i].ApplyField
		if applied[f] {
			continue
		}
		setField(record, f, matching[i].ApplyValue, model.SourceRule)
		applied[f] = true
	}
}

func applyCorrections(record *model.EffectiveRecord, corrections []model.Correction) {
	// Corrections arrive oldest first; the latest per field wins by simply
	// applying them in order.
	for i := range corrections {
		setField(record, corrections[i].Field, corrections[i].NewValue, model.SourceCorrection)
	}
}

func setField(record *model.EffectiveRecord, f model.OverlayField, value string, src model.OverlaySource) {
	switch f {
	case model.FieldCategory:
		record.Category = value
	case model.FieldMerchant:
		record.Merchant = value
	case model.FieldCurrency:
		record.Currency = value
	default:
		return
	}
	record.Source[f] = src
}
