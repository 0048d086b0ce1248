// Package cache holds the TTL-based store of venue classifications. Reads
// prefer the cache; expired entries are re-fetched from the places provider,
// and a failed refresh degrades to the stale entry rather than an error.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/encontro/venues-cli/internal/classify"
	"github.com/encontro/venues-cli/internal/config"
	"github.com/encontro/venues-cli/internal/resilience"
	"github.com/encontro/venues-cli/internal/store"
	"github.com/encontro/venues-cli/internal/venue"
	"github.com/encontro/venues-cli/pkg/places"
)

// Cache coordinates classification lookups between the store, the places
// provider, and the classifier. Concurrent refreshes of the same place are
// tolerated: the upsert is idempotent and both writers compute the same score.
type Cache struct {
	store      store.Store
	places     places.Client
	classifier *classify.Classifier
	cfg        config.CacheConfig
	retry      resilience.RetryConfig

	now func() time.Time
}

// New creates a Cache.
func New(st store.Store, p places.Client, cl *classify.Classifier, cfg config.CacheConfig) *Cache {
	retry := resilience.DefaultRetryConfig()
	if cfg.MaxDetailsAttempts > 0 {
		retry.MaxAttempts = cfg.MaxDetailsAttempts
	}
	return &Cache{
		store:      st,
		places:     p,
		classifier: cl,
		cfg:        cfg,
		retry:      retry,
		now:        time.Now,
	}
}

// GetOrRefresh returns the classification for a place, refreshing it when the
// TTL has lapsed. Blocked entries are served from cache without refresh. A
// failed refresh returns the stale entry when one exists, otherwise a minimal
// type-only entry is persisted with a nil refresh time so a later attempt
// will try again. Only a failed store read errors: an unreadable row may hold
// community state that a minimal-entry upsert would erase.
func (c *Cache) GetOrRefresh(ctx context.Context, placeID string, categoryTags []string, name string) (*venue.Classification, error) {
	cached, err := c.store.GetClassification(ctx, placeID)
	if err != nil && !eris.Is(err, store.ErrNotFound) {
		// An unreadable row is not a miss: refreshing on top of it could
		// overwrite community state (blocks, flag counts) we cannot see.
		return nil, eris.Wrapf(err, "cache: read classification %s", placeID)
	}

	if cached != nil && (cached.IsBlocked || cached.Fresh(c.now(), c.cfg.TTL())) {
		return cached, nil
	}

	entry, err := c.refresh(ctx, placeID, categoryTags, name, cached)
	if err == nil {
		return entry, nil
	}

	if cached != nil {
		zap.L().Warn("cache: refresh failed, serving stale entry",
			zap.String("place_id", placeID), zap.Error(err))
		return cached, nil
	}

	zap.L().Warn("cache: refresh failed with no prior entry, storing minimal entry",
		zap.String("place_id", placeID), zap.Error(err))
	return c.minimalEntry(ctx, placeID, categoryTags, name), nil
}

// refresh fetches details, classifies, and upserts a fresh entry.
func (c *Cache) refresh(ctx context.Context, placeID string, categoryTags []string, name string, prior *venue.Classification) (*venue.Classification, error) {
	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*places.DetailsResponse, error) {
		return c.places.Details(ctx, placeID)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "cache: details fetch %s", placeID)
	}
	if resp.Status != places.StatusOK {
		return nil, eris.Errorf("cache: details fetch %s: provider status %s", placeID, resp.Status)
	}

	detail := resp.Result
	if len(detail.Types) > 0 {
		categoryTags = detail.Types
	}
	if detail.Name != "" {
		name = detail.Name
	}

	in := classify.Inputs{
		PlaceID:      placeID,
		Name:         name,
		CategoryTags: categoryTags,
		HoursPeriods: toPeriods(detail.OpeningHours),
		ReviewTexts:  reviewTexts(detail.Reviews),
		Prior:        prior,
	}

	closesLate, eveningOpen, positive, negative := c.classifier.Signals(in)
	now := c.now().UTC()
	entry := &venue.Classification{
		PlaceID:               placeID,
		ClosesLateOnWeekend:   closesLate,
		OpensInEvening:        eveningOpen,
		ReviewKeywordPositive: positive,
		ReviewKeywordNegative: negative,
		NightlifeScore:        c.classifier.Classify(in),
		LastRefreshedAt:       &now,
	}
	if prior != nil {
		entry.CommunityVerified = prior.CommunityVerified
		entry.IsBlocked = prior.IsBlocked
		entry.CommunityFlagCount = prior.CommunityFlagCount
	}

	if err := c.store.UpsertClassification(ctx, entry); err != nil {
		// The computed entry is still valid for this request.
		zap.L().Warn("cache: upsert failed", zap.String("place_id", placeID), zap.Error(err))
	}
	return entry, nil
}

// minimalEntry builds and persists a type-only entry. Hours and review
// signals are absent and contribute nothing; the nil refresh time keeps the
// entry eligible for a real refresh.
func (c *Cache) minimalEntry(ctx context.Context, placeID string, categoryTags []string, name string) *venue.Classification {
	in := classify.Inputs{
		PlaceID:      placeID,
		Name:         name,
		CategoryTags: categoryTags,
	}
	entry := &venue.Classification{
		PlaceID:        placeID,
		NightlifeScore: c.classifier.Classify(in),
	}
	if err := c.store.UpsertClassification(ctx, entry); err != nil {
		zap.L().Warn("cache: persist minimal entry failed", zap.String("place_id", placeID), zap.Error(err))
	}
	return entry
}

// BatchGetOrRefresh classifies a set of venues. Fresh and blocked entries are
// served straight from the store; the rest refresh in fixed-size concurrent
// batches with a pause between batches to respect provider rate limits. One
// venue's failure never aborts its siblings.
func (c *Cache) BatchGetOrRefresh(ctx context.Context, venues []venue.Venue) (map[string]*venue.Classification, error) {
	results := make(map[string]*venue.Classification, len(venues))

	var toRefresh []venue.Venue
	for _, v := range venues {
		cached, err := c.store.GetClassification(ctx, v.ID)
		if err == nil && (cached.IsBlocked || cached.Fresh(c.now(), c.cfg.TTL())) {
			results[v.ID] = cached
			continue
		}
		toRefresh = append(toRefresh, v)
	}

	if len(toRefresh) == 0 {
		return results, nil
	}

	zap.L().Debug("cache: batch refresh",
		zap.Int("cached", len(results)), zap.Int("refreshing", len(toRefresh)))

	batchSize := c.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	var mu sync.Mutex
	for start := 0; start < len(toRefresh); start += batchSize {
		if ctx.Err() != nil {
			return results, eris.Wrap(ctx.Err(), "cache: batch refresh")
		}

		end := start + batchSize
		if end > len(toRefresh) {
			end = len(toRefresh)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(batchSize)
		for _, v := range toRefresh[start:end] {
			g.Go(func() error {
				entry, err := c.GetOrRefresh(gctx, v.ID, v.CategoryTags, v.Name)
				if err != nil {
					zap.L().Warn("cache: batch entry failed", zap.String("place_id", v.ID), zap.Error(err))
					return nil // isolate per-venue failures
				}
				mu.Lock()
				results[v.ID] = entry
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		// Inter-batch pause, skipped after the final batch.
		if end < len(toRefresh) && c.cfg.BatchPause() > 0 {
			timer := time.NewTimer(c.cfg.BatchPause())
			select {
			case <-ctx.Done():
				timer.Stop()
				return results, eris.Wrap(ctx.Err(), "cache: batch refresh")
			case <-timer.C:
			}
		}
	}

	return results, nil
}

// RecordCommunityFlag files a community report against a venue and bumps its
// flag count atomically. Enough not_nightlife reports block the venue
// outright. The score itself is reduced on the next classification, not here.
func (c *Cache) RecordCommunityFlag(ctx context.Context, placeID, reporterID string, flagType venue.FlagType, note string) error {
	if !flagType.Valid() {
		return eris.Errorf("cache: invalid flag type %q", flagType)
	}

	// A flag against a never-seen venue creates a minimal entry first.
	if _, err := c.store.GetClassification(ctx, placeID); eris.Is(err, store.ErrNotFound) {
		if err := c.store.UpsertClassification(ctx, &venue.Classification{PlaceID: placeID}); err != nil {
			return eris.Wrapf(err, "cache: create minimal entry %s", placeID)
		}
	} else if err != nil {
		return eris.Wrapf(err, "cache: read classification %s", placeID)
	}

	if err := c.store.InsertFlag(ctx, venue.Flag{
		PlaceID:    placeID,
		ReporterID: reporterID,
		Type:       flagType,
		Note:       note,
	}); err != nil {
		return err // ErrAlreadyReported passes through untouched
	}

	count, err := c.store.IncrementFlagCount(ctx, placeID)
	if err != nil {
		return eris.Wrapf(err, "cache: increment flag count %s", placeID)
	}

	if flagType == venue.FlagNotNightlife && c.cfg.BlockFlagThreshold > 0 && count >= c.cfg.BlockFlagThreshold {
		zap.L().Info("cache: venue blocked by community flags",
			zap.String("place_id", placeID), zap.Int("flags", count))
		if err := c.store.SetBlocked(ctx, placeID, true); err != nil {
			return eris.Wrapf(err, "cache: block venue %s", placeID)
		}
	}

	return nil
}

func toPeriods(oh *places.OpeningHours) []classify.Period {
	if oh == nil {
		return nil
	}
	out := make([]classify.Period, 0, len(oh.Periods))
	for _, p := range oh.Periods {
		cp := classify.Period{
			OpenDay:  p.Open.Day,
			OpenTime: p.Open.Time,
		}
		if p.Close != nil {
			cp.CloseDay = p.Close.Day
			cp.CloseTime = p.Close.Time
			cp.HasClose = true
		}
		out = append(out, cp)
	}
	return out
}

func reviewTexts(reviews []places.Review) []string {
	out := make([]string, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r.Text)
	}
	return out
}
