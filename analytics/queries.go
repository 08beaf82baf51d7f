package analytics

import (
	"context"
	"sort"
	"strings"

	"codingcats/api/models"
)

const defaultTopPagesLimit = 10

func (t *Tracker) UniqueVisitors(ctx context.Context) int {
	return UniqueVisitors(t.Records(ctx))
}

func (t *Tracker) TotalPageViews(ctx context.Context) int {
	return len(t.Records(ctx))
}

func (t *Tracker) VisitorsByDevice(ctx context.Context) models.Breakdown {
	return VisitorsByDevice(t.Records(ctx))
}

func (t *Tracker) VisitorsByBrowser(ctx context.Context) models.Breakdown {
	return VisitorsByBrowser(t.Records(ctx))
}

func (t *Tracker) VisitorsByReferrer(ctx context.Context) models.Breakdown {
	return VisitorsByReferrer(t.Records(ctx))
}

// VisitorsByCountry only sees records that were enriched with a country; without a country
// resolver it is always empty.
func (t *Tracker) VisitorsByCountry(ctx context.Context) models.Breakdown {
	return VisitorsByCountry(t.Records(ctx))
}

func (t *Tracker) TopPages(ctx context.Context, limit int) []models.TopPathResult {
	return TopPages(t.Records(ctx), limit)
}

func (t *Tracker) Summary(ctx context.Context) models.VisitSummary {
	return Summarize(t.Records(ctx), defaultTopPagesLimit)
}

func UniqueVisitors(records []models.VisitRecord) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.PseudoUserID] = struct{}{}
	}
	return len(seen)
}

func VisitorsByDevice(records []models.VisitRecord) models.Breakdown {
	return countBy(records, func(r models.VisitRecord) string { return string(r.DeviceClass) })
}

func VisitorsByBrowser(records []models.VisitRecord) models.Breakdown {
	return countBy(records, func(r models.VisitRecord) string { return string(r.BrowserName) })
}

func VisitorsByReferrer(records []models.VisitRecord) models.Breakdown {
	return countBy(records, referrerKey)
}

func VisitorsByCountry(records []models.VisitRecord) models.Breakdown {
	return countBy(records, countryKey)
}

// TopPages ranks paths by view count; ties keep first-seen order.
func TopPages(records []models.VisitRecord, limit int) []models.TopPathResult {
	return rankPaths(countBy(records, pathKey), limit)
}

// Summarize computes every aggregate in one scan of records.
func Summarize(records []models.VisitRecord, topLimit int) models.VisitSummary {
	visitors := make(map[string]struct{}, len(records))
	var devices, browsers, referrers, countries, paths tally
	for _, r := range records {
		visitors[r.PseudoUserID] = struct{}{}
		devices.add(string(r.DeviceClass))
		browsers.add(string(r.BrowserName))
		referrers.add(referrerKey(r))
		countries.add(countryKey(r))
		paths.add(pathKey(r))
	}
	return models.VisitSummary{
		UniqueVisitors: len(visitors),
		TotalPageViews: len(records),
		ByDevice:       devices.breakdown(),
		ByBrowser:      browsers.breakdown(),
		ByReferrer:     referrers.breakdown(),
		ByCountry:      countries.breakdown(),
		TopPages:       rankPaths(paths.breakdown(), topLimit),
	}
}

func rankPaths(byPath models.Breakdown, limit int) []models.TopPathResult {
	if limit <= 0 {
		limit = defaultTopPagesLimit
	}
	sort.SliceStable(byPath, func(i, j int) bool { return byPath[i].Count > byPath[j].Count })
	if len(byPath) > limit {
		byPath = byPath[:limit]
	}
	results := make([]models.TopPathResult, 0, len(byPath))
	for _, e := range byPath {
		results = append(results, models.TopPathResult{PagePath: e.Key, Count: e.Count})
	}
	return results
}

func referrerKey(r models.VisitRecord) string {
	if ref := strings.TrimSpace(r.Referrer); ref != "" {
		return ref
	}
	return models.DirectReferrer
}

func countryKey(r models.VisitRecord) string { return strings.TrimSpace(r.Country) }

func pathKey(r models.VisitRecord) string { return r.Path }

// countBy tallies records per key in first-seen order. Empty keys are skipped.
func countBy(records []models.VisitRecord, key func(models.VisitRecord) string) models.Breakdown {
	var t tally
	for _, r := range records {
		t.add(key(r))
	}
	return t.breakdown()
}

type tally struct {
	entries models.Breakdown
	index   map[string]int
}

func (t *tally) add(k string) {
	if k == "" {
		return
	}
	if i, ok := t.index[k]; ok {
		t.entries[i].Count++
		return
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[k] = len(t.entries)
	t.entries = append(t.entries, models.BreakdownEntry{Key: k, Count: 1})
}

func (t *tally) breakdown() models.Breakdown {
	if t.entries == nil {
		return models.Breakdown{}
	}
	return t.entries
}
