// Package metrics collects per-request evaluation measurements: crawl
// timing and harvest ratios per depth and for cache hits.
package metrics

import (
	"fmt"
	"sort"
)

// bucket counts pages processed and pages deemed relevant.
type bucket struct {
	relevant int
	total    int
}

func (b bucket) ratio() float64 {
	if b.total == 0 {
		return 0
	}
	return float64(b.relevant) / float64(b.total)
}

func (b bucket) report() map[string]any {
	return map[string]any{
		"relevant_pages": b.relevant,
		"total_pages":    b.total,
		"harvest_ratio":  b.ratio(),
	}
}

// HarvestMeter tracks how many processed pages cleared the relevance bar
// at each crawl depth, plus a separate bucket for cache-served results.
// Mutated only from the scheduler goroutine.
type HarvestMeter struct {
	depths map[int]*bucket
	cache  bucket
}

// NewHarvestMeter creates an empty meter.
func NewHarvestMeter() *HarvestMeter {
	return &HarvestMeter{depths: make(map[int]*bucket)}
}

// RecordPage counts one processed page at the given depth, relevant or
// not.
func (m *HarvestMeter) RecordPage(depth int, relevant bool) {
	b, ok := m.depths[depth]
	if !ok {
		b = &bucket{}
		m.depths[depth] = b
	}
	b.total++
	if relevant {
		b.relevant++
	}
}

// RecordCache counts one cache-served result.
func (m *HarvestMeter) RecordCache(relevant bool) {
	m.cache.total++
	if relevant {
		m.cache.relevant++
	}
}

// DepthRatio returns the harvest ratio at one depth, zero when nothing
// was processed there.
func (m *HarvestMeter) DepthRatio(depth int) float64 {
	if b, ok := m.depths[depth]; ok {
		return b.ratio()
	}
	return 0
}

// Report assembles the harvest metrics block of the response: one entry
// per crawl depth, a cumulative entry per depth, the cache bucket, and
// the overall totals.
func (m *HarvestMeter) Report() map[string]any {
	depths := make([]int, 0, len(m.depths))
	for d := range m.depths {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	perDepth := make(map[string]any, len(depths))
	cumulativeByDepth := make(map[string]any, len(depths))
	var cumulative bucket
	for _, d := range depths {
		b := m.depths[d]
		key := fmt.Sprintf("depth_%d", d)
		perDepth[key] = b.report()
		cumulative.relevant += b.relevant
		cumulative.total += b.total
		cumulativeByDepth[key] = cumulative.report()
	}

	overall := bucket{
		relevant: cumulative.relevant + m.cache.relevant,
		total:    cumulative.total + m.cache.total,
	}

	return map[string]any{
		"per_depth":  perDepth,
		"cumulative": cumulativeByDepth,
		"cache":      m.cache.report(),
		"overall":    overall.report(),
	}
}
