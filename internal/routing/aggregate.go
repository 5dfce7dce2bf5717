package routing

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aarondill/TaraBomSheets/internal/catalog"
)

// OrphanWarning is attached to results created for ITT parent keys missing from the catalog
const OrphanWarning = "ParentKey not in production items"

// Store is the reference data the expansion pipeline reads
type Store interface {
	Lookup
	Consumption(parentKey string) []catalog.ConsumptionRecord
}

// Expand runs the per-item pipeline: components, classification, route
// resolution and stage numbering. It returns nil when the item yields no
// components, no stages and no warnings. Expand only reads store, so calls
// for different items may run concurrently.
func Expand(store Store, item catalog.CatalogItem) *Result {
	records := store.Consumption(item.PartNumber)
	components := make([]ComponentItem, 0, len(records))
	for _, rec := range records {
		components = append(components, ComponentItem{Line: Line{
			ParentKey: rec.ParentKey,
			ItemCode:  rec.ItemCode,
			Quantity:  rec.Quantity,
			Warehouse: Warehouse,
		}})
	}

	class := Classify(item, components)
	stages, warnings := Resolve(store, item, class)

	if len(components) == 0 && len(stages) == 0 && len(warnings) == 0 {
		return nil
	}

	stagedStages, stagedItems := AssignStageIDs(stages, components)
	return &Result{
		ParentKey: item.PartNumber,
		Warnings:  warnings,
		Items:     stagedItems,
		Stages:    stagedStages,
	}
}

// DuplicateKeyError reports a catalog row whose part number was already seen.
// The later row is discarded.
type DuplicateKeyError struct {
	Item  catalog.CatalogItem
	First catalog.CatalogItem
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate parent key %q at items row %d (first seen at row %d)",
		e.Item.PartNumber, e.Item.Line, e.First.Line)
}

// Report is the outcome of one aggregation
type Report struct {
	// Results are in aggregation order: catalog order, then orphan parents in
	// order of first appearance in the ITT table.
	Results    []*Result
	Duplicates []*DuplicateKeyError
	// Items is the number of catalog rows processed, duplicates included.
	Items int
	// Orphans is the number of ITT records merged without a catalog item.
	Orphans int

	index map[string]*Result
}

// Lookup returns the result for a parent key
func (r *Report) Lookup(parentKey string) (*Result, bool) {
	res, ok := r.index[parentKey]
	return res, ok
}

// WarningCount returns the number of warnings across all results
func (r *Report) WarningCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Warnings)
	}
	return n
}

func (r *Report) add(res *Result) {
	r.Results = append(r.Results, res)
	r.index[res.ParentKey] = res
}

// Aggregator drives the expansion pipeline over a whole catalog
type Aggregator struct {
	logger  *zap.Logger
	workers int
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithWorkers sets how many items are expanded concurrently
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithLogger sets the logger used for duplicate key diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAggregator creates an aggregator; by default it expands one item at a time
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		logger:  zap.NewNop(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run expands every catalog item, then merges orphaned ITT records.
//
// Expansion may run on several workers, but results are merged in catalog
// order on the calling goroutine, so a repeated part number always loses to
// its first row and the output does not depend on scheduling.
func (a *Aggregator) Run(ctx context.Context, store *catalog.Store) (*Report, error) {
	items := store.Items()

	expanded, err := a.expandAll(ctx, store, items)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Items: len(items),
		index: make(map[string]*Result, len(items)),
	}

	seen := make(map[string]catalog.CatalogItem, len(items))
	for i, item := range items {
		if first, ok := seen[item.PartNumber]; ok {
			dup := &DuplicateKeyError{Item: item, First: first}
			report.Duplicates = append(report.Duplicates, dup)
			a.logger.Warn("Discarding duplicate catalog row",
				zap.String("parent_key", item.PartNumber),
				zap.Int("row", item.Line),
				zap.Int("first_row", first.Line))
			continue
		}
		seen[item.PartNumber] = item

		if expanded[i] != nil {
			report.add(expanded[i])
		}
	}

	for _, rec := range store.Orphans() {
		res, ok := report.Lookup(rec.ParentKey)
		if !ok {
			res = &Result{
				ParentKey: rec.ParentKey,
				Warnings:  []string{OrphanWarning},
			}
			report.add(res)
		}
		res.Items = append(res.Items, Staged{
			LineItem: ComponentItem{Line: Line{
				ParentKey: rec.ParentKey,
				ItemCode:  rec.ItemCode,
				Quantity:  rec.Quantity,
				Warehouse: Warehouse,
			}},
			StageID: Unstaged,
		})
		report.Orphans++
	}

	return report, nil
}

func (a *Aggregator) expandAll(ctx context.Context, store *catalog.Store, items []catalog.CatalogItem) ([]*Result, error) {
	expanded := make([]*Result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			expanded[i] = Expand(store, item)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// A cancelled parent stops the loop above without any goroutine failing.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return expanded, nil
}
