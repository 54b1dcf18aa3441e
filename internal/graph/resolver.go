package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/damoang/notion-gateway/internal/common"
	"github.com/damoang/notion-gateway/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxDepth    = 10
	DefaultConcurrency = 8

	// ids per GetBlocksByIDs call
	batchSize = 100
)

// ContentStore is the tenant-scoped read side of the content tables.
// Single-row getters return nil, nil when the row is absent.
type ContentStore interface {
	GetBlock(ctx context.Context, tenantID, id string) (*domain.Block, error)
	GetBlocksByIDs(ctx context.Context, tenantID string, ids []string) ([]domain.Block, error)
	ListChildren(ctx context.Context, tenantID, parentID, parentTable string, types ...string) ([]domain.Block, error)
	GetCollection(ctx context.Context, tenantID, id string) (*domain.Collection, error)
	GetCollectionsByIDs(ctx context.Context, tenantID string, ids []string) ([]domain.Collection, error)
	GetCollectionsByMemberBlock(ctx context.Context, tenantID, blockID string) ([]domain.Collection, error)
	GetViewsByCollectionIDs(ctx context.Context, tenantID string, ids []string) ([]domain.CollectionView, error)
}

// Options tunes resolution. Zero values fall back to the defaults.
type Options struct {
	MaxDepth    int
	Concurrency int
}

// Resolved is the de-duplicated node set of one resolution. Blocks are in
// breadth-first order.
type Resolved struct {
	Blocks      []domain.Block
	Collections []domain.Collection
	Views       []domain.CollectionView
}

// Nodes flattens the result for the record map assembler
func (r *Resolved) Nodes() []domain.Node {
	nodes := make([]domain.Node, 0, len(r.Blocks)+len(r.Collections)+len(r.Views))
	for i := range r.Blocks {
		nodes = append(nodes, &r.Blocks[i])
	}
	for i := range r.Collections {
		nodes = append(nodes, &r.Collections[i])
	}
	for i := range r.Views {
		nodes = append(nodes, &r.Views[i])
	}
	return nodes
}

// Len returns the total node count
func (r *Resolved) Len() int {
	return len(r.Blocks) + len(r.Collections) + len(r.Views)
}

// Resolver expands a root id into the content graph needed to render it
type Resolver struct {
	store ContentStore
	opts  Options
}

func NewResolver(store ContentStore, opts Options) *Resolver {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Resolver{store: store, opts: opts}
}

// MaxDepth returns the configured default depth bound
func (r *Resolver) MaxDepth() int {
	return r.opts.MaxDepth
}

// ResolveRoot walks the graph under rootID level by level. The root is depth 0
// and blocks at depth >= maxDepth are left out. maxDepth <= 0 uses the
// configured default.
//
// A collection_view_page root also pulls in the member pages of the
// collections it names; members sit at depth 1 so their sub-graphs are bound
// by maxDepth-1.
func (r *Resolver) ResolveRoot(ctx context.Context, tenantID, rootID string, maxDepth int) (*Resolved, error) {
	start := time.Now()
	if maxDepth <= 0 {
		maxDepth = r.opts.MaxDepth
	}

	root, err := r.store.GetBlock(ctx, tenantID, rootID)
	if err != nil {
		return nil, fmt.Errorf("fetch root %s: %w", rootID, err)
	}
	if root == nil || root.TenantID != tenantID || !root.IsAlive() {
		return nil, fmt.Errorf("block %s: %w", rootID, common.ErrNotFound)
	}

	w := newWalk(tenantID)
	w.add(*root)

	var (
		rootCollections []domain.Collection
		members         []domain.Block
	)
	if root.Type == domain.BlockTypeCollectionViewPage {
		rootCollections, err = r.store.GetCollectionsByIDs(ctx, tenantID, root.ChildIDs())
		if err != nil {
			return nil, fmt.Errorf("fetch collections of %s: %w", rootID, err)
		}
		if maxDepth > 1 {
			for _, coll := range rootCollections {
				pages, err := r.store.ListChildren(ctx, tenantID, coll.ID, domain.ParentTableCollection, domain.BlockTypePage)
				if err != nil {
					return nil, fmt.Errorf("list members of %s: %w", coll.ID, err)
				}
				members = append(members, pages...)
			}
		}
	}

	next := root.ChildIDs()
	for depth := 1; depth < maxDepth; depth++ {
		level := w.claim(next)

		var fetched []domain.Block
		if len(level) > 0 {
			fetched, err = r.fetchBlocks(ctx, tenantID, level)
			if err != nil {
				return nil, err
			}
		}
		if depth == 1 {
			for _, m := range members {
				if w.claimOne(m.ID) {
					fetched = append(fetched, m)
				}
			}
		}
		if len(fetched) == 0 {
			break
		}

		next = next[:0:0]
		for _, b := range fetched {
			if w.add(b) {
				next = append(next, b.ChildIDs()...)
			}
		}
	}

	res, err := r.attachCollections(ctx, tenantID, w.blocks, rootCollections)
	if err != nil {
		return nil, err
	}

	resolveDuration.WithLabelValues(modeRoot).Observe(time.Since(start).Seconds())
	resolvedNodes.WithLabelValues(modeRoot).Observe(float64(res.Len()))
	return res, nil
}

// ResolveByIDs fetches exactly the requested blocks without recursing.
// Duplicates collapse, request order is kept and missing ids are skipped.
func (r *Resolver) ResolveByIDs(ctx context.Context, tenantID string, ids []string) (*Resolved, error) {
	start := time.Now()

	w := newWalk(tenantID)
	wanted := w.claim(ids)
	if len(wanted) > 0 {
		fetched, err := r.fetchBlocks(ctx, tenantID, wanted)
		if err != nil {
			return nil, err
		}
		for _, b := range fetched {
			w.add(b)
		}
	}

	res := &Resolved{Blocks: w.blocks}
	resolveDuration.WithLabelValues(modeIDs).Observe(time.Since(start).Seconds())
	resolvedNodes.WithLabelValues(modeIDs).Observe(float64(res.Len()))
	return res, nil
}

// fetchBlocks loads ids in parallel batches. The result follows ids order;
// ids with no alive row are dropped.
func (r *Resolver) fetchBlocks(ctx context.Context, tenantID string, ids []string) ([]domain.Block, error) {
	batches := chunk(ids, batchSize)
	results := make([][]domain.Block, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			blocks, err := r.store.GetBlocksByIDs(gctx, tenantID, batch)
			if err != nil {
				return fmt.Errorf("fetch blocks: %w", err)
			}
			results[i] = blocks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Block, len(ids))
	for _, batch := range results {
		for _, b := range batch {
			byID[b.ID] = b
		}
	}
	out := make([]domain.Block, 0, len(byID))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// attachCollections adds every collection that parents a resolved block, the
// collections named by the root, and the views of all of them.
func (r *Resolver) attachCollections(ctx context.Context, tenantID string, blocks []domain.Block, known []domain.Collection) (*Resolved, error) {
	res := &Resolved{Blocks: blocks}

	seen := make(map[string]struct{})
	for _, c := range known {
		if c.TenantID != tenantID {
			continue
		}
		if _, ok := seen[c.ID]; !ok {
			seen[c.ID] = struct{}{}
			res.Collections = append(res.Collections, c)
		}
	}

	var parents []string
	for _, b := range blocks {
		if b.ParentTable != domain.ParentTableCollection || b.ParentID == nil {
			continue
		}
		if _, ok := seen[*b.ParentID]; ok {
			continue
		}
		seen[*b.ParentID] = struct{}{}
		parents = append(parents, *b.ParentID)
	}
	if len(parents) > 0 {
		colls, err := r.store.GetCollectionsByIDs(ctx, tenantID, parents)
		if err != nil {
			return nil, fmt.Errorf("fetch parent collections: %w", err)
		}
		for _, c := range colls {
			if c.TenantID == tenantID {
				res.Collections = append(res.Collections, c)
			}
		}
	}

	if len(res.Collections) == 0 {
		return res, nil
	}
	collIDs := make([]string, len(res.Collections))
	for i, c := range res.Collections {
		collIDs[i] = c.ID
	}
	views, err := r.store.GetViewsByCollectionIDs(ctx, tenantID, collIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch views: %w", err)
	}
	for _, v := range views {
		if v.TenantID == tenantID {
			res.Views = append(res.Views, v)
		}
	}
	return res, nil
}

// walk tracks visited ids and the blocks emitted so far
type walk struct {
	tenantID string
	visited  map[string]struct{}
	emitted  map[string]struct{}
	blocks   []domain.Block
}

func newWalk(tenantID string) *walk {
	return &walk{
		tenantID: tenantID,
		visited:  make(map[string]struct{}),
		emitted:  make(map[string]struct{}),
	}
}

// claim returns the ids not seen before, in order, and marks them visited
func (w *walk) claim(ids []string) []string {
	var out []string
	for _, id := range ids {
		if w.claimOne(id) {
			out = append(out, id)
		}
	}
	return out
}

func (w *walk) claimOne(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := w.visited[id]; ok {
		return false
	}
	w.visited[id] = struct{}{}
	return true
}

// add emits b once. Rows of another tenant or tombstones are refused.
func (w *walk) add(b domain.Block) bool {
	if b.TenantID != w.tenantID || !b.IsAlive() {
		return false
	}
	if _, ok := w.emitted[b.ID]; ok {
		return false
	}
	w.visited[b.ID] = struct{}{}
	w.emitted[b.ID] = struct{}{}
	w.blocks = append(w.blocks, b)
	return true
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
