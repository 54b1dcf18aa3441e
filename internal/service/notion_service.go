package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/damoang/notion-gateway/internal/common"
	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/damoang/notion-gateway/internal/graph"
	"github.com/damoang/notion-gateway/internal/recordmap"
	"github.com/damoang/notion-gateway/internal/tenant"
	"github.com/damoang/notion-gateway/pkg/cache"
	"github.com/rs/zerolog"
)

// NotionService answers the document-graph read protocol. The tenant comes
// from the request context (tenant.IDFromContext).
type NotionService struct {
	store     graph.ContentStore
	resolver  *graph.Resolver
	directory tenant.Directory
	assembler *recordmap.Assembler
	cache     cache.Service
	logger    zerolog.Logger
}

// NewNotionService creates a new NotionService. c may be nil.
func NewNotionService(store graph.ContentStore, resolver *graph.Resolver, directory tenant.Directory, c cache.Service, logger zerolog.Logger) *NotionService {
	s := &NotionService{
		store:     store,
		resolver:  resolver,
		directory: directory,
		cache:     c,
		logger:    logger,
	}
	s.assembler = recordmap.NewAssembler(s.reportParseError)
	return s
}

// RecordRequest names one record for SyncRecordValues
type RecordRequest struct {
	ID    string `json:"id"`
	Table string `json:"table"`
}

// SyncResult is the syncRecordValues response
type SyncResult struct {
	RecordMap *recordmap.RecordMap `json:"recordMap"`
	Results   []any                `json:"results"`
}

// QueryResult is the queryCollection response
type QueryResult struct {
	RecordMap *recordmap.RecordMap `json:"recordMap"`
	Result    CollectionQuery      `json:"result"`
}

// CollectionQuery lists the member pages of a collection
type CollectionQuery struct {
	Type               string   `json:"type"`
	BlockIDs           []string `json:"blockIds"`
	AggregationResults []any    `json:"aggregationResults"`
	Total              int      `json:"total"`
}

// GetPage resolves the graph under pageID
func (s *NotionService) GetPage(ctx context.Context, pageID string) (*recordmap.RecordMap, error) {
	if pageID == "" {
		return nil, fmt.Errorf("pageId is required: %w", common.ErrInvalidInput)
	}
	tenantID := tenant.IDFromContext(ctx)

	res, err := s.resolver.ResolveRoot(ctx, tenantID, pageID, 0)
	if err != nil {
		return nil, err
	}

	rm := s.assembler.Assemble(res.Nodes()...)
	s.attachSpace(ctx, rm, tenantID)
	return rm, nil
}

// GetBlocks returns exactly the requested blocks
func (s *NotionService) GetBlocks(ctx context.Context, ids []string) (*recordmap.RecordMap, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("blockIds is required: %w", common.ErrInvalidInput)
	}
	tenantID := tenant.IDFromContext(ctx)

	res, err := s.resolver.ResolveByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	if len(res.Blocks) == 0 {
		return nil, fmt.Errorf("blocks %v: %w", ids, common.ErrNotFound)
	}
	return s.assembler.Assemble(res.Nodes()...), nil
}

// SyncRecordValues fetches single records by table. Unknown tables and
// missing records are skipped.
func (s *NotionService) SyncRecordValues(ctx context.Context, reqs []RecordRequest) (*SyncResult, error) {
	tenantID := tenant.IDFromContext(ctx)
	out := &SyncResult{RecordMap: recordmap.New(), Results: []any{}}

	for _, req := range reqs {
		if req.ID == "" {
			continue
		}
		switch domain.Kind(req.Table) {
		case domain.KindBlock:
			b, err := s.store.GetBlock(ctx, tenantID, req.ID)
			if err != nil {
				return nil, fmt.Errorf("sync block %s: %w", req.ID, err)
			}
			if b == nil {
				continue
			}
			rec := s.assembler.Block(b)
			out.RecordMap.Block[b.ID] = rec
			out.Results = append(out.Results, rec)
		case domain.KindCollection:
			c, err := s.store.GetCollection(ctx, tenantID, req.ID)
			if err != nil {
				return nil, fmt.Errorf("sync collection %s: %w", req.ID, err)
			}
			if c == nil {
				continue
			}
			rec := s.assembler.Collection(c)
			out.RecordMap.Collection[c.ID] = rec
			out.Results = append(out.Results, rec)
		case domain.KindNotionUser:
			for id, rec := range s.assembler.Users([]string{req.ID}) {
				out.RecordMap.NotionUser[id] = rec
				out.Results = append(out.Results, rec)
			}
		case domain.KindSpace:
			if req.ID != tenantID {
				continue
			}
			if s.attachSpace(ctx, out.RecordMap, tenantID) {
				out.Results = append(out.Results, out.RecordMap.Space[tenantID])
			}
		default:
			s.logger.Debug().Str("table", req.Table).Str("id", req.ID).Msg("unsupported record table")
		}
	}
	return out, nil
}

// QueryCollection lists a collection's alive member pages, most recently
// edited first. Result ids are cached per tenant, collection and view.
func (s *NotionService) QueryCollection(ctx context.Context, collectionID, viewID string) (*QueryResult, error) {
	if collectionID == "" {
		return nil, fmt.Errorf("collectionId is required: %w", common.ErrInvalidInput)
	}
	tenantID := tenant.IDFromContext(ctx)

	coll, err := s.store.GetCollection(ctx, tenantID, collectionID)
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", collectionID, err)
	}
	if coll == nil {
		return nil, fmt.Errorf("collection %s: %w", collectionID, common.ErrNotFound)
	}

	members, ids, err := s.collectionMembers(ctx, tenantID, collectionID, viewID)
	if err != nil {
		return nil, err
	}

	views, err := s.store.GetViewsByCollectionIDs(ctx, tenantID, []string{collectionID})
	if err != nil {
		return nil, fmt.Errorf("get views of %s: %w", collectionID, err)
	}

	nodes := make([]domain.Node, 0, len(members)+1+len(views))
	for i := range members {
		nodes = append(nodes, &members[i])
	}
	nodes = append(nodes, coll)
	for i := range views {
		nodes = append(nodes, &views[i])
	}

	return &QueryResult{
		RecordMap: s.assembler.Assemble(nodes...),
		Result: CollectionQuery{
			Type:               recordmap.DefaultViewType,
			BlockIDs:           ids,
			AggregationResults: []any{},
			Total:              len(ids),
		},
	}, nil
}

// collectionMembers returns member blocks and their ids in display order
func (s *NotionService) collectionMembers(ctx context.Context, tenantID, collectionID, viewID string) ([]domain.Block, []string, error) {
	if s.cache != nil {
		var cached []string
		err := s.cache.GetQuery(ctx, tenantID, collectionID, viewID, &cached)
		switch {
		case err == nil:
			queryCacheTotal.WithLabelValues("hit").Inc()
			res, err := s.resolver.ResolveByIDs(ctx, tenantID, cached)
			if err != nil {
				return nil, nil, err
			}
			return res.Blocks, blockIDs(res.Blocks), nil
		case errors.Is(err, cache.ErrMiss):
			queryCacheTotal.WithLabelValues("miss").Inc()
		default:
			s.logger.Debug().Err(err).Str("collection_id", collectionID).Msg("query cache read failed")
		}
	}

	members, err := s.store.ListChildren(ctx, tenantID, collectionID, domain.ParentTableCollection)
	if err != nil {
		return nil, nil, fmt.Errorf("list members of %s: %w", collectionID, err)
	}
	ids := blockIDs(members)

	if s.cache != nil {
		if err := s.cache.SetQuery(ctx, tenantID, collectionID, viewID, ids); err != nil {
			s.logger.Debug().Err(err).Str("collection_id", collectionID).Msg("query cache write failed")
		}
	}
	return members, ids, nil
}

// GetUsers returns placeholder profiles for ids
func (s *NotionService) GetUsers(_ context.Context, ids []string) *recordmap.RecordMap {
	rm := recordmap.New()
	rm.NotionUser = s.assembler.Users(ids)
	return rm
}

// attachSpace adds the tenant's space record when the tenant exists.
// Lookup failures only cost the space record.
func (s *NotionService) attachSpace(ctx context.Context, rm *recordmap.RecordMap, tenantID string) bool {
	if s.directory == nil {
		return false
	}
	t, err := s.directory.FindByID(ctx, tenantID)
	if err != nil {
		s.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("space lookup failed")
		return false
	}
	if t == nil {
		return false
	}
	rm.Space[t.ID] = s.assembler.Space(t)
	return true
}

func (s *NotionService) reportParseError(kind domain.Kind, id, field string, err error) {
	parseFallbacksTotal.WithLabelValues(string(kind), field).Inc()
	s.logger.Warn().
		Err(err).
		Str("kind", string(kind)).
		Str("id", id).
		Str("field", field).
		Msg("malformed column replaced by default")
}

func blockIDs(blocks []domain.Block) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	return ids
}
