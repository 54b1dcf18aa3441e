package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/damoang/notion-gateway/internal/common"
	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/damoang/notion-gateway/internal/notionfmt"
	"github.com/damoang/notion-gateway/internal/repository"
	"github.com/damoang/notion-gateway/internal/tenant"
	"github.com/damoang/notion-gateway/pkg/cache"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// TenantService handles tenant administration
type TenantService struct {
	tenantRepo  *repository.TenantRepository
	contentRepo *repository.ContentRepository
	cache       cache.Service
	logger      zerolog.Logger
}

// NewTenantService creates a new TenantService. c may be nil.
func NewTenantService(tenantRepo *repository.TenantRepository, contentRepo *repository.ContentRepository, c cache.Service, logger zerolog.Logger) *TenantService {
	return &TenantService{
		tenantRepo:  tenantRepo,
		contentRepo: contentRepo,
		cache:       c,
		logger:      logger,
	}
}

// TenantList is one page of tenants
type TenantList struct {
	Tenants []domain.TenantResponse `json:"tenants"`
	Total   int64                   `json:"total"`
	Limit   int                     `json:"limit"`
	Offset  int                     `json:"offset"`
}

// ListTenants lists tenants by status, newest first
func (s *TenantService) ListTenants(ctx context.Context, status string, limit, offset int) (*TenantList, error) {
	if status == "" {
		status = domain.TenantStatusActive
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	tenants, total, err := s.tenantRepo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	responses := make([]domain.TenantResponse, len(tenants))
	for i := range tenants {
		responses[i] = *s.toResponse(&tenants[i])
	}
	return &TenantList{Tenants: responses, Total: total, Limit: limit, Offset: offset}, nil
}

// GetTenant returns a tenant of any status together with content stats
func (s *TenantService) GetTenant(ctx context.Context, tenantID string) (*domain.TenantResponse, error) {
	t, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("get tenant %s: %w", tenantID, err)
	}
	if t == nil {
		return nil, common.ErrTenantNotFound
	}

	stats, err := s.contentRepo.CountBlocks(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count blocks of %s: %w", tenantID, err)
	}

	resp := s.toResponse(t)
	resp.Stats = stats
	return resp, nil
}

// GetBySubdomain returns the active tenant owning subdomain
func (s *TenantService) GetBySubdomain(ctx context.Context, subdomain string) (*domain.TenantResponse, error) {
	t, err := s.tenantRepo.FindActiveBySubdomain(ctx, strings.ToLower(subdomain))
	if err != nil {
		return nil, fmt.Errorf("get tenant by subdomain %s: %w", subdomain, err)
	}
	if t == nil {
		return nil, common.ErrTenantNotFound
	}
	return s.toResponse(t), nil
}

// GetByDomain returns the active tenant owning a custom domain
func (s *TenantService) GetByDomain(ctx context.Context, host string) (*domain.TenantResponse, error) {
	t, err := s.tenantRepo.FindActiveByCustomDomain(ctx, strings.ToLower(host))
	if err != nil {
		return nil, fmt.Errorf("get tenant by domain %s: %w", host, err)
	}
	if t == nil {
		return nil, common.ErrTenantNotFound
	}
	return s.toResponse(t), nil
}

// CreateTenant provisions a tenant with its root page, blog collection,
// default view and welcome post in one transaction
func (s *TenantService) CreateTenant(ctx context.Context, req *domain.CreateTenantRequest) (*domain.CreateTenantResult, error) {
	subdomain := strings.TrimSpace(req.Subdomain)
	title := strings.TrimSpace(req.Title)
	if subdomain == "" || title == "" {
		return nil, fmt.Errorf("subdomain and title are required: %w", common.ErrInvalidInput)
	}
	if !subdomainPattern.MatchString(subdomain) {
		return nil, fmt.Errorf("invalid subdomain format %q: %w", subdomain, common.ErrInvalidInput)
	}
	if tenant.IsReservedSubdomain(subdomain) {
		return nil, fmt.Errorf("subdomain %q is reserved: %w", subdomain, common.ErrInvalidInput)
	}

	existing, err := s.tenantRepo.FindBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, fmt.Errorf("check subdomain: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("subdomain %q already exists: %w", subdomain, common.ErrConflict)
	}

	config, err := marshalConfig(req.Config)
	if err != nil {
		return nil, err
	}

	t := &domain.Tenant{
		ID:          uuid.New().String(),
		Subdomain:   subdomain,
		RootPageID:  uuid.New().String(),
		Status:      domain.TenantStatusActive,
		Title:       title,
		Description: req.Description,
		Author:      orElse(req.Author, defaultAuthor),
		Theme:       orElse(req.Theme, defaultTheme),
		Config:      config,
	}
	if req.CustomDomain != nil && *req.CustomDomain != "" {
		host := strings.ToLower(*req.CustomDomain)
		t.CustomDomain = &host
	}

	if err := s.provision(ctx, t); err != nil {
		return nil, err
	}

	return &domain.CreateTenantResult{
		ID:         t.ID,
		Subdomain:  t.Subdomain,
		RootPageID: t.RootPageID,
		Title:      t.Title,
		Message:    "Tenant created successfully",
	}, nil
}

// EnsureDefaultTenant provisions the tenant that unresolved requests fall
// back to. It is a no-op when the tenant already exists.
func (s *TenantService) EnsureDefaultTenant(ctx context.Context) (bool, error) {
	existing, err := s.tenantRepo.FindByID(ctx, domain.DefaultTenantID)
	if err != nil {
		return false, fmt.Errorf("get default tenant: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	t := &domain.Tenant{
		ID:         domain.DefaultTenantID,
		Subdomain:  domain.DefaultTenantID,
		RootPageID: uuid.New().String(),
		Status:     domain.TenantStatusActive,
		Title:      defaultTenantTitle,
		Author:     defaultAuthor,
		Theme:      defaultTheme,
		Config:     "{}",
	}
	if err := s.provision(ctx, t); err != nil {
		return false, err
	}
	return true, nil
}

func (s *TenantService) provision(ctx context.Context, t *domain.Tenant) error {
	content, err := provisionContent(t.ID, t.RootPageID, t.Title, time.Now())
	if err != nil {
		return fmt.Errorf("build initial content: %w", err)
	}
	if err := s.tenantRepo.CreateWithContent(ctx, t, content.blocks, content.collections, content.views); err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}

	s.logger.Info().
		Str("tenant_id", t.ID).
		Str("subdomain", t.Subdomain).
		Msg("tenant provisioned")
	return nil
}

// UpdateTenant applies the non-nil fields of req
func (s *TenantService) UpdateTenant(ctx context.Context, tenantID string, req *domain.UpdateTenantRequest) error {
	t, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("get tenant %s: %w", tenantID, err)
	}
	if t == nil {
		return common.ErrTenantNotFound
	}

	updates := map[string]interface{}{}
	setIf := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	setIf("title", req.Title)
	setIf("description", req.Description)
	setIf("author", req.Author)
	setIf("theme", req.Theme)
	setIf("avatar_url", req.AvatarURL)
	if req.CustomDomain != nil {
		if *req.CustomDomain == "" {
			updates["custom_domain"] = nil
		} else {
			updates["custom_domain"] = strings.ToLower(*req.CustomDomain)
		}
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.TenantStatusActive, domain.TenantStatusInactive, domain.TenantStatusDeleted:
			updates["status"] = *req.Status
		default:
			return fmt.Errorf("invalid status %q: %w", *req.Status, common.ErrInvalidInput)
		}
	}
	if req.Config != nil {
		config, err := marshalConfig(req.Config)
		if err != nil {
			return err
		}
		updates["config"] = config
	}

	if len(updates) == 0 {
		return fmt.Errorf("no fields to update: %w", common.ErrInvalidInput)
	}

	if err := s.tenantRepo.Update(ctx, tenantID, updates); err != nil {
		return fmt.Errorf("update tenant %s: %w", tenantID, err)
	}

	s.invalidate(ctx, t)
	if host, ok := updates["custom_domain"].(string); ok {
		s.invalidateHost(ctx, host)
	}
	return nil
}

// DeleteTenant marks a tenant deleted; its content stays in place
func (s *TenantService) DeleteTenant(ctx context.Context, tenantID string) error {
	t, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("get tenant %s: %w", tenantID, err)
	}
	if t == nil {
		return common.ErrTenantNotFound
	}

	ok, err := s.tenantRepo.SoftDelete(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("delete tenant %s: %w", tenantID, err)
	}
	if !ok {
		return common.ErrTenantNotFound
	}

	s.invalidate(ctx, t)
	s.logger.Info().Str("tenant_id", tenantID).Msg("tenant deleted")
	return nil
}

// invalidate drops cached lookups and query results of t
func (s *TenantService) invalidate(ctx context.Context, t *domain.Tenant) {
	if s.cache == nil {
		return
	}
	host := ""
	if t.CustomDomain != nil {
		host = *t.CustomDomain
	}
	if err := s.cache.InvalidateTenant(ctx, t.Subdomain, host); err != nil {
		s.logger.Warn().Err(err).Str("tenant_id", t.ID).Msg("tenant cache invalidation failed")
	}
	if err := s.cache.InvalidateQueries(ctx, t.ID); err != nil {
		s.logger.Warn().Err(err).Str("tenant_id", t.ID).Msg("query cache invalidation failed")
	}
}

func (s *TenantService) invalidateHost(ctx context.Context, host string) {
	if s.cache == nil || host == "" {
		return
	}
	if err := s.cache.InvalidateTenant(ctx, "", host); err != nil {
		s.logger.Warn().Err(err).Str("host", host).Msg("tenant cache invalidation failed")
	}
}

func (s *TenantService) toResponse(t *domain.Tenant) *domain.TenantResponse {
	config := map[string]any{}
	if t.Config != "" {
		parsed, err := notionfmt.SafeParse(t.Config, map[string]any{})
		if err != nil {
			s.logger.Warn().Err(err).Str("tenant_id", t.ID).Msg("malformed tenant config")
		}
		config = parsed
	}
	return &domain.TenantResponse{
		ID:           t.ID,
		Subdomain:    t.Subdomain,
		CustomDomain: t.CustomDomain,
		RootPageID:   t.RootPageID,
		Status:       t.Status,
		Title:        t.Title,
		Description:  t.Description,
		Author:       t.Author,
		Theme:        t.Theme,
		AvatarURL:    t.AvatarURL,
		Config:       config,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func marshalConfig(cfg map[string]any) (string, error) {
	if cfg == nil {
		return "{}", nil
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", common.ErrInvalidInput)
	}
	return string(b), nil
}

func orElse(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
