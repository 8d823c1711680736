package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/seowatch/internal/client/client"
	"github.com/dmitrijs2005/seowatch/internal/client/gateway"
	"github.com/dmitrijs2005/seowatch/internal/client/models"
	"github.com/dmitrijs2005/seowatch/internal/client/store"
	"github.com/dmitrijs2005/seowatch/internal/logging"
	"github.com/google/uuid"
)

// ContentService talks to the content collaborator on behalf of the current
// identity. The plan is always passed explicitly; the collaborator is never
// trusted to look it up.
type ContentService interface {
	Generate(ctx context.Context, platform, prompt string) (*models.GeneratedContentItem, error)
	// GenerateBatch generates one item per prompt. It stops at the first
	// failure and returns the items made before it.
	GenerateBatch(ctx context.Context, platform string, prompts []string) ([]models.GeneratedContentItem, error)
	Suggestions(ctx context.Context, rawURL string) ([]string, error)
	List(ctx context.Context) ([]models.GeneratedContentItem, error)
}

// MaxBatchPrompts bounds one GenerateBatch call.
const MaxBatchPrompts = 10

type contentService struct {
	store  *store.Store
	gw     gateway.Gateway
	client client.ContentClient
	log    logging.Logger
	now    func() time.Time
}

func NewContentService(st *store.Store, gw gateway.Gateway, cc client.ContentClient, log logging.Logger) ContentService {
	return &contentService{store: st, gw: gw, client: cc, log: log, now: nowUTC}
}

func (s *contentService) Generate(ctx context.Context, platform, prompt string) (*models.GeneratedContentItem, error) {
	identity, err := s.gated(ctx, models.FeatureContentGeneration)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, identity, platform, prompt)
}

func (s *contentService) GenerateBatch(ctx context.Context, platform string, prompts []string) ([]models.GeneratedContentItem, error) {
	identity, err := s.gated(ctx, models.FeatureBulkContent)
	if err != nil {
		return nil, err
	}

	var cleaned []string
	for _, p := range prompts {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	switch {
	case len(cleaned) == 0:
		return nil, ErrEmptyPrompt
	case len(cleaned) > MaxBatchPrompts:
		return nil, fmt.Errorf("%w: %d prompts, at most %d", ErrBatchTooLarge, len(cleaned), MaxBatchPrompts)
	}

	items := make([]models.GeneratedContentItem, 0, len(cleaned))
	for _, p := range cleaned {
		item, err := s.generate(ctx, identity, platform, p)
		if err != nil {
			return items, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (s *contentService) generate(ctx context.Context, identity *models.Identity, platform, prompt string) (*models.GeneratedContentItem, error) {
	platform = strings.TrimSpace(platform)
	prompt = strings.TrimSpace(prompt)
	if platform == "" || prompt == "" {
		return nil, ErrEmptyPrompt
	}

	text, err := s.client.Generate(ctx, platform, prompt, identity.Plan)
	if err != nil {
		return nil, err
	}

	item := models.GeneratedContentItem{
		ID:        uuid.NewString(),
		OwnerID:   identity.ID,
		Platform:  platform,
		Prompt:    prompt,
		Content:   text,
		CreatedAt: s.now(),
	}
	if err := s.gw.SaveContentItem(ctx, item); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "content generated", "id", item.ID, "platform", platform)
	return &item, nil
}

func (s *contentService) Suggestions(ctx context.Context, rawURL string) ([]string, error) {
	identity, err := s.gated(ctx, models.FeatureSuggestions)
	if err != nil {
		return nil, err
	}
	u, err := models.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	return s.client.Suggestions(ctx, u, identity.Plan)
}

func (s *contentService) List(ctx context.Context) ([]models.GeneratedContentItem, error) {
	identity, err := currentIdentity(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return s.gw.GetContentItems(ctx, identity.ID), nil
}

func (s *contentService) gated(ctx context.Context, f models.Feature) (*models.Identity, error) {
	identity, err := currentIdentity(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if !identity.Capabilities().Allows(f) {
		return nil, fmt.Errorf("%w: %s", ErrFeatureNotAvailable, f)
	}
	return identity, nil
}
