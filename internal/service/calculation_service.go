package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"altervalue/internal/cache"
	"altervalue/internal/engine"
	"altervalue/internal/model"
	"altervalue/internal/repository"
)

// ResultEnvelope wraps a calculation result with its cache provenance.
type ResultEnvelope struct {
	Result          *model.CalculationResult `json:"result"`
	FromCache       bool                     `json:"fromCache"`
	CacheAgeSeconds int                      `json:"cacheAgeSeconds,omitempty"`
}

// CalculationService orchestrates a campaign calculation: it loads the
// campaign, schema and responses, serves from cache when the response set
// has not changed, and otherwise runs the engine and caches the outcome.
type CalculationService struct {
	campaignRepo repository.CampaignRepository
	responseRepo repository.ResponseRepository
	schemaRepo   repository.SchemaRepository
	resultCache  *cache.ResultCache
	engine       *engine.Engine
	logger       *zap.Logger
}

// NewCalculationService creates a calculation service.
func NewCalculationService(
	campaignRepo repository.CampaignRepository,
	responseRepo repository.ResponseRepository,
	schemaRepo repository.SchemaRepository,
	resultCache *cache.ResultCache,
	logger *zap.Logger,
) *CalculationService {
	return &CalculationService{
		campaignRepo: campaignRepo,
		responseRepo: responseRepo,
		schemaRepo:   schemaRepo,
		resultCache:  resultCache,
		engine:       engine.New(),
		logger:       logger,
	}
}

// Results computes (or serves from cache) the gated results of a campaign.
// force bypasses the cache read but still refreshes the slot.
func (s *CalculationService) Results(ctx context.Context, campaignID, consultantID string, force bool) (*ResultEnvelope, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if campaign.ConsultantID != consultantID {
		return nil, ErrNotCampaignOwner
	}

	responses, err := s.responseRepo.GetByCampaignID(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	fingerprint := responseFingerprint(responses)
	if !force {
		if cached, age, ok := s.resultCache.Get(ctx, campaignID, fingerprint); ok {
			return &ResultEnvelope{
				Result:          cached,
				FromCache:       true,
				CacheAgeSeconds: int(age.Seconds()),
			}, nil
		}
	}

	schema, err := s.loadSchema(ctx, campaign.SurveyType)
	if err != nil {
		return nil, err
	}

	result := s.engine.Compute(engine.Input{
		CampaignID:       campaignID,
		Responses:        responses,
		Schema:           schema,
		Params:           campaign.Params,
		TargetPopulation: campaign.TargetPopulation,
		ActiveModules:    campaign.ActiveModules,
		Thresholds:       campaign.Thresholds,
	})

	if err := s.resultCache.Put(ctx, campaignID, fingerprint, result); err != nil {
		s.logger.Warn("result cache write failed", zap.String("campaignId", campaignID), zap.Error(err))
	}

	s.logger.Info("campaign computed",
		zap.String("campaignId", campaignID),
		zap.Int("responses", result.ResponseCount),
		zap.Bool("confidential", result.IsConfidential))

	return &ResultEnvelope{Result: result}, nil
}

// Invalidate drops the campaign's cached result after an ownership check.
func (s *CalculationService) Invalidate(ctx context.Context, campaignID, consultantID string) error {
	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign == nil {
		return ErrCampaignNotFound
	}
	if campaign.ConsultantID != consultantID {
		return ErrNotCampaignOwner
	}
	return s.resultCache.Invalidate(ctx, campaignID)
}

// loadSchema prefers the stored schema for the survey type and falls back
// to the bundled QVCT default.
func (s *CalculationService) loadSchema(ctx context.Context, surveyType string) (*model.SurveySchema, error) {
	schema, err := s.schemaRepo.GetBySurveyType(ctx, surveyType)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	if schema == nil {
		schema = model.DefaultQVCTSchema()
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema for %s: %w", surveyType, err)
	}
	return schema, nil
}

// responseFingerprint hashes the identity of the stored response set so a
// cached result can be checked against it. Order-independent: entries are
// sorted before hashing.
func responseFingerprint(responses []model.Response) string {
	entries := make([]string, 0, len(responses))
	for _, r := range responses {
		entries = append(entries, fmt.Sprintf("%s|%s|%d|%t|%t",
			r.RespondentHash, r.SubmittedAt.UTC().Format("2006-01-02T15:04:05.000"), len(r.Answers), r.Complete, r.Archived))
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
