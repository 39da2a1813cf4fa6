package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"altervalue/internal/cache"
	"altervalue/internal/model"
	"altervalue/internal/repository"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrNotCampaignOwner = errors.New("unauthorized: not campaign owner")
)

// CampaignService handles campaign lifecycle operations.
type CampaignService struct {
	campaignRepo repository.CampaignRepository
	responseRepo repository.ResponseRepository
	resultCache  *cache.ResultCache
	logger       *zap.Logger
}

// NewCampaignService creates a campaign service.
func NewCampaignService(
	campaignRepo repository.CampaignRepository,
	responseRepo repository.ResponseRepository,
	resultCache *cache.ResultCache,
	logger *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		responseRepo: responseRepo,
		resultCache:  resultCache,
		logger:       logger,
	}
}

// Create registers a new campaign for the consultant, in draft status, with
// a fresh public access code.
func (s *CampaignService) Create(ctx context.Context, consultantID string, campaign *model.Campaign) (*model.Campaign, error) {
	code, err := s.generateAccessCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access code: %w", err)
	}

	campaign.ConsultantID = consultantID
	campaign.AccessCode = code
	campaign.Status = model.CampaignStatusDraft
	if campaign.SurveyType == "" {
		campaign.SurveyType = "qvct"
	}
	campaign.Thresholds = campaign.Thresholds.Normalized()

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	s.logger.Info("campaign created",
		zap.String("campaignId", campaign.ID),
		zap.String("consultantId", consultantID),
		zap.String("surveyType", campaign.SurveyType))

	return campaign, nil
}

// Get returns the consultant's campaign by id.
func (s *CampaignService) Get(ctx context.Context, id, consultantID string) (*model.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if campaign.ConsultantID != consultantID {
		return nil, ErrNotCampaignOwner
	}
	return campaign, nil
}

// GetByAccessCode resolves a campaign from its public code. Only active
// campaigns accept respondents.
func (s *CampaignService) GetByAccessCode(ctx context.Context, code string) (*model.Campaign, error) {
	campaign, err := s.campaignRepo.GetByAccessCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// List returns all campaigns of the consultant.
func (s *CampaignService) List(ctx context.Context, consultantID string) ([]*model.Campaign, error) {
	return s.campaignRepo.GetByConsultant(ctx, consultantID)
}

// Update applies consultant edits. A change to company parameters or
// thresholds changes what a calculation would produce, so the cached
// result is invalidated.
func (s *CampaignService) Update(ctx context.Context, id, consultantID string, patch *model.Campaign) (*model.Campaign, error) {
	campaign, err := s.Get(ctx, id, consultantID)
	if err != nil {
		return nil, err
	}

	if patch.Title != "" {
		campaign.Title = patch.Title
	}
	if patch.CompanyName != "" {
		campaign.CompanyName = patch.CompanyName
	}
	if patch.TargetPopulation > 0 {
		campaign.TargetPopulation = patch.TargetPopulation
	}
	if patch.ActiveModules != nil {
		campaign.ActiveModules = patch.ActiveModules
	}
	if patch.Params != nil {
		campaign.Params = patch.Params
	}
	if patch.Thresholds != (model.AnonymityThresholds{}) {
		campaign.Thresholds = patch.Thresholds.Normalized()
	}

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}
	if err := s.resultCache.Invalidate(ctx, campaign.ID); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("campaignId", campaign.ID), zap.Error(err))
	}

	return campaign, nil
}

// SetStatus transitions the campaign lifecycle (draft -> active -> closed).
func (s *CampaignService) SetStatus(ctx context.Context, id, consultantID string, status model.CampaignStatus) (*model.Campaign, error) {
	campaign, err := s.Get(ctx, id, consultantID)
	if err != nil {
		return nil, err
	}

	switch {
	case campaign.Status == model.CampaignStatusDraft && status == model.CampaignStatusActive:
	case campaign.Status == model.CampaignStatusActive && status == model.CampaignStatusClosed:
	default:
		return nil, fmt.Errorf("invalid status transition %s -> %s", campaign.Status, status)
	}

	campaign.Status = status
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}

	s.logger.Info("campaign status changed",
		zap.String("campaignId", campaign.ID),
		zap.String("status", string(status)))

	return campaign, nil
}

// Delete removes the campaign, its responses and its cached result.
func (s *CampaignService) Delete(ctx context.Context, id, consultantID string) error {
	campaign, err := s.Get(ctx, id, consultantID)
	if err != nil {
		return err
	}

	if err := s.responseRepo.DeleteByCampaignID(ctx, campaign.ID); err != nil {
		return fmt.Errorf("failed to delete responses: %w", err)
	}
	if err := s.campaignRepo.Delete(ctx, campaign.ID); err != nil {
		return err
	}
	if err := s.resultCache.Invalidate(ctx, campaign.ID); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("campaignId", campaign.ID), zap.Error(err))
	}

	return nil
}

// generateAccessCode creates a 6-char alphanumeric code, retrying on the
// rare collision.
func (s *CampaignService) generateAccessCode(ctx context.Context) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		codeStr := string(code)

		existing, err := s.campaignRepo.GetByAccessCode(ctx, codeStr)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return codeStr, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique access code")
}
