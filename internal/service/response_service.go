package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"altervalue/internal/cache"
	"altervalue/internal/model"
	"altervalue/internal/repository"
)

var (
	ErrCampaignNotActive  = errors.New("campaign is not accepting responses")
	ErrMissingRespondent  = errors.New("respondent hash is required")
	ErrEmptyAnswerPayload = errors.New("answers payload is empty")
)

// ResponseService handles anonymous response intake.
type ResponseService struct {
	campaignRepo repository.CampaignRepository
	responseRepo repository.ResponseRepository
	resultCache  *cache.ResultCache
	broadcaster  Broadcaster
	logger       *zap.Logger
}

// NewResponseService creates a response service. The broadcaster is wired
// later, once the WebSocket hub exists.
func NewResponseService(
	campaignRepo repository.CampaignRepository,
	responseRepo repository.ResponseRepository,
	resultCache *cache.ResultCache,
	logger *zap.Logger,
) *ResponseService {
	return &ResponseService{
		campaignRepo: campaignRepo,
		responseRepo: responseRepo,
		resultCache:  resultCache,
		logger:       logger,
	}
}

// SetBroadcaster wires the WebSocket broadcaster.
func (s *ResponseService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Submit stores one respondent's submission for the campaign behind the
// access code. Resubmission by the same respondent replaces the previous
// one. Every accepted submission invalidates the campaign's cached result
// and notifies listening consultants.
func (s *ResponseService) Submit(ctx context.Context, accessCode string, response *model.Response) (*model.Response, error) {
	if response.RespondentHash == "" {
		return nil, ErrMissingRespondent
	}
	if len(response.Answers) == 0 {
		return nil, ErrEmptyAnswerPayload
	}

	campaign, err := s.campaignRepo.GetByAccessCode(ctx, accessCode)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	if campaign.Status != model.CampaignStatusActive {
		return nil, ErrCampaignNotActive
	}

	response.CampaignID = campaign.ID
	response.SubmittedAt = time.Now()
	response.Archived = false

	replaced, err := s.responseRepo.Upsert(ctx, response)
	if err != nil {
		return nil, err
	}

	if err := s.resultCache.Invalidate(ctx, campaign.ID); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("campaignId", campaign.ID), zap.Error(err))
	}

	count, err := s.responseRepo.CountByCampaignID(ctx, campaign.ID)
	if err != nil {
		s.logger.Warn("response count failed", zap.String("campaignId", campaign.ID), zap.Error(err))
		count = 0
	}

	s.logger.Info("response submitted",
		zap.String("campaignId", campaign.ID),
		zap.Bool("replaced", replaced),
		zap.Int64("total", count))

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToCampaign(campaign.ID, "participation_update", map[string]interface{}{
			"campaignId":    campaign.ID,
			"responseCount": count,
		})
	}

	return response, nil
}

// Count returns the number of stored responses for a consultant's campaign.
func (s *ResponseService) Count(ctx context.Context, campaignID, consultantID string) (int64, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if campaign == nil {
		return 0, ErrCampaignNotFound
	}
	if campaign.ConsultantID != consultantID {
		return 0, ErrNotCampaignOwner
	}
	return s.responseRepo.CountByCampaignID(ctx, campaignID)
}
