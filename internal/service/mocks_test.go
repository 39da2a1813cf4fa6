package service

import (
	"context"
	"fmt"
	"sync"

	"altervalue/internal/model"
)

// mockCampaignRepo is an in-memory CampaignRepository.
type mockCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[string]*model.Campaign
	nextID    int
}

func newMockCampaignRepo() *mockCampaignRepo {
	return &mockCampaignRepo{campaigns: make(map[string]*model.Campaign)}
}

func (m *mockCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = fmt.Sprintf("camp%d", m.nextID)
	stored := *c
	m.campaigns[c.ID] = &stored
	return nil
}

func (m *mockCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (m *mockCampaignRepo) GetByAccessCode(_ context.Context, code string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.campaigns {
		if c.AccessCode == code {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockCampaignRepo) GetByConsultant(_ context.Context, consultantID string) ([]*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Campaign
	for _, c := range m.campaigns {
		if c.ConsultantID == consultantID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockCampaignRepo) Update(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *c
	m.campaigns[c.ID] = &stored
	return nil
}

func (m *mockCampaignRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.campaigns, id)
	return nil
}

// mockResponseRepo is an in-memory ResponseRepository keyed by
// (campaign, respondentHash).
type mockResponseRepo struct {
	mu        sync.Mutex
	responses map[string]model.Response
}

func newMockResponseRepo() *mockResponseRepo {
	return &mockResponseRepo{responses: make(map[string]model.Response)}
}

func (m *mockResponseRepo) key(campaignID, hash string) string {
	return campaignID + "/" + hash
}

func (m *mockResponseRepo) Upsert(_ context.Context, r *model.Response) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(r.CampaignID, r.RespondentHash)
	_, replaced := m.responses[k]
	m.responses[k] = *r
	return replaced, nil
}

func (m *mockResponseRepo) GetByCampaignID(_ context.Context, campaignID string) ([]model.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Response
	for _, r := range m.responses {
		if r.CampaignID == campaignID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockResponseRepo) CountByCampaignID(_ context.Context, campaignID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.responses {
		if r.CampaignID == campaignID {
			n++
		}
	}
	return n, nil
}

func (m *mockResponseRepo) ArchiveByCampaignID(_ context.Context, campaignID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, r := range m.responses {
		if r.CampaignID == campaignID {
			r.Archived = true
			m.responses[k] = r
		}
	}
	return nil
}

func (m *mockResponseRepo) DeleteByCampaignID(_ context.Context, campaignID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, r := range m.responses {
		if r.CampaignID == campaignID {
			delete(m.responses, k)
		}
	}
	return nil
}

// mockSchemaRepo returns a fixed schema, or nothing.
type mockSchemaRepo struct {
	schema *model.SurveySchema
}

func (m *mockSchemaRepo) GetBySurveyType(context.Context, string) (*model.SurveySchema, error) {
	return m.schema, nil
}

func (m *mockSchemaRepo) Upsert(_ context.Context, s *model.SurveySchema) error {
	m.schema = s
	return nil
}

// mockBroadcaster records broadcast calls.
type mockBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (m *mockBroadcaster) BroadcastToCampaign(campaignID, msgType string, _ interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, campaignID+":"+msgType)
}

func (m *mockBroadcaster) DisconnectCampaign(string) {}

func (m *mockBroadcaster) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...)
}
