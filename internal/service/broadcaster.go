package service

// Broadcaster pushes live campaign events to connected consultants over
// WebSocket (interface here avoids an import cycle with the transport layer).
type Broadcaster interface {
	BroadcastToCampaign(campaignID string, msgType string, payload interface{})
	DisconnectCampaign(campaignID string)
}
