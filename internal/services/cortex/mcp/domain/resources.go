package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/cortex.space/internal/services/cortex/engine"
)

const campaignURIPrefix = "campaign://"

// CampaignResourceTemplate defines the campaign snapshot resource.
func CampaignResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "campaign_snapshot",
		Title:       "Campaign",
		Description: "Full state of a campaign. URI format: campaign://{campaign_id}",
		MIMEType:    "application/json",
		URITemplate: campaignURIPrefix + "{campaign_id}",
	}
}

// CampaignResourceHandler reads a campaign snapshot as JSON.
func CampaignResourceHandler(eng *engine.Engine) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("campaign ID is required; use URI format campaign://{campaign_id}")
		}
		uri := req.Params.URI
		campaignID, err := parseCampaignURI(uri)
		if err != nil {
			return nil, fmt.Errorf("parse campaign ID from URI: %w", err)
		}

		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		snap, err := eng.Snapshot(runCtx, campaignID)
		if err != nil {
			return nil, toolError(err)
		}
		data, err := json.MarshalIndent(snapshotView(snap), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal campaign: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}

func parseCampaignURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, campaignURIPrefix) {
		return "", fmt.Errorf("URI must start with %q", campaignURIPrefix)
	}
	campaignID := strings.TrimSpace(strings.TrimPrefix(uri, campaignURIPrefix))
	if campaignID == "" {
		return "", fmt.Errorf("campaign ID is required in URI")
	}
	if strings.ContainsAny(campaignID, "/?#") {
		return "", fmt.Errorf("URI must not contain path segments, query parameters, or fragments")
	}
	return campaignID, nil
}
