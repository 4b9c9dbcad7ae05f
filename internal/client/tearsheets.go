package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
	"github.com/fivetwenty-io/bullhorn-client/internal/http"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// TearsheetsClient implements bullhorn.TearsheetsClient.
type TearsheetsClient struct {
	httpClient *http.Client
}

// NewTearsheetsClient creates a new tearsheets client.
func NewTearsheetsClient(httpClient *http.Client) *TearsheetsClient {
	return &TearsheetsClient{
		httpClient: httpClient,
	}
}

// AddCandidate implements bullhorn.TearsheetsClient.AddCandidate.
func (c *TearsheetsClient) AddCandidate(ctx context.Context, tearsheetID, candidateID int) (*bullhorn.ChangeResult, error) {
	if tearsheetID <= 0 || candidateID <= 0 {
		return nil, bullhorn.ErrInvalidEntityID
	}

	path := fmt.Sprintf("%s%s/%d/candidates/%d", constants.PathEntity, constants.EntityTearsheet, tearsheetID, candidateID)

	resp, err := c.httpClient.Put(ctx, path, nil)
	if err != nil {
		return nil, classify("add candidate to", constants.EntityTearsheet, err)
	}

	var result bullhorn.ChangeResult

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, classify("add candidate to", constants.EntityTearsheet, fmt.Errorf("parsing change result: %w", err))
	}

	return &result, nil
}
