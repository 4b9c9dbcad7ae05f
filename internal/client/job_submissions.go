package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
	"github.com/fivetwenty-io/bullhorn-client/internal/http"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// JobSubmissionsClient implements bullhorn.JobSubmissionsClient.
type JobSubmissionsClient struct {
	httpClient *http.Client
	now        func() time.Time
}

// NewJobSubmissionsClient creates a new job submissions client.
func NewJobSubmissionsClient(httpClient *http.Client) *JobSubmissionsClient {
	return &JobSubmissionsClient{
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Create implements bullhorn.JobSubmissionsClient.Create. Status defaults
// to "New Lead" and dateWebResponse to the current time.
func (c *JobSubmissionsClient) Create(ctx context.Context, submission *bullhorn.JobSubmission) (*bullhorn.ChangeResult, error) {
	if submission == nil || submission.Candidate == nil || submission.Candidate.ID <= 0 {
		return nil, bullhorn.ErrCandidateRequired
	}

	if submission.JobOrder == nil || submission.JobOrder.ID <= 0 {
		return nil, bullhorn.ErrJobOrderRequired
	}

	body := *submission
	body.Candidate = &bullhorn.EntityRef{ID: submission.Candidate.ID}
	body.JobOrder = &bullhorn.EntityRef{ID: submission.JobOrder.ID}

	if body.Status == "" {
		body.Status = constants.DefaultSubmissionStatus
	}

	if body.DateWebResponse == 0 {
		body.DateWebResponse = c.now().UnixMilli()
	}

	resp, err := c.httpClient.Put(ctx, constants.PathEntity+constants.EntityJobSubmission, &body)
	if err != nil {
		return nil, classify("create", constants.EntityJobSubmission, err)
	}

	var result bullhorn.ChangeResult

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, classify("create", constants.EntityJobSubmission, fmt.Errorf("parsing change result: %w", err))
	}

	return &result, nil
}
