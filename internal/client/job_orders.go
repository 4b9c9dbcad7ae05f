package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
	"github.com/fivetwenty-io/bullhorn-client/internal/http"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// JobOrdersClient implements bullhorn.JobOrdersClient.
type JobOrdersClient struct {
	httpClient *http.Client
}

// NewJobOrdersClient creates a new job orders client.
func NewJobOrdersClient(httpClient *http.Client) *JobOrdersClient {
	return &JobOrdersClient{
		httpClient: httpClient,
	}
}

// ListOpen implements bullhorn.JobOrdersClient.ListOpen.
func (c *JobOrdersClient) ListOpen(ctx context.Context, opts *bullhorn.ListOptions) ([]bullhorn.JobOrder, error) {
	resp, err := c.httpClient.Get(ctx, constants.PathQuery+constants.EntityJobOrder, openJobsQuery(opts))
	if err != nil {
		return nil, classify("list open", constants.EntityJobOrder, err)
	}

	var list bullhorn.ListResponse[bullhorn.JobOrder]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, classify("list open", constants.EntityJobOrder, fmt.Errorf("parsing job orders: %w", err))
	}

	if list.Data == nil {
		return []bullhorn.JobOrder{}, nil
	}

	return list.Data, nil
}

func openJobsQuery(opts *bullhorn.ListOptions) url.Values {
	fields := constants.AllFields
	count := constants.DefaultOpenJobsCount
	start := 0
	orderBy := ""

	if opts != nil {
		if len(opts.Fields) > 0 {
			fields = strings.Join(opts.Fields, ",")
		}

		if opts.Count > 0 {
			count = opts.Count
		}

		start = opts.Start
		orderBy = opts.OrderBy
	}

	query := url.Values{
		"fields": {fields},
		"where":  {constants.OpenJobsWhere},
		"count":  {strconv.Itoa(count)},
	}

	if start > 0 {
		query.Set("start", strconv.Itoa(start))
	}

	if orderBy != "" {
		query.Set("orderBy", orderBy)
	}

	return query
}
