package client

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
	"github.com/fivetwenty-io/bullhorn-client/internal/http"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// FilesClient implements bullhorn.FilesClient.
type FilesClient struct {
	httpClient *http.Client
}

// NewFilesClient creates a new files client.
func NewFilesClient(httpClient *http.Client) *FilesClient {
	return &FilesClient{
		httpClient: httpClient,
	}
}

// Attach implements bullhorn.FilesClient.Attach.
func (c *FilesClient) Attach(ctx context.Context, entity string, entityID int, file *bullhorn.FileAttachment) (*bullhorn.FileResult, error) {
	if entity == "" {
		return nil, bullhorn.ErrEntityRequired
	}

	if entityID <= 0 {
		return nil, bullhorn.ErrInvalidEntityID
	}

	if file == nil || len(file.Content) == 0 {
		return nil, bullhorn.ErrFileContentRequired
	}

	body := *file
	if body.FileType == "" {
		body.FileType = constants.DefaultFileType
	}

	if body.FileExtension == "" && body.Name != "" {
		body.FileExtension = strings.TrimPrefix(filepath.Ext(body.Name), ".")
	}

	path := constants.PathFile + entity + "/" + strconv.Itoa(entityID)

	resp, err := c.httpClient.Put(ctx, path, &body)
	if err != nil {
		return nil, classify("attach file to", entity, err)
	}

	var result bullhorn.FileResult

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, classify("attach file to", entity, fmt.Errorf("parsing file result: %w", err))
	}

	return &result, nil
}
