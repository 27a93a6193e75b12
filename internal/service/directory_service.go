package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hrm_backend/internal/config"
	"hrm_backend/internal/model"
	"hrm_backend/internal/util"
	"strings"

	"github.com/go-resty/resty/v2"
)

// DirectoryClient reads user records from the external auth service. It has
// no cache and no retries; a failed call surfaces as UpstreamUnavailable.
type DirectoryClient struct {
	client      *resty.Client
	useInternal bool
}

func NewDirectoryClient(cfg config.DirectoryConfig) *DirectoryClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.AuthServiceURL, "/")).
		SetTimeout(cfg.Timeout()).
		SetHeader("Accept", "application/json")
	if cfg.InternalToken != "" {
		client.SetHeader("X-Internal-Token", cfg.InternalToken)
	}
	return &DirectoryClient{client: client, useInternal: cfg.UseInternal}
}

func (d *DirectoryClient) path() string {
	if d.useInternal {
		return "/api/internal/users"
	}
	return "/api/users"
}

// directoryEnvelope accepts both a bare array and {"data": [...]}.
type directoryEnvelope struct {
	Data []model.DirectoryUser `json:"data"`
}

// ListUsers fetches every user known to the auth service. bearer is
// forwarded on the public endpoint.
func (d *DirectoryClient) ListUsers(ctx context.Context, bearer string) ([]model.DirectoryUser, error) {
	req := d.client.R().SetContext(ctx)
	if !d.useInternal && bearer != "" {
		req.SetAuthToken(bearer)
	}

	resp, err := req.Get(d.path())
	if err != nil {
		return nil, util.Wrap(util.ErrDirectoryUnavailable, err)
	}
	if resp.IsError() {
		return nil, util.Wrap(util.ErrDirectoryUnavailable, fmt.Errorf("directory returned %s", resp.Status()))
	}

	body := bytes.TrimSpace(resp.Body())
	var users []model.DirectoryUser
	if bytes.HasPrefix(body, []byte("[")) {
		err = json.Unmarshal(body, &users)
	} else {
		var env directoryEnvelope
		err = json.Unmarshal(body, &env)
		users = env.Data
	}
	if err != nil {
		return nil, util.Wrap(util.ErrDirectoryUnavailable, fmt.Errorf("decode directory response: %w", err))
	}
	return users, nil
}
