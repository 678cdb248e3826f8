// Package cms publishes integration pages to the Strapi REST API.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"ruh-integration-pages/internal/models"
	"ruh-integration-pages/internal/transport"
	"ruh-integration-pages/pkg/logger"
)

const (
	DefaultPath    = "/api/v1/integrations"
	DefaultTimeout = 30 * time.Second
	errorBodyLimit = 200
)

// Publisher is what the pipeline needs from a CMS.
type Publisher interface {
	Publish(ctx context.Context, p models.PublishPayload) models.PublishResult
}

type Client struct {
	endpoint string
	token    string
	http     *transport.Client
	log      *logger.Logger
}

// New builds a client posting to baseURL+path. An empty token is allowed;
// requests are then sent unauthenticated.
func New(baseURL, path, token string, timeout time.Duration, log *logger.Logger) *Client {
	if path == "" {
		path = DefaultPath
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		token:    token,
		http:     transport.NewClient(timeout, 0, 0),
		log:      log,
	}
}

func (c *Client) Endpoint() string { return c.endpoint }

// Publish POSTs the payload as the request body, without a data envelope.
// Every failure is reported in the result; Publish never returns an error.
func (c *Client) Publish(ctx context.Context, p models.PublishPayload) models.PublishResult {
	body, err := json.Marshal(p)
	if err != nil {
		return models.PublishResult{Error: fmt.Sprintf("encode payload: %v", err)}
	}

	reqID := uuid.NewString()
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("X-Request-ID", reqID)
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	} else {
		c.log.Warnf("no CMS token configured, publishing %s without authentication", p.Name)
	}

	log := c.log.With("connector", p.Name, "request_id", reqID)
	log.Infof("publishing to %s", c.endpoint)

	resp, err := c.http.Do(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body), h)
	if err != nil {
		msg := describe(err)
		log.Errorf("publish failed: %s", msg)
		return models.PublishResult{Error: msg}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, transport.Snippet(resp.Body, errorBodyLimit))
		log.Warnf("CMS returned status %d", resp.StatusCode)
		return models.PublishResult{StatusCode: resp.StatusCode, Error: msg}
	}

	res := models.PublishResult{Success: true, StatusCode: resp.StatusCode}
	if json.Valid(resp.Body) {
		res.Data = json.RawMessage(resp.Body)
	} else if len(bytes.TrimSpace(resp.Body)) > 0 {
		log.Warnf("CMS accepted the page but returned a non-JSON body")
	}
	log.Infof("published in %s", resp.Elapsed.Round(time.Millisecond))
	return res
}

func describe(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "request timeout"
	case isConnRefused(err):
		return "connection refused: CMS server not running"
	default:
		return err.Error()
	}
}

func isConnRefused(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
