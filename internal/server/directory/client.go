// Package directory fetches identity records from the external user-listing
// API consumed by the reconciler.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
)

// User is a single element of the external listing.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

type listPage struct {
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Data       []User `json:"data"`
}

// Client is a read-only client for the listing endpoint. Failures of any
// kind (network, non-2xx, malformed body) surface as common.ErrorUpstream.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

func NewClient(baseURL string, logger logging.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// ListUsers walks the paginated listing in order and returns all elements.
// Single-page sources report total_pages=1 and cause exactly one request.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var result []User

	for page := 1; ; page++ {
		p, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		result = append(result, p.Data...)

		if page >= p.TotalPages {
			break
		}
	}

	c.logger.Info(ctx, "fetched directory listing", "users", len(result))

	return result, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) (*listPage, error) {
	url := c.baseURL + "/users?page=" + strconv.Itoa(page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUpstream, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", common.ErrorUpstream, resp.StatusCode)
	}

	p := &listPage{}
	if err := json.NewDecoder(resp.Body).Decode(p); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUpstream, err)
	}

	return p, nil
}
