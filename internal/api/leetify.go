package api

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

type LeetifyClient struct {
	baseURL  string
	matchURL string
	client   *fasthttp.Client
}

func NewLeetifyClient() *LeetifyClient {
	return &LeetifyClient{
		baseURL:  "https://api.cs-prod.leetify.com/api",
		matchURL: "https://leetify.com/app/match-details/",
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         20 * time.Second,
			WriteTimeout:        20 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// GetProfile resolves a steam ID to the player's recent game history. The
// endpoint is unauthenticated but slow, so callers pass a bounded context.
func (c *LeetifyClient) GetProfile(ctx context.Context, steamID64 string) (*LeetifyProfileResponse, error) {
	url := fmt.Sprintf("%s/profile/id/%s", c.baseURL, steamID64)
	return doRequest[LeetifyProfileResponse](ctx, c.client, url, "")
}

// MatchURL builds the public match-details page for a game ID.
func (c *LeetifyClient) MatchURL(gameID string) string {
	return c.matchURL + gameID
}

type LeetifyProfileResponse struct {
	IsSensitiveDataVisible bool          `json:"isSensitiveDataVisible"`
	Games                  []LeetifyGame `json:"games"`
}

type LeetifyGame struct {
	GameID string `json:"gameId"`
}
