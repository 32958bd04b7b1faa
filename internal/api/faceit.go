package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cs2-tracker/internal/config"
	"cs2-tracker/internal/constants"

	"github.com/valyala/fasthttp"
)

const userAgent = "cs2-tracker"

type FaceitClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
}

func NewFaceitClient(cfg *config.Config) *FaceitClient {
	return &FaceitClient{
		apiKey:  cfg.FaceitAPIKey,
		baseURL: "https://open.faceit.com/data/v4",
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// GetLeaderboard fetches one page of the regional CS2 ranking. The limit is
// clamped to what the API accepts rather than rejected, so oversized pages
// from config still produce a usable request.
func (c *FaceitClient) GetLeaderboard(ctx context.Context, region string, offset, limit int) (*LeaderboardResponse, error) {
	limit = clamp(1, constants.MaxLeaderboardLimit, limit)
	url := fmt.Sprintf("%s/rankings/games/cs2/regions/%s?offset=%d&limit=%d", c.baseURL, region, offset, limit)
	return doRequest[LeaderboardResponse](ctx, c.client, url, "Bearer "+c.apiKey)
}

func (c *FaceitClient) GetProfile(ctx context.Context, playerID string) (*ProfileResponse, error) {
	url := fmt.Sprintf("%s/players/%s", c.baseURL, playerID)
	return doRequest[ProfileResponse](ctx, c.client, url, "Bearer "+c.apiKey)
}

func doRequest[T any](ctx context.Context, client *fasthttp.Client, url, authorization string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(userAgent)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("request failed: %d, %s", resp.StatusCode(), url)
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func clamp(lower, upper, value int) int {
	return max(lower, min(upper, value))
}

type LeaderboardResponse struct {
	Items []LeaderboardItem `json:"items"`
	Start int               `json:"start"`
	End   int               `json:"end"`
}

type LeaderboardItem struct {
	PlayerID       string `json:"player_id"`
	Nickname       string `json:"nickname"`
	Country        string `json:"country"`
	Position       int    `json:"position"`
	FaceitElo      int    `json:"faceit_elo"`
	GameSkillLevel int    `json:"game_skill_level"`
}

type ProfileResponse struct {
	PlayerID  string `json:"player_id"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	Country   string `json:"country"`
	SteamID64 string `json:"steam_id_64"`
	FaceitURL string `json:"faceit_url"`
}

// ResolvedFaceitURL substitutes the literal {lang} placeholder the profile
// API leaves in faceit_url.
func (p *ProfileResponse) ResolvedFaceitURL() string {
	return strings.ReplaceAll(p.FaceitURL, "{lang}", "en")
}
