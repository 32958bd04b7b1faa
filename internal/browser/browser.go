package browser

import (
	"context"
	"fmt"
	"math/rand/v2"

	"cs2-tracker/internal/constants"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
}

// scoreboardJS collects the scoreboard as rows of text cells. The first cell
// of each row resolves to a stable player identifier when the profile anchor
// is present, the visible name otherwise; every other cell is trimmed text.
const scoreboardJS = `(() => {
	const rows = Array.from(document.querySelectorAll("app-scoreboard-table-row"));
	return rows.map((row) => {
		const cells = Array.from(row.querySelectorAll("td"));
		return cells.map((cell, i) => {
			if (i === 0) {
				const link = cell.querySelector("a[href*='/app/profile/']");
				if (link) {
					const href = link.getAttribute("href");
					if (href) {
						const id = href.split("/").pop();
						if (id) {
							return id;
						}
					}
				}
				const name = cell.querySelector(".text-truncate");
				if (name && name.textContent) {
					return name.textContent.trim();
				}
				return (cell.textContent || "").trim();
			}
			return (cell.textContent || "").trim();
		});
	});
})()`

// Session owns one headless browser and its single browsing context. The
// pipeline opens it before the leaderboard scan and closes it after the scan
// exits by any path; scrapers borrow it per call and must not retain it.
type Session struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	logger        zerolog.Logger
}

func NewSession(ctx context.Context, logger zerolog.Logger) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.NoSandbox,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(userAgents[rand.IntN(len(userAgents))]),
		chromedp.WindowSize(1280, 800),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Launch the browser now so a broken Chrome install fails the run up
	// front instead of on the first match.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	logger.Info().Msg("headless browser launched")
	return &Session{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		logger:        logger,
	}, nil
}

func (s *Session) Close() {
	s.browserCancel()
	s.allocCancel()
	s.logger.Info().Msg("headless browser closed")
}

// ScrapeMatch opens one tab on the match page, waits for the scoreboard table
// to attach and extracts its rows. The tab is always closed before returning,
// success or not; a long scan opens hundreds of pages and must not leak any.
func (s *Session) ScrapeMatch(ctx context.Context, matchURL string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	defer tabCancel()

	runCtx, cancel := context.WithTimeout(tabCtx, constants.NavigationTimeout)
	defer cancel()

	var rows [][]string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(matchURL),
		chromedp.WaitReady("table", chromedp.ByQuery),
		chromedp.Evaluate(scoreboardJS, &rows),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %w", matchURL, err)
	}

	s.logger.Debug().Str("match_url", matchURL).Int("rows", len(rows)).Msg("match scraped")
	return rows, nil
}
