// ABOUTME: Rate-limited, session-authenticated Peloton API client.
// ABOUTME: Pages archived rides and fetches per-ride detail with playlists.
package peloton

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harperreed/pelosync/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	listPathFormat   = "/api/v2/ride/archived?browse_category=%s&limit=%d&page=%d"
	detailPathFormat = "/api/ride/%s/details"
)

// Client talks to the Peloton REST API. Every request waits on a fixed-rate
// limiter; there is no retry and no adaptive backoff.
type Client struct {
	baseURL  string
	category string
	sessions *SessionStore
	http     *http.Client
	token    string

	pageLimiter   *rate.Limiter
	detailLimiter *rate.Limiter
	log           zerolog.Logger
}

// NewClient builds a client. pageDelay and detailDelay are the minimum
// spacing between listing calls and detail calls respectively.
func NewClient(baseURL, category string, sessions *SessionStore, pageDelay, detailDelay time.Duration, log zerolog.Logger) *Client {
	if pageDelay <= 0 {
		pageDelay = 2 * time.Second
	}
	if detailDelay <= 0 {
		detailDelay = time.Second
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		category:      category,
		sessions:      sessions,
		http:          &http.Client{Timeout: 30 * time.Second},
		pageLimiter:   rate.NewLimiter(rate.Every(pageDelay), 1),
		detailLimiter: rate.NewLimiter(rate.Every(detailDelay), 1),
		log:           log.With().Str("component", "peloton").Logger(),
	}
}

// Authenticate resolves the session token up front so auth failures are
// surfaced before any paging starts. Fatal on failure.
func (c *Client) Authenticate(ctx context.Context) error {
	tok, err := c.sessions.Token(ctx)
	if err != nil {
		return err
	}
	c.token = tok
	return nil
}

// listResponse is the wire shape of the archived-ride listing endpoint.
type listResponse struct {
	Data []models.WorkoutSummary `json:"data"`
}

// ListWorkouts fetches one page of workout summaries. hasMore is false when
// the page is empty or shorter than pageSize (short page means done).
func (c *Client) ListWorkouts(ctx context.Context, page, pageSize int) ([]models.WorkoutSummary, bool, error) {
	if err := c.pageLimiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	url := c.baseURL + fmt.Sprintf(listPathFormat, c.category, pageSize, page)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, false, fmt.Errorf("list page %d: %w", page, err)
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, false, fmt.Errorf("decode page %d: %w", page, err)
	}

	hasMore := len(resp.Data) > 0 && len(resp.Data) >= pageSize
	return resp.Data, hasMore, nil
}

// detailResponse mirrors the nested detail payload. Fields the sync core
// does not consume stay inside the retained raw body.
type detailResponse struct {
	Ride struct {
		ID                  string  `json:"id"`
		Title               string  `json:"title"`
		Duration            int     `json:"duration"`
		ImageURL            string  `json:"image_url"`
		Description         string  `json:"description"`
		FitnessDiscipline   string  `json:"fitness_discipline"`
		ScheduledStartTime  int64   `json:"scheduled_start_time"`
		DifficultyRatingAvg float64 `json:"difficulty_rating_avg"`
		Instructor          *struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			ImageURL string `json:"image_url"`
		} `json:"instructor"`
	} `json:"ride"`
	Playlist struct {
		Songs []struct {
			Title   string `json:"title"`
			Artists []struct {
				ArtistName string `json:"artist_name"`
				ImageURL   string `json:"image_url"`
			} `json:"artists"`
		} `json:"songs"`
	} `json:"playlist"`
}

// FetchDetail fetches the full detail/playlist payload for one workout.
// Any failure is returned as an error for the caller to skip and count;
// a detail fetch never aborts the run.
func (c *Client) FetchDetail(ctx context.Context, id string) (*models.WorkoutDetail, error) {
	if err := c.detailLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := c.baseURL + fmt.Sprintf(detailPathFormat, id)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch detail %s: %w", id, err)
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode detail %s: %w", id, err)
	}
	if resp.Ride.ID == "" {
		return nil, fmt.Errorf("detail %s: missing ride id", id)
	}

	detail := &models.WorkoutDetail{
		ID:                  resp.Ride.ID,
		Title:               resp.Ride.Title,
		DurationSeconds:     resp.Ride.Duration,
		Description:         resp.Ride.Description,
		FitnessDiscipline:   resp.Ride.FitnessDiscipline,
		ImageURL:            resp.Ride.ImageURL,
		DifficultyRatingAvg: resp.Ride.DifficultyRatingAvg,
		ScheduledStart:      resp.Ride.ScheduledStartTime,
		Raw:                 json.RawMessage(body),
	}
	if inst := resp.Ride.Instructor; inst != nil && inst.ID != "" {
		detail.Instructor = &models.Instructor{
			ID:       inst.ID,
			Name:     inst.Name,
			ImageURL: inst.ImageURL,
		}
	}

	for i, song := range resp.Playlist.Songs {
		names := make([]string, 0, len(song.Artists))
		imageURL := ""
		for _, artist := range song.Artists {
			if artist.ArtistName != "" {
				names = append(names, artist.ArtistName)
			}
		}
		if len(song.Artists) > 0 {
			imageURL = song.Artists[0].ImageURL
		}
		detail.Songs = append(detail.Songs, models.Song{
			WorkoutID:     detail.ID,
			Title:         song.Title,
			ArtistNames:   strings.Join(names, ", "),
			ImageURL:      imageURL,
			PlaylistOrder: i,
		})
	}

	return detail, nil
}

// get performs an authenticated GET and returns the response body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Referer", "https://members.onepeloton.com/")
	req.Header.Set("Origin", "https://members.onepeloton.com")
	req.Header.Set("Cookie", "peloton_session_id="+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
