package ytvideodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrVideoNotEmbeddable = errors.New("video is not embeddable")
)

type VideoData struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
	// Duration in seconds, zero when unknown.
	Duration int `json:"-"`
}

type Config struct {
	OEmbedURL string
	PageURL   string
	Timeout   time.Duration
}

type Client struct {
	hc        *http.Client
	oembedURL string
	pageURL   string
}

func NewClient(cfg Config) *Client {
	if cfg.OEmbedURL == "" {
		cfg.OEmbedURL = "https://www.youtube.com/oembed"
	}

	if cfg.PageURL == "" {
		cfg.PageURL = "https://www.youtube.com/watch"
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &Client{
		hc:        &http.Client{Timeout: cfg.Timeout},
		oembedURL: cfg.OEmbedURL,
		pageURL:   cfg.PageURL,
	}
}

// Get fetches display metadata via oEmbed and falls back to the watch page
// for videos that cannot be embedded. The page also provides the duration,
// which oEmbed lacks.
func (c *Client) Get(ctx context.Context, videoId string) (*VideoData, error) {
	videoData, err := c.getWithEmbed(ctx, videoId)
	if err != nil && !errors.Is(err, ErrVideoNotEmbeddable) {
		return nil, fmt.Errorf("failed to get video data with embed: %w", err)
	}

	pageData, pageErr := c.getFromPage(ctx, videoId)
	if videoData == nil {
		if pageErr != nil {
			return nil, fmt.Errorf("failed to get video data from page: %w", pageErr)
		}

		return pageData, nil
	}

	if pageErr == nil {
		videoData.Duration = pageData.Duration
	}

	return videoData, nil
}
