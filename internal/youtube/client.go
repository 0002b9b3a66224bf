// Package youtube wraps the platform's Data API: listing a channel's recent
// uploads, fetching top-level comment threads, and changing a comment's
// moderation status. Errors are returned to the caller; the pipeline owns
// the fail-open policy.
package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/tubesweep/tubesweep/internal/models"
)

const (
	maxRecentVideos     = 5
	maxCommentsPerVideo = 10
)

// TokenSourceProvider supplies OAuth credentials for moderation calls, which
// the platform does not accept on a plain API key.
type TokenSourceProvider interface {
	TokenSource(ctx context.Context, settings models.Settings) (oauth2.TokenSource, error)
}

type Client struct {
	moderationStatus string
	limiter          *rate.Limiter
	auth             TokenSourceProvider
}

// New builds a client. moderationStatus is the status applied to flagged
// comments. auth may be nil, in which case moderation falls back to the API
// key and is expected to be rejected by the platform.
func New(moderationStatus string, limiter *rate.Limiter, auth TokenSourceProvider) *Client {
	return &Client{
		moderationStatus: moderationStatus,
		limiter:          limiter,
		auth:             auth,
	}
}

// ListRecentVideos returns the channel's newest uploads, newest first. An
// empty API key returns an empty list without touching the network.
func (c *Client) ListRecentVideos(ctx context.Context, apiKey, channelID string) ([]models.Video, error) {
	if apiKey == "" {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	resp, err := svc.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		MaxResults(maxRecentVideos).
		Order("date").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search.list failed for channel %s: %w", channelID, err)
	}

	videos := make([]models.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		var title string
		if item.Snippet != nil {
			title = item.Snippet.Title
		}
		videos = append(videos, models.Video{ID: item.Id.VideoId, Title: title})
	}
	return videos, nil
}

// FetchComments returns up to maxCommentsPerVideo top-level comments for the
// video, with Category unset. An empty video id returns an empty list.
func (c *Client) FetchComments(ctx context.Context, apiKey, videoID string) ([]models.Comment, error) {
	if videoID == "" {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	slog.Info("Fetching comments", "video_id", videoID)
	resp, err := svc.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(maxCommentsPerVideo).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("commentThreads.list failed for video %s: %w", videoID, err)
	}

	comments := make([]models.Comment, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		snippet := item.Snippet.TopLevelComment.Snippet
		published, err := time.Parse(time.RFC3339, snippet.PublishedAt)
		if err != nil {
			slog.Warn("Unparseable comment publish time", "comment_id", item.Id, "published_at", snippet.PublishedAt)
		}
		comments = append(comments, models.Comment{
			ID:        item.Id,
			User:      snippet.AuthorDisplayName,
			Text:      snippet.TextDisplay,
			Timestamp: published.UnixMilli(),
		})
	}
	return comments, nil
}

// Flag sets the configured moderation status on a comment. It prefers the
// stored OAuth credential and falls back to the API key when no OAuth client
// is configured.
func (c *Client) Flag(ctx context.Context, settings models.Settings, commentID string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var opts []option.ClientOption
	if c.auth != nil && settings.HasOAuthClient() {
		ts, err := c.auth.TokenSource(ctx, settings)
		if err != nil {
			return err
		}
		opts = append(opts, option.WithTokenSource(ts))
	} else {
		opts = append(opts, option.WithAPIKey(settings.APIKey))
	}

	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create youtube service: %w", err)
	}

	if err := svc.Comments.SetModerationStatus([]string{commentID}, c.moderationStatus).Context(ctx).Do(); err != nil {
		return fmt.Errorf("setModerationStatus(%s) failed for comment %s: %w", c.moderationStatus, commentID, err)
	}
	return nil
}
