// Package pipeline orchestrates one ingestion run: list recent videos, fetch
// their comments, drop already-known ids, classify, flag spam on the
// platform, and persist the updated snapshot.
//
// Fetch and moderation errors are coalesced here, at the orchestration
// level: a failed video listing or comment fetch degrades to an empty
// result, and a failed moderation call still leaves the comment recorded
// locally with its classification. Only snapshot load/save failures abort a
// run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/tubesweep/tubesweep/internal/metrics"
	"github.com/tubesweep/tubesweep/internal/models"
)

type Pipeline struct {
	settings   SettingsStore
	comments   CommentStore
	lister     VideoLister
	fetcher    CommentFetcher
	moderator  Moderator
	classifier SpamClassifier
	metrics    metrics.Collector

	group singleflight.Group
}

func New(
	settings SettingsStore,
	comments CommentStore,
	lister VideoLister,
	fetcher CommentFetcher,
	moderator Moderator,
	classifier SpamClassifier,
	collector metrics.Collector,
) *Pipeline {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Pipeline{
		settings:   settings,
		comments:   comments,
		lister:     lister,
		fetcher:    fetcher,
		moderator:  moderator,
		classifier: classifier,
		metrics:    collector,
	}
}

// Run executes one ingestion pass. Overlapping calls (a scheduled trigger
// firing during the startup run) are collapsed onto the in-flight run and
// share its result, so two runs never race on the snapshot.
func (p *Pipeline) Run(ctx context.Context) error {
	_, err, shared := p.group.Do("ingest", func() (any, error) {
		return nil, p.run(ctx)
	})
	if shared {
		slog.Info("Ingestion run already in flight, joined existing run")
	}
	return err
}

func (p *Pipeline) run(ctx context.Context) error {
	slog.Info("Starting ingestion run")

	settings, err := p.settings.Load()
	if err != nil {
		p.metrics.RecordRun(false)
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if !settings.Configured() {
		slog.Info("API key or channel ID not set, skipping run")
		return nil
	}

	videos, err := p.lister.ListRecentVideos(ctx, settings.APIKey, settings.ChannelID)
	if err != nil {
		slog.Error("Failed to list recent videos, treating as empty", "channel_id", settings.ChannelID, "error", err)
		videos = nil
	}

	snapshot, err := p.comments.Load()
	if err != nil {
		p.metrics.RecordRun(false)
		return fmt.Errorf("failed to load comment snapshot: %w", err)
	}
	known := snapshot.CommentIDs()

	var newCount, spamCount int
	for _, video := range videos {
		fetched, err := p.fetcher.FetchComments(ctx, settings.APIKey, video.ID)
		if err != nil {
			slog.Error("Failed to fetch comments, skipping video", "video_id", video.ID, "error", err)
			continue
		}

		for _, comment := range fetched {
			if _, exists := known[comment.ID]; exists {
				continue
			}
			known[comment.ID] = struct{}{}

			if p.classifier.IsSpam(comment.Text) {
				if err := p.moderator.Flag(ctx, settings, comment.ID); err != nil {
					// Local state still records the classification; remote
					// state may now diverge until the next operator action.
					slog.Warn("Failed to flag comment on platform", "comment_id", comment.ID, "error", err)
					p.metrics.RecordModerationFailure()
				} else {
					slog.Info("Flagged spam comment", "comment_id", comment.ID, "user", comment.User)
				}
				comment.Category = models.CategorySpam
				snapshot.Stats.Increment(comment.Timestamp)
				p.metrics.RecordSpamFlagged()
				spamCount++
			}

			snapshot.Comments = append(snapshot.Comments, comment)
			newCount++
		}
	}

	if err := p.comments.Save(snapshot); err != nil {
		p.metrics.RecordRun(false)
		return fmt.Errorf("failed to save comment snapshot: %w", err)
	}

	p.metrics.RecordCommentsIngested(newCount)
	p.metrics.RecordRun(true)
	slog.Info("Ingestion run finished", "videos", len(videos), "new_comments", newCount, "spam", spamCount)
	return nil
}
