package pipeline

import (
	"context"

	"github.com/tubesweep/tubesweep/internal/models"
)

// SettingsStore supplies the operator settings snapshot read before every run.
type SettingsStore interface {
	Load() (models.Settings, error)
}

// CommentStore abstracts the durable comment snapshot.
type CommentStore interface {
	Load() (models.Snapshot, error)
	Save(snapshot models.Snapshot) error
}

// VideoLister returns a channel's most recent uploads, newest first.
type VideoLister interface {
	ListRecentVideos(ctx context.Context, apiKey, channelID string) ([]models.Video, error)
}

// CommentFetcher returns a video's top-level comments with Category unset.
type CommentFetcher interface {
	FetchComments(ctx context.Context, apiKey, videoID string) ([]models.Comment, error)
}

// Moderator changes a comment's visibility state on the platform.
type Moderator interface {
	Flag(ctx context.Context, settings models.Settings, commentID string) error
}

// SpamClassifier decides spam/not-spam for a comment body.
type SpamClassifier interface {
	IsSpam(text string) bool
}
