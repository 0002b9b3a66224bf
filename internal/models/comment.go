package models

import (
	"strconv"
	"time"
)

// CategorySpam is the classification label assigned to flagged comments.
// An empty Category means the comment is unclassified.
const CategorySpam = "spam"

// Comment is a single top-level comment pulled from the platform.
type Comment struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // milliseconds since epoch
	Category  string `json:"category,omitempty"`
}

// PublishedAt returns the comment's publish time.
func (c Comment) PublishedAt() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// IsSpam reports whether the comment carries the spam label.
func (c Comment) IsSpam() bool {
	return c.Category == CategorySpam
}

// Video identifies one uploaded video on the platform.
type Video struct {
	ID    string
	Title string
}

// SpamStats counts spam comments bucketed by ISO date ("2006-01-02") and
// hour-of-day ("0".."23"). Buckets are created lazily and only ever grow.
type SpamStats map[string]map[string]int

// Increment bumps the bucket for the given comment timestamp. The date key
// uses the UTC calendar date, the hour key the local wall-clock hour.
func (s SpamStats) Increment(timestampMillis int64) {
	t := time.UnixMilli(timestampMillis)
	day := t.UTC().Format("2006-01-02")
	hour := strconv.Itoa(t.Local().Hour())
	if s[day] == nil {
		s[day] = make(map[string]int)
	}
	s[day][hour]++
}

// Total returns the sum of all buckets.
func (s SpamStats) Total() int {
	var n int
	for _, hours := range s {
		for _, count := range hours {
			n += count
		}
	}
	return n
}

// Snapshot is the comment store document: the accumulated comment list plus
// the spam histogram. It is loaded wholesale at the start of a pipeline run
// and written back wholesale at the end.
type Snapshot struct {
	Comments []Comment `json:"comments"`
	Stats    SpamStats `json:"stats"`
}

// NewSnapshot returns an empty snapshot with initialized containers.
func NewSnapshot() Snapshot {
	return Snapshot{Comments: []Comment{}, Stats: SpamStats{}}
}

// CommentIDs returns the set of comment IDs currently in the snapshot.
func (s Snapshot) CommentIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.Comments))
	for _, c := range s.Comments {
		ids[c.ID] = struct{}{}
	}
	return ids
}
