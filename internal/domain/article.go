package domain

import "time"

// Article is a single scraped page moving through the digest pipeline.
type Article struct {
	URL         string
	Title       string
	Content     string
	PublishedAt *int64
	Source      string
	Summary     string
	Commentary  string
}

// Published converts the optional epoch timestamp to a time value.
func (a Article) Published() (time.Time, bool) {
	if a.PublishedAt == nil {
		return time.Time{}, false
	}
	return time.Unix(*a.PublishedAt, 0), true
}

// Body is the text rendered under the article heading.
func (a Article) Body() string {
	if a.Commentary != "" {
		return a.Commentary
	}
	return a.Summary
}

// Section groups articles under one category label.
type Section struct {
	Label    string
	Articles []Article
}

// Digest is the rendered output of one run.
type Digest struct {
	Title    string
	Sections []Section
}

// Count returns how many articles the digest carries.
func (d Digest) Count() int {
	total := 0
	for _, s := range d.Sections {
		total += len(s.Articles)
	}
	return total
}

// PublishStatus enumerates publishing outcomes; error variants carry a platform code suffix.
type PublishStatus string

const (
	PublishSkipped      PublishStatus = "skipped"
	PublishDraft        PublishStatus = "draft"
	PublishPreview      PublishStatus = "preview"
	PublishSent         PublishStatus = "sent"
	PublishThumbMissing PublishStatus = "thumb_missing"
)

// PublishResult is what the publisher reports back to the pipeline.
type PublishResult struct {
	Status  PublishStatus
	MediaID string
}

// RunReport summarizes one pipeline execution.
type RunReport struct {
	RunID        string
	Considered   int
	SkippedSeen  int
	Failed       int
	Included     []string
	MarkdownPath string
	HTMLPath     string
	Publish      PublishResult
}
