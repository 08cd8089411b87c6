// Package bookmark defines core types shared across subsystems.
package bookmark

import "time"

// Status tracks whether the user has read a bookmark.
type Status string

// Read-tracking states. New bookmarks start unread; read tracking is
// driven by callers, not by the ingestion pipeline.
const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// AIStatus tracks the enrichment lifecycle of a bookmark.
type AIStatus string

// Enrichment states persisted on the record.
const (
	AIStatusProcessing AIStatus = "processing"
	AIStatusCompleted  AIStatus = "completed"
)

// Bookmark is the persisted record for a saved URL.
type Bookmark struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	Content      string    `json:"content,omitempty"`
	UserMemo     string    `json:"userMemo,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Tags         []string  `json:"tags"`
	Status       Status    `json:"status"`
	AIStatus     AIStatus  `json:"aiStatus"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	UserID       string    `json:"userId,omitempty"`
	GuestID      string    `json:"guestId,omitempty"`
}

// Identity names the owner of a storage partition. Exactly one of
// UserID (authenticated) or GuestID (anonymous) is populated.
type Identity struct {
	UserID  string
	GuestID string
}

// Authenticated reports whether the identity belongs to a logged-in user.
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// Key returns the partition key for the identity.
func (i Identity) Key() string {
	if i.UserID != "" {
		return i.UserID
	}
	return i.GuestID
}

// CreateRequest carries the caller-supplied fields for a new bookmark.
type CreateRequest struct {
	URL      string
	UserMemo string
	Owner    Identity
}

// Filter narrows FindAll results. SearchQuery is honored by the remote
// backend only.
type Filter struct {
	Tag         string
	Status      Status
	SearchQuery string
}

// Update carries the mergeable fields for an existing bookmark. Nil
// pointers leave the stored value untouched.
type Update struct {
	Title    *string
	Summary  *string
	Tags     []string
	AIStatus *AIStatus
}

// CrawlStatus is the terminal outcome of a crawl.
type CrawlStatus string

// Crawl outcomes.
const (
	CrawlCompleted      CrawlStatus = "completed"
	CrawlManualRequired CrawlStatus = "manual_required"
)

// CrawlErrorCode classifies why a crawl attempt failed.
type CrawlErrorCode string

// Crawl failure classifications.
const (
	CrawlFetchFailed   CrawlErrorCode = "FETCH_FAILED"
	CrawlTitleNotFound CrawlErrorCode = "TITLE_NOT_FOUND"
	CrawlUnknownError  CrawlErrorCode = "UNKNOWN_ERROR"
)

// CrawlResult is the typed outcome of the bounded crawl loop. It is
// ephemeral and never persisted.
type CrawlResult struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	ThumbnailURL string         `json:"thumbnailUrl"`
	Status       CrawlStatus    `json:"status"`
	Attempt      int            `json:"attempt"`
	ErrorCode    CrawlErrorCode `json:"errorCode,omitempty"`
}

// AIAnalysis holds the enrichment output for a crawled page. Tags carry
// at most five entries; order is preserved as returned by the model.
type AIAnalysis struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// FetchResponse is the result returned by a Fetcher implementation for
// a received HTTP response (successful or not).
type FetchResponse struct {
	StatusCode int
	Body       []byte
	Duration   time.Duration
}
