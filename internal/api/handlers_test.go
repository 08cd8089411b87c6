package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohee-an/smart-bookmark-app/internal/bookmark"
)

func doJSON(t *testing.T, server *Server, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func guestHeaders(id string) map[string]string {
	return map[string]string{GuestIDHeader: id}
}

func TestCreateBookmark_Succeeds(t *testing.T) {
	t.Parallel()

	server := newTestServer(completedCrawl(), bookmark.AIAnalysis{})

	rec := doJSON(t, server, http.MethodPost, "/v1/bookmarks",
		`{"url":"https://go.dev","userMemo":"read later"}`, guestHeaders("guest-1"))

	require.Equal(t, http.StatusCreated, rec.Code)
	var saved bookmark.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "https://go.dev", saved.URL)
	assert.Equal(t, "read later", saved.UserMemo)
	assert.Equal(t, bookmark.StatusUnread, saved.Status)
	assert.Equal(t, bookmark.AIStatusProcessing, saved.AIStatus)
}

func TestCreateBookmark_MissingURL(t *testing.T) {
	t.Parallel()

	server := newTestServer(completedCrawl(), bookmark.AIAnalysis{})

	rec := doJSON(t, server, http.MethodPost, "/v1/bookmarks",
		`{"userMemo":"no url"}`, guestHeaders("guest-1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), MsgMissingURL)
}

func TestCreateBookmark_QuotaExceeded(t *testing.T) {
	t.Parallel()

	server := newTestServer(completedCrawl(), bookmark.AIAnalysis{})
	headers := guestHeaders("guest-quota")

	for i := 0; i < 5; i++ {
		body := fmt.Sprintf(`{"url":"https://example.com/%d"}`, i)
		rec := doJSON(t, server, http.MethodPost, "/v1/bookmarks", body, headers)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, server, http.MethodPost, "/v1/bookmarks",
		`{"url":"https://example.com/6"}`, headers)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), MsgQuotaExceeded)
}

func TestCreateBookmark_MintsGuestID(t *testing.T) {
	t.Parallel()

	server := newTestServer(completedCrawl(), bookmark.AIAnalysis{})

	rec := doJSON(t, server, http.MethodPost, "/v1/bookmarks",
		`{"url":"https://example.com"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, rec.Header().Get(GuestIDHeader))
}

func TestListBookmarks_FiltersAndPartition(t *testing.T) {
	t.Parallel()

	server := newTestServer(completedCrawl(), bookmark.AIAnalysis{})
	alice := guestHeaders("guest-alice")
	bob := guestHeaders("guest-bob")

	doJSON(t, server, http.MethodPost, "/v1/bookmarks", `{"url":"https://a.example.com"}`, alice)
	doJSON(t, server, http.MethodPost, "/v1/bookmarks", `{"url":"https://b.example.com"}`, alice)
	doJSON(t, server, http.MethodPost, "/v1/bookmarks", `{"url":"https://c.example.com"}`, bob)

	rec := doJSON(t, server, http.MethodGet, "/v1/bookmarks", "", alice)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Bookmarks []bookmark.Bookmark `json:"bookmarks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Bookmarks, 2)
	// newest first
	assert.Equal(t, "https://b.example.com", payload.Bookmarks[0].URL)
	assert.Equal(t, "https://a.example.com", payload.Bookmarks[1].URL)

	rec = doJSON(t, server, http.MethodGet, "/v1/bookmarks", "", bob)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Bookmarks, 1)
}

func TestListBookmarks_EmptyPartition(t *testing.T) {
	t.Parallel()

	server := newTestServer(completedCrawl(), bookmark.AIAnalysis{})

	rec := doJSON(t, server, http.MethodGet, "/v1/bookmarks", "", guestHeaders("guest-empty"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"bookmarks":[]`)
}

func TestGetBookmark_NotFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(completedCrawl(), bookmark.AIAnalysis{})

	rec := doJSON(t, server, http.MethodGet, "/v1/bookmarks/nope", "", guestHeaders("guest-1"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "bookmark not found")
}

func TestUpdateBookmark_MergesFields(t *testing.T) {
	t.Parallel()

	server := newTestServer(completedCrawl(), bookmark.AIAnalysis{})
	headers := guestHeaders("guest-upd")

	rec := doJSON(t, server, http.MethodPost, "/v1/bookmarks",
		`{"url":"https://example.com","userMemo":"keep me"}`, headers)
	require.Equal(t, http.StatusCreated, rec.Code)
	var saved bookmark.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	rec = doJSON(t, server, http.MethodPatch, "/v1/bookmarks/"+saved.ID,
		`{"title":"Example","summary":"예시 페이지","tags":["web"],"aiStatus":"completed"}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated bookmark.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Example", updated.Title)
	assert.Equal(t, "예시 페이지", updated.Summary)
	assert.Equal(t, []string{"web"}, updated.Tags)
	assert.Equal(t, bookmark.AIStatusCompleted, updated.AIStatus)
	assert.Equal(t, "keep me", updated.UserMemo)
	assert.True(t, updated.UpdatedAt.After(saved.UpdatedAt))
}

func TestUpdateBookmark_InvalidAIStatus(t *testing.T) {
	t.Parallel()

	server := newTestServer(completedCrawl(), bookmark.AIAnalysis{})

	rec := doJSON(t, server, http.MethodPatch, "/v1/bookmarks/some-id",
		`{"aiStatus":"halfway"}`, guestHeaders("guest-1"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid aiStatus")
}

func TestUpdateBookmark_NotFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(completedCrawl(), bookmark.AIAnalysis{})

	rec := doJSON(t, server, http.MethodPatch, "/v1/bookmarks/missing",
		`{"title":"New"}`, guestHeaders("guest-1"))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBookmark_RemovesRecord(t *testing.T) {
	t.Parallel()

	server := newTestServer(completedCrawl(), bookmark.AIAnalysis{})
	headers := guestHeaders("guest-del")

	rec := doJSON(t, server, http.MethodPost, "/v1/bookmarks",
		`{"url":"https://example.com"}`, headers)
	var saved bookmark.Bookmark
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	rec = doJSON(t, server, http.MethodDelete, "/v1/bookmarks/"+saved.ID, "", headers)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/v1/bookmarks/"+saved.ID, "", headers)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveAllAndCount(t *testing.T) {
	t.Parallel()

	server := newTestServer(completedCrawl(), bookmark.AIAnalysis{})
	headers := guestHeaders("guest-clear")

	doJSON(t, server, http.MethodPost, "/v1/bookmarks", `{"url":"https://a.example.com"}`, headers)
	doJSON(t, server, http.MethodPost, "/v1/bookmarks", `{"url":"https://b.example.com"}`, headers)

	rec := doJSON(t, server, http.MethodGet, "/v1/bookmarks/count", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"count":2`)

	rec = doJSON(t, server, http.MethodDelete, "/v1/bookmarks", "", headers)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/v1/bookmarks/count", "", headers)
	require.Contains(t, rec.Body.String(), `"count":0`)
}
