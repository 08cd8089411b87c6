package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sohee-an/smart-bookmark-app/internal/bookmark"
)

type processURLRequest struct {
	URL string `json:"url"`
}

// processURL runs one ingestion. The response mirrors the orchestrator
// result verbatim; any unexpected failure collapses into a generic
// server error so callers never see internals.
func (s *Server) processURL(w http.ResponseWriter, r *http.Request) {
	var req processURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, serverErrorPayload())
		return
	}
	result, err := s.ingestor.Process(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, bookmark.ErrMissingURL) {
			writeError(w, http.StatusBadRequest, MsgMissingURL)
			return
		}
		s.logger.Error("ingestion failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, serverErrorPayload())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func serverErrorPayload() map[string]any {
	return map[string]any{
		"success": false,
		"status":  "error",
		"message": MsgServerError,
	}
}

type createBookmarkRequest struct {
	URL      string `json:"url"`
	UserMemo string `json:"userMemo"`
}

func (s *Server) createBookmark(w http.ResponseWriter, r *http.Request) {
	var req createBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, MsgMissingURL)
		return
	}
	owner, err := s.owner(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "identity resolution failed")
		return
	}
	saved, err := s.stores.For(owner).Save(r.Context(), bookmark.CreateRequest{
		URL:      req.URL,
		UserMemo: req.UserMemo,
		Owner:    owner,
	})
	if err != nil {
		if errors.Is(err, bookmark.ErrQuotaExceeded) {
			writeError(w, http.StatusForbidden, MsgQuotaExceeded)
			return
		}
		s.logger.Error("bookmark save failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save bookmark")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) listBookmarks(w http.ResponseWriter, r *http.Request) {
	owner, err := s.owner(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "identity resolution failed")
		return
	}
	filter := bookmark.Filter{
		Tag:         r.URL.Query().Get("tag"),
		Status:      bookmark.Status(r.URL.Query().Get("status")),
		SearchQuery: r.URL.Query().Get("q"),
	}
	list, err := s.stores.For(owner).FindAll(r.Context(), owner, filter)
	if err != nil {
		s.logger.Error("bookmark list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list bookmarks")
		return
	}
	if list == nil {
		list = []bookmark.Bookmark{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": list})
}

func (s *Server) getBookmark(w http.ResponseWriter, r *http.Request) {
	owner, err := s.owner(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "identity resolution failed")
		return
	}
	id := chi.URLParam(r, "bookmark_id")
	found, err := s.stores.For(owner).FindByID(r.Context(), owner, id)
	if err != nil {
		if errors.Is(err, bookmark.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bookmark not found")
			return
		}
		s.logger.Error("bookmark lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch bookmark")
		return
	}
	writeJSON(w, http.StatusOK, found)
}

type updateBookmarkRequest struct {
	Title    *string  `json:"title"`
	Summary  *string  `json:"summary"`
	Tags     []string `json:"tags"`
	AIStatus *string  `json:"aiStatus"`
}

func (s *Server) updateBookmark(w http.ResponseWriter, r *http.Request) {
	var req updateBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	update := bookmark.Update{
		Title:   req.Title,
		Summary: req.Summary,
		Tags:    req.Tags,
	}
	if req.AIStatus != nil {
		status := bookmark.AIStatus(*req.AIStatus)
		if status != bookmark.AIStatusProcessing && status != bookmark.AIStatusCompleted {
			writeError(w, http.StatusBadRequest, "invalid aiStatus")
			return
		}
		update.AIStatus = &status
	}
	owner, err := s.owner(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "identity resolution failed")
		return
	}
	id := chi.URLParam(r, "bookmark_id")
	repo := s.stores.For(owner)
	if err := repo.Update(r.Context(), owner, id, update); err != nil {
		if errors.Is(err, bookmark.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bookmark not found")
			return
		}
		s.logger.Error("bookmark update failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update bookmark")
		return
	}
	updated, err := repo.FindByID(r.Context(), owner, id)
	if err != nil {
		s.logger.Error("bookmark reload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch bookmark")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteBookmark(w http.ResponseWriter, r *http.Request) {
	owner, err := s.owner(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "identity resolution failed")
		return
	}
	id := chi.URLParam(r, "bookmark_id")
	if err := s.stores.For(owner).Delete(r.Context(), owner, id); err != nil {
		if errors.Is(err, bookmark.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bookmark not found")
			return
		}
		s.logger.Error("bookmark delete failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete bookmark")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeAllBookmarks(w http.ResponseWriter, r *http.Request) {
	owner, err := s.owner(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "identity resolution failed")
		return
	}
	if err := s.stores.For(owner).RemoveAll(r.Context(), owner); err != nil {
		s.logger.Error("bookmark clear failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to clear bookmarks")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) countBookmarks(w http.ResponseWriter, r *http.Request) {
	owner, err := s.owner(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "identity resolution failed")
		return
	}
	count, err := s.stores.For(owner).Count(r.Context(), owner)
	if err != nil {
		s.logger.Error("bookmark count failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to count bookmarks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
