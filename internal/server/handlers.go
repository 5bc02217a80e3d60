package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/jobtracker/internal/checklist"
	"github.com/roach88/jobtracker/internal/notify"
	"github.com/roach88/jobtracker/internal/prefs"
	"github.com/roach88/jobtracker/internal/record"
)

// ChecklistView is the checklist with its derived progress.
type ChecklistView struct {
	Tests   record.ChecklistState `json:"tests"`
	Summary checklist.Summary     `json:"summary"`
	Gate    checklist.GateState   `json:"gate"`
}

// RankedEntry is a digest entry with its 1-based rank.
type RankedEntry struct {
	Rank    int    `json:"rank"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Score   int    `json:"score"`
}

// DigestView is today's digest in rank order.
type DigestView struct {
	Entries     []RankedEntry `json:"entries"`
	GeneratedOn string        `json:"generatedOn"`
}

// RankDigest numbers the entries of d from 1.
func RankDigest(d record.DigestState) DigestView {
	out := DigestView{Entries: make([]RankedEntry, len(d.Entries)), GeneratedOn: d.GeneratedOn}
	for i, e := range d.Entries {
		out.Entries[i] = RankedEntry{Rank: i + 1, Title: e.Title, Company: e.Company, Score: e.Score}
	}
	return out
}

func (s *Server) checklistView() ChecklistView {
	snap := s.tracker.Snapshot()
	return ChecklistView{Tests: snap.Checklist, Summary: snap.Summary, Gate: snap.Gate}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.Success(w, http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) handleGetChecklist(w http.ResponseWriter, r *http.Request) {
	s.Success(w, http.StatusOK, s.checklistView())
}

type setTestRequest struct {
	Passed *bool `json:"passed"`
}

func (s *Server) handleSetTestResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req setTestRequest
	if err := decode(r, &req); err != nil {
		s.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	if req.Passed == nil {
		s.Error(w, r, http.StatusBadRequest, "passed is required")
		return
	}

	err := s.tracker.SetTestResult(r.Context(), id, *req.Passed)
	switch {
	case errors.Is(err, checklist.ErrUnknownTest):
		s.Error(w, r, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.Error(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	s.Success(w, http.StatusOK, s.checklistView())
}

func (s *Server) handleResetChecklist(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.ResetAll(r.Context()); err != nil {
		s.Error(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	s.Success(w, http.StatusOK, s.checklistView())
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	s.Success(w, http.StatusOK, s.tracker.Preferences())
}

type patchPreferencesRequest struct {
	MatchThreshold     *int  `json:"matchThreshold"`
	EmailNotifications *bool `json:"emailNotifications"`
}

func (s *Server) handlePatchPreferences(w http.ResponseWriter, r *http.Request) {
	var req patchPreferencesRequest
	if err := decode(r, &req); err != nil {
		s.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	if req.MatchThreshold != nil && !prefs.ValidThreshold(*req.MatchThreshold) {
		s.Error(w, r, http.StatusBadRequest,
			fmt.Sprintf("matchThreshold must be between %d and %d", prefs.MinThreshold, prefs.MaxThreshold))
		return
	}

	if req.MatchThreshold != nil {
		if err := s.tracker.SetMatchThreshold(r.Context(), *req.MatchThreshold); err != nil {
			s.Error(w, r, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if req.EmailNotifications != nil {
		if err := s.tracker.SetEmailNotifications(r.Context(), *req.EmailNotifications); err != nil {
			s.Error(w, r, http.StatusInternalServerError, err.Error())
			return
		}
	}
	s.Success(w, http.StatusOK, s.tracker.Preferences())
}

func (s *Server) handleGetDigest(w http.ResponseWriter, r *http.Request) {
	d, ok := s.tracker.CurrentDigest()
	if !ok {
		s.Error(w, r, http.StatusNotFound, "no digest generated today")
		return
	}
	s.Success(w, http.StatusOK, RankDigest(d))
}

func (s *Server) handleGenerateDigest(w http.ResponseWriter, r *http.Request) {
	s.tracker.GenerateDigest(r.Context())
	s.Success(w, http.StatusAccepted, map[string]bool{"pending": true})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	nav, err := s.tracker.Navigate(chi.URLParam(r, "route"))
	if err != nil {
		s.Error(w, r, http.StatusNotFound, err.Error())
		return
	}
	s.Success(w, http.StatusOK, nav)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	s.Success(w, http.StatusOK, s.tracker.Jobs())
}

type saveJobRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleSaveJob(w http.ResponseWriter, r *http.Request) {
	var req saveJobRequest
	if err := decode(r, &req); err != nil {
		s.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.Error(w, r, http.StatusBadRequest, "title is required")
		return
	}
	s.tracker.SaveJob(req.Title)
	s.Success(w, http.StatusOK, req)
}

type jobStatusRequest struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	var req jobStatusRequest
	if err := decode(r, &req); err != nil {
		s.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.Error(w, r, http.StatusBadRequest, "title is required")
		return
	}
	if err := s.tracker.SetJobStatus(req.Title, req.Status); err != nil {
		s.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.Success(w, http.StatusOK, req)
}

type jobFilterRequest struct {
	ShowOnlyMatches bool   `json:"showOnlyMatches"`
	Status          string `json:"status"`
}

func (s *Server) handleJobFilter(w http.ResponseWriter, r *http.Request) {
	var req jobFilterRequest
	if err := decode(r, &req); err != nil {
		s.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	if err := s.tracker.ApplyFilters(req.ShowOnlyMatches, req.Status); err != nil {
		s.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.Success(w, http.StatusOK, req)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	n := s.tracker.Notifications()
	if n == nil {
		n = []notify.Notification{}
	}
	s.Success(w, http.StatusOK, n)
}
