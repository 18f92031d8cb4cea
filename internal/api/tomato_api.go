package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomato-clock/tomato/internal/app/gamification"
	"github.com/tomato-clock/tomato/internal/app/timeanalysis"
	"github.com/tomato-clock/tomato/internal/domain"
)

// ─── Gamification ───────────────────────────────────────────────────────────

func (s *Server) handleGamificationData(w http.ResponseWriter, r *http.Request) {
	rec, err := s.gamification.Data()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rec, err := s.gamification.Data()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"xp":            rec.XP,
		"level":         gamification.LevelInfo(rec.Level),
		"progress":      gamification.ProgressToNextLevel(rec.XP, rec.Level),
		"currentStreak": rec.Stats.CurrentStreak,
		"longestStreak": rec.Stats.LongestStreak,
		"tomatoes":      rec.Stats.TomatoesCompleted,
		"totalMinutes":  rec.Stats.TotalMinutes,
		"badgesEarned":  len(rec.EarnedBadges),
		"quote":         gamification.RandomQuote(),
	})
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.gamification.AllBadgesWithStatus()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"badges": statuses,
	})
}

func (s *Server) handleRecentBadges(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	recent, err := s.gamification.RecentBadges(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"badges": recent,
	})
}

func (s *Server) handleClearRecentBadges(w http.ResponseWriter, r *http.Request) {
	if err := s.gamification.ClearRecentBadges(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	rec, err := s.gamification.Data()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{
		"xp":       rec.XP,
		"level":    gamification.LevelInfo(rec.Level),
		"progress": gamification.ProgressToNextLevel(rec.XP, rec.Level),
	}
	if next, ok := gamification.NextLevelInfo(rec.Level); ok {
		resp["nextLevel"] = next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.gamification.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="tomato-gamification.json"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.gamification.Import(string(body))
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

func (s *Server) handleResetGamification(w http.ResponseWriter, r *http.Request) {
	if err := s.gamification.Reset(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// ─── Timeline ───────────────────────────────────────────────────────────────

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	var (
		entries []domain.TimelineEntry
		err     error
	)

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from != "" && to != "" {
		start, err1 := time.Parse(time.RFC3339, from)
		end, err2 := time.Parse(time.RFC3339, to)
		if err1 != nil || err2 != nil {
			writeError(w, http.StatusBadRequest, "from/to must be RFC 3339 timestamps")
			return
		}
		entries, err = s.timeline.Filtered(start, end)
	} else {
		entries, err = s.timeline.All()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

func (s *Server) handleTimeAnalysis(w http.ResponseWriter, r *http.Request) {
	entries, err := s.timeline.All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stats := timeanalysis.Analyze(entries)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"buckets":        timeanalysis.Report(stats),
		"mostProductive": timeanalysis.MostProductive(stats),
	})
}

type attachNoteRequest struct {
	Note string `json:"note"`
}

func (s *Server) handleAttachNote(w http.ResponseWriter, r *http.Request) {
	var req attachNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.timeline.AttachNoteToLast(req.Note); err != nil {
		if errors.Is(err, domain.ErrTimelineEmpty) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "attached"})
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	if err := s.timeline.MigrateSyncToLocal(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "migrated"})
}

func (s *Server) handleResetTimeline(w http.ResponseWriter, r *http.Request) {
	if err := s.timeline.Reset(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	var (
		list []domain.Task
		err  error
	)
	switch r.URL.Query().Get("filter") {
	case "active":
		list, err = s.tasks.Active()
	case "completed":
		list, err = s.tasks.Completed()
	default:
		list, err = s.tasks.All()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": list,
	})
}

type taskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "task name is required")
		return
	}

	task, err := s.tasks.Add(req.Name, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := s.tasks.Update(chi.URLParam(r, "id"), func(t *domain.Task) {
		if req.Name != "" {
			t.Name = req.Name
		}
		t.Description = req.Description
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.ToggleComplete(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ─── Timer ──────────────────────────────────────────────────────────────────

func (s *Server) handleTimerStatus(w http.ResponseWriter, r *http.Request) {
	state := s.timer.State()
	resp := map[string]interface{}{
		"state": state,
	}
	if state.Running {
		resp["remainingSeconds"] = int(time.Until(state.ScheduledTime).Seconds())
	}
	writeJSON(w, http.StatusOK, resp)
}

type timerStartRequest struct {
	Type    string `json:"type"`
	TaskID  string `json:"taskId"`
	Minutes int    `json:"minutes"`
}

func (s *Server) handleTimerStart(w http.ResponseWriter, r *http.Request) {
	var req timerStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionType, err := domain.ParseSessionType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	minutes := req.Minutes
	if minutes <= 0 && s.sessionMinutes != nil {
		minutes = s.sessionMinutes(req.Type)
	}
	if minutes <= 0 {
		minutes = 25
	}

	if err := s.timer.Start(sessionType, req.TaskID, time.Duration(minutes)*time.Minute); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": s.timer.State(),
	})
}

func (s *Server) handleTimerReset(w http.ResponseWriter, r *http.Request) {
	s.timer.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
