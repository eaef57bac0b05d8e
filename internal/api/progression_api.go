package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jobtrail/jobtrail/internal/app/match"
	"github.com/jobtrail/jobtrail/internal/domain"
	"github.com/jobtrail/jobtrail/internal/infra/metrics"
)

// ─── Request Bodies ─────────────────────────────────────────────────────────

type setModeRequest struct {
	Mode                    string `json:"mode"`
	WeeklyApplicationTarget int    `json:"weekly_application_target,omitempty"`
	WeeklyNetworkingTarget  int    `json:"weekly_networking_target,omitempty"`
	WeeklySkillHours        int    `json:"weekly_skill_hours,omitempty"`
}

type progressRequest struct {
	Progress *int `json:"progress"`
}

type applicationRequest struct {
	Company     string     `json:"company"`
	Role        string     `json:"role"`
	Status      string     `json:"status,omitempty"`
	DateApplied *time.Time `json:"date_applied,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type eventRequest struct {
	ApplicationID string    `json:"application_id,omitempty"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}

type contactRequest struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
}

type skillRequest struct {
	Name        string `json:"name"`
	TargetHours int    `json:"target_hours,omitempty"`
}

type hoursRequest struct {
	Hours int `json:"hours"`
}

type activityRequest struct {
	Category string `json:"category"`
	Amount   int    `json:"amount"`
}

type matchRequest struct {
	Job         domain.Job             `json:"job"`
	Preferences *domain.JobPreferences `json:"preferences"`
}

// ─── Ledger ─────────────────────────────────────────────────────────────────

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Summary(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req setModeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	targets := &domain.Targets{
		Applications: req.WeeklyApplicationTarget,
		Networking:   req.WeeklyNetworkingTarget,
		SkillHours:   req.WeeklySkillHours,
	}

	change, err := s.svc.SetMode(r.Context(), chi.URLParam(r, "userID"), mode, targets)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

// ─── Quests & Achievements ──────────────────────────────────────────────────

func (s *Server) handleQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := s.svc.Quests(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"quests": nonNil(quests)})
}

func (s *Server) handleCleanupQuests(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.CleanupExpired(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (s *Server) handleQuestProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := decodeJSON(r, &req); err != nil || req.Progress == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"progress\": <int>}")
		return
	}
	out, err := s.svc.UpdateQuestProgress(r.Context(),
		chi.URLParam(r, "userID"), chi.URLParam(r, "questID"), *req.Progress)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.Achievements(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"achievements": nonNil(rows)})
}

// ─── Activity ───────────────────────────────────────────────────────────────

func (s *Server) handleAddApplication(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	app, out, err := s.svc.AddApplication(r.Context(), chi.URLParam(r, "userID"), domain.Application{
		Company:     req.Company,
		Role:        req.Role,
		Status:      domain.ApplicationStatus(req.Status),
		DateApplied: req.DateApplied,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"application": app, "outcome": out})
}

func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	app, out, err := s.svc.UpdateApplicationStatus(r.Context(),
		chi.URLParam(r, "userID"), chi.URLParam(r, "appID"), req.Status)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"application": app, "outcome": out})
}

func (s *Server) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	ev, out, err := s.svc.AddEvent(r.Context(), chi.URLParam(r, "userID"), domain.Event{
		ApplicationID: req.ApplicationID,
		Type:          domain.EventType(req.Type),
		Title:         req.Title,
		ScheduledAt:   req.ScheduledAt,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"event": ev, "outcome": out})
}

func (s *Server) handleAddContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	c, out, err := s.svc.AddContact(r.Context(), chi.URLParam(r, "userID"),
		domain.Contact{Name: req.Name, Company: req.Company})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"contact": c, "outcome": out})
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.svc.Skills(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"skills": nonNil(skills)})
}

func (s *Server) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	var req skillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sk, err := s.svc.AddSkill(r.Context(), chi.URLParam(r, "userID"),
		domain.Skill{Name: req.Name, TargetHours: req.TargetHours})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sk)
}

func (s *Server) handleSkillHours(w http.ResponseWriter, r *http.Request) {
	var req hoursRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sk, out, err := s.svc.LogSkillHours(r.Context(),
		chi.URLParam(r, "userID"), chi.URLParam(r, "skillID"), req.Hours)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"skill": sk, "outcome": out})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	out, err := s.svc.RecordActivity(r.Context(), chi.URLParam(r, "userID"),
		domain.QuestCategory(req.Category), req.Amount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── Derived Views ──────────────────────────────────────────────────────────

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.WeeklyProgress(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.MonthlyProgress(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSmartSteps(w http.ResponseWriter, r *http.Request) {
	steps, err := s.svc.SmartSteps(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": nonNil(steps)})
}

func (s *Server) handleMatchScore(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	result := match.Score(req.Job, req.Preferences)
	metrics.MatchScores.Observe(float64(result.TotalScore))
	writeJSON(w, http.StatusOK, result)
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	notifs, err := s.svc.Notifications(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": nonNil(notifs)})
}

func (s *Server) handleNotificationShown(w http.ResponseWriter, r *http.Request) {
	err := s.svc.MarkNotificationShown(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "shown"})
}

// nonNil renders empty results as [] instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
