package http

import (
	"net/http"

	"finanzas/internal/planner"
)

// handleSummary is the dashboard headline: capacity, recommendation,
// priority debt, plan summary and today's reminders.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	overview, err := s.plans.Overview(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.countPlan()
	NewJSONResponse().Body(presentOverview(overview)).Write(w)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	strategy, err := parseStrategy(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	horizon, err := parseHorizon(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	plan, err := s.plans.Plan(r.Context(), strategy, horizon)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.countPlan()
	NewJSONResponse().Body(presentPlan(plan)).Write(w)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	strategy, err := parseStrategy(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	projection, err := s.plans.Projection(r.Context(), strategy)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.countPlan()
	NewJSONResponse().Body(presentProjection(projection)).Write(w)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	comparison, err := s.plans.Compare(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.countPlan()
	NewJSONResponse().Body(presentComparison(comparison)).Write(w)
}

func (s *Server) handleEstimates(w http.ResponseWriter, r *http.Request) {
	estimates, err := s.plans.Estimates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if estimates == nil {
		estimates = []planner.Estimate{}
	}
	NewJSONResponse().Body(estimates).Write(w)
}

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	due, err := s.plans.Reminders(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]any{"reminders": due, "count": len(due)}).Write(w)
}
