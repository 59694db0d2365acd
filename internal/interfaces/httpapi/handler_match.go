package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/rating"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	"github.com/riskibarqy/matchday/internal/usecase"
)

type createMatchRequest struct {
	Title       string    `json:"title" validate:"required,max=120"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	FormationA  string    `json:"formation_a"`
	FormationB  string    `json:"formation_b"`
}

type attendanceRequest struct {
	PlayerID  string `json:"player_id" validate:"required"`
	Attending *bool  `json:"attending" validate:"required"`
}

type pinsRequest struct {
	Pins map[string]string `json:"pins"`
}

type completeMatchRequest struct {
	ScoreA *int `json:"score_a" validate:"required,min=0"`
	ScoreB *int `json:"score_b" validate:"required,min=0"`
}

type matchDTO struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	ScheduledAtUTC  string            `json:"scheduled_at_utc"`
	Status          string            `json:"status"`
	AttendeeIDs     []string          `json:"attendee_ids"`
	Pins            map[string]string `json:"pins"`
	FormationA      string            `json:"formation_a"`
	FormationB      string            `json:"formation_b"`
	Score           *scoreDTO         `json:"score,omitempty"`
	EligibleVoters  []string          `json:"eligible_voters"`
	BallotsReceived int               `json:"ballots_received"`
	StatsCalculated bool              `json:"stats_calculated"`
	UpdatedAtUTC    string            `json:"updated_at_utc"`
}

type scoreDTO struct {
	A       int    `json:"a"`
	B       int    `json:"b"`
	ResultA string `json:"result_a"`
	ResultB string `json:"result_b"`
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	var req createMatchRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.CreateMatch(ctx, usecase.CreateMatchInput{
		Title:       req.Title,
		ScheduledAt: req.ScheduledAt,
		FormationA:  req.FormationA,
		FormationB:  req.FormationB,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(item))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := pathID(r, "matchID")
	item, err := h.matchService.GetMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) SetAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetAttendance")
	defer span.End()

	matchID := pathID(r, "matchID")
	var req attendanceRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.SetAttendance(ctx, matchID, req.PlayerID, *req.Attending)
	if err != nil {
		h.logger.WarnContext(ctx, "set attendance failed", "match_id", matchID, "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) SetPins(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetPins")
	defer span.End()

	matchID := pathID(r, "matchID")
	var req pinsRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.SetPins(ctx, matchID, req.Pins)
	if err != nil {
		h.logger.WarnContext(ctx, "set pins failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func (h *Handler) CompleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteMatch")
	defer span.End()

	matchID := pathID(r, "matchID")
	var req completeMatchRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.CompleteMatch(ctx, matchID, match.Score{A: *req.ScoreA, B: *req.ScoreB})
	if err != nil {
		h.logger.WarnContext(ctx, "complete match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "match completed", "match_id", item.ID, "eligible_voters", len(item.EligibleVoters))
	writeSuccess(ctx, w, http.StatusOK, matchToDTO(item))
}

func matchToDTO(v match.Match) matchDTO {
	pins := make(map[string]string, len(v.Pins))
	for uid, team := range v.Pins {
		pins[uid] = string(team)
	}

	out := matchDTO{
		ID:              v.ID,
		Title:           v.Title,
		ScheduledAtUTC:  v.ScheduledAt.UTC().Format(time.RFC3339),
		Status:          string(v.Status),
		AttendeeIDs:     nonNil(v.AttendeeIDs),
		Pins:            pins,
		FormationA:      v.FormationA,
		FormationB:      v.FormationB,
		EligibleVoters:  nonNil(v.EligibleVoters),
		BallotsReceived: v.BallotsReceived,
		StatsCalculated: v.StatsCalculated,
		UpdatedAtUTC:    v.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if v.Score != nil {
		results := rating.ResultsFromScore(v.Score.A, v.Score.B)
		out.Score = &scoreDTO{
			A:       v.Score.A,
			B:       v.Score.B,
			ResultA: string(results[squad.TeamA]),
			ResultB: string(results[squad.TeamB]),
		}
	}
	return out
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return append([]string(nil), v...)
}
