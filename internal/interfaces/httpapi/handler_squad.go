package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/squad"
	"github.com/riskibarqy/matchday/internal/usecase"
)

type buildSquadRequest struct {
	FormationA string  `json:"formation_a"`
	FormationB string  `json:"formation_b"`
	Seed       *uint64 `json:"seed"`
}

type squadDTO struct {
	ID         string            `json:"id"`
	MatchID    string            `json:"match_id"`
	TeamA      sideDTO           `json:"team_a"`
	TeamB      sideDTO           `json:"team_b"`
	Pins       map[string]string `json:"pins"`
	RatingGap  int               `json:"rating_gap"`
	BuiltAtUTC string            `json:"built_at_utc"`
}

type sideDTO struct {
	Formation     string         `json:"formation"`
	Slots         []slotDTO      `json:"slots"`
	Bench         []memberDTO    `json:"bench"`
	RatingSum     int            `json:"rating_sum"`
	AverageRating int            `json:"average_rating"`
	Positions     map[string]int `json:"positions"`
}

type slotDTO struct {
	Slot   string     `json:"slot"`
	Player *memberDTO `json:"player"`
}

type memberDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Rating   int    `json:"rating"`
}

func (h *Handler) BuildSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BuildSquad")
	defer span.End()

	matchID := pathID(r, "matchID")
	var req buildSquadRequest
	if r.ContentLength != 0 {
		if err := h.decodeAndValidate(ctx, r, &req); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	built, err := h.squadService.BuildSquad(ctx, usecase.BuildSquadInput{
		MatchID:    matchID,
		FormationA: req.FormationA,
		FormationB: req.FormationB,
		Seed:       req.Seed,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "build squad failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, squadToDTO(built))
}

func (h *Handler) GetSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSquad")
	defer span.End()

	matchID := pathID(r, "matchID")
	built, err := h.squadService.GetSquad(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get squad failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadToDTO(built))
}

func squadToDTO(v usecase.BuiltSquad) squadDTO {
	pins := make(map[string]string, len(v.Saved.Pins))
	for uid, team := range v.Saved.Pins {
		pins[uid] = string(team)
	}

	gap := v.Saved.RatingA - v.Saved.RatingB
	if gap < 0 {
		gap = -gap
	}

	return squadDTO{
		ID:         v.Saved.ID,
		MatchID:    v.Saved.MatchID,
		TeamA:      sideToDTO(v.Saved.Squad.A, v.Roster, v.Saved.RatingA, v.AverageA),
		TeamB:      sideToDTO(v.Saved.Squad.B, v.Roster, v.Saved.RatingB, v.AverageB),
		Pins:       pins,
		RatingGap:  gap,
		BuiltAtUTC: v.Saved.BuiltAt.UTC().Format(time.RFC3339),
	}
}

func sideToDTO(side squad.Side, roster squad.Roster, ratingSum, average int) sideDTO {
	slots := make([]slotDTO, 0, len(side.Slots))
	positions := make(map[string]int, len(side.Slots))
	for _, slot := range side.Slots {
		item := slotDTO{Slot: string(slot.Slot)}
		if slot.Filled() {
			m := memberToDTO(slot.UID, roster)
			item.Player = &m
			positions[string(slot.Slot)]++
		}
		slots = append(slots, item)
	}

	bench := make([]memberDTO, 0, len(side.Bench))
	for _, uid := range side.Bench {
		bench = append(bench, memberToDTO(uid, roster))
	}

	return sideDTO{
		Formation:     side.Formation,
		Slots:         slots,
		Bench:         bench,
		RatingSum:     ratingSum,
		AverageRating: average,
		Positions:     positions,
	}
}

func memberToDTO(uid string, roster squad.Roster) memberDTO {
	out := memberDTO{
		ID:       uid,
		Position: string(roster.Position(uid)),
		Rating:   roster.Rating(uid),
	}
	if a, ok := roster[uid]; ok {
		out.Name = squad.CleanName(a.Name)
	}
	return out
}
