package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/rating"
	"github.com/riskibarqy/matchday/internal/domain/squad"
	"github.com/riskibarqy/matchday/internal/usecase"
)

type registerPlayerRequest struct {
	Name     string             `json:"name" validate:"required,max=100"`
	Position string             `json:"position" validate:"max=8"`
	Rating   *int               `json:"rating" validate:"omitempty,min=0,max=99"`
	Stats    map[string]float64 `json:"stats"`
}

type playerDTO struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	DisplayName       string             `json:"display_name"`
	Position          string             `json:"position"`
	CanonicalPosition string             `json:"canonical_position"`
	Rating            int                `json:"rating"`
	Stats             map[string]float64 `json:"stats"`
	CreatedAtUTC      string             `json:"created_at_utc"`
	UpdatedAtUTC      string             `json:"updated_at_utc"`
}

func (h *Handler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterPlayer")
	defer span.End()

	var req registerPlayerRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.playerService.RegisterPlayer(ctx, usecase.RegisterPlayerInput{
		Name:     req.Name,
		Position: req.Position,
		Rating:   req.Rating,
		Stats:    req.Stats,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "register player failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(item))
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID := pathID(r, "playerID")
	item, err := h.playerService.GetPlayer(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(item))
}

func playerToDTO(v player.Player) playerDTO {
	return playerDTO{
		ID:                v.ID,
		Name:              v.Name,
		DisplayName:       squad.CleanName(v.Name),
		Position:          v.Position,
		CanonicalPosition: string(v.Canonical()),
		Rating:            v.Rating,
		Stats:             statsToDTO(v.Stats),
		CreatedAtUTC:      v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC:      v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func statsToDTO(v rating.StatLine) map[string]float64 {
	out := make(map[string]float64, len(v))
	for attr, value := range v {
		out[string(attr)] = value
	}
	return out
}
