package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday/internal/domain/rating"
	"github.com/riskibarqy/matchday/internal/usecase"
)

type submitBallotRequest struct {
	VoterID string             `json:"voter_id" validate:"required"`
	Votes   map[string]string  `json:"votes"`
	Answers map[string]float64 `json:"answers"`
}

type ballotResultDTO struct {
	Received int                           `json:"received"`
	Eligible int                           `json:"eligible"`
	Final    bool                          `json:"final"`
	Deltas   map[string]map[string]float64 `json:"deltas,omitempty"`
}

type ballotProgressDTO struct {
	Received        int      `json:"received"`
	Eligible        int      `json:"eligible"`
	StatsCalculated bool     `json:"stats_calculated"`
	Missing         []string `json:"missing"`
}

func (h *Handler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitBallot")
	defer span.End()

	matchID := pathID(r, "matchID")
	var req submitBallotRequest
	if err := h.decodeAndValidate(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ballotService.SubmitBallot(ctx, usecase.SubmitBallotInput{
		MatchID: matchID,
		VoterID: req.VoterID,
		Votes:   req.Votes,
		Answers: req.Answers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit ballot failed", "match_id", matchID, "voter_id", req.VoterID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, ballotResultDTO{
		Received: result.Progress.Received,
		Eligible: result.Progress.Eligible,
		Final:    result.Final,
		Deltas:   deltasToDTO(result.Deltas),
	})
}

func (h *Handler) GetBallotProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBallotProgress")
	defer span.End()

	matchID := pathID(r, "matchID")
	progress, err := h.ballotService.Progress(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get ballot progress failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ballotProgressDTO{
		Received:        progress.Received,
		Eligible:        progress.Eligible,
		StatsCalculated: progress.StatsCalculated,
		Missing:         nonNil(progress.Missing),
	})
}

func deltasToDTO(v rating.DeltaSet) map[string]map[string]float64 {
	if len(v) == 0 {
		return nil
	}
	out := make(map[string]map[string]float64, len(v))
	for uid, delta := range v {
		attrs := make(map[string]float64, len(delta))
		for attr, value := range delta {
			attrs[string(attr)] = value
		}
		out[uid] = attrs
	}
	return out
}
