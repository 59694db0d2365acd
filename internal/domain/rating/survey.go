package rating

import (
	"fmt"

	"github.com/riskibarqy/matchday/internal/domain/position"
	"github.com/riskibarqy/matchday/internal/domain/squad"
)

// Survey question keys. Answers are 1-5 Likert scores.
const (
	QuestionFormationEffectiveness = "formation_effectiveness"
	QuestionLineSpacing            = "line_spacing"
	QuestionTacticalExecution      = "tactical_execution"
	QuestionKeyPassSuccess         = "key_pass_success"
	QuestionForwardPass            = "forward_pass"
	QuestionTouchMiss              = "touch_miss"
	QuestionFindSpace              = "find_space"
	QuestionStamina                = "stamina"
	QuestionShootingAccuracy       = "shooting_accuracy"
	QuestionShootingAttempt        = "shooting_attempt"
)

var SurveyQuestions = []string{
	QuestionFormationEffectiveness,
	QuestionLineSpacing,
	QuestionTacticalExecution,
	QuestionKeyPassSuccess,
	QuestionForwardPass,
	QuestionTouchMiss,
	QuestionFindSpace,
	QuestionStamina,
	QuestionShootingAccuracy,
	QuestionShootingAttempt,
}

const (
	MinAnswer = 1.0
	MaxAnswer = 5.0
)

// ValidateAnswers requires every survey question answered within the Likert range.
func ValidateAnswers(answers map[string]float64) error {
	known := make(map[string]struct{}, len(SurveyQuestions))
	for _, q := range SurveyQuestions {
		known[q] = struct{}{}
		v, ok := answers[q]
		if !ok {
			return fmt.Errorf("missing answer for %s", q)
		}
		if v < MinAnswer || v > MaxAnswer {
			return fmt.Errorf("answer for %s must be between %.0f and %.0f", q, MinAnswer, MaxAnswer)
		}
	}
	for q := range answers {
		if _, ok := known[q]; !ok {
			return fmt.Errorf("unknown survey question %s", q)
		}
	}
	return nil
}

// SurveyConfig holds the survey pipeline constants.
type SurveyConfig struct {
	Baseline       float64
	Factor         float64
	WinMultiplier  float64
	LossMultiplier float64
	Weights        map[position.Group]map[Attribute]float64
}

func DefaultSurveyConfig() SurveyConfig {
	return SurveyConfig{
		Baseline:       3.0,
		Factor:         0.2,
		WinMultiplier:  1.1,
		LossMultiplier: 0.9,
		Weights: map[position.Group]map[Attribute]float64{
			position.GroupForward:    {SHO: 1.0, DRI: 1.0, PAC: 1.0, PAS: 0.5, PHY: 0.5, DEF: 0.1},
			position.GroupMidfielder: {PAS: 1.0, DRI: 1.0, PHY: 1.0, SHO: 0.5, PAC: 0.5, DEF: 0.5},
			position.GroupDefender:   {DEF: 1.0, PHY: 1.0, PAC: 1.0, PAS: 0.5, DRI: 0.1, SHO: 0.1},
		},
	}
}

// TeamScores are a team's averaged survey dimensions.
type TeamScores struct {
	Attack    float64
	Defense   float64
	Passing   float64
	Physical  float64
	Finishing float64
}

// SurveyAggregator derives deltas from team-averaged survey answers, weighted by
// position group and scaled by the match result. Goalkeepers are not adjusted.
type SurveyAggregator struct {
	Config SurveyConfig
	Bounds Bounds
}

func (a *SurveyAggregator) Mode() Mode {
	return ModeSurvey
}

func (a *SurveyAggregator) Aggregate(s Snapshot) (Outcome, error) {
	byTeam := map[squad.Team][]Ballot{}
	for _, b := range s.Ballots {
		byTeam[b.Team] = append(byTeam[b.Team], b)
	}

	base := map[squad.Team]Delta{
		squad.TeamA: a.teamDelta(a.TeamScores(byTeam[squad.TeamA])),
		squad.TeamB: a.teamDelta(a.TeamScores(byTeam[squad.TeamB])),
	}

	deltas := DeltaSet{}
	for _, p := range s.Participants {
		group := p.Group
		if group == position.GroupGoalkeeper {
			continue
		}
		teamDelta, ok := base[p.Team]
		if !ok {
			continue
		}
		weights := a.Config.Weights[group]
		multiplier := a.multiplier(s.Results[p.Team])

		delta := deltas.forPlayer(p.UID)
		for _, attr := range Attributes {
			delta[attr] = round2(teamDelta[attr] * weights[attr] * multiplier)
		}
	}
	deltas = deltas.compact()

	return Outcome{
		Mode:    ModeSurvey,
		Deltas:  deltas,
		Ratings: Apply(s.Ratings, deltas, a.Bounds),
		Tally:   s.Tally.Clone(),
	}, nil
}

// TeamScores averages one team's ballots. A team without ballots scores the baseline.
func (a *SurveyAggregator) TeamScores(ballots []Ballot) TeamScores {
	if len(ballots) == 0 {
		b := a.Config.Baseline
		return TeamScores{Attack: b, Defense: b, Passing: b, Physical: b, Finishing: b}
	}

	var total TeamScores
	for _, b := range ballots {
		ans := b.Answers
		total.Attack += ans[QuestionFormationEffectiveness]
		total.Defense += ans[QuestionLineSpacing] + ans[QuestionTacticalExecution]
		total.Passing += ans[QuestionKeyPassSuccess] + ans[QuestionForwardPass] - ans[QuestionTouchMiss]
		total.Physical += ans[QuestionFindSpace] + ans[QuestionStamina]
		total.Finishing += ans[QuestionShootingAccuracy] + ans[QuestionShootingAttempt]
	}

	n := float64(len(ballots))
	return TeamScores{
		Attack:    total.Attack / n,
		Defense:   total.Defense / (2 * n),
		Passing:   total.Passing / n,
		Physical:  total.Physical / (2 * n),
		Finishing: total.Finishing / (2 * n),
	}
}

func (a *SurveyAggregator) teamDelta(sc TeamScores) Delta {
	b, f := a.Config.Baseline, a.Config.Factor
	return Delta{
		SHO: (sc.Finishing - b) * f,
		DRI: (sc.Attack - b) * (f / 2),
		DEF: (sc.Defense - b) * f,
		PAS: ((sc.Passing - b) + (sc.Attack - b)) * (f / 2),
		PHY: ((sc.Physical - b) + (sc.Defense - b)) * (f / 2),
		PAC: (sc.Physical - b) * f,
	}
}

func (a *SurveyAggregator) multiplier(r Result) float64 {
	switch r {
	case ResultWin:
		return a.Config.WinMultiplier
	case ResultLoss:
		return a.Config.LossMultiplier
	default:
		return 1.0
	}
}
