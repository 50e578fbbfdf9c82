package constants

// Slot scoring weights used by the session assigner.
const (
	ScorePreferredDay     = 100
	ScoreRecencyBase      = 50
	ScoreRecencyPerDay    = 10
	ScoreMorningBonus     = 50
	ScoreBeforeEvening    = 20
	ScoreOversizedPenalty = 10

	MorningStartMin       = 8 * 60
	MorningEndMin         = 12 * 60
	EveningCutoffHour     = 20
	OversizedSlackMinutes = 60
)
