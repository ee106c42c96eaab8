package insight

import "github.com/Veraticus/finsight/internal/model"

// MoodArchetype is the behavioral profile attached to a mood rating.
type MoodArchetype struct {
	Name     string
	Tendency string
	Risk     model.RiskLevel
	// Factor scales variable spending relative to a neutral mood (1.0).
	Factor float64
}

var archetypes = [model.MaxMood]MoodArchetype{
	{Name: "The Withdrawn", Factor: 0.7, Risk: model.RiskLow, Tendency: "avoids spending and postpones financial decisions"},
	{Name: "The Cautious Pessimist", Factor: 0.8, Risk: model.RiskLow, Tendency: "cuts back and expects the worst"},
	{Name: "The Worried Saver", Factor: 0.85, Risk: model.RiskLow, Tendency: "saves defensively out of anxiety"},
	{Name: "The Pragmatist", Factor: 0.95, Risk: model.RiskLow, Tendency: "spends on necessities and little else"},
	{Name: "The Balanced Observer", Factor: 1.0, Risk: model.RiskMedium, Tendency: "keeps spending in line with plans"},
	{Name: "The Optimist", Factor: 1.1, Risk: model.RiskMedium, Tendency: "allows small treats without much thought"},
	{Name: "The Confident Planner", Factor: 1.2, Risk: model.RiskMedium, Tendency: "takes on bigger purchases with confidence"},
	{Name: "The Enthusiast", Factor: 1.3, Risk: model.RiskHigh, Tendency: "says yes to most spending opportunities"},
	{Name: "The Euphoric Spender", Factor: 1.4, Risk: model.RiskHigh, Tendency: "buys on impulse to match the mood"},
	{Name: "The Impulsive Celebrator", Factor: 1.5, Risk: model.RiskHigh, Tendency: "celebrates with spending and overlooks costs"},
}

// ArchetypeForMood returns the archetype of a mood rating. Out-of-range
// moods are clamped to the nearest valid rating.
func ArchetypeForMood(mood int) MoodArchetype {
	if mood < model.MinMood {
		mood = model.MinMood
	}
	if mood > model.MaxMood {
		mood = model.MaxMood
	}
	return archetypes[mood-1]
}
