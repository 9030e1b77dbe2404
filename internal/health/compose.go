package health

type level struct {
	title string
	min   int
	level int
}

var levels = []level{
	{min: 900, level: 5, title: "Financial Mastery"},
	{min: 750, level: 4, title: "Thriving"},
	{min: 600, level: 3, title: "On Solid Ground"},
	{min: 400, level: 2, title: "Gaining Momentum"},
	{min: 200, level: 1, title: "Building Foundation"},
	{min: 0, level: 0, title: "Getting Started"},
}

// LevelFor maps a total score to its level and title.
func LevelFor(total int) (int, string) {
	for _, l := range levels {
		if total >= l.min {
			return l.level, l.title
		}
	}
	last := levels[len(levels)-1]
	return last.level, last.title
}

// Compute runs all three pillars and composes the result. PreviousScore is
// left nil; the caller fills it from stored history.
func Compute(in Input, p Policy) Result {
	trajectory := Trajectory(in, p)
	behavior := Behavior(in, p)
	position := Position(in, p)

	total := trajectory.Score + behavior.Score + position.Score
	if total < 0 {
		total = 0
	}
	if total > MaxScore {
		total = MaxScore
	}
	lvl, title := LevelFor(total)

	r := Result{
		Total:        total,
		Level:        lvl,
		LevelTitle:   title,
		Trajectory:   trajectory,
		Behavior:     behavior,
		Position:     position,
		Completeness: in.Completeness,
	}
	r.Tips = RankTips(r.SubFactors(), p.TipThresholdPct)
	return r
}
