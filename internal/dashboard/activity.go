package dashboard

import (
	"math"
	"time"
)

// WeekDays is the length of the activity series.
const WeekDays = 7

const dateLayout = "2006-01-02"

// DayActivity counts one local calendar day.
type DayActivity struct {
	Date      string `json:"date"`
	Day       string `json:"day"`
	Questions int    `json:"questions"`
	Quizzes   int    `json:"quizzes"`
}

// startOfDay returns local midnight for t in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// dayKey identifies the local calendar day of t.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

// WeeklyActivity returns exactly WeekDays buckets, oldest first, ending with the
// local day containing now. Instants outside the window are ignored.
func WeeklyActivity(now time.Time, loc *time.Location, questions, completions []time.Time) []DayActivity {
	today := startOfDay(now, loc)
	buckets := make([]DayActivity, WeekDays)
	index := make(map[string]int, WeekDays)
	for i := 0; i < WeekDays; i++ {
		// AddDate keeps midnight across DST transitions.
		day := today.AddDate(0, 0, i-(WeekDays-1))
		key := day.Format(dateLayout)
		buckets[i] = DayActivity{Date: key, Day: day.Weekday().String()[:3]}
		index[key] = i
	}
	for _, t := range questions {
		if i, ok := index[dayKey(t, loc)]; ok {
			buckets[i].Questions++
		}
	}
	for _, t := range completions {
		if i, ok := index[dayKey(t, loc)]; ok {
			buckets[i].Quizzes++
		}
	}
	return buckets
}

// CurrentStreak counts consecutive active days walking backward from today.
// An inactive today neither counts nor breaks the streak; from yesterday on,
// the first inactive day ends the walk. At most lookback days are examined.
func CurrentStreak(now time.Time, loc *time.Location, lookback int, activity ...[]time.Time) int {
	active := make(map[string]struct{})
	for _, series := range activity {
		for _, t := range series {
			active[dayKey(t, loc)] = struct{}{}
		}
	}

	today := startOfDay(now, loc)
	streak := 0
	for i := 0; i < lookback; i++ {
		key := today.AddDate(0, 0, -i).Format(dateLayout)
		if _, ok := active[key]; ok {
			streak++
			continue
		}
		if i == 0 {
			continue
		}
		break
	}
	return streak
}

// StreakProgress is the streak as a percentage of goal, capped at 100.
func StreakProgress(streak, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	p := float64(streak) / float64(goal) * 100
	if p > 100 {
		return 100
	}
	return p
}

// StudyTimeHours estimates study time: two minutes per question and ten per
// completed quiz, in hours rounded to two decimals.
func StudyTimeHours(questions, completedQuizzes int64) float64 {
	minutes := float64(questions*2 + completedQuizzes*10)
	return math.Round(minutes/60*100) / 100
}

// AverageScore is the rounded mean, or 0 when nothing was scored.
func AverageScore(sum, count int64) int {
	if count <= 0 {
		return 0
	}
	return int((2*sum + count) / (2 * count))
}
