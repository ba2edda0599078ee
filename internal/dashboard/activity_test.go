package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func at(day, hour, min int) time.Time {
	return time.Date(2024, time.May, day, hour, min, 0, 0, ist)
}

func TestWeeklyActivityAlwaysSevenBuckets(t *testing.T) {
	buckets := WeeklyActivity(at(15, 10, 0), ist, nil, nil)
	require.Len(t, buckets, WeekDays)
	assert.Equal(t, DayActivity{Date: "2024-05-09", Day: "Thu"}, buckets[0])
	assert.Equal(t, DayActivity{Date: "2024-05-15", Day: "Wed"}, buckets[6])
	for _, b := range buckets {
		assert.Zero(t, b.Questions)
		assert.Zero(t, b.Quizzes)
	}
}

func TestWeeklyActivityUsesLocalDayBoundaries(t *testing.T) {
	questions := []time.Time{
		at(14, 23, 30),
		// 00:10 local is still the previous day in UTC.
		at(15, 0, 10).UTC(),
		at(15, 9, 0),
		at(8, 23, 59), // outside the window
	}
	completions := []time.Time{at(9, 0, 0), at(12, 18, 0)}

	buckets := WeeklyActivity(at(15, 10, 0), ist, questions, completions)
	assert.Equal(t, 1, buckets[5].Questions)
	assert.Equal(t, 2, buckets[6].Questions)
	assert.Equal(t, 1, buckets[0].Quizzes)
	assert.Equal(t, 1, buckets[3].Quizzes)

	total := 0
	for _, b := range buckets {
		total += b.Questions
	}
	assert.Equal(t, 3, total)
}

func TestCurrentStreak(t *testing.T) {
	now := at(15, 20, 0)
	cases := []struct {
		name string
		days []int
		want int
	}{
		{"nothing", nil, 0},
		{"today only", []int{15}, 1},
		{"today yesterday and day before", []int{15, 14, 13}, 3},
		{"inactive today keeps yesterday's run", []int{14, 13}, 2},
		{"gap yesterday ends it", []int{15, 13, 12}, 1},
		{"gap before yesterday", []int{14, 12}, 1},
		{"two days ago only", []int{13}, 0},
		{"long run", []int{15, 14, 13, 12, 11, 10, 9, 8, 7, 6}, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var activity []time.Time
			for _, d := range tc.days {
				activity = append(activity, at(d, 12, 0))
			}
			assert.Equal(t, tc.want, CurrentStreak(now, ist, 365, activity))
		})
	}
}

func TestCurrentStreakCombinesSeriesAndHonoursLookback(t *testing.T) {
	now := at(15, 8, 0)
	questions := []time.Time{at(15, 7, 0), at(13, 7, 0)}
	completions := []time.Time{at(14, 7, 0), at(12, 7, 0)}
	assert.Equal(t, 4, CurrentStreak(now, ist, 365, questions, completions))
	assert.Equal(t, 2, CurrentStreak(now, ist, 2, questions, completions))
}

func TestDerivedMetrics(t *testing.T) {
	assert.Equal(t, 0, AverageScore(0, 0))
	assert.Equal(t, 67, AverageScore(133, 2))
	assert.Equal(t, 33, AverageScore(100, 3))

	assert.Equal(t, 0.47, StudyTimeHours(4, 2))
	assert.Equal(t, 0.0, StudyTimeHours(0, 0))
	assert.Equal(t, 2.5, StudyTimeHours(30, 9))

	assert.Equal(t, 25.0, StreakProgress(5, 20))
	assert.Equal(t, 100.0, StreakProgress(40, 20))
	assert.Equal(t, 0.0, StreakProgress(3, 0))
}

func TestParsePeriod(t *testing.T) {
	assert.Equal(t, PeriodMonth, ParsePeriod(" Month "))
	assert.Equal(t, PeriodYear, ParsePeriod("year"))
	assert.Equal(t, PeriodWeek, ParsePeriod("decade"))
	assert.Equal(t, PeriodWeek, ParsePeriod(""))
}
