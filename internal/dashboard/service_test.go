package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanket913/VoiceMitra/internal/apperr"
	"github.com/sanket913/VoiceMitra/internal/db/dbtest"
	"github.com/sanket913/VoiceMitra/internal/db/queries"
	"github.com/sanket913/VoiceMitra/internal/db/repository"
)

type memCache struct {
	mu      sync.Mutex
	entries map[string]Stats
	gens    map[uuid.UUID]int64
	err     error
	// onGeneration runs after a generation is handed out.
	onGeneration func(owner uuid.UUID)
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]Stats{}, gens: map[uuid.UUID]int64{}}
}

func (c *memCache) Get(_ context.Context, owner uuid.UUID, period string) (*Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	if s, ok := c.entries[cacheKey(owner, period)]; ok {
		return &s, nil
	}
	return nil, nil
}

func (c *memCache) Generation(_ context.Context, owner uuid.UUID) (int64, error) {
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return 0, c.err
	}
	gen := c.gens[owner]
	hook := c.onGeneration
	c.mu.Unlock()
	if hook != nil {
		hook(owner)
	}
	return gen, nil
}

func (c *memCache) SetIfCurrent(_ context.Context, owner uuid.UUID, period string, gen int64, stats Stats) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	if c.gens[owner] != gen {
		return false, nil
	}
	c.entries[cacheKey(owner, period)] = stats
	return true, nil
}

func (c *memCache) Delete(_ context.Context, owner uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.gens[owner]++
	for _, p := range periods {
		delete(c.entries, cacheKey(owner, p))
	}
	return nil
}

var now = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time { return now.AddDate(0, 0, -n) }

func tsAt(t time.Time) pgtype.Timestamptz { return pgtype.Timestamptz{Time: t, Valid: true} }

func seedActivity(store *dbtest.MemStore, owner uuid.UUID) {
	question := func(subject pgtype.Text, lang string, at time.Time) {
		store.PutQuestion(queries.Question{
			UserID:    repository.PgUUID(owner),
			Question:  "Q at " + at.Format(time.RFC3339),
			Answer:    "A",
			Language:  lang,
			Subject:   subject,
			CreatedAt: tsAt(at),
		})
	}
	question(pgtype.Text{String: "Math", Valid: true}, "en", daysAgo(0).Add(-time.Hour))
	question(pgtype.Text{String: "", Valid: true}, "hi", daysAgo(1))
	question(pgtype.Text{}, "hi", daysAgo(2))
	question(pgtype.Text{String: "Science", Valid: true}, "en", daysAgo(20))

	quiz := func(title string, score *int32, completed time.Time) {
		z := queries.Quiz{
			UserID:     repository.PgUUID(owner),
			Title:      title,
			Subject:    "Math",
			Difficulty: "beginner",
			Language:   "en",
			Questions:  []byte(`[]`),
			CreatedAt:  tsAt(daysAgo(30)),
		}
		if score != nil {
			z.Score = pgtype.Int4{Int32: *score, Valid: true}
			z.CompletedAt = tsAt(completed)
		}
		store.PutQuiz(z)
	}
	full, third := int32(100), int32(33)
	quiz("A", &full, daysAgo(0).Add(-2*time.Hour))
	quiz("B", &third, daysAgo(3))
	quiz("C", nil, time.Time{})
}

func newTestService(store *dbtest.MemStore, cache StatsCache) *Service {
	return NewService(repository.NewActivityRepository(store), cache, ServiceOptions{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	}, zerolog.Nop())
}

func TestStatsAggregatesActivity(t *testing.T) {
	store := dbtest.NewMemStore()
	owner := uuid.New()
	seedActivity(store, owner)
	seedActivity(store, uuid.New())
	svc := newTestService(store, nil)

	stats, err := svc.Stats(context.Background(), owner, "week")
	require.NoError(t, err)

	c := stats.Stats
	assert.Equal(t, int64(4), c.TotalQuestions)
	assert.Equal(t, int64(3), c.TotalQuizzes)
	assert.Equal(t, int64(2), c.CompletedQuizzes)
	assert.Equal(t, 67, c.AverageScore)
	assert.Equal(t, 0.47, c.StudyTimeHours)
	assert.Equal(t, 4, c.CurrentStreak)
	assert.Equal(t, 20, c.MonthlyGoal)
	assert.Equal(t, 20.0, c.StreakProgress)
	assert.Equal(t, PeriodWeek, c.Period)
	assert.Equal(t, int64(3), c.PeriodQuestions)
	assert.Equal(t, int64(2), c.PeriodQuizzes)

	assert.Equal(t, []SubjectCount{
		{Subject: GeneralSubject, Count: 2},
		{Subject: "Math", Count: 1},
		{Subject: "Science", Count: 1},
	}, stats.Charts.Subjects)
	assert.Equal(t, []LanguageCount{{Language: "en", Count: 2}, {Language: "hi", Count: 2}}, stats.Charts.Languages)

	week := stats.Charts.WeeklyActivity
	require.Len(t, week, WeekDays)
	assert.Equal(t, "2024-05-15", week[6].Date)
	assert.Equal(t, DayActivity{Date: "2024-05-15", Day: "Wed", Questions: 1, Quizzes: 1}, week[6])
	assert.Equal(t, 1, week[5].Questions)
	assert.Equal(t, 1, week[4].Questions)
	assert.Equal(t, 1, week[3].Quizzes)

	require.Len(t, stats.RecentActivity.Questions, 4)
	assert.Equal(t, "Math", stats.RecentActivity.Questions[0].Subject)
	assert.Equal(t, GeneralSubject, stats.RecentActivity.Questions[1].Subject)
	require.Len(t, stats.RecentActivity.Quizzes, 2)
	assert.Equal(t, "A", stats.RecentActivity.Quizzes[0].Title)
	assert.Equal(t, 100, *stats.RecentActivity.Quizzes[0].Score)
}

func TestStatsPeriodOnlyAffectsPeriodCounters(t *testing.T) {
	store := dbtest.NewMemStore()
	owner := uuid.New()
	seedActivity(store, owner)
	svc := newTestService(store, nil)

	week, err := svc.Stats(context.Background(), owner, "bogus")
	require.NoError(t, err)
	month, err := svc.Stats(context.Background(), owner, "month")
	require.NoError(t, err)

	assert.Equal(t, PeriodWeek, week.Stats.Period)
	assert.Equal(t, int64(3), week.Stats.PeriodQuestions)
	assert.Equal(t, PeriodMonth, month.Stats.Period)
	assert.Equal(t, int64(4), month.Stats.PeriodQuestions)
	assert.Equal(t, week.Stats.TotalQuestions, month.Stats.TotalQuestions)
	assert.Equal(t, week.Charts.WeeklyActivity, month.Charts.WeeklyActivity)
}

func TestStatsEmptyOwner(t *testing.T) {
	svc := newTestService(dbtest.NewMemStore(), nil)

	stats, err := svc.Stats(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.Zero(t, stats.Stats.AverageScore)
	assert.Zero(t, stats.Stats.CurrentStreak)
	assert.Len(t, stats.Charts.WeeklyActivity, WeekDays)
	assert.NotNil(t, stats.Charts.Subjects)
	assert.NotNil(t, stats.RecentActivity.Questions)
}

func TestStatsErrors(t *testing.T) {
	store := dbtest.NewMemStore()
	svc := newTestService(store, nil)

	_, err := svc.Stats(context.Background(), uuid.Nil, "week")
	assert.True(t, apperr.Is(err, apperr.KindNotAuthenticated))

	store.Fail = errors.New("db down")
	_, err = svc.Stats(context.Background(), uuid.New(), "week")
	assert.True(t, apperr.Is(err, apperr.KindStorage))
}

func TestStatsCacheHitAndInvalidate(t *testing.T) {
	store := dbtest.NewMemStore()
	owner := uuid.New()
	cache := newMemCache()
	svc := newTestService(store, cache)

	first, err := svc.Stats(context.Background(), owner, "week")
	require.NoError(t, err)
	assert.Zero(t, first.Stats.TotalQuestions)

	seedActivity(store, owner)
	cached, err := svc.Stats(context.Background(), owner, "week")
	require.NoError(t, err)
	assert.Zero(t, cached.Stats.TotalQuestions)

	svc.Invalidate(context.Background(), owner)
	fresh, err := svc.Stats(context.Background(), owner, "week")
	require.NoError(t, err)
	assert.Equal(t, int64(4), fresh.Stats.TotalQuestions)
}

func TestStatsNotCachedWhenInvalidatedMidCompute(t *testing.T) {
	store := dbtest.NewMemStore()
	owner := uuid.New()
	cache := newMemCache()
	svc := newTestService(store, cache)

	cache.onGeneration = func(o uuid.UUID) {
		cache.onGeneration = nil
		seedActivity(store, o)
		svc.Invalidate(context.Background(), o)
	}

	_, err := svc.Stats(context.Background(), owner, "week")
	require.NoError(t, err)

	cached, err := cache.Get(context.Background(), owner, PeriodWeek)
	require.NoError(t, err)
	assert.Nil(t, cached)

	fresh, err := svc.Stats(context.Background(), owner, "week")
	require.NoError(t, err)
	assert.Equal(t, int64(4), fresh.Stats.TotalQuestions)
}

func TestStatsSurvivesCacheFailure(t *testing.T) {
	store := dbtest.NewMemStore()
	owner := uuid.New()
	seedActivity(store, owner)
	cache := newMemCache()
	cache.err = errors.New("redis down")
	svc := newTestService(store, cache)

	stats, err := svc.Stats(context.Background(), owner, "week")
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Stats.TotalQuestions)
	svc.Invalidate(context.Background(), owner)
}

func TestRedisCacheUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewRedisCache(client, 0)
	assert.Equal(t, defaultCacheTTL, cache.ttl)

	store := dbtest.NewMemStore()
	owner := uuid.New()
	seedActivity(store, owner)
	svc := newTestService(store, cache)

	stats, err := svc.Stats(context.Background(), owner, "year")
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Stats.PeriodQuestions)
}

func TestCacheKey(t *testing.T) {
	owner := uuid.MustParse("6f1c1e8e-3c1b-4c55-9d59-2d0f7f2c9a11")
	assert.Equal(t, "dashboard:stats:6f1c1e8e-3c1b-4c55-9d59-2d0f7f2c9a11:month", cacheKey(owner, PeriodMonth))
	assert.Equal(t, "dashboard:gen:6f1c1e8e-3c1b-4c55-9d59-2d0f7f2c9a11", genKey(owner))
}
