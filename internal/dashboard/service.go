// Package dashboard aggregates a student's questions and quizzes into
// learning statistics: totals, a seven day activity series, the current
// streak and subject/language breakdowns.
package dashboard

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sanket913/VoiceMitra/internal/apperr"
	"github.com/sanket913/VoiceMitra/internal/db/queries"
	"github.com/sanket913/VoiceMitra/internal/db/repository"
	"github.com/sanket913/VoiceMitra/internal/logging"
	"github.com/sanket913/VoiceMitra/internal/metrics"
)

const (
	topSubjects = 10
	recentLimit = 10
)

// ServiceOptions configures aggregation.
type ServiceOptions struct {
	// Location decides local day boundaries. Nil means time.Local.
	Location           *time.Location
	StreakLookbackDays int
	MonthlyGoal        int
	Now                func() time.Time
}

type Service struct {
	repo     *repository.ActivityRepository
	cache    StatsCache
	loc      *time.Location
	lookback int
	goal     int
	now      func() time.Time
	logger   zerolog.Logger
}

// NewService builds the aggregator. cache may be nil.
func NewService(repo *repository.ActivityRepository, cache StatsCache, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.StreakLookbackDays <= 0 {
		opts.StreakLookbackDays = 365
	}
	if opts.MonthlyGoal <= 0 {
		opts.MonthlyGoal = 20
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		loc:      opts.Location,
		lookback: opts.StreakLookbackDays,
		goal:     opts.MonthlyGoal,
		now:      opts.Now,
		logger:   logging.Component(logger, "dashboard"),
	}
}

// Stats returns the dashboard for owner. Unknown periods fall back to week.
func (s *Service) Stats(ctx context.Context, owner uuid.UUID, rawPeriod string) (Stats, error) {
	if owner == uuid.Nil {
		return Stats{}, apperr.NotAuthenticated()
	}
	period := ParsePeriod(rawPeriod)

	gen, cacheable := int64(0), false
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, owner, period)
		switch {
		case err != nil:
			metrics.StatsCacheLookups.WithLabelValues("error").Inc()
			s.logger.Warn().Err(err).Str("user_id", owner.String()).Msg("stats cache read failed")
		case cached != nil:
			metrics.StatsCacheLookups.WithLabelValues("hit").Inc()
			return *cached, nil
		default:
			metrics.StatsCacheLookups.WithLabelValues("miss").Inc()
			gen, err = s.cache.Generation(ctx, owner)
			cacheable = err == nil
		}
	}

	stats, err := s.compute(ctx, owner, period)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", owner.String()).Msg("failed to compute dashboard stats")
		return Stats{}, apperr.Storage("Failed to fetch dashboard stats", err)
	}

	if cacheable {
		stored, err := s.cache.SetIfCurrent(ctx, owner, period, gen, stats)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("user_id", owner.String()).Msg("stats cache write failed")
		case !stored:
			s.logger.Debug().Str("user_id", owner.String()).Msg("stats invalidated during compute; not cached")
		}
	}
	return stats, nil
}

// Invalidate drops cached stats for owner. Failures are logged only.
func (s *Service) Invalidate(ctx context.Context, owner uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, owner); err != nil {
		s.logger.Warn().Err(err).Str("user_id", owner.String()).Msg("stats cache invalidation failed")
	}
}

func (s *Service) compute(ctx context.Context, owner uuid.UUID, period string) (Stats, error) {
	now := s.now()

	totals, err := s.repo.Totals(ctx, owner)
	if err != nil {
		return Stats{}, err
	}
	periodQuestions, periodQuizzes, err := s.repo.PeriodCounts(ctx, owner, periodStart(now, period))
	if err != nil {
		return Stats{}, err
	}

	window := s.lookback
	if window < WeekDays {
		window = WeekDays
	}
	since := startOfDay(now, s.loc).AddDate(0, 0, -(window - 1))
	questionTimes, completionTimes, err := s.repo.ActivityTimes(ctx, owner, since)
	if err != nil {
		return Stats{}, err
	}

	subjectRows, err := s.repo.SubjectCounts(ctx, owner)
	if err != nil {
		return Stats{}, err
	}
	languageRows, err := s.repo.LanguageCounts(ctx, owner)
	if err != nil {
		return Stats{}, err
	}
	recentQuestions, err := s.repo.RecentQuestions(ctx, owner, recentLimit)
	if err != nil {
		return Stats{}, err
	}
	recentQuizzes, err := s.repo.RecentCompletedQuizzes(ctx, owner, recentLimit)
	if err != nil {
		return Stats{}, err
	}

	streak := CurrentStreak(now, s.loc, s.lookback, questionTimes, completionTimes)
	return Stats{
		Stats: Counters{
			TotalQuestions:   totals.Questions,
			TotalQuizzes:     totals.Quizzes,
			CompletedQuizzes: totals.CompletedQuizzes,
			AverageScore:     AverageScore(totals.ScoreSum, totals.ScoredQuizzes),
			StudyTimeHours:   StudyTimeHours(totals.Questions, totals.CompletedQuizzes),
			CurrentStreak:    streak,
			MonthlyGoal:      s.goal,
			StreakProgress:   StreakProgress(streak, s.goal),
			Period:           period,
			PeriodQuestions:  periodQuestions,
			PeriodQuizzes:    periodQuizzes,
		},
		RecentActivity: RecentActivity{
			Questions: toRecentQuestions(recentQuestions),
			Quizzes:   toRecentQuizzes(recentQuizzes),
		},
		Charts: Charts{
			Subjects:       SubjectDistribution(subjectRows),
			Languages:      LanguageDistribution(languageRows),
			WeeklyActivity: WeeklyActivity(now, s.loc, questionTimes, completionTimes),
		},
		GeneratedAt: now.UTC(),
	}, nil
}

func subjectLabel(raw string, valid bool) string {
	if s := strings.TrimSpace(raw); valid && s != "" {
		return s
	}
	return GeneralSubject
}

// SubjectDistribution merges missing and blank subjects under General and
// returns the top subjects by count.
func SubjectDistribution(rows []queries.SubjectCountRow) []SubjectCount {
	merged := make(map[string]int64, len(rows))
	for _, r := range rows {
		merged[subjectLabel(r.Subject.String, r.Subject.Valid)] += r.Count
	}
	out := make([]SubjectCount, 0, len(merged))
	for subject, n := range merged {
		out = append(out, SubjectCount{Subject: subject, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Subject < out[j].Subject
	})
	if len(out) > topSubjects {
		out = out[:topSubjects]
	}
	return out
}

// LanguageDistribution sorts language counts, largest first.
func LanguageDistribution(rows []queries.LanguageCountRow) []LanguageCount {
	out := make([]LanguageCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, LanguageCount{Language: r.Language, Count: r.Count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Language < out[j].Language
	})
	return out
}

func toRecentQuestions(rows []queries.Question) []RecentQuestion {
	out := make([]RecentQuestion, 0, len(rows))
	for _, r := range rows {
		out = append(out, RecentQuestion{
			ID:        repository.UUID(r.QuestionID),
			Question:  r.Question,
			Subject:   subjectLabel(r.Subject.String, r.Subject.Valid),
			Language:  r.Language,
			CreatedAt: r.CreatedAt.Time,
		})
	}
	return out
}

func toRecentQuizzes(rows []queries.Quiz) []RecentQuiz {
	out := make([]RecentQuiz, 0, len(rows))
	for _, r := range rows {
		q := RecentQuiz{
			ID:          repository.UUID(r.QuizID),
			Title:       r.Title,
			Subject:     r.Subject,
			Language:    r.Language,
			CompletedAt: r.CompletedAt.Time,
		}
		if r.Score.Valid {
			score := int(r.Score.Int32)
			q.Score = &score
		}
		out = append(out, q)
	}
	return out
}
