// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voicemitra",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voicemitra",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voicemitra",
		Name:      "generation_duration_seconds",
		Help:      "Latency of AI generation calls.",
		Buckets:   []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
	}, []string{"operation"})

	GenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voicemitra",
		Name:      "generation_failures_total",
		Help:      "AI generation failures by operation and reason.",
	}, []string{"operation", "reason"})

	QuizzesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voicemitra",
		Name:      "quizzes_created_total",
		Help:      "Quizzes created by difficulty and language.",
	}, []string{"difficulty", "language"})

	QuizSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voicemitra",
		Name:      "quiz_submissions_total",
		Help:      "Answer submissions accepted.",
	})

	QuizScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "voicemitra",
		Name:      "quiz_score_percent",
		Help:      "Distribution of submitted quiz scores.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})

	QuestionsAsked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voicemitra",
		Name:      "questions_asked_total",
		Help:      "Q&A questions answered by language and input mode.",
	}, []string{"language", "voice"})

	StatsCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voicemitra",
		Name:      "dashboard_cache_lookups_total",
		Help:      "Dashboard stats cache lookups by result.",
	}, []string{"result"})
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument records request count and latency under a fixed route label.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
	})
}
