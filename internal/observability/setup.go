package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var (
	// Global logger instance
	Logger *zap.Logger

	// Metrics
	admissionDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_decisions_total",
			Help: "Total number of admission decisions by outcome",
		},
		[]string{"action"},
	)

	guardViolationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guard_violations_total",
			Help: "Total number of spam guard violations by kind",
		},
		[]string{"kind"},
	)

	classifierVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_verdicts_total",
			Help: "Total number of content classifier verdicts by severity",
		},
		[]string{"severity"},
	)

	classifierFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "classifier_failures_total",
			Help: "Total number of failed-open external classifier calls",
		},
	)

	bansCleanedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bans_cleaned_total",
			Help: "Total number of expired ban records removed by the sweep",
		},
	)

	admissionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admission_duration_seconds",
			Help:    "Time spent running the admission pipeline",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func Init(ctx context.Context, metricsAddr string) error {
	// Initialize logger
	var err error
	Logger, err = zap.NewProduction()
	if err != nil {
		return err
	}

	// Register metrics
	prometheus.MustRegister(admissionDecisionsTotal)
	prometheus.MustRegister(guardViolationsTotal)
	prometheus.MustRegister(classifierVerdictsTotal)
	prometheus.MustRegister(classifierFailuresTotal)
	prometheus.MustRegister(bansCleanedTotal)
	prometheus.MustRegister(admissionDuration)

	// Setup OpenTelemetry (simplified setup)
	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	// Start Prometheus metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.WithError(err).Error("metrics server failed")
		}
	}()

	return nil
}

// RecordAdmissionDecision records the outcome of one admission pipeline run
func RecordAdmissionDecision(action string) {
	admissionDecisionsTotal.WithLabelValues(action).Inc()
}

// RecordGuardViolation records a spam guard violation
func RecordGuardViolation(kind string) {
	guardViolationsTotal.WithLabelValues(kind).Inc()
}

// RecordClassifierVerdict records a content classifier verdict severity
func RecordClassifierVerdict(severity string) {
	classifierVerdictsTotal.WithLabelValues(severity).Inc()
}

// RecordClassifierFailure records a failed-open classifier call
func RecordClassifierFailure() {
	classifierFailuresTotal.Inc()
}

// RecordBansCleaned records expired ban records removed by the sweep
func RecordBansCleaned(n int) {
	bansCleanedTotal.Add(float64(n))
}

// StartAdmission returns a function to record admission pipeline duration
func StartAdmission() func(status string) {
	start := time.Now()
	return func(status string) {
		admissionDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
}
