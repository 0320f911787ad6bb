// Package metrics holds the signup server's counters. Services record through
// go-kit metric interfaces; the server backs them with Prometheus and tests
// use discard or generic implementations.
package metrics

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const namespace = "authsignup"

type Metrics struct {
	// TokensGenerated counts signup tokens written to contacts.
	TokensGenerated metrics.Counter
	// Signups counts completed signups, labelled by "branch".
	Signups metrics.Counter
	// SignupFailures counts rejected signups, labelled by "reason".
	SignupFailures metrics.Counter
	// Requests counts gRPC calls, labelled by "method" and "code".
	Requests metrics.Counter
	// RequestDuration observes gRPC call latency in seconds, labelled by "method".
	RequestDuration metrics.Histogram
}

// NewPrometheus registers the collectors on reg and returns metrics backed
// by them. Registering twice on the same registry panics.
func NewPrometheus(reg stdprometheus.Registerer) *Metrics {
	tokens := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signup_tokens_generated_total",
		Help:      "Signup tokens issued to contacts",
	}, []string{})
	signups := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Completed signups by branch",
	}, []string{"branch"})
	failures := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signup_failures_total",
		Help:      "Rejected signups by reason",
	}, []string{"reason"})
	requests := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace: namespace,
		Name:      "grpc_requests_total",
		Help:      "gRPC calls by method and status code",
	}, []string{"method", "code"})
	duration := stdprometheus.NewHistogramVec(stdprometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "grpc_request_duration_seconds",
		Help:      "gRPC call latency",
		Buckets:   stdprometheus.DefBuckets,
	}, []string{"method"})

	reg.MustRegister(tokens, signups, failures, requests, duration)

	return &Metrics{
		TokensGenerated: kitprometheus.NewCounter(tokens),
		Signups:         kitprometheus.NewCounter(signups),
		SignupFailures:  kitprometheus.NewCounter(failures),
		Requests:        kitprometheus.NewCounter(requests),
		RequestDuration: kitprometheus.NewHistogram(duration),
	}
}

// Discard returns metrics that record nothing.
func Discard() *Metrics {
	return &Metrics{
		TokensGenerated: discard.NewCounter(),
		Signups:         discard.NewCounter(),
		SignupFailures:  discard.NewCounter(),
		Requests:        discard.NewCounter(),
		RequestDuration: discard.NewHistogram(),
	}
}
