// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PageCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_page_cache_lookups_total",
		Help: "Page cache lookups by result (hit, miss).",
	}, []string{"result"})

	PageCacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_page_cache_errors_total",
		Help: "Page cache store failures that were bypassed, by operation.",
	}, []string{"op"})

	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yatube_posts_created_total",
		Help: "Posts created.",
	})

	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yatube_comments_created_total",
		Help: "Comments created.",
	})

	MailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_mails_sent_total",
		Help: "Shared post mails by outcome (sent, failed).",
	}, []string{"outcome"})
)
