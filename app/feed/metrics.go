package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "putcast_feed_fetches_total",
		Help: "Feed document builds by result",
	}, []string{"result"})

	crawlDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "putcast_crawl_duration_seconds",
		Help:    "Time spent crawling all roots of a feed",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
	})

	folderListings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "putcast_folder_listings_total",
		Help: "Folder listings requested from put.io",
	})

	entriesEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "putcast_entries_emitted_total",
		Help: "Feed entries emitted by link kind",
	}, []string{"kind"})
)
