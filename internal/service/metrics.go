package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noteSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kb",
		Name:      "note_saves_total",
		Help:      "Note updates by result.",
	}, []string{"result"})

	tagConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kb",
		Name:      "tag_title_conflicts_total",
		Help:      "Tag create or rename rejected because the normalized title is taken.",
	})

	listingCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kb",
		Name:      "listing_coalesced_total",
		Help:      "Listing requests answered by an in-flight identical request.",
	})

	notesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kb",
		Name:      "notes",
		Help:      "Notes stored, refreshed by the stats task.",
	})
	tagsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kb",
		Name:      "tags",
		Help:      "Tags stored, refreshed by the stats task.",
	})
	noteTagsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kb",
		Name:      "note_tags",
		Help:      "Note-tag associations stored, refreshed by the stats task.",
	})
	ownersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kb",
		Name:      "owners",
		Help:      "Users owning at least one note or tag.",
	})
)

const (
	saveOK       = "ok"
	saveConflict = "conflict"
	saveNotFound = "not_found"
	saveError    = "error"
)
