// Package metric provides Prometheus metrics for shardkv.
package metric

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/shardkv/pkg/cmap"
)

// StatsSource reports store size. *memory.Store implements it.
type StatsSource interface {
	Stats() []cmap.ShardStats
}

// Collector reports store size at scrape time.
type Collector struct {
	src       StatsSource
	keys      *prometheus.Desc
	shardKeys *prometheus.Desc
}

// NewCollector creates a collector reading from src.
func NewCollector(src StatsSource) *Collector {
	return &Collector{
		src: src,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "keys"),
			"Keys currently held by the store.",
			nil, nil,
		),
		shardKeys: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "shard_keys"),
			"Keys currently held by each shard.",
			[]string{"shard"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.shardKeys
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	total := 0
	for _, s := range c.src.Stats() {
		total += s.Count
		ch <- prometheus.MustNewConstMetric(c.shardKeys, prometheus.GaugeValue,
			float64(s.Count), strconv.Itoa(s.Index))
	}
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(total))
}
