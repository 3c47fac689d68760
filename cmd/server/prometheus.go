package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/retrodisk/defragsim/simulator"
)

var (
	// Prometheus metrics (gauges)
	promMetrics = struct {
		phase           prometheus.Gauge
		clustersMoved   prometheus.Gauge
		clustersTotal   prometheus.Gauge
		progressPercent prometheus.Gauge
		stallTicks      prometheus.Gauge
		clusterStates   *prometheus.GaugeVec
	}{
		phase: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "defrag_phase",
			Help: "Current phase (0=initializing, 1=analyzing, 2=defragmenting, 3=finished)",
		}),
		clustersMoved: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "defrag_clusters_moved",
			Help: "Clusters relocated so far",
		}),
		clustersTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "defrag_clusters_total",
			Help: "Total clusters scheduled to move",
		}),
		progressPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "defrag_progress_percent",
			Help: "Defragmentation progress percentage",
		}),
		stallTicks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "defrag_stall_ticks",
			Help: "Ticks with no eligible move",
		}),
		clusterStates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "defrag_cluster_state_count",
			Help: "Cluster count per state",
		}, []string{"state"}),
	}
)

func initPrometheusMetrics() {
	prometheus.MustRegister(
		promMetrics.phase,
		promMetrics.clustersMoved,
		promMetrics.clustersTotal,
		promMetrics.progressPercent,
		promMetrics.stallTicks,
		promMetrics.clusterStates,
	)
}

func updatePrometheusMetrics(snap *simulator.Snapshot) {
	promMetrics.phase.Set(float64(snap.Phase))
	promMetrics.clustersMoved.Set(float64(snap.Stats.MovedClusters))
	promMetrics.clustersTotal.Set(float64(snap.Stats.TotalToMove))
	promMetrics.progressPercent.Set(snap.Stats.ProgressPercent())
	promMetrics.stallTicks.Set(float64(snap.Stats.StallTicks))

	counts := make(map[simulator.ClusterState]int)
	for _, c := range snap.Cells {
		counts[c]++
	}
	for _, s := range []simulator.ClusterState{
		simulator.StateUnused, simulator.StateUsed, simulator.StatePending,
		simulator.StateBad, simulator.StateUnmovable,
		simulator.StateReading, simulator.StateWriting,
	} {
		promMetrics.clusterStates.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
}
