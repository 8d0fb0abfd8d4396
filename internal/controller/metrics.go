/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

func init() {
	metrics.Registry.MustRegister(resolutionStatusMetric, renderStatusMetric)
}

var (
	resolutionStatusMetric = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kubizone_resolution_status",
			Help: "Zone/Record resolution outcomes seen, by kind and reason; each series stays at 1 until the object is deleted",
		},
		[]string{"kind", "name", "namespace", "reason"},
	)

	renderStatusMetric = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kubizone_zonefile_render_status",
			Help: "ZoneFile render outcomes seen, by reason; each series stays at 1 until the ZoneFile is deleted",
		},
		[]string{"name", "namespace", "reason"},
	)
)

func updateResolutionMetric(kind, name, namespace, reason string) {
	resolutionStatusMetric.With(prometheus.Labels{
		"kind":      kind,
		"name":      name,
		"namespace": namespace,
		"reason":    reason,
	}).Set(1)
}

func removeResolutionMetric(kind, name, namespace string) {
	resolutionStatusMetric.DeletePartialMatch(prometheus.Labels{
		"kind":      kind,
		"name":      name,
		"namespace": namespace,
	})
}

func removeRenderMetric(name, namespace string) {
	renderStatusMetric.DeletePartialMatch(prometheus.Labels{
		"name":      name,
		"namespace": namespace,
	})
}

func updateRenderMetric(name, namespace, reason string) {
	renderStatusMetric.With(prometheus.Labels{
		"name":      name,
		"namespace": namespace,
		"reason":    reason,
	}).Set(1)
}

func getResolutionMetric(kind, name, namespace, reason string) float64 {
	return testutil.ToFloat64(resolutionStatusMetric.With(prometheus.Labels{
		"kind":      kind,
		"name":      name,
		"namespace": namespace,
		"reason":    reason,
	}))
}

//nolint:unparam
func getRenderMetric(name, namespace, reason string) float64 {
	return testutil.ToFloat64(renderStatusMetric.With(prometheus.Labels{
		"name":      name,
		"namespace": namespace,
		"reason":    reason,
	}))
}
