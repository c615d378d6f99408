// Package metrics provides build metrics for the landscape builder.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default and does nothing; PrometheusRecorder registers collectors on a
// Prometheus registry which can be written to a node-exporter textfile after
// a build (see WriteTextfile).
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	// ... run the build with rec ...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
