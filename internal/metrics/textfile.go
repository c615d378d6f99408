package metrics

import (
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes all metrics gathered from g to path in the Prometheus
// text exposition format (suitable for the node-exporter textfile collector).
func WriteTextfile(path string, g prom.Gatherer) error {
	if err := prom.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
