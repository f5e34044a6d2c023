package report

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentstation/specgate/pkg/constants"
	"github.com/agentstation/specgate/pkg/errors"
)

const namespace = "specgate"

// Registry builds a registry holding the gate gauges for d and c. c may be
// nil when no repair ran.
func Registry(d Document, c *Changes) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	checks := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "checks",
		Help:      "Number of gate checks by outcome.",
	}, []string{"status"})
	checks.WithLabelValues("pass").Set(float64(d.PassCount))
	checks.WithLabelValues("fail").Set(float64(d.FailCount))
	checks.WithLabelValues("hard_fail").Set(float64(d.HardFailCount))

	missing := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "check_missing",
		Help:      "Itemized findings per gate check.",
	}, []string{"rule", "class", "gate"})
	for _, ch := range d.Checks {
		gate := "soft"
		if ch.Hard {
			gate = "hard"
		}
		missing.WithLabelValues(ch.Rule, string(ch.Class), gate).Set(float64(ch.MissingCount))
	}

	passed := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gate_passed",
		Help:      "1 when no hard-gating check failed.",
	})
	if d.HardFailCount == 0 {
		passed.Set(1)
	}

	reg.MustRegister(checks, missing, passed)

	if c != nil {
		repairs := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "repairs",
			Help:      "Repair changes applied in the last run.",
		}, []string{"kind"})
		ledgered := 0
		for _, e := range c.Entries {
			if e.Ledgered {
				ledgered++
			}
		}
		repairs.WithLabelValues("entries").Set(float64(len(c.Entries)))
		repairs.WithLabelValues("ledgered").Set(float64(ledgered))
		repairs.WithLabelValues("sheets").Set(float64(c.SheetsAdded))
		repairs.WithLabelValues("cells").Set(float64(c.CellsChanged))
		reg.MustRegister(repairs)
	}
	return reg
}

// WriteMetrics writes the gauges for d and c to path in the node exporter
// textfile format.
func WriteMetrics(path string, d Document, c *Changes) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("mkdir", dir, err)
	}
	if err := prometheus.WriteToTextfile(path, Registry(d, c)); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
