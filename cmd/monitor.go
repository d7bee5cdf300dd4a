package cmd

import (
	"expvar"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CraigKelly/housegibbs/model"
	"github.com/CraigKelly/housegibbs/sampler"
)

// monitor publishes chain progress over HTTP: expvar JSON at /debug/vars and
// prometheus gauges at /metrics
type monitor struct {
	addr    string
	runID   string
	log     *log.Logger
	info    *expvar.Map
	stopped chan struct{}
	server  *http.Server
	bound   string

	registry *prometheus.Registry

	Updates      *expvar.Int
	BurnIn       *expvar.Int
	Sweeps       *expvar.Int
	TotalSamples *expvar.Int
	RunTime      *expvar.Float
	MaxHellinger *expvar.Float
	MaxJSD       *expvar.Float

	sweepGauge  prometheus.Gauge
	sampleGauge prometheus.Gauge
	convergence *prometheus.GaugeVec
	posterior   *prometheus.GaugeVec
	started     time.Time
}

func newMonitor(addr string, runID string, logger *log.Logger) *monitor {
	m := &monitor{
		addr:     addr,
		runID:    runID,
		log:      logger,
		info:     new(expvar.Map).Init(),
		registry: prometheus.NewRegistry(),

		Updates:      new(expvar.Int),
		BurnIn:       new(expvar.Int),
		Sweeps:       new(expvar.Int),
		TotalSamples: new(expvar.Int),
		RunTime:      new(expvar.Float),
		MaxHellinger: new(expvar.Float),
		MaxJSD:       new(expvar.Float),

		started: time.Now(),
	}

	m.info.Set("Updates", m.Updates)
	m.info.Set("Burn-In", m.BurnIn)
	m.info.Set("Sweeps", m.Sweeps)
	m.info.Set("Total-Samples", m.TotalSamples)
	m.info.Set("Run-Time", m.RunTime)
	m.info.Set("Last-Max-Hellinger", m.MaxHellinger)
	m.info.Set("Last-Max-JSD", m.MaxJSD)

	labels := prometheus.Labels{"run": runID}
	m.sweepGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "housegibbs",
		Name:        "sweeps",
		Help:        "Completed sweeps over the free variables",
		ConstLabels: labels,
	})
	m.sampleGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "housegibbs",
		Name:        "samples",
		Help:        "Total variable updates so far",
		ConstLabels: labels,
	})
	m.convergence = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   "housegibbs",
		Name:        "split_half_hellinger",
		Help:        "Hellinger distance between the halves of each variable's recent history",
		ConstLabels: labels,
	}, []string{"variable"})
	m.posterior = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   "housegibbs",
		Name:        "posterior",
		Help:        "Current post burn-in estimate for each query value",
		ConstLabels: labels,
	}, []string{"value"})

	m.registry.MustRegister(m.sweepGauge, m.sampleGauge, m.convergence, m.posterior)

	return m
}

// Start begins serving. It may only be called once.
func (m *monitor) Start() error {
	if m.server != nil {
		return errors.Errorf("BUG: You may only start the process monitor once")
	}

	lis, err := net.Listen("tcp", m.addr)
	if err != nil {
		return errors.Wrapf(err, "Monitor could not listen on %s", m.addr)
	}
	m.bound = lis.Addr().String()

	// Run ID keeps the published name unique within the process
	expvar.Publish("housegibbs-"+m.runID, m.info)

	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/vars", http.StatusTemporaryRedirect)
	})

	m.stopped = make(chan struct{})
	m.server = &http.Server{Handler: mux}

	go func() {
		defer close(m.stopped)
		if err := m.server.Serve(lis); err != nil && err != http.ErrServerClosed {
			m.log.Printf("Monitor stopped with error: %v\n", err)
		}
	}()

	m.log.Printf("HTTP now available at %v (see /debug/vars and /metrics)\n", m.bound)
	return nil
}

// Stop shuts the server down, waiting a short time for it to exit
func (m *monitor) Stop() {
	if m.server == nil {
		return
	}

	m.server.Close()

	select {
	case <-m.stopped:
		m.log.Printf("HTTP Info Stopped\n")
	case <-time.After(2 * time.Second):
		m.log.Printf("HTTP would NOT stop: just continuing on\n")
	}
}

// Update copies the chain's progress into the published values
func (m *monitor) Update(c *sampler.Chain) {
	m.Updates.Set(c.Updates)
	m.BurnIn.Set(c.BurnIn)
	m.Sweeps.Set(int64(c.Sweep()))
	m.TotalSamples.Set(c.TotalSampleCount)
	m.RunTime.Set(time.Since(m.started).Seconds())

	m.sweepGauge.Set(float64(c.Sweep()))
	m.sampleGauge.Set(float64(c.TotalSampleCount))

	maxHel := 0.0
	for id, d := range c.Convergence(model.HellingerDiff) {
		m.convergence.WithLabelValues(c.Target.Vars[id].Name).Set(d)
		if d > maxHel {
			maxHel = d
		}
	}
	m.MaxHellinger.Set(maxHel)

	maxJSD := 0.0
	for _, d := range c.Convergence(model.JSDivergence) {
		if d > maxJSD {
			maxJSD = d
		}
	}
	m.MaxJSD.Set(maxJSD)

	// Nothing counted until burn-in is done
	if c.Sweep() > c.BurnSweeps {
		q := c.Marginals()[c.Query.ID]
		for val, p := range q.MarginalMap() {
			m.posterior.WithLabelValues(val).Set(p)
		}
	}
}
