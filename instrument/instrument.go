// Package instrument wraps a *triecache.Cache with structured logging and
// Prometheus metrics, without altering cache semantics. Rather than
// bridging the core engine to a host process via byte-buffer marshalling,
// this package bridges it to a Go process's observability stack.
package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/triecache/triecache"
)

// Cache decorates a *triecache.Cache with logging and metrics. It adds no
// synchronization: the same single-threaded-caller contract as the
// wrapped Cache applies.
type Cache struct {
	inner         *triecache.Cache
	log           *zap.Logger
	metric        metrics
	lastEvictions uint64
}

type metrics struct {
	ops       *prometheus.CounterVec
	evictions prometheus.Counter
	keys      prometheus.Gauge
	bytes     prometheus.Gauge
}

// New wraps cache, logging through logger and registering metrics on reg.
// Passing a nil logger uses zap.NewNop(); passing a nil registerer skips
// metrics registration entirely (useful in tests).
func New(cache *triecache.Cache, logger *zap.Logger, reg prometheus.Registerer) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triecache",
			Name:      "operations_total",
			Help:      "Count of cache operations by name and outcome.",
		}, []string{"op", "outcome"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "triecache",
			Name:      "evictions_total",
			Help:      "Count of LRU-triggered evictions.",
		}),
		keys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "triecache",
			Name:      "keys",
			Help:      "Current number of live keys.",
		}),
		bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "triecache",
			Name:      "accounted_bytes",
			Help:      "Current indexSize+metaSize+dataSize.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.ops, m.evictions, m.keys, m.bytes)
	}

	return &Cache{inner: cache, log: logger, metric: m}
}

// Store mirrors triecache.Cache.Store, logging the outcome and updating
// metrics.
func (c *Cache) Store(key, value []byte, flags byte) (triecache.Status, error) {
	status, err := c.inner.Store(key, value, flags)
	c.refreshGauges()

	if err != nil {
		c.log.Error("store failed", zap.Error(err), zap.Int("keyLen", len(key)))
		c.metric.ops.WithLabelValues("store", "error").Inc()
		return status, err
	}

	outcome := "add"
	if status == triecache.StatusReplace {
		outcome = "replace"
	}
	c.metric.ops.WithLabelValues("store", outcome).Inc()
	c.log.Debug("store", zap.String("status", status.String()), zap.Int("keyLen", len(key)), zap.Int("valueLen", len(value)))
	return status, nil
}

// Fetch mirrors triecache.Cache.Fetch.
func (c *Cache) Fetch(key []byte) ([]byte, byte, error) {
	v, flags, err := c.inner.Fetch(key)
	c.observeLookup("fetch", err)
	return v, flags, err
}

// Peek mirrors triecache.Cache.Peek.
func (c *Cache) Peek(key []byte) ([]byte, byte, error) {
	v, flags, err := c.inner.Peek(key)
	c.observeLookup("peek", err)
	return v, flags, err
}

// Has mirrors triecache.Cache.Has.
func (c *Cache) Has(key []byte) bool {
	return c.inner.Has(key)
}

// Remove mirrors triecache.Cache.Remove.
func (c *Cache) Remove(key []byte) error {
	err := c.inner.Remove(key)
	c.observeLookup("remove", err)
	c.refreshGauges()
	return err
}

// Clear mirrors triecache.Cache.Clear.
func (c *Cache) Clear() {
	c.inner.Clear()
	c.log.Info("clear")
	c.refreshGauges()
}

// ClearSlice mirrors triecache.Cache.ClearSlice.
func (c *Cache) ClearSlice(slice1 byte) {
	c.inner.ClearSlice(slice1)
	c.log.Info("clear slice", zap.Uint8("slice1", slice1))
	c.refreshGauges()
}

// ClearSlices mirrors triecache.Cache.ClearSlices.
func (c *Cache) ClearSlices(char1, char2 byte) {
	c.inner.ClearSlices(char1, char2)
	c.log.Info("clear slices", zap.Uint8("char1", char1), zap.Uint8("char2", char2))
	c.refreshGauges()
}

// Stats mirrors triecache.Cache.Stats.
func (c *Cache) Stats() triecache.Stats {
	return c.inner.Stats()
}

// Unwrap returns the wrapped *triecache.Cache, for callers that need the
// traversal methods (FirstKey/LastKey/NextKey/PrevKey) this shim does not
// re-export.
func (c *Cache) Unwrap() *triecache.Cache {
	return c.inner
}

func (c *Cache) observeLookup(op string, err error) {
	switch err {
	case nil:
		c.metric.ops.WithLabelValues(op, "hit").Inc()
	default:
		c.metric.ops.WithLabelValues(op, "miss").Inc()
		c.log.Debug(op+" miss", zap.Error(err))
	}
}

func (c *Cache) refreshGauges() {
	stats := c.inner.Stats()

	// NumEvictions is monotonic but Prometheus counters can only be
	// incremented, never set; track the delta since the last observation.
	if stats.NumEvictions > c.lastEvictions {
		delta := stats.NumEvictions - c.lastEvictions
		c.metric.evictions.Add(float64(delta))
		c.lastEvictions = stats.NumEvictions
	}

	c.metric.keys.Set(float64(stats.NumKeys))
	c.metric.bytes.Set(float64(stats.IndexSize + stats.MetaSize + stats.DataSize))
}
