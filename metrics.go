package svs

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of a Reader.
type Metrics struct {
	TileReads     *prometheus.CounterVec
	TileBytesRead prometheus.Counter
	StripReads    prometheus.Counter
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	DecodeErrors  *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg. A nil reg
// leaves them unregistered; they still count.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	tileReads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "svs_tile_reads_total",
		Help: "Total compressed tiles read from storage",
	}, []string{"layer"})

	tileBytesRead := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "svs_tile_bytes_read_total",
		Help: "Total compressed tile and strip bytes read from storage",
	})

	stripReads := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "svs_strip_reads_total",
		Help: "Total thumbnail and associated image strips read from storage",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "svs_tile_cache_hits_total",
		Help: "Total tile reads served from the tile cache",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "svs_tile_cache_misses_total",
		Help: "Total tile reads that missed the tile cache",
	})

	decodeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "svs_tile_decode_errors_total",
		Help: "Total tiles the codec failed to decode",
	}, []string{"compression"})

	if reg != nil {
		reg.MustRegister(tileReads, tileBytesRead, stripReads, cacheHits, cacheMisses, decodeErrors)
	}

	return &Metrics{
		TileReads:     tileReads,
		TileBytesRead: tileBytesRead,
		StripReads:    stripReads,
		CacheHits:     cacheHits,
		CacheMisses:   cacheMisses,
		DecodeErrors:  decodeErrors,
	}
}

func (m *Metrics) tileRead(layer, n int) {
	m.TileReads.WithLabelValues(strconv.Itoa(layer)).Inc()
	m.TileBytesRead.Add(float64(n))
}

func (m *Metrics) stripRead(n int) {
	m.StripReads.Inc()
	m.TileBytesRead.Add(float64(n))
}

func (m *Metrics) decodeFailed(compression uint16) {
	m.DecodeErrors.WithLabelValues(strconv.Itoa(int(compression))).Inc()
}
