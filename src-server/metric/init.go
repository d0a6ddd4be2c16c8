package metric

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"eventboard/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// register returns false when the collector can't be used; a collector that
// is already registered is reused.
func register[T prometheus.Collector](name string, c T) (T, bool) {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, true
			}
		}
		slog.Error("can't register "+name+" metric", "error", err)
		return c, false
	}
	slog.Debug(name + " metric registered")
	return c, true
}

func unregisterOnShutdown(as *utils.AppState, name string, c prometheus.Collector) {
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		<-*gracefulShutdownCh
		switch prometheus.Unregister(c) {
		case true:
			slog.Debug(name + " metric unregistered")
		case false:
			slog.Warn(name + " metric not registered")
		}
	}()
}

func databaseEmptyRead(as *utils.AppState, tickerInterval time.Duration) {
	const name = "eventboard_database_empty_read_microsec"
	databaseEmptyRead, ok := register(name, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "The latency of an empty database read in microseconds",
	}))
	if !ok {
		return
	}
	unregisterOnShutdown(as, name, databaseEmptyRead)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				return
			case <-ticker.C:
				latency, err := database(context.Background(), as)
				if err != nil {
					slog.Error("can't get database latency", "error", err)
					continue
				}
				databaseEmptyRead.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

func upcomingEventCount(as *utils.AppState, tickerInterval time.Duration) {
	const name = "eventboard_upcoming_events"
	upcoming, ok := register(name, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "The number of events dated today or later",
	}))
	if !ok {
		return
	}
	unregisterOnShutdown(as, name, upcoming)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				return
			case <-ticker.C:
				count, err := upcomingEvents(context.Background(), as)
				if err != nil {
					slog.Error("can't count upcoming events", "error", err)
					continue
				}
				upcoming.Set(float64(count))
			}
		}
	}()
}

// a gauge that shows the last sample and falls back to 0 when nothing came in
// for clearTickerInterval
func latencyGauge(as *utils.AppState, name string, help string, samples chan float64, clearTickerInterval time.Duration) {
	gauge, ok := register(name, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	}))
	if !ok {
		return
	}
	unregisterOnShutdown(as, name, gauge)
	gauge.Set(0)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		clearTicker := time.NewTicker(clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				return
			case latency := <-samples:
				gauge.Set(latency)
				clearTicker.Reset(clearTickerInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

func filterRequests(as *utils.AppState) {
	const counterName = "eventboard_filter_requests_total"
	requests, ok := register(counterName, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: counterName,
		Help: "Filter endpoint requests by window and outcome",
	}, []string{"window", "outcome"}))
	if !ok {
		return
	}
	unregisterOnShutdown(as, counterName, requests)

	const histogramName = "eventboard_filter_request_duration_seconds"
	duration, ok := register(histogramName, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    histogramName,
		Help:    "Time spent answering filter endpoint requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"window"}))
	if !ok {
		return
	}
	unregisterOnShutdown(as, histogramName, duration)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		for {
			select {
			case <-*gracefulShutdownCh:
				return
			case sample := <-as.MetricChans.FilterRequest:
				requests.WithLabelValues(sample.Window, sample.Outcome).Inc()
				duration.WithLabelValues(sample.Window).Observe(sample.Latency.Seconds())
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := as.Config.GetMetricCollectionInterval() * 2

	databaseEmptyRead(as, tickerInterval)
	upcomingEventCount(as, tickerInterval)
	latencyGauge(as,
		"eventboard_database_read_microsec",
		"The latency of a database read in microseconds",
		as.MetricChans.DatabaseRead, clearTickerInterval)
	latencyGauge(as,
		"eventboard_database_write_microsec",
		"The latency of a database write in microseconds",
		as.MetricChans.DatabaseWrite, clearTickerInterval)
	filterRequests(as)
}
