package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		scrapeJobsSubmittedTotal,
		scrapeRequestRetriesTotal,
		recordsIngestedTotal,
		tasksFinishedTotal,
	)
}

var (
	scrapeJobsSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_jobs_submitted_total",
			Help: "Total number of scraping jobs submitted, by actor.",
		},
		[]string{"actor"},
	)

	scrapeRequestRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scrape_request_retries_total",
			Help: "Total number of retried requests against the scraping API.",
		},
	)

	recordsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_ingested_total",
			Help: "Total number of records written to storage, by platform and kind.",
		},
		[]string{"platform", "kind"},
	)

	tasksFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasks_finished_total",
			Help: "Total number of background tasks finished, by status.",
		},
		[]string{"status"},
	)
)

// JobObserver satisfies the scrape client's observer hooks.
type JobObserver struct{}

func (JobObserver) JobSubmitted(actorID string) {
	scrapeJobsSubmittedTotal.WithLabelValues(actorID).Inc()
}

func (JobObserver) RequestRetried() {
	scrapeRequestRetriesTotal.Inc()
}

// IncRecordsIngested counts newly stored records.
func IncRecordsIngested(platform, kind string, count int) {
	if count <= 0 {
		return
	}
	recordsIngestedTotal.WithLabelValues(platform, kind).Add(float64(count))
}

// IncTasksFinished counts finished background tasks.
func IncTasksFinished(status string) {
	tasksFinishedTotal.WithLabelValues(status).Inc()
}
