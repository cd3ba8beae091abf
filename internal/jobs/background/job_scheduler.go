package background

import (
	"context"
	"log"
	"sync"
	"time"

	"casaops/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages recurring background work: the scheduled report
// runner, the overdue invoice sweep, and cache maintenance.
type JobScheduler struct {
	scheduler      gocron.Scheduler
	invoiceSvc     services.InvoiceServiceInterface
	reportSvc      services.ReportServiceInterface
	reportInterval time.Duration
	jobJobs        map[string]gocron.Job
	mu             sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(invoiceSvc services.InvoiceServiceInterface, reportSvc services.ReportServiceInterface,
	reportInterval time.Duration) *JobScheduler {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	if reportInterval <= 0 {
		reportInterval = time.Hour
	}

	js := &JobScheduler{
		scheduler:      scheduler,
		invoiceSvc:     invoiceSvc,
		reportSvc:      reportSvc,
		reportInterval: reportInterval,
		jobJobs:        make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Overdue invoice sweep - every hour
	overdueJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sweepOverdueInvoices, context.Background()),
		gocron.WithName("overdue-invoice-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create overdue sweep job: %v", err)
	} else {
		js.jobJobs["overdue-sweep"] = overdueJob
	}

	// Scheduled report runner - interval comes from app config
	reportsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(js.reportInterval),
		gocron.NewTask(js.runScheduledReports, context.Background()),
		gocron.WithName("scheduled-reports"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create scheduled reports job: %v", err)
	} else {
		js.jobJobs["scheduled-reports"] = reportsJob
	}

	// Cache cleanup job - every hour
	cacheJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.cleanupExpiredCache),
		gocron.WithName("cache-cleanup"),
	)
	if err != nil {
		log.Printf("Failed to create cache cleanup job: %v", err)
	} else {
		js.jobJobs["cache-cleanup"] = cacheJob
	}

	log.Printf("Registered %d background jobs", len(js.jobJobs))
}

// sweepOverdueInvoices marks past-due open invoices as overdue for all tenants
func (js *JobScheduler) sweepOverdueInvoices(ctx context.Context) error {
	log.Printf("Starting overdue invoice sweep")

	if err := js.invoiceSvc.MarkOverdueForAllTenants(ctx); err != nil {
		log.Printf("Overdue invoice sweep failed: %v", err)
		return err
	}

	log.Printf("Completed overdue invoice sweep")
	return nil
}

// runScheduledReports generates reports for every schedule whose next run is due
func (js *JobScheduler) runScheduledReports(ctx context.Context) error {
	log.Printf("Starting scheduled report run")

	if err := js.reportSvc.RunDueSchedules(ctx); err != nil {
		log.Printf("Scheduled report run failed: %v", err)
		return err
	}

	log.Printf("Completed scheduled report run")
	return nil
}

// cleanupExpiredCache performs cleanup of expired cache entries
func (js *JobScheduler) cleanupExpiredCache() error {
	log.Printf("Starting cache cleanup")

	// Redis expires keys on TTL; nothing to reclaim manually.
	log.Printf("Cache cleanup completed (Redis handles TTL automatically)")

	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)

	if err != nil {
		return err
	}

	js.jobJobs[name] = job
	log.Printf("Added custom job: %s", name)
	return nil
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobJobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobJobs, name)
		return err
	}

	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobJobs)
	jobs := make([]string, 0, len(js.jobJobs))

	for name := range js.jobJobs {
		jobs = append(jobs, name)
	}

	status["jobs"] = jobs

	return status
}
