package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"kajianku_backend/internals/configs"
)

// Nama job yang dikenal trigger manual (HTTP) dan CLI.
const (
	JobRelease     = "release"
	JobExpiryDaily = "expiry_daily"
	JobExpiryFixed = "expiry_fixed"
	JobPerformance = "performance"
	JobAutoLaunch  = "auto_launch"
	JobAll         = "all"
)

const tickTimeout = 5 * time.Minute

// EngineSet memegang keempat engine di atas satu store gateway.
// Driver cron, trigger HTTP, dan CLI semuanya dispatch ke instance yang sama.
type EngineSet struct {
	Release     *ReleaseService
	Expiry      *ExpiryService
	Performance *PerformanceService
	AutoLaunch  *AutoLaunchService
}

func NewEngineSet(store SchedulerStore, loc *time.Location) *EngineSet {
	return &EngineSet{
		Release:     NewReleaseService(store, loc),
		Expiry:      NewExpiryService(store, loc),
		Performance: NewPerformanceService(store, loc),
		AutoLaunch:  NewAutoLaunchService(store, loc),
	}
}

// Run menjalankan satu job berdasarkan nama (atau "all" untuk semuanya berurutan).
func (e *EngineSet) Run(ctx context.Context, job string) error {
	switch job {
	case JobRelease:
		return e.Release.Run(ctx)
	case JobExpiryDaily:
		return e.Expiry.RunDaily(ctx)
	case JobExpiryFixed:
		return e.Expiry.RunFixed(ctx)
	case JobPerformance:
		return e.Performance.Run(ctx)
	case JobAutoLaunch:
		return e.AutoLaunch.Run(ctx)
	case JobAll:
		var firstErr error
		for _, j := range []string{JobRelease, JobExpiryDaily, JobExpiryFixed, JobPerformance, JobAutoLaunch} {
			if err := e.Run(ctx, j); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	default:
		return fmt.Errorf("job tidak dikenal: %q", job)
	}
}

// SchedulerConfig: spec cron per engine, bisa dioverride lewat env.
type SchedulerConfig struct {
	ReleaseSpec     string
	DailyExpirySpec string
	FixedExpirySpec string
	PerformanceSpec string
	AutoLaunchSpec  string
}

func SchedulerConfigFromEnv() SchedulerConfig {
	return SchedulerConfig{
		ReleaseSpec:     configs.GetEnv("SCHEDULER_RELEASE_CRON", "*/5 * * * *"),
		DailyExpirySpec: configs.GetEnv("SCHEDULER_EXPIRY_CRON", "0 * * * *"),
		FixedExpirySpec: configs.GetEnv("SCHEDULER_OVERDUE_CRON", "0 */6 * * *"),
		PerformanceSpec: configs.GetEnv("SCHEDULER_PERFORMANCE_CRON", "30 23 * * *"),
		AutoLaunchSpec:  configs.GetEnv("SCHEDULER_AUTO_LAUNCH_CRON", "0 */12 * * *"),
	}
}

type JobStatus struct {
	Name      string     `json:"name"`
	Spec      string     `json:"spec"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
}

type SchedulerStatus struct {
	Running  bool        `json:"running"`
	Timezone string      `json:"timezone"`
	Jobs     []JobStatus `json:"jobs"`
}

type jobEntry struct {
	name string
	spec string
	id   cron.EntryID
}

// SchedulerService adalah Clock Driver tunggal: satu cron.Cron dengan lokasi
// TZ aplikasi dan SkipIfStillRunning supaya tick engine yang sama tidak
// menumpuk. Lifecycle dimiliki objek ini — tidak ada flag global; aplikasi
// host yang memegang dan meneruskan instance-nya.
type SchedulerService struct {
	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	loc     *time.Location
	engines *EngineSet
	entries []jobEntry
}

func NewSchedulerService(engines *EngineSet, cfg SchedulerConfig, loc *time.Location) (*SchedulerService, error) {
	s := &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		loc:     loc,
		engines: engines,
	}

	jobs := []struct {
		name string
		spec string
	}{
		{JobRelease, cfg.ReleaseSpec},
		{JobExpiryDaily, cfg.DailyExpirySpec},
		{JobExpiryFixed, cfg.FixedExpirySpec},
		{JobPerformance, cfg.PerformanceSpec},
		{JobAutoLaunch, cfg.AutoLaunchSpec},
	}
	for _, j := range jobs {
		id, err := s.cron.AddFunc(j.spec, s.tick(j.name))
		if err != nil {
			return nil, fmt.Errorf("registrasi job %s (%q) gagal: %w", j.name, j.spec, err)
		}
		s.entries = append(s.entries, jobEntry{name: j.name, spec: j.spec, id: id})
	}
	return s, nil
}

// tick membungkus satu firing: error dan panic ditangkap di sini supaya
// driver tidak pernah mati gara-gara satu tick yang gagal.
func (s *SchedulerService) tick(job string) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[SCHEDULER] panic di job %s: %v", job, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
		defer cancel()

		if err := s.engines.Run(ctx, job); err != nil {
			log.Printf("[SCHEDULER] job %s selesai dengan error: %v", job, err)
		}
	}
}

// Start idempoten: dipanggil saat sudah jalan → no-op, return false.
func (s *SchedulerService) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		log.Println("[SCHEDULER] Start dipanggil tapi scheduler sudah jalan — diabaikan")
		return false
	}
	s.cron.Start()
	s.running = true

	for _, e := range s.entries {
		log.Printf("[SCHEDULER] job %s terdaftar schedule=%q", e.name, e.spec)
	}
	log.Printf("[SCHEDULER] started timezone=%s", s.loc.String())
	return true
}

// Stop menghentikan tick berikutnya tanpa memotong tick yang sedang jalan.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	log.Println("[SCHEDULER] stopped")
}

func (s *SchedulerService) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SchedulerStatus{
		Running:  s.running,
		Timezone: s.loc.String(),
		Jobs:     make([]JobStatus, 0, len(s.entries)),
	}
	for _, e := range s.entries {
		js := JobStatus{Name: e.name, Spec: e.spec}
		if s.running {
			next := s.cron.Entry(e.id).Next
			if !next.IsZero() {
				js.NextRunAt = &next
			}
		}
		status.Jobs = append(status.Jobs, js)
	}
	return status
}
