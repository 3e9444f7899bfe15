package jobqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/PlanoCerto/internal/pkg/env"
)

const (
	DefaultWorkerCount   = 2
	CounterFlushInterval = 5 * time.Second
)

// Flusher moves buffered counters from Redis into the database
type Flusher interface {
	Flush(ctx context.Context) error
}

// Manager manages the global job queue and background tasks
type Manager struct {
	queue              *Queue
	flusher            Flusher
	rankingInterval    time.Duration
	counterFlushTicker *time.Ticker
	rankingTicker      *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = newManager(NewQueue(env.GetEnvInt("JOBQUEUE_WORKERS", DefaultWorkerCount)))
	})
	return globalManager
}

func newManager(q *Queue) *Manager {
	return &Manager{
		queue:  q,
		stopCh: make(chan struct{}),
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Configure sets the background collaborators. It must be called before Start;
// a nil flusher disables the counter flush and a zero interval disables
// scheduled ranking recomputes.
func (m *Manager) Configure(flusher Flusher, rankingInterval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flusher = flusher
	m.rankingInterval = rankingInterval
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	if m.flusher != nil {
		m.counterFlushTicker = time.NewTicker(CounterFlushInterval)
		m.wg.Add(1)
		go m.counterFlushWorker(m.stopCh)
	}

	if m.rankingInterval > 0 {
		m.rankingTicker = time.NewTicker(m.rankingInterval)
		m.wg.Add(1)
		go m.rankingWorker(m.stopCh)
	}

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}
	if m.rankingTicker != nil {
		m.rankingTicker.Stop()
	}

	close(m.stopCh)
	m.running = false

	m.wg.Wait()

	// Flush what the last tick did not pick up
	if m.flusher != nil {
		if err := m.flushCountersOnce(); err != nil {
			log.Errorf("[JobQueue Manager] Final counter flush error: %v", err)
		}
	}

	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// counterFlushWorker periodically flushes buffered counters from Redis to DB
func (m *Manager) counterFlushWorker(stopCh <-chan struct{}) {
	defer m.wg.Done()
	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Counter flush worker stopping")
			return
		case <-m.counterFlushTicker.C:
			if err := m.flushCountersOnce(); err != nil {
				log.Errorf("[JobQueue Manager] Counter flush error: %v", err)
			}
		}
	}
}

// rankingWorker enqueues a scheduled recompute on every tick
func (m *Manager) rankingWorker(stopCh <-chan struct{}) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started ranking scheduler (interval: %s)", m.rankingInterval)
	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Ranking scheduler stopping")
			return
		case <-m.rankingTicker.C:
			m.enqueueScheduledRecompute()
		}
	}
}

func (m *Manager) enqueueScheduledRecompute() {
	_, err := m.queue.EnqueueRankingRecompute(0, ReasonScheduled)
	switch {
	case errors.Is(err, ErrJobAlreadyQueued):
		log.Debug("[JobQueue Manager] Ranking recompute already queued, skipping tick")
	case err != nil:
		log.Errorf("[JobQueue Manager] Failed to enqueue ranking recompute: %v", err)
	}
}

func (m *Manager) flushCountersOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return m.flusher.Flush(ctx)
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
