package lanes

import (
	"runtime"
	"runtime/debug"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Job is a unit of work run on a lane worker
type Job func()

// New returns the data and auth lanes
// dataWorkers represents the amount of parallel data workers (0 uses the CPU count)
func New(dataWorkers int) *Lanes {
	if dataWorkers <= 0 {
		dataWorkers = runtime.NumCPU()
	}

	return &Lanes{
		data: NewPool("data", dataWorkers),
		auth: NewPool("auth", 1),
	}
}

// Lanes represents the two job lanes work is offloaded to
type Lanes struct {
	data *Pool
	auth *Pool
}

// SpawnData enqueues a job on the parallel data lane
func (l *Lanes) SpawnData(job Job) {
	l.data.Spawn(job)
}

// SpawnAuth enqueues a job on the single worker auth lane.
// Auth jobs never run concurrently with each other.
func (l *Lanes) SpawnAuth(job Job) {
	l.auth.Spawn(job)
}

// Pending returns the amount of queued jobs per lane
func (l *Lanes) Pending() (data, auth int) {
	return l.data.Pending(), l.auth.Pending()
}

// Close stops both lanes, queued jobs are dropped and only running jobs are waited for
func (l *Lanes) Close() {
	l.auth.Close()
	l.data.Close()
}

// NewPool starts a pool of workers executing jobs in FIFO order
func NewPool(name string, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		name: name,
		wg:   &sync.WaitGroup{},
	}
	p.cond = sync.NewCond(&p.m)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}

	return p
}

// Pool represents a set of workers sharing one unbounded job queue
type Pool struct {
	name   string
	m      sync.Mutex
	cond   *sync.Cond
	queue  []Job
	closed bool
	wg     *sync.WaitGroup
}

// Spawn enqueues a job, it never blocks on the workers
func (p *Pool) Spawn(job Job) {
	p.m.Lock()
	defer p.m.Unlock()

	if p.closed {
		log.WithField("lane", p.name).Warn("lane is closed, dropping job")
		return
	}
	p.queue = append(p.queue, job)
	p.cond.Signal()
}

// Pending returns the amount of jobs waiting for a worker
func (p *Pool) Pending() int {
	p.m.Lock()
	defer p.m.Unlock()

	return len(p.queue)
}

// Close stops accepting jobs and drops the ones no worker has started.
// It returns once the running jobs have finished.
func (p *Pool) Close() {
	p.m.Lock()
	p.closed = true
	dropped := len(p.queue)
	p.queue = nil
	p.cond.Broadcast()
	p.m.Unlock()

	if dropped > 0 {
		log.WithField("lane", p.name).Warnf("lane closed, dropped %d queued jobs", dropped)
	}

	p.wg.Wait()
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		job, ok := p.next()
		if !ok {
			return
		}
		p.run(job)
	}
}

// next blocks until a job is available or the pool is closed
func (p *Pool) next() (Job, bool) {
	p.m.Lock()
	defer p.m.Unlock()

	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if p.closed {
		return nil, false
	}
	job := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]

	return job, true
}

// run executes a job, a panic is logged and does not stop the worker
func (p *Pool) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("lane", p.name).Errorf("job panicked: %v\n%s", r, debug.Stack())
		}
	}()
	job()
}
