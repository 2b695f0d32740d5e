package rabbitmq

import "sync"

// WorkerPool runs jobs on a fixed number of goroutines. Stop lets
// in-flight jobs finish; buffered but unstarted jobs are dropped, which
// is safe here because an unacked delivery is redelivered anyway.
type WorkerPool struct {
	jobs     chan func()
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	wp := &WorkerPool{
		jobs: make(chan func(), workers*2),
		stop: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case <-wp.stop:
			return
		case job := <-wp.jobs:
			job()
		}
	}
}

// Submit blocks when all workers are busy and the buffer is full, which
// backpressures the consume loop. Returns immediately once the pool is
// stopped.
func (wp *WorkerPool) Submit(job func()) {
	select {
	case <-wp.stop:
	case wp.jobs <- job:
	}
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() { close(wp.stop) })
	wp.wg.Wait()
}
