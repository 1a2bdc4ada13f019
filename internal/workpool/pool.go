package workpool

import "sync"

type Task func()

// Pool runs submitted tasks on a fixed number of goroutines.
type Pool struct {
	numWorkers int
	tasks      chan Task
	once       sync.Once
	wg         sync.WaitGroup
}

func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &Pool{
		numWorkers: numWorkers,
		tasks:      make(chan Task, numWorkers),
	}
}

func (p *Pool) Start() {
	p.once.Do(func() {
		for range p.numWorkers {
			p.wg.Go(func() {
				for task := range p.tasks {
					if task != nil {
						task()
					}
				}
			})
		}
	})
}

func (p *Pool) Submit(task Task) {
	p.tasks <- task
}

// Close stops accepting tasks and waits for the running ones to finish.
func (p *Pool) Close() {
	close(p.tasks)
	p.wg.Wait()
}

// ForEach calls fn(i) for every i in [0, n) and returns once all calls are done.
// Indexes are split into contiguous chunks, one task per chunk.
func ForEach(n, numWorkers int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if numWorkers <= 1 || n == 1 {
		for i := range n {
			fn(i)
		}
		return
	}
	numWorkers = min(numWorkers, n)
	chunk := (n + numWorkers - 1) / numWorkers

	pool := NewPool(numWorkers)
	pool.Start()
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		pool.Submit(func() {
			for i := start; i < end; i++ {
				fn(i)
			}
		})
	}
	pool.Close()
}
