package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

type JobSystem struct {
	numWorkers int
	jobQueue   chan metadata.JobTask
	wg         sync.WaitGroup
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan metadata.JobTask, channelSize),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job metadata.JobTask) {
	results := make(chan interface{}, 1)
	err := job.OnStart(job.InputParams, results)
	close(results)
	if err != nil {
		core.LogError("job %s failed: %s", job.ID, err.Error())
		if job.OnFailure != nil {
			job.OnFailure(results)
		}
	} else if job.OnComplete != nil {
		job.OnComplete(results)
	}

	if job.OnCompletionCallback != nil {
		job.OnCompletionCallback()
	}
}

/**
 * @brief Shuts the job system down, waiting for queued jobs to finish.
 */
func (js *JobSystem) Shutdown() error {
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}

/**
 * @brief Submits the provided job to be queued for execution.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) {
	js.jobQueue <- jt
}
