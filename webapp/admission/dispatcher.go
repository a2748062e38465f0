package admission

import (
	"encoding/base64"
	"encoding/json"
	"github.com/cineview/transcoder/common/models"
	"github.com/cineview/transcoder/webapp/runnerpool"
	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	"log"
	"time"
)

type JobDispatcher struct {
	redisClient *redis.Client
	pool        runnerpool.PoolClient
	//how long to keep asking the pool for the run id after a dispatch
	RunIdAttempts   int
	RunIdRetryDelay time.Duration
}

func NewJobDispatcher(redisClient *redis.Client, pool runnerpool.PoolClient) *JobDispatcher {
	return &JobDispatcher{
		redisClient:     redisClient,
		pool:            pool,
		RunIdAttempts:   5,
		RunIdRetryDelay: 2 * time.Second,
	}
}

/**
hand one queued job to the runner pool. The spec travels through untouched;
plan compilation happens inside the dispatched execution, not here. Dispatch
is fire-and-forget for triggering purposes, but the run id the backend
assigns MUST be persisted before we return success, because the completion
webhook can only be correlated through it.
*/
func (d *JobDispatcher) Dispatch(msg models.QueueMessage) error {
	job, getErr := models.JobForId(msg.JobId, d.redisClient)
	if getErr == redis.Nil {
		//message came from a producer that did not write a job record; make one now
		log.Printf("No job record for queued job %s, creating one", msg.JobId)
		created := models.TranscodingJob{
			Id:        msg.JobId,
			Spec:      msg.Spec,
			Status:    models.JOB_QUEUED,
			CreatedAt: time.Now(),
		}
		if storeErr := created.Store(d.redisClient); storeErr != nil {
			return storeErr
		}
		job = &created
	} else if getErr != nil {
		log.Printf("Could not load job record for %s: %s", msg.JobId, getErr)
		return getErr
	}

	specContent, marshalErr := json.Marshal(msg.Spec)
	if marshalErr != nil {
		log.Printf("Could not marshal spec for job %s: %s", msg.JobId, marshalErr)
		return marshalErr
	}

	inputs := map[string]string{
		"jobId": msg.JobId.String(),
		"spec":  base64.StdEncoding.EncodeToString(specContent),
	}

	dispatchErr := d.pool.DispatchWorkflow(inputs)
	if dispatchErr != nil {
		log.Printf("Could not dispatch job %s to the runner pool: %s", msg.JobId, dispatchErr)
		return dispatchErr
	}

	runId, findErr := d.resolveRunId(msg.JobId)
	if findErr != nil {
		//without the run id the completion can never be correlated, so this
		//dispatch does not count as successful; the message stays queued and
		//the backend's idempotency absorbs the duplicate execution
		log.Printf("ERROR: dispatched job %s but could not learn its run id: %s", msg.JobId, findErr)
		return findErr
	}

	log.Printf("Job %s dispatched as run %d", msg.JobId, runId)
	return job.SetDispatched(runId, d.redisClient)
}

func (d *JobDispatcher) resolveRunId(jobId uuid.UUID) (int64, error) {
	var lastErr error
	for attempt := 0; attempt < d.RunIdAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(d.RunIdRetryDelay)
		}
		runId, findErr := d.pool.FindRunForJob(jobId)
		if findErr == nil {
			return runId, nil
		}
		lastErr = findErr
		if _, notStartedYet := findErr.(runnerpool.RunNotFoundError); !notStartedYet {
			//an actual api failure, no point polling further
			break
		}
	}
	return 0, lastErr
}
