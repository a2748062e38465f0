package admission

import (
	"github.com/cineview/transcoder/common/models"
	"github.com/cineview/transcoder/webapp/metrics"
	"github.com/cineview/transcoder/webapp/runnerpool"
	"github.com/go-redis/redis/v7"
	"log"
	"time"
)

type AdmissionController struct {
	redisClient     *redis.Client
	pool            runnerpool.PoolClient
	dispatcher      *JobDispatcher
	batchCap        int
	shutdownChan    chan bool
	queuePollTicker *time.Ticker
}

func NewAdmissionController(redisClient *redis.Client, pool runnerpool.PoolClient, dispatcher *JobDispatcher, batchCap int, pollInterval time.Duration) *AdmissionController {
	return &AdmissionController{
		redisClient:     redisClient,
		pool:            pool,
		dispatcher:      dispatcher,
		batchCap:        batchCap,
		shutdownChan:    make(chan bool),
		queuePollTicker: time.NewTicker(pollInterval),
	}
}

/**
goroutine to run admission cycles until Shutdown is called
*/
func (c *AdmissionController) Run() {
	log.Print("Started admission controller routine")
	for {
		select {
		case <-c.queuePollTicker.C:
			c.PerformTick()
		case <-c.shutdownChan:
			c.queuePollTicker.Stop()
			log.Print("Admission controller routine shut down")
			return
		}
	}
}

func (c *AdmissionController) Shutdown() {
	c.shutdownChan <- true
}

/**
one admission cycle: query idle runner capacity, then reserve and dispatch up
to min(capacity, batchCap) pending jobs. Capacity and queue state are read in
two separate calls and may drift between them; that is accepted. over-dispatch
is the runner pool's problem to absorb, not ours to prevent.
*/
func (c *AdmissionController) PerformTick() {
	capacity, capErr := c.pool.IdleCapacity()
	if capErr != nil {
		log.Printf("Could not query runner pool capacity, skipping this cycle: %s", capErr)
		return
	}
	metrics.RunnerCapacity.Set(float64(capacity))

	if capacity == 0 {
		return //nothing to do, leave the queue alone
	}

	batchSize := capacity
	if batchSize > c.batchCap {
		batchSize = c.batchCap
	}

	reserved, resErr := models.ReservePending(c.redisClient, batchSize)
	if resErr != nil {
		log.Printf("Could not reserve pending jobs: %s", resErr)
		//fall through; anything already reserved should still be attempted
	}

	for _, msg := range reserved {
		dispatchErr := c.dispatcher.Dispatch(msg)
		if dispatchErr != nil {
			log.Printf("Could not dispatch job %s, returning it to the queue: %s", msg.JobId, dispatchErr)
			if relErr := models.ReleaseReservation(c.redisClient, msg); relErr != nil {
				log.Printf("ERROR: Could not release reservation for job %s: %s", msg.JobId, relErr)
			}
			continue
		}

		if ackErr := models.Acknowledge(c.redisClient, msg); ackErr != nil {
			//the dispatch DID happen; the reaper will eventually requeue this
			//message and the duplicate execution is absorbed downstream
			log.Printf("WARNING: job %s dispatched but could not be acknowledged: %s", msg.JobId, ackErr)
		}
		metrics.JobsDispatched.Inc()
	}
}
