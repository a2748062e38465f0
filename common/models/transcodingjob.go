package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	"log"
	"strconv"
	"time"
)

type JobStatus int

const (
	JOB_QUEUED JobStatus = iota
	JOB_DISPATCHED
	JOB_SUCCEEDED
	JOB_FAILED
)

const (
	JOBIDX_RUNID = "transcoder:transcodingjob:runindex" //hash-table index. Key is the external run id, value is the job uuid
	JOBIDX_ALL   = "transcoder:transcodingjob:allindex" //set of every job uuid we have stored
)

/**
the job record is the single source of truth for correlating an asynchronous
completion callback with the spec that was dispatched. ExternalRunId is nil
until the dispatcher has learned it from the runner pool.
*/
type TranscodingJob struct {
	Id            uuid.UUID     `json:"id"`
	Spec          TranscodeSpec `json:"spec"`
	Status        JobStatus     `json:"status"`
	ExternalRunId *int64        `json:"externalRunId"`
	FailureReason *string       `json:"failureReason"`
	CreatedAt     time.Time     `json:"createdAt"`
	CompletedAt   *time.Time    `json:"completedAt"`
}

type NoMatchingJobError struct {
	RunId int64
}

func (e NoMatchingJobError) Error() string {
	return fmt.Sprintf("no job record has external run id %d", e.RunId)
}

func NewTranscodingJob(spec TranscodeSpec) TranscodingJob {
	return TranscodingJob{
		Id:        uuid.New(),
		Spec:      spec,
		Status:    JOB_QUEUED,
		CreatedAt: time.Now(),
	}
}

func jobDbKey(id uuid.UUID) string {
	return fmt.Sprintf("transcoder:transcodingjob:%s", id)
}

func (j TranscodingJob) Store(redisClient redis.Cmdable) error {
	content, marshalErr := json.Marshal(j)
	if marshalErr != nil {
		log.Printf("Could not marshal data for transcoding job %s: %s", j.Id, marshalErr)
		return marshalErr
	}

	_, saveErr := redisClient.Set(jobDbKey(j.Id), string(content), 0).Result()
	if saveErr != nil {
		log.Printf("Could not save data for transcoding job %s: %s", j.Id, saveErr)
		return saveErr
	}

	_, idxErr := redisClient.SAdd(JOBIDX_ALL, j.Id.String()).Result()
	if idxErr != nil {
		log.Printf("Could not update job index for %s: %s", j.Id, idxErr)
		return idxErr
	}

	if j.ExternalRunId != nil {
		_, runIdxErr := redisClient.HSet(JOBIDX_RUNID, strconv.FormatInt(*j.ExternalRunId, 10), j.Id.String()).Result()
		if runIdxErr != nil {
			log.Printf("Could not update run id index for %s: %s", j.Id, runIdxErr)
			return runIdxErr
		}
	}
	return nil
}

func JobForId(jobId uuid.UUID, redisClient redis.Cmdable) (*TranscodingJob, error) {
	content, getErr := redisClient.Get(jobDbKey(jobId)).Result()
	if getErr != nil {
		return nil, getErr
	}

	var job TranscodingJob
	marshalErr := json.Unmarshal([]byte(content), &job)
	if marshalErr != nil {
		log.Printf("ERROR: Bad data in the datastore for job %s: %s. Offending data was %s.", jobId, marshalErr, content)
		return nil, marshalErr
	}
	return &job, nil
}

/**
look up the job whose stored ExternalRunId matches the given run id.
a missing entry is a NoMatchingJobError; per the correlation contract that
indicates a lost dispatch record, not a transient condition.
*/
func JobForRunId(runId int64, redisClient redis.Cmdable) (*TranscodingJob, error) {
	jobIdString, getErr := redisClient.HGet(JOBIDX_RUNID, strconv.FormatInt(runId, 10)).Result()
	if getErr == redis.Nil {
		return nil, NoMatchingJobError{RunId: runId}
	}
	if getErr != nil {
		return nil, getErr
	}

	jobId, parseErr := uuid.Parse(jobIdString)
	if parseErr != nil {
		log.Printf("ERROR: Bad data in the run id index for run %d: %s. Offending data was %s.", runId, parseErr, jobIdString)
		return nil, parseErr
	}
	return JobForId(jobId, redisClient)
}

func AllJobIds(redisClient redis.Cmdable) ([]uuid.UUID, error) {
	members, err := redisClient.SMembers(JOBIDX_ALL).Result()
	if err != nil {
		return nil, err
	}

	rtn := make([]uuid.UUID, 0, len(members))
	for _, idString := range members {
		jobId, parseErr := uuid.Parse(idString)
		if parseErr != nil {
			log.Printf("WARNING: ignoring bad entry '%s' in the job index: %s", idString, parseErr)
			continue
		}
		rtn = append(rtn, jobId)
	}
	return rtn, nil
}

/**
record the externally assigned run id and move the job to Dispatched.
must be called as soon as the run id becomes known, since the completion
webhook can only be correlated through it.
*/
func (j *TranscodingJob) SetDispatched(runId int64, redisClient redis.Cmdable) error {
	j.Status = JOB_DISPATCHED
	j.ExternalRunId = &runId
	return j.Store(redisClient)
}

/**
move the job to a terminal status. The first caller to actually record the
transition wins; any subsequent attempt (e.g. a redelivered webhook) is a
no-op. Returns true if this call performed the transition. The guard key is
only allowed to stand once the record write has succeeded, so a failed write
leaves the transition claimable by the next delivery.
*/
func (j *TranscodingJob) MarkTerminal(newStatus JobStatus, reason *string, redisClient redis.Cmdable) (bool, error) {
	if newStatus != JOB_SUCCEEDED && newStatus != JOB_FAILED {
		return false, errors.New("MarkTerminal called with a non-terminal status")
	}

	guardKey := fmt.Sprintf("transcoder:transcodingjob:%s:terminal", j.Id)
	won, guardErr := redisClient.SetNX(guardKey, strconv.Itoa(int(newStatus)), 0).Result()
	if guardErr != nil {
		log.Printf("Could not set terminal guard for job %s: %s", j.Id, guardErr)
		return false, guardErr
	}
	if !won {
		log.Printf("Job %s is already terminal, ignoring repeated completion", j.Id)
		return false, nil
	}

	prevStatus, prevReason, prevCompleted := j.Status, j.FailureReason, j.CompletedAt

	j.Status = newStatus
	j.FailureReason = reason
	nowTime := time.Now()
	j.CompletedAt = &nowTime

	if storeErr := j.Store(redisClient); storeErr != nil {
		//the transition did not happen; release the guard so a redelivery
		//can try again instead of no-opping against a still-Dispatched job
		if _, delErr := redisClient.Del(guardKey).Result(); delErr != nil {
			log.Printf("ERROR: Could not release terminal guard for job %s after a failed write: %s", j.Id, delErr)
		}
		j.Status, j.FailureReason, j.CompletedAt = prevStatus, prevReason, prevCompleted
		return false, storeErr
	}
	return true, nil
}
