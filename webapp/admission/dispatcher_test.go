package admission

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"github.com/alicebob/miniredis"
	"github.com/cineview/transcoder/common/models"
	"github.com/cineview/transcoder/webapp/runnerpool"
	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	"testing"
)

func TestDispatchPassesSpecThrough(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer s.Close()

	testClient := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	job := models.NewTranscodingJob(testSpec())
	job.Store(testClient)

	pool := &runnerpool.PoolClientMock{RunIdForJob: 31337}
	dispatcher := NewJobDispatcher(testClient, pool)
	dispatcher.RunIdRetryDelay = 0

	dispatchErr := dispatcher.Dispatch(models.QueueMessage{JobId: job.Id, Spec: job.Spec})
	if dispatchErr != nil {
		t.Error("Dispatch failed unexpectedly: ", dispatchErr)
		t.FailNow()
	}

	if len(pool.DispatchedInputs) != 1 {
		t.Errorf("expected 1 dispatch, got %d", len(pool.DispatchedInputs))
		t.FailNow()
	}

	inputs := pool.DispatchedInputs[0]
	if inputs["jobId"] != job.Id.String() {
		t.Errorf("dispatch inputs carry wrong job id '%s'", inputs["jobId"])
	}

	//the spec must arrive in the execution context byte-for-byte decodable
	specContent, decodeErr := base64.StdEncoding.DecodeString(inputs["spec"])
	if decodeErr != nil {
		t.Error("spec input was not valid base64: ", decodeErr)
		t.FailNow()
	}
	var roundTripped models.TranscodeSpec
	if json.Unmarshal(specContent, &roundTripped) != nil {
		t.Error("spec input was not valid JSON")
		t.FailNow()
	}
	if roundTripped.SourceFile != "source.mxf" || len(roundTripped.Audio) != 1 {
		t.Error("spec did not survive the trip into dispatch inputs")
	}
}

func TestDispatchPersistsRunId(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer s.Close()

	testClient := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	job := models.NewTranscodingJob(testSpec())
	job.Store(testClient)

	pool := &runnerpool.PoolClientMock{RunIdForJob: 31337}
	dispatcher := NewJobDispatcher(testClient, pool)
	dispatcher.RunIdRetryDelay = 0
	dispatcher.Dispatch(models.QueueMessage{JobId: job.Id, Spec: job.Spec})

	//correlation must work immediately after dispatch
	found, findErr := models.JobForRunId(31337, testClient)
	if findErr != nil {
		t.Error("JobForRunId failed after dispatch: ", findErr)
		t.FailNow()
	}
	if found.Id != job.Id {
		t.Error("run id index points at the wrong job")
	}
	if found.Status != models.JOB_DISPATCHED {
		t.Errorf("job should be Dispatched after dispatch, got status %d", found.Status)
	}
}

func TestDispatchFailsWhenRunIdNeverAppears(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer s.Close()

	testClient := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	job := models.NewTranscodingJob(testSpec())
	job.Store(testClient)

	pool := &runnerpool.PoolClientMock{FindRunErr: runnerpool.RunNotFoundError{JobId: job.Id.String()}}
	dispatcher := NewJobDispatcher(testClient, pool)
	dispatcher.RunIdRetryDelay = 0

	dispatchErr := dispatcher.Dispatch(models.QueueMessage{JobId: job.Id, Spec: job.Spec})
	if dispatchErr == nil {
		t.Error("Dispatch unexpectedly succeeded without a run id")
	}
	if len(pool.FindRunCalls) != dispatcher.RunIdAttempts {
		t.Errorf("expected %d run id attempts, got %d", dispatcher.RunIdAttempts, len(pool.FindRunCalls))
	}

	//the job record must still be queued, not half-dispatched
	reloaded, _ := models.JobForId(job.Id, testClient)
	if reloaded.Status != models.JOB_QUEUED {
		t.Errorf("job without a run id should remain queued, got status %d", reloaded.Status)
	}
	if reloaded.ExternalRunId != nil {
		t.Error("job without a run id must not have one persisted")
	}
}

func TestDispatchStopsRetryingOnHardApiFailure(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer s.Close()

	testClient := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	job := models.NewTranscodingJob(testSpec())
	job.Store(testClient)

	pool := &runnerpool.PoolClientMock{FindRunErr: errors.New("api exploded")}
	dispatcher := NewJobDispatcher(testClient, pool)
	dispatcher.RunIdRetryDelay = 0
	dispatcher.Dispatch(models.QueueMessage{JobId: job.Id, Spec: job.Spec})

	if len(pool.FindRunCalls) != 1 {
		t.Errorf("expected a single attempt against a hard api failure, got %d", len(pool.FindRunCalls))
	}
}

func TestDispatchCreatesMissingJobRecord(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	defer s.Close()

	testClient := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	externalJobId := uuid.New()
	pool := &runnerpool.PoolClientMock{RunIdForJob: 4242}
	dispatcher := NewJobDispatcher(testClient, pool)
	dispatcher.RunIdRetryDelay = 0

	dispatchErr := dispatcher.Dispatch(models.QueueMessage{JobId: externalJobId, Spec: testSpec()})
	if dispatchErr != nil {
		t.Error("Dispatch failed unexpectedly: ", dispatchErr)
		t.FailNow()
	}

	created, getErr := models.JobForId(externalJobId, testClient)
	if getErr != nil {
		t.Error("no job record was created for the externally produced message: ", getErr)
		t.FailNow()
	}
	if created.Status != models.JOB_DISPATCHED {
		t.Errorf("created job should be Dispatched, got %d", created.Status)
	}
}
