package jobs

import (
	"bytes"
	"encoding/json"
	"github.com/alicebob/miniredis"
	"github.com/cineview/transcoder/common/helpers"
	"github.com/cineview/transcoder/common/models"
	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	"net/http"
	"testing"
)

func testRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	testServer, mrErr := miniredis.Run()
	if mrErr != nil {
		t.Fatal("could not initiate miniredis: ", mrErr)
	}
	testClient := redis.NewClient(&redis.Options{Addr: testServer.Addr()})
	return testServer, testClient
}

func validSpecBody() []byte {
	spec := models.TranscodeSpec{
		SourceFile: "source.mxf",
		Audio: []models.AudioTrackSpec{
			{SourceStreamIndex: 1, ChannelCount: 2, Bitrate: "128k", LanguageCode: "en-US"},
		},
	}
	content, _ := json.Marshal(spec)
	return content
}

/**
CreateJobHandler should store a new job record and enqueue a message for it
when handed a valid spec
*/
func TestCreateJobHandlerValid(t *testing.T) {
	testServer, testClient := testRedis(t)
	defer testServer.Close()

	toTest := CreateJobHandler{RedisClient: testClient}

	req, _ := http.NewRequest("POST", "/api/job/new", bytes.NewReader(validSpecBody()))
	response := helpers.NewMockResponseWriter()

	toTest.ServeHTTP(response, req)

	if response.State.WrittenStatusCode == nil || *response.State.WrittenStatusCode != 201 {
		t.Error("expected a 201 response, got ", response.State.WrittenStatusCode)
	}

	parsedResponse, parseErr := response.LastWrittenJson()
	if parseErr != nil {
		t.Fatal("response was not valid json: ", parseErr)
	}

	jobId, uuidErr := uuid.Parse(parsedResponse["jobId"].(string))
	if uuidErr != nil {
		t.Fatal("returned jobId was not a valid uuid: ", uuidErr)
	}

	storedJob, retrieveErr := models.JobForId(jobId, testClient)
	if retrieveErr != nil {
		t.Fatal("job record was not stored: ", retrieveErr)
	}
	if storedJob.Status != models.JOB_QUEUED {
		t.Error("new job should be queued, got status ", storedJob.Status)
	}

	queued, queueErr := models.QueueLength(testClient)
	if queueErr != nil {
		t.Fatal("could not read queue length: ", queueErr)
	}
	if queued != 1 {
		t.Error("expected exactly 1 queued message, got ", queued)
	}
}

/**
an invalid spec should be rejected with a 400 and nothing stored or queued
*/
func TestCreateJobHandlerInvalidSpec(t *testing.T) {
	testServer, testClient := testRedis(t)
	defer testServer.Close()

	toTest := CreateJobHandler{RedisClient: testClient}

	spec := models.TranscodeSpec{
		SourceFile: "source.mxf",
		Audio: []models.AudioTrackSpec{
			{SourceStreamIndex: 1, ChannelCount: 2, Bitrate: "128k", LanguageCode: "xx-XX"},
		},
	}
	content, _ := json.Marshal(spec)

	req, _ := http.NewRequest("POST", "/api/job/new", bytes.NewReader(content))
	response := helpers.NewMockResponseWriter()

	toTest.ServeHTTP(response, req)

	if response.State.WrittenStatusCode == nil || *response.State.WrittenStatusCode != 400 {
		t.Error("expected a 400 response, got ", response.State.WrittenStatusCode)
	}

	queued, _ := models.QueueLength(testClient)
	if queued != 0 {
		t.Error("nothing should have been queued, got ", queued)
	}

	storedIds, _ := models.AllJobIds(testClient)
	if len(storedIds) != 0 {
		t.Error("nothing should have been stored, got ", len(storedIds), " records")
	}
}

/**
a body that is not json at all should give a 400
*/
func TestCreateJobHandlerBadJson(t *testing.T) {
	testServer, testClient := testRedis(t)
	defer testServer.Close()

	toTest := CreateJobHandler{RedisClient: testClient}

	req, _ := http.NewRequest("POST", "/api/job/new", bytes.NewReader([]byte("definitely not json")))
	response := helpers.NewMockResponseWriter()

	toTest.ServeHTTP(response, req)

	if response.State.WrittenStatusCode == nil || *response.State.WrittenStatusCode != 400 {
		t.Error("expected a 400 response, got ", response.State.WrittenStatusCode)
	}
}

/**
only POST should be accepted
*/
func TestCreateJobHandlerWrongMethod(t *testing.T) {
	testServer, testClient := testRedis(t)
	defer testServer.Close()

	toTest := CreateJobHandler{RedisClient: testClient}

	req, _ := http.NewRequest("GET", "/api/job/new", nil)
	response := helpers.NewMockResponseWriter()

	toTest.ServeHTTP(response, req)

	if response.State.WrittenStatusCode == nil || *response.State.WrittenStatusCode != 405 {
		t.Error("expected a 405 response, got ", response.State.WrittenStatusCode)
	}
}
