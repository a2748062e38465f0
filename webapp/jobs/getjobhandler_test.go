package jobs

import (
	"github.com/cineview/transcoder/common/helpers"
	"github.com/cineview/transcoder/common/models"
	"github.com/google/uuid"
	"net/http/httptest"
	"testing"
)

/**
GetJobHandler should return the stored record for a known job id
*/
func TestGetJobHandlerKnownJob(t *testing.T) {
	testServer, testClient := testRedis(t)
	defer testServer.Close()

	job := models.NewTranscodingJob(models.TranscodeSpec{SourceFile: "source.mxf"})
	storeErr := job.Store(testClient)
	if storeErr != nil {
		t.Fatal("could not store test job: ", storeErr)
	}

	toTest := GetJobHandler{RedisClient: testClient}

	req := httptest.NewRequest("GET", "/api/job/get?jobId="+job.Id.String(), nil)
	response := helpers.NewMockResponseWriter()

	toTest.ServeHTTP(response, req)

	if response.State.WrittenStatusCode == nil || *response.State.WrittenStatusCode != 200 {
		t.Error("expected a 200 response, got ", response.State.WrittenStatusCode)
	}

	parsedResponse, parseErr := response.LastWrittenJson()
	if parseErr != nil {
		t.Fatal("response was not valid json: ", parseErr)
	}

	entry := parsedResponse["entry"].(map[string]interface{})
	if entry["id"].(string) != job.Id.String() {
		t.Error("returned entry had wrong id: ", entry["id"])
	}
}

/**
an id that is not in the datastore should give a 404
*/
func TestGetJobHandlerUnknownJob(t *testing.T) {
	testServer, testClient := testRedis(t)
	defer testServer.Close()

	toTest := GetJobHandler{RedisClient: testClient}

	req := httptest.NewRequest("GET", "/api/job/get?jobId="+uuid.New().String(), nil)
	response := helpers.NewMockResponseWriter()

	toTest.ServeHTTP(response, req)

	if response.State.WrittenStatusCode == nil || *response.State.WrittenStatusCode != 404 {
		t.Error("expected a 404 response, got ", response.State.WrittenStatusCode)
	}
}

/**
a jobId that is not a uuid should give a 400
*/
func TestGetJobHandlerMalformedId(t *testing.T) {
	testServer, testClient := testRedis(t)
	defer testServer.Close()

	toTest := GetJobHandler{RedisClient: testClient}

	req := httptest.NewRequest("GET", "/api/job/get?jobId=notauuid", nil)
	response := helpers.NewMockResponseWriter()

	toTest.ServeHTTP(response, req)

	if response.State.WrittenStatusCode == nil || *response.State.WrittenStatusCode != 400 {
		t.Error("expected a 400 response, got ", response.State.WrittenStatusCode)
	}
}
