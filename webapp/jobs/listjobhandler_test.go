package jobs

import (
	"github.com/cineview/transcoder/common/helpers"
	"github.com/cineview/transcoder/common/models"
	"net/http/httptest"
	"testing"
)

/**
ListJobHandler should return a summary for every stored job, with the spec
reduced to just the source file name
*/
func TestListJobHandler(t *testing.T) {
	testServer, testClient := testRedis(t)
	defer testServer.Close()

	sourceFiles := []string{"first.mxf", "second.mxf", "third.mxf"}
	for _, sourceFile := range sourceFiles {
		job := models.NewTranscodingJob(models.TranscodeSpec{
			SourceFile: sourceFile,
			Audio: []models.AudioTrackSpec{
				{SourceStreamIndex: 1, ChannelCount: 2, Bitrate: "128k", LanguageCode: "en-US"},
			},
		})
		storeErr := job.Store(testClient)
		if storeErr != nil {
			t.Fatal("could not store test job: ", storeErr)
		}
	}

	toTest := ListJobHandler{RedisClient: testClient}

	req := httptest.NewRequest("GET", "/api/job", nil)
	response := helpers.NewMockResponseWriter()

	toTest.ServeHTTP(response, req)

	if response.State.WrittenStatusCode == nil || *response.State.WrittenStatusCode != 200 {
		t.Error("expected a 200 response, got ", response.State.WrittenStatusCode)
	}

	parsedResponse, parseErr := response.LastWrittenJson()
	if parseErr != nil {
		t.Fatal("response was not valid json: ", parseErr)
	}

	entries := parsedResponse["entries"].([]interface{})
	if len(entries) != len(sourceFiles) {
		t.Fatal("expected ", len(sourceFiles), " entries, got ", len(entries))
	}

	seenSources := make(map[string]bool)
	for _, rawEntry := range entries {
		entry := rawEntry.(map[string]interface{})
		seenSources[entry["sourceFile"].(string)] = true
		if _, hasSpec := entry["spec"]; hasSpec {
			t.Error("summary entries should not carry the full spec")
		}
	}
	for _, sourceFile := range sourceFiles {
		if !seenSources[sourceFile] {
			t.Error("no summary was returned for ", sourceFile)
		}
	}
}

/**
an empty datastore should give an empty list, not an error
*/
func TestListJobHandlerEmpty(t *testing.T) {
	testServer, testClient := testRedis(t)
	defer testServer.Close()

	toTest := ListJobHandler{RedisClient: testClient}

	req := httptest.NewRequest("GET", "/api/job", nil)
	response := helpers.NewMockResponseWriter()

	toTest.ServeHTTP(response, req)

	if response.State.WrittenStatusCode == nil || *response.State.WrittenStatusCode != 200 {
		t.Error("expected a 200 response, got ", response.State.WrittenStatusCode)
	}

	parsedResponse, parseErr := response.LastWrittenJson()
	if parseErr != nil {
		t.Fatal("response was not valid json: ", parseErr)
	}

	entries := parsedResponse["entries"].([]interface{})
	if len(entries) != 0 {
		t.Error("expected no entries, got ", len(entries))
	}
}
