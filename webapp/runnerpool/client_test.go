package runnerpool

import (
	"encoding/json"
	"github.com/cineview/transcoder/common/helpers"
	"github.com/google/uuid"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testPoolClient(serverUrl string) *HttpPoolClient {
	return NewHttpPoolClient(helpers.RunnerPoolConfig{
		ApiBase:    serverUrl,
		Token:      "test-token",
		PoolName:   "transcode-pool",
		WorkflowId: 42,
	})
}

func TestIdleCapacityCountsIdleOnlineRunners(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pools/transcode-pool/runners" {
			t.Errorf("capacity query hit wrong path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Error("capacity query was not authenticated")
		}
		json.NewEncoder(w).Encode(RunnerListResponse{Runners: []RunnerInfo{
			{Id: 1, Status: "online", Busy: false},
			{Id: 2, Status: "online", Busy: true},
			{Id: 3, Status: "offline", Busy: false},
			{Id: 4, Status: "online", Busy: false},
		}})
	}))
	defer server.Close()

	capacity, err := testPoolClient(server.URL).IdleCapacity()
	if err != nil {
		t.Error("IdleCapacity failed unexpectedly: ", err)
	}
	if capacity != 2 {
		t.Errorf("expected capacity 2, got %d", capacity)
	}
}

func TestDispatchWorkflowPostsInputs(t *testing.T) {
	var receivedInputs map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/workflows/42/dispatches" {
			t.Errorf("dispatch hit wrong path %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("dispatch used wrong method %s", r.Method)
		}
		var body DispatchRequest
		json.NewDecoder(r.Body).Decode(&body)
		receivedInputs = body.Inputs
		w.WriteHeader(204)
	}))
	defer server.Close()

	dispatchErr := testPoolClient(server.URL).DispatchWorkflow(map[string]string{"jobId": "abc"})
	if dispatchErr != nil {
		t.Error("DispatchWorkflow failed unexpectedly: ", dispatchErr)
	}
	if receivedInputs["jobId"] != "abc" {
		t.Errorf("dispatch inputs not delivered, got %v", receivedInputs)
	}
}

func TestDispatchWorkflowSurfacesHttpError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	}))
	defer server.Close()

	dispatchErr := testPoolClient(server.URL).DispatchWorkflow(map[string]string{})
	if dispatchErr == nil {
		t.Error("DispatchWorkflow unexpectedly succeeded against a 503")
		t.FailNow()
	}
	typed, isTyped := dispatchErr.(HttpStatusError)
	if !isTyped {
		t.Error("error was not an HttpStatusError: ", dispatchErr)
	} else if typed.StatusCode != 503 {
		t.Errorf("error carried wrong status %d", typed.StatusCode)
	}
}

func TestFindRunForJobMatchesDisplayTitle(t *testing.T) {
	jobId := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(RunListResponse{WorkflowRuns: []WorkflowRunInfo{
			{Id: 900, DisplayTitle: "transcode " + uuid.New().String(), Status: "in_progress"},
			{Id: 901, DisplayTitle: "transcode " + jobId.String(), Status: "queued"},
		}})
	}))
	defer server.Close()

	runId, findErr := testPoolClient(server.URL).FindRunForJob(jobId)
	if findErr != nil {
		t.Error("FindRunForJob failed unexpectedly: ", findErr)
	}
	if runId != 901 {
		t.Errorf("expected run 901, got %d", runId)
	}
}

func TestFindRunForJobNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(RunListResponse{})
	}))
	defer server.Close()

	_, findErr := testPoolClient(server.URL).FindRunForJob(uuid.New())
	if findErr == nil {
		t.Error("FindRunForJob unexpectedly succeeded with no runs listed")
		t.FailNow()
	}
	if _, isTyped := findErr.(RunNotFoundError); !isTyped {
		t.Error("error was not a RunNotFoundError: ", findErr)
	}
}

func TestFetchRunLogs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/runs/77/logs" {
			t.Errorf("log fetch hit wrong path %s", r.URL.Path)
		}
		w.Write([]byte("zip-bytes-here"))
	}))
	defer server.Close()

	content, fetchErr := testPoolClient(server.URL).FetchRunLogs(77)
	if fetchErr != nil {
		t.Error("FetchRunLogs failed unexpectedly: ", fetchErr)
	}
	if string(content) != "zip-bytes-here" {
		t.Errorf("log content incorrect, got '%s'", string(content))
	}
}
