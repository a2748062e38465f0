package runnerpool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/cineview/transcoder/common/helpers"
	"github.com/google/uuid"
	"io/ioutil"
	"log"
	"net/http"
	"strings"
	"time"
)

/**
PoolClient is everything the pipeline needs from the external execution
backend. The pool owns the runners; capacity is advisory and nothing here
reserves anything.
*/
type PoolClient interface {
	//count of idle, non-busy runners in the configured pool
	IdleCapacity() (int, error)
	//start a workflow run with the given inputs. Acceptance only, no result.
	DispatchWorkflow(inputs map[string]string) error
	//locate the run the backend started for the given job. The run id is not
	//returned by DispatchWorkflow so it has to be discovered out-of-band;
	//dispatched runs carry the job id in their display title.
	FindRunForJob(jobId uuid.UUID) (int64, error)
	//download the log archive (zip) for a run
	FetchRunLogs(runId int64) ([]byte, error)
}

type HttpPoolClient struct {
	apiBase    string
	token      string
	poolName   string
	workflowId int64
	httpClient *http.Client
}

func NewHttpPoolClient(config helpers.RunnerPoolConfig) *HttpPoolClient {
	return &HttpPoolClient{
		apiBase:    strings.TrimSuffix(config.ApiBase, "/"),
		token:      config.Token,
		poolName:   config.PoolName,
		workflowId: config.WorkflowId,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HttpPoolClient) makeRequest(method string, url string, body []byte) (*http.Response, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req, reqErr := http.NewRequest(method, url, bodyReader)
	if reqErr != nil {
		return nil, reqErr
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}

func (c *HttpPoolClient) IdleCapacity() (int, error) {
	url := fmt.Sprintf("%s/pools/%s/runners", c.apiBase, c.poolName)
	response, reqErr := c.makeRequest("GET", url, nil)
	if reqErr != nil {
		log.Printf("Could not query runner capacity: %s", reqErr)
		return 0, reqErr
	}
	defer response.Body.Close()

	if response.StatusCode != 200 {
		return 0, HttpStatusError{Url: url, StatusCode: response.StatusCode}
	}

	var listing RunnerListResponse
	readErr := helpers.ReadJsonBody(response.Body, &listing)
	if readErr != nil {
		log.Printf("Could not understand runner listing: %s", readErr)
		return 0, readErr
	}

	idleCount := 0
	for _, runner := range listing.Runners {
		if runner.Status == "online" && !runner.Busy {
			idleCount += 1
		}
	}
	return idleCount, nil
}

func (c *HttpPoolClient) DispatchWorkflow(inputs map[string]string) error {
	url := fmt.Sprintf("%s/workflows/%d/dispatches", c.apiBase, c.workflowId)

	content, marshalErr := json.Marshal(DispatchRequest{Inputs: inputs})
	if marshalErr != nil {
		return marshalErr
	}

	response, reqErr := c.makeRequest("POST", url, content)
	if reqErr != nil {
		log.Printf("Could not dispatch workflow: %s", reqErr)
		return reqErr
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return HttpStatusError{Url: url, StatusCode: response.StatusCode}
	}
	return nil
}

func (c *HttpPoolClient) FindRunForJob(jobId uuid.UUID) (int64, error) {
	url := fmt.Sprintf("%s/workflows/%d/runs?per_page=30", c.apiBase, c.workflowId)
	response, reqErr := c.makeRequest("GET", url, nil)
	if reqErr != nil {
		log.Printf("Could not list workflow runs: %s", reqErr)
		return 0, reqErr
	}
	defer response.Body.Close()

	if response.StatusCode != 200 {
		return 0, HttpStatusError{Url: url, StatusCode: response.StatusCode}
	}

	var listing RunListResponse
	readErr := helpers.ReadJsonBody(response.Body, &listing)
	if readErr != nil {
		log.Printf("Could not understand workflow run listing: %s", readErr)
		return 0, readErr
	}

	for _, run := range listing.WorkflowRuns {
		if strings.Contains(run.DisplayTitle, jobId.String()) {
			return run.Id, nil
		}
	}
	return 0, RunNotFoundError{JobId: jobId.String()}
}

func (c *HttpPoolClient) FetchRunLogs(runId int64) ([]byte, error) {
	url := fmt.Sprintf("%s/runs/%d/logs", c.apiBase, runId)
	response, reqErr := c.makeRequest("GET", url, nil)
	if reqErr != nil {
		log.Printf("Could not fetch logs for run %d: %s", runId, reqErr)
		return nil, reqErr
	}
	defer response.Body.Close()

	if response.StatusCode != 200 {
		return nil, HttpStatusError{Url: url, StatusCode: response.StatusCode}
	}
	return ioutil.ReadAll(response.Body)
}
