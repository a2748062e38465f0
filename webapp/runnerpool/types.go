package runnerpool

import "fmt"

type RunnerInfo struct {
	Id     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Busy   bool   `json:"busy"`
}

type RunnerListResponse struct {
	Runners []RunnerInfo `json:"runners"`
}

type WorkflowRunInfo struct {
	Id           int64  `json:"id"`
	DisplayTitle string `json:"display_title"`
	Status       string `json:"status"`
	Conclusion   string `json:"conclusion"`
}

type RunListResponse struct {
	WorkflowRuns []WorkflowRunInfo `json:"workflow_runs"`
}

type DispatchRequest struct {
	Inputs map[string]string `json:"inputs"`
}

type RunNotFoundError struct {
	JobId string
}

func (e RunNotFoundError) Error() string {
	return fmt.Sprintf("the runner pool has no run for job %s yet", e.JobId)
}

type HttpStatusError struct {
	Url        string
	StatusCode int
}

func (e HttpStatusError) Error() string {
	return fmt.Sprintf("runner pool api returned %d for %s", e.StatusCode, e.Url)
}
