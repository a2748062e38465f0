package completion

import (
	"encoding/json"
	"github.com/cineview/transcoder/common/helpers"
	"github.com/cineview/transcoder/common/models"
	"github.com/cineview/transcoder/webapp/diagnosis"
	"github.com/cineview/transcoder/webapp/metrics"
	"github.com/cineview/transcoder/webapp/runnerpool"
	"github.com/go-redis/redis/v7"
	"io/ioutil"
	"log"
	"net/http"
	"strings"
)

type webhookWorkflow struct {
	Id int64 `json:"id"`
}

type webhookWorkflowRun struct {
	Id         int64  `json:"id"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

type WebhookPayload struct {
	Workflow    webhookWorkflow    `json:"workflow"`
	WorkflowRun webhookWorkflowRun `json:"workflow_run"`
}

/**
receives completion callbacks from the runner pool backend. Deliveries are
at-least-once and unordered; everything here has to tolerate duplicates.
The endpoint may be shared with unrelated workflows, so events for other
workflow ids are acknowledged and dropped rather than rejected.
*/
type WebhookHandler struct {
	RedisClient   *redis.Client
	Pool          runnerpool.PoolClient
	Notifier      DownstreamNotifier
	WebhookSecret string
	WorkflowId    int64
}

func (h WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	if !helpers.AssertHttpMethod(r, w, "POST") {
		return
	}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		log.Printf("Webhook delivery with unexpected content type '%s'", r.Header.Get("Content-Type"))
		metrics.WebhooksReceived.WithLabelValues("rejected").Inc()
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "bad_data", Detail: "expected application/json"}, w, 400)
		return
	}

	body, readErr := ioutil.ReadAll(r.Body)
	if readErr != nil {
		log.Printf("Could not read webhook body: %s", readErr)
		metrics.WebhooksReceived.WithLabelValues("error").Inc()
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "error", Detail: "could not read request body"}, w, 500)
		return
	}

	//nothing in the body is parsed until the signature has been verified
	if !ValidateSignature(r.Header.Get("X-Hub-Signature"), body, h.WebhookSecret) {
		log.Printf("ERROR: webhook delivery failed signature validation, rejecting")
		metrics.WebhooksReceived.WithLabelValues("rejected").Inc()
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "unauthorised", Detail: "signature mismatch"}, w, 401)
		return
	}

	var payload WebhookPayload
	if parseErr := json.Unmarshal(body, &payload); parseErr != nil {
		log.Printf("Could not understand webhook payload: %s", parseErr)
		metrics.WebhooksReceived.WithLabelValues("error").Inc()
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "bad_data", Detail: "could not parse payload"}, w, 400)
		return
	}

	if payload.Workflow.Id != h.WorkflowId {
		//somebody else's workflow sharing our endpoint; ack and move on
		metrics.WebhooksReceived.WithLabelValues("ignored").Inc()
		helpers.WriteJsonContent(map[string]string{"status": "ok", "detail": "not our workflow"}, w, 200)
		return
	}

	if payload.WorkflowRun.Status != "completed" {
		metrics.WebhooksReceived.WithLabelValues("ignored").Inc()
		helpers.WriteJsonContent(map[string]string{"status": "ok", "detail": "run not yet completed"}, w, 200)
		return
	}

	job, findErr := models.JobForRunId(payload.WorkflowRun.Id, h.RedisClient)
	if findErr != nil {
		//a completion we can't correlate means we lost a dispatch record.
		//that is a consistency bug, not a transient, so shout about it.
		log.Printf("ERROR: completion callback for run %d has no matching job record: %s", payload.WorkflowRun.Id, findErr)
		metrics.WebhooksReceived.WithLabelValues("error").Inc()
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "error", Detail: "no job record for this run"}, w, 500)
		return
	}

	if payload.WorkflowRun.Conclusion == "success" {
		h.completeJob(job, true, nil, w)
	} else {
		//diagnose before reporting; a nil reason is fine
		reason := diagnosis.DiagnoseFailure(h.Pool, payload.WorkflowRun.Id)
		h.completeJob(job, false, reason, w)
	}
}

func (h WebhookHandler) completeJob(job *models.TranscodingJob, isSuccess bool, reason *string, w http.ResponseWriter) {
	newStatus := models.JOB_SUCCEEDED
	conclusionLabel := "success"
	if !isSuccess {
		newStatus = models.JOB_FAILED
		conclusionLabel = "failure"
	}

	won, termErr := job.MarkTerminal(newStatus, reason, h.RedisClient)
	if termErr != nil {
		log.Printf("Could not record completion for job %s: %s", job.Id, termErr)
		metrics.WebhooksReceived.WithLabelValues("error").Inc()
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "error", Detail: "could not record completion"}, w, 500)
		return
	}

	if !won {
		//a redelivery of a completion we already recorded; ack it but don't count it as new work
		metrics.WebhooksReceived.WithLabelValues("duplicate").Inc()
		helpers.WriteJsonContent(map[string]string{"status": "ok", "detail": "already recorded"}, w, 200)
		return
	}

	metrics.CompletionsProcessed.WithLabelValues(conclusionLabel).Inc()
	notification := CompletionNotification{
		TranscodingJobId:   job.Id.String(),
		IsSuccess:          isSuccess,
		InvalidVttFileName: reason,
	}
	if notifyErr := h.Notifier.NotifyCompletion(notification); notifyErr != nil {
		//reported once, never retried from here
		log.Printf("Could not notify downstream consumer about job %s: %s", job.Id, notifyErr)
	}

	metrics.WebhooksReceived.WithLabelValues("processed").Inc()
	helpers.WriteJsonContent(map[string]string{"status": "ok"}, w, 200)
}
