package jobs

import (
	"encoding/json"
	"github.com/cineview/transcoder/common/helpers"
	"github.com/cineview/transcoder/common/models"
	"github.com/cineview/transcoder/common/planner"
	"github.com/go-redis/redis/v7"
	"io/ioutil"
	"log"
	"net/http"
)

type CreateJobHandler struct {
	RedisClient *redis.Client
}

/**
accepts a transcode spec as the POST body, validates it and enqueues a new job.
nothing is written to the datastore if the spec does not validate.
*/
func (h CreateJobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !helpers.AssertHttpMethod(r, w, "POST") {
		return
	}

	textBody, textReadErr := ioutil.ReadAll(r.Body)
	if textReadErr != nil {
		log.Print("Could not read request body content ", textReadErr)
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "error", Detail: "Could not read body content"}, w, 500)
		return
	}

	var rawSpec map[string]interface{}
	unmarshalErr := json.Unmarshal(textBody, &rawSpec)
	if unmarshalErr != nil {
		log.Print("Could not unmarshal request body ", unmarshalErr)
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "error", Detail: "Invalid json request body"}, w, 400)
		return
	}

	spec, decodeErr := models.SpecFromMap(rawSpec)
	if decodeErr != nil {
		log.Print("Request body did not describe a transcode spec ", decodeErr)
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "error", Detail: "Invalid transcode spec"}, w, 400)
		return
	}

	validationErr := planner.ValidateSpec(*spec)
	if validationErr != nil {
		log.Print("Rejecting invalid transcode spec: ", validationErr)
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "invalid_spec", Detail: validationErr.Error()}, w, 400)
		return
	}

	newEntry := models.NewTranscodingJob(*spec)
	storeErr := newEntry.Store(h.RedisClient)
	if storeErr != nil {
		log.Print("Could not save new job: ", storeErr)
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "db_error", Detail: "Could not save record"}, w, 500)
		return
	}

	pushErr := models.PushPending(h.RedisClient, models.QueueMessage{JobId: newEntry.Id, Spec: *spec})
	if pushErr != nil {
		log.Print("Could not enqueue new job: ", pushErr)
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "db_error", Detail: "Could not enqueue job"}, w, 500)
		return
	}

	helpers.WriteJsonContent(map[string]string{"status": "ok", "jobId": newEntry.Id.String()}, w, 201)
}
