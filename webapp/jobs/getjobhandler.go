package jobs

import (
	"github.com/cineview/transcoder/common/helpers"
	"github.com/cineview/transcoder/common/models"
	"github.com/go-redis/redis/v7"
	"log"
	"net/http"
)

type GetJobHandler struct {
	RedisClient *redis.Client
}

func (h GetJobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !helpers.AssertHttpMethod(r, w, "GET") {
		return //error is already output
	}

	jobId, paramErr := helpers.GetJobIdFromQuerystring(r.RequestURI)
	if paramErr != nil {
		helpers.WriteJsonContent(paramErr, w, 400)
		return
	}

	result, jobErr := models.JobForId(*jobId, h.RedisClient)
	if jobErr != nil {
		if jobErr == redis.Nil {
			helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "not_found", Detail: "No job with that id"}, w, 404)
		} else {
			log.Print("Could not retrieve job record: ", jobErr)
			helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "db_error", Detail: "Could not retrieve entry"}, w, 500)
		}
		return
	}

	helpers.WriteJsonContent(map[string]interface{}{"status": "ok", "entry": result}, w, 200)
}
