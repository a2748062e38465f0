package jobs

import (
	"github.com/cineview/transcoder/common/helpers"
	"github.com/cineview/transcoder/common/models"
	"github.com/go-redis/redis/v7"
	"github.com/jinzhu/copier"
	"log"
	"net/http"
	"time"
)

/**
trimmed-down view of a job for the listing endpoint. The full spec can be
large (many audio and subtitle tracks) so we only ship it from the /get
endpoint, not the listing.
*/
type JobSummary struct {
	Id            string     `json:"id" copier:"-"`
	SourceFile    string     `json:"sourceFile" copier:"-"`
	Status        int        `json:"status"`
	ExternalRunId *int64     `json:"externalRunId"`
	FailureReason *string    `json:"failureReason"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt"`
}

func summaryFor(job *models.TranscodingJob) (*JobSummary, error) {
	var summary JobSummary
	copyErr := copier.Copy(&summary, job)
	if copyErr != nil {
		return nil, copyErr
	}
	summary.Id = job.Id.String()
	summary.SourceFile = job.Spec.SourceFile
	return &summary, nil
}

type ListJobHandler struct {
	RedisClient *redis.Client
}

func (h ListJobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !helpers.AssertHttpMethod(r, w, "GET") {
		return
	}

	jobIds, listErr := models.AllJobIds(h.RedisClient)
	if listErr != nil {
		log.Print("Could not list job ids: ", listErr)
		helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "db_error", Detail: "Could not iterate"}, w, 500)
		return
	}

	result := make([]*JobSummary, 0)
	for _, jobId := range jobIds {
		job, jobErr := models.JobForId(jobId, h.RedisClient)
		if jobErr != nil {
			log.Printf("Could not retrieve data for job %s: %s", jobId, jobErr)
			helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "db_error", Detail: "Could not retrieve data"}, w, 500)
			return
		}

		summary, summaryErr := summaryFor(job)
		if summaryErr != nil {
			log.Printf("Could not marshal summary for job %s: %s", jobId, summaryErr)
			helpers.WriteJsonContent(helpers.GenericErrorResponse{Status: "error", Detail: "Could not build summary"}, w, 500)
			return
		}
		result = append(result, summary)
	}

	helpers.WriteJsonContent(map[string]interface{}{"status": "ok", "entries": result}, w, 200)
}
