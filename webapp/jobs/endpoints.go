package jobs

import (
	"github.com/go-redis/redis/v7"
	"net/http"
)

type JobsEndpoints struct {
	GetHandler    GetJobHandler
	CreateHandler CreateJobHandler
	ListHandler   ListJobHandler
}

func NewJobsEndpoints(redisClient *redis.Client) JobsEndpoints {
	return JobsEndpoints{
		GetHandler:    GetJobHandler{redisClient},
		CreateHandler: CreateJobHandler{redisClient},
		ListHandler:   ListJobHandler{redisClient},
	}
}

func (e JobsEndpoints) WireUp(baseUrlPath string) {
	http.Handle(baseUrlPath+"/get", e.GetHandler)
	http.Handle(baseUrlPath+"/new", e.CreateHandler)
	http.Handle(baseUrlPath+"", e.ListHandler)
}
