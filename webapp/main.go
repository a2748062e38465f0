package main

import (
	"fmt"
	"github.com/cineview/transcoder/common/helpers"
	"github.com/cineview/transcoder/webapp/admission"
	"github.com/cineview/transcoder/webapp/completion"
	"github.com/cineview/transcoder/webapp/jobs"
	"github.com/cineview/transcoder/webapp/runnerpool"
	"github.com/go-redis/redis/v7"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log"
	"net/http"
	"time"
)

type MyHttpApp struct {
	healthcheck HealthcheckHandler
	jobs        jobs.JobsEndpoints
	completions completion.CompletionEndpoints
}

func SetupRedis(config *helpers.Config) (*redis.Client, error) {
	log.Printf("Connecting to Redis on %s", config.Redis.Address)
	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Address,
		Password: config.Redis.Password,
		DB:       config.Redis.DBNum,
	})

	_, err := client.Ping().Result()
	if err != nil {
		log.Printf("Could not contact Redis: %s", err)
		return nil, err
	}
	log.Printf("Done.")
	return client, nil
}

func main() {
	var app MyHttpApp

	/*
		read in config and establish connection to persistence layer
	*/
	log.Printf("Reading config from serverconfig.yaml")
	config, configReadErr := helpers.ReadConfig("config/serverconfig.yaml")
	log.Print("Done.")

	if configReadErr != nil {
		log.Fatal("No configuration, can't continue")
	}

	redisClient, redisErr := SetupRedis(config)
	if redisErr != nil {
		log.Fatal("Could not connect to redis")
	}

	poolClient := runnerpool.NewHttpPoolClient(config.Pool)
	notifier := completion.NewHttpDownstreamNotifier(config.CompletionHookUrl)

	dispatcher := admission.NewJobDispatcher(redisClient, poolClient)
	controller := admission.NewAdmissionController(redisClient, poolClient, dispatcher, config.Queue.BatchCap, 10*time.Second)
	go controller.Run()
	defer controller.Shutdown()

	app.healthcheck.redisClient = redisClient
	app.jobs = jobs.NewJobsEndpoints(redisClient)
	app.completions = completion.NewCompletionEndpoints(redisClient, poolClient, notifier, config)

	http.Handle("/default", http.NotFoundHandler())
	http.Handle("/healthcheck", app.healthcheck)
	http.Handle("/metrics", promhttp.Handler())

	app.jobs.WireUp("/api/job")
	app.completions.WireUp("/api/completion")

	log.Printf("Starting server on port %d", config.ListenPort)
	startServerErr := http.ListenAndServe(fmt.Sprintf(":%d", config.ListenPort), nil)

	if startServerErr != nil {
		log.Fatal(startServerErr)
	}
}
