package main

import (
	"flag"
	"github.com/cineview/transcoder/common/helpers"
	"github.com/cineview/transcoder/common/models"
	"github.com/go-redis/redis/v7"
	"log"
	"time"
)

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

/**
one-shot recovery pass over the in-flight queue: any message whose
reservation has outlived the visibility timeout goes back to pending, so a
consumer crash between reserve and acknowledge can't strand work. Intended
to run from an external scheduler.
*/
func main() {
	configPath := flag.String("config", "config/serverconfig.yaml", "path to the yaml config file")
	timeoutOverride := flag.Int("timeout", 0, "override the configured visibility timeout, in seconds")
	dryRun := flag.Bool("dryrun", false, "report expired reservations without requeueing them")

	flag.Parse()

	log.Printf("Reading config from %s", *configPath)
	config, configReadErr := helpers.ReadConfig(*configPath)
	log.Print("Done.")

	if configReadErr != nil {
		log.Fatal("No configuration, can't continue")
	}

	redisClient, redisErr := SetupRedis(config)
	if redisErr != nil {
		log.Fatal("Could not connect to redis")
	}

	timeoutSecs := config.Queue.VisibilityTimeoutSecs
	if *timeoutOverride > 0 {
		timeoutSecs = *timeoutOverride
	}
	visibilityTimeout := time.Duration(timeoutSecs) * time.Second

	log.Printf("Dryrun is %t", *dryRun)
	log.Printf("Reaping reservations older than %s", visibilityTimeout)

	startTime := time.Now()

	if *dryRun {
		expired, countErr := models.ExpiredReservationCount(redisClient, visibilityTimeout)
		if countErr != nil {
			log.Fatalf("ERROR: Could not count expired reservations: %s", countErr)
		}
		log.Printf("%d expired reservations would be requeued", expired)
	} else {
		requeued, requeueErr := models.RequeueExpired(redisClient, visibilityTimeout)
		if requeueErr != nil {
			log.Fatalf("ERROR: Could not requeue expired reservations: %s", requeueErr)
		}
		log.Printf("%d expired messages returned to the pending queue", requeued)
	}

	endTime := time.Now()
	log.Printf("Reaping run completed at %s and took %d seconds", endTime, endTime.Unix()-startTime.Unix())
}
