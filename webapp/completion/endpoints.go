package completion

import (
	"github.com/cineview/transcoder/common/helpers"
	"github.com/cineview/transcoder/webapp/runnerpool"
	"github.com/go-redis/redis/v7"
	"net/http"
)

type CompletionEndpoints struct {
	WebhookHandler WebhookHandler
}

func NewCompletionEndpoints(redisClient *redis.Client, pool runnerpool.PoolClient, notifier DownstreamNotifier, config *helpers.Config) CompletionEndpoints {
	return CompletionEndpoints{
		WebhookHandler: WebhookHandler{
			RedisClient:   redisClient,
			Pool:          pool,
			Notifier:      notifier,
			WebhookSecret: config.Pool.WebhookSecret,
			WorkflowId:    config.Pool.WorkflowId,
		},
	}
}

func (e CompletionEndpoints) WireUp(baseUrlPath string) {
	http.Handle(baseUrlPath+"/webhook", e.WebhookHandler)
}
