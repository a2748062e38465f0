package models

import (
	"encoding/json"
	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	"log"
	"time"
)

const (
	PENDING_QUEUE_KEY  = "transcoder:pendingqueue"
	INFLIGHT_QUEUE_KEY = "transcoder:inflightqueue"
	RESERVATIONS_KEY   = "transcoder:inflightreservations" //hash of raw message -> RFC3339 reservation time
)

/** -----------------
queue entry data
----------------
*/
type QueueMessage struct {
	JobId uuid.UUID     `json:"jobId" mapstructure:"jobId"`
	Spec  TranscodeSpec `json:"spec" mapstructure:"spec"`
	//the exact string held in redis. Needed to acknowledge or release the
	//message again, since list removal matches by value.
	Raw string `json:"-" mapstructure:"-"`
}

/**
parse a raw queue entry. The payload is decoded through the customised
mapstructure decoder so a malformed job id surfaces as a parse error here
rather than a zero uuid downstream.
*/
func MessageFromRaw(raw string) (*QueueMessage, error) {
	var generic map[string]interface{}
	if unmarshalErr := json.Unmarshal([]byte(raw), &generic); unmarshalErr != nil {
		return nil, unmarshalErr
	}

	var msg QueueMessage
	if decodeErr := CustomisedMapStructureDecode(generic, &msg); decodeErr != nil {
		return nil, decodeErr
	}
	msg.Raw = raw
	return &msg, nil
}

/** -----------------
queue manipulation
----------------
*/
func PushPending(redisClient redis.Cmdable, msg QueueMessage) error {
	content, marshalErr := json.Marshal(msg)
	if marshalErr != nil {
		log.Printf("Could not marshal queue message for job %s: %s", msg.JobId, marshalErr)
		return marshalErr
	}

	_, pushErr := redisClient.RPush(PENDING_QUEUE_KEY, string(content)).Result()
	return pushErr
}

func QueueLength(redisClient redis.Cmdable) (int64, error) {
	count, err := redisClient.LLen(PENDING_QUEUE_KEY).Result()
	if err != nil {
		log.Printf("Could not retrieve pending queue length: %s", err)
	}
	return count, err
}

/**
move up to maxCount messages from the pending queue onto the in-flight list and
record a reservation timestamp for each. A reserved message is invisible to
other consumers but is NOT gone: it must be Acknowledged after a successful
dispatch, or it will be returned to the pending queue once its reservation
expires (see RequeueExpired). This is what makes a crash between dispatch and
acknowledge safe, at the cost of possible duplicate dispatch.
*/
func ReservePending(redisClient redis.Cmdable, maxCount int) ([]QueueMessage, error) {
	rtn := make([]QueueMessage, 0, maxCount)

	for i := 0; i < maxCount; i++ {
		raw, popErr := redisClient.RPopLPush(PENDING_QUEUE_KEY, INFLIGHT_QUEUE_KEY).Result()
		if popErr == redis.Nil {
			break //queue drained
		}
		if popErr != nil {
			log.Printf("Could not reserve from pending queue: %s", popErr)
			return rtn, popErr
		}

		_, resErr := redisClient.HSet(RESERVATIONS_KEY, raw, time.Now().Format(time.RFC3339)).Result()
		if resErr != nil {
			log.Printf("Could not record reservation timestamp: %s", resErr)
			return rtn, resErr
		}

		msg, parseErr := MessageFromRaw(raw)
		if parseErr != nil {
			log.Printf("ERROR: Bad data in the pending queue: %s. Offending data was %s.", parseErr, raw)
			//poison message; drop it from the in-flight list so it does not cycle forever
			redisClient.LRem(INFLIGHT_QUEUE_KEY, 0, raw)
			redisClient.HDel(RESERVATIONS_KEY, raw)
			continue
		}
		rtn = append(rtn, *msg)
	}
	return rtn, nil
}

/**
remove a successfully dispatched message from the in-flight list for good
*/
func Acknowledge(redisClient redis.Cmdable, msg QueueMessage) error {
	removed, remErr := redisClient.LRem(INFLIGHT_QUEUE_KEY, 0, msg.Raw).Result()
	if remErr != nil {
		log.Printf("Could not acknowledge message for job %s: %s", msg.JobId, remErr)
		return remErr
	}
	if removed == 0 {
		log.Printf("WARNING: message for job %s was not on the in-flight list at acknowledge time", msg.JobId)
	}
	_, delErr := redisClient.HDel(RESERVATIONS_KEY, msg.Raw).Result()
	return delErr
}

/**
put a message that could not be dispatched straight back onto the pending
queue so it is retried on the next cycle
*/
func ReleaseReservation(redisClient redis.Cmdable, msg QueueMessage) error {
	_, remErr := redisClient.LRem(INFLIGHT_QUEUE_KEY, 0, msg.Raw).Result()
	if remErr != nil {
		log.Printf("Could not take message for job %s off the in-flight list: %s", msg.JobId, remErr)
		return remErr
	}
	redisClient.HDel(RESERVATIONS_KEY, msg.Raw)

	_, pushErr := redisClient.RPush(PENDING_QUEUE_KEY, msg.Raw).Result()
	return pushErr
}

/**
decide whether one in-flight entry should be returned to pending. An entry
with no reservation record at all is a consumer that died between the list
move and the reservation write, and is reclaimed immediately regardless of
the timeout.
*/
func reservationExpired(timestamp string, haveReservation bool, olderThan time.Duration) bool {
	if !haveReservation {
		return true
	}
	reservedAt, parseErr := time.Parse(time.RFC3339, timestamp)
	if parseErr != nil {
		log.Printf("WARNING: unreadable reservation timestamp '%s', treating as expired: %s", timestamp, parseErr)
		return true
	}
	return time.Since(reservedAt) >= olderThan
}

/**
count the in-flight messages whose reservation has expired (or was never
written), without touching them. Used for dry runs of the reaper.
*/
func ExpiredReservationCount(redisClient redis.Cmdable, olderThan time.Duration) (int, error) {
	inflight, listErr := redisClient.LRange(INFLIGHT_QUEUE_KEY, 0, -1).Result()
	if listErr != nil {
		return 0, listErr
	}
	reservations, getErr := redisClient.HGetAll(RESERVATIONS_KEY).Result()
	if getErr != nil {
		return 0, getErr
	}

	expired := 0
	for _, raw := range inflight {
		timestamp, haveReservation := reservations[raw]
		if reservationExpired(timestamp, haveReservation, olderThan) {
			expired += 1
		}
	}
	return expired, nil
}

/**
return every in-flight message whose reservation has expired to the pending
queue. Run periodically by the reaper; this is the recovery leg for a
consumer that crashed after reserving but before acknowledging. The scan is
driven from the in-flight list, not the reservations hash, so a message
stranded before its reservation was written still comes back. Returns how
many messages were requeued.
*/
func RequeueExpired(redisClient redis.Cmdable, olderThan time.Duration) (int, error) {
	inflight, listErr := redisClient.LRange(INFLIGHT_QUEUE_KEY, 0, -1).Result()
	if listErr != nil {
		log.Printf("Could not list the in-flight queue: %s", listErr)
		return 0, listErr
	}
	reservations, getErr := redisClient.HGetAll(RESERVATIONS_KEY).Result()
	if getErr != nil {
		log.Printf("Could not list in-flight reservations: %s", getErr)
		return 0, getErr
	}

	requeued := 0
	processed := make(map[string]bool)
	for _, raw := range inflight {
		if processed[raw] {
			continue //LRem below already took every copy
		}
		processed[raw] = true

		timestamp, haveReservation := reservations[raw]
		if !reservationExpired(timestamp, haveReservation, olderThan) {
			continue
		}
		if !haveReservation {
			log.Printf("WARNING: in-flight message with no reservation record, requeueing it")
		}

		removed, remErr := redisClient.LRem(INFLIGHT_QUEUE_KEY, 0, raw).Result()
		if remErr != nil {
			log.Printf("Could not remove expired message from the in-flight list: %s", remErr)
			continue
		}
		redisClient.HDel(RESERVATIONS_KEY, raw)
		if removed == 0 {
			continue
		}

		_, pushErr := redisClient.RPush(PENDING_QUEUE_KEY, raw).Result()
		if pushErr != nil {
			log.Printf("ERROR: Could not return expired message to the pending queue: %s. Offending data was %s.", pushErr, raw)
			continue
		}
		requeued += 1
	}

	//a reservation entry with no in-flight message is leftover bookkeeping
	//from a partially completed acknowledge; clear it
	for raw := range reservations {
		if !processed[raw] {
			redisClient.HDel(RESERVATIONS_KEY, raw)
		}
	}
	return requeued, nil
}
