package completion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type CompletionNotification struct {
	TranscodingJobId   string  `json:"transcodingJobId"`
	IsSuccess          bool    `json:"isSuccess"`
	InvalidVttFileName *string `json:"invalidVttFileName,omitempty"`
}

type DownstreamNotifier interface {
	NotifyCompletion(notification CompletionNotification) error
}

type HttpDownstreamNotifier struct {
	hookUrl    string
	httpClient *http.Client
}

func NewHttpDownstreamNotifier(hookUrl string) *HttpDownstreamNotifier {
	return &HttpDownstreamNotifier{
		hookUrl:    hookUrl,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

/**
synchronous call to the downstream consumer. The response body is ignored;
only transport/status failure is reported back, and the caller logs rather
than retries.
*/
func (n *HttpDownstreamNotifier) NotifyCompletion(notification CompletionNotification) error {
	content, marshalErr := json.Marshal(notification)
	if marshalErr != nil {
		return marshalErr
	}

	response, postErr := n.httpClient.Post(n.hookUrl, "application/json", bytes.NewReader(content))
	if postErr != nil {
		return postErr
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("downstream hook returned %d", response.StatusCode)
	}
	return nil
}

/**
test double that records notifications instead of sending them
*/
type NotifierMock struct {
	Notifications []CompletionNotification
	FailWith      error
}

func (m *NotifierMock) NotifyCompletion(notification CompletionNotification) error {
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Notifications = append(m.Notifications, notification)
	return nil
}
