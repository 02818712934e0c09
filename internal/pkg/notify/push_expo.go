package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gatherly/gatherly/pkg/log"
	"github.com/gatherly/gatherly/pkg/retry"
)

const defaultExpoEndpoint = "https://exp.host/--/api/v2/push/send"

// deviceNotRegistered is Expo's signal that the token is permanently dead.
const deviceNotRegistered = "DeviceNotRegistered"

// ExpoPushSender sends push notifications through the Expo push API.
type ExpoPushSender struct {
	client   *resty.Client
	endpoint string
}

type expoMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title,omitempty"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type expoResponse struct {
	Data struct {
		Status  string `json:"status"`
		Id      string `json:"id"`
		Message string `json:"message"`
		Details struct {
			Error string `json:"error"`
		} `json:"details"`
	} `json:"data"`
}

func NewExpoPushSender(conf PushConf) *ExpoPushSender {
	endpoint := conf.Endpoint
	if endpoint == "" {
		endpoint = defaultExpoEndpoint
	}
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 10
	}
	client := resty.New().
		SetTimeout(time.Duration(timeout) * time.Second).
		SetHeader("Content-Type", "application/json")
	if conf.Token != "" {
		client.SetAuthToken(conf.Token)
	}
	return &ExpoPushSender{client: client, endpoint: endpoint}
}

// SendPush delivers one push message. Transport errors are retried once;
// provider verdicts are returned as-is.
func (s *ExpoPushSender) SendPush(token, title, body string, data map[string]string) PushResult {
	var rep expoResponse

	err := retry.Do(context.Background(), func(ctx context.Context) error {
		resp, err := s.client.R().
			SetContext(ctx).
			SetBody(expoMessage{To: token, Title: title, Body: body, Data: data}).
			SetResult(&rep).
			Post(s.endpoint)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("expo push status %d", resp.StatusCode())
		}
		return nil
	}, retry.WithMaxAttempts(2), retry.WithInterval(200*time.Millisecond))

	if err != nil {
		log.Errorf("expo push request failed: %v", err)
		return PushResult{Error: err.Error()}
	}

	if rep.Data.Status == "error" {
		if rep.Data.Details.Error == deviceNotRegistered {
			return PushResult{Expired: true, Error: rep.Data.Message}
		}
		return PushResult{Error: rep.Data.Message}
	}

	return PushResult{Success: true}
}
