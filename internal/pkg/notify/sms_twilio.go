package notify

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gatherly/gatherly/pkg/log"
)

// TwilioSmsSender sends text messages through the Twilio messages API.
type TwilioSmsSender struct {
	client   *resty.Client
	endpoint string
	from     string
}

type twilioResponse struct {
	Sid          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func NewTwilioSmsSender(conf SmsConf) *TwilioSmsSender {
	endpoint := conf.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", conf.AccountSid)
	}
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 10
	}
	client := resty.New().
		SetTimeout(time.Duration(timeout) * time.Second).
		SetBasicAuth(conf.AccountSid, conf.AuthToken)
	return &TwilioSmsSender{client: client, endpoint: endpoint, from: conf.From}
}

// SendSms delivers one text message.
func (s *TwilioSmsSender) SendSms(phone, body string) SmsResult {
	var rep twilioResponse

	resp, err := s.client.R().
		SetFormData(map[string]string{
			"To":   phone,
			"From": s.from,
			"Body": body,
		}).
		SetResult(&rep).
		SetError(&rep).
		Post(s.endpoint)
	if err != nil {
		log.Errorf("twilio sms request failed: %v", err)
		return SmsResult{Error: err.Error()}
	}

	if resp.IsError() || rep.Status == "failed" || rep.Status == "undelivered" {
		msg := rep.ErrorMessage
		if msg == "" {
			msg = fmt.Sprintf("twilio sms status %d", resp.StatusCode())
		}
		return SmsResult{Error: msg}
	}

	return SmsResult{Success: true, MessageId: rep.Sid}
}
