package notify

// PushResult is the provider verdict for one push attempt. Expired is the
// provider-specific signal that the subscription is gone for good and must
// be distinguished from a transient failure.
type PushResult struct {
	Success bool
	Expired bool
	Error   string
}

// SmsResult is the provider verdict for one SMS attempt.
type SmsResult struct {
	Success   bool
	MessageId string
	Error     string
}

// PushSender delivers a push notification to one subscription token.
type PushSender interface {
	SendPush(token, title, body string, data map[string]string) PushResult
}

// SmsSender delivers a text message to one phone number.
type SmsSender interface {
	SendSms(phone, body string) SmsResult
}

// PushConf push provider configuration
type PushConf struct {
	Endpoint string
	Token    string
	Timeout  int
}

// SmsConf SMS provider configuration
type SmsConf struct {
	AccountSid string
	AuthToken  string
	From       string
	Endpoint   string
	Timeout    int
}
