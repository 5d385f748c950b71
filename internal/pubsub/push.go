package pubsub

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// PushEnvelope is the body of a Google Pub/Sub push delivery.
type PushEnvelope struct {
	Message struct {
		Data        string            `json:"data"`
		MessageID   string            `json:"messageId"`
		Attributes  map[string]string `json:"attributes"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// DecodePush extracts the change event carried by a push delivery.
func DecodePush(body []byte) ([]byte, PushEnvelope, error) {
	var env PushEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, env, fmt.Errorf("decode push envelope: %w", err)
	}
	if env.Message.Data == "" {
		return nil, env, errors.New("push envelope has no message data")
	}
	payload, err := base64.StdEncoding.DecodeString(env.Message.Data)
	if err != nil {
		return nil, env, fmt.Errorf("decode push data: %w", err)
	}
	return payload, env, nil
}
