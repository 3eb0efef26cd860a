package trade

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// Credentials holds the API key and shared secret for signing requests.
type Credentials struct {
	Key    string
	Secret string
}

// LoadCredentials validates and wraps an API key pair.
func LoadCredentials(key, secret string) (*Credentials, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if secret == "" {
		return nil, fmt.Errorf("API secret is required")
	}
	return &Credentials{Key: key, Secret: secret}, nil
}

// SignRequest generates authentication headers for a trade API request.
func (c *Credentials) SignRequest(method, path string, body []byte) map[string]string {
	return c.signAt(time.Now().UnixMilli(), method, path, body)
}

// signAt builds the headers for a fixed timestamp.
// Message format: timestamp_ms + method + path + body
func (c *Credentials) signAt(timestampMs int64, method, path string, body []byte) map[string]string {
	message := fmt.Sprintf("%d%s%s%s", timestampMs, method, path, body)

	mac := hmac.New(sha256.New, []byte(c.Secret))
	mac.Write([]byte(message))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return map[string]string{
		"X-Snipe-Key":       c.Key,
		"X-Snipe-Timestamp": fmt.Sprintf("%d", timestampMs),
		"X-Snipe-Signature": signature,
	}
}
