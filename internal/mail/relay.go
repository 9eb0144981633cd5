package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultClientTimeout is the total request timeout.
	DefaultClientTimeout = 15 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
)

// Header names for relay requests.
const (
	HeaderSignature = "X-Todo-Signature"
	HeaderTimestamp = "X-Todo-Timestamp"
	HeaderMessageID = "X-Todo-Message-Id"
)

// NewHTTPClient creates an HTTP client for relay delivery.
// It does not follow redirects.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultClientTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// RelayMessage is the JSON body posted to the mail relay.
type RelayMessage struct {
	MessageID string `json:"message_id"`
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
}

// RelayGateway posts messages to an HTTP mail relay, signing each request.
type RelayGateway struct {
	url    string
	secret string
	sender Sender
	client *http.Client
	now    func() time.Time
}

// NewRelayGateway creates a relay gateway.
func NewRelayGateway(url, secret string, sender Sender, client *http.Client) *RelayGateway {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &RelayGateway{
		url:    url,
		secret: secret,
		sender: sender,
		client: client,
		now:    time.Now,
	}
}

// Send posts one message. Any non-2xx answer is a delivery failure.
func (g *RelayGateway) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := RelayMessage{
		MessageID: uuid.NewString(),
		FromName:  g.sender.Name,
		FromEmail: g.sender.Email,
		To:        to,
		Subject:   subject,
		HTML:      htmlBody,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return deliveryError("encode message: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return deliveryError("build request: %v", err)
	}

	ts := g.now().Unix()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Todolist-Mailer/1.0")
	req.Header.Set(HeaderSignature, GenerateSignature(g.secret, ts, body))
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderMessageID, msg.MessageID)

	resp, err := g.client.Do(req)
	if err != nil {
		return deliveryError("relay request: %v", err)
	}
	defer resp.Body.Close()

	// Drain body for connection reuse
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return deliveryError("relay answered HTTP %d", resp.StatusCode)
	}
	return nil
}
