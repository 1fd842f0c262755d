package transcribe

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/net/http2"
)

// MaxPayloadBytes is the provider's upload ceiling. At 16 kHz mono 16-bit
// PCM this is roughly a 13 minute recording.
const MaxPayloadBytes = 25 << 20

// Kind classifies a failed transcription attempt.
type Kind int

const (
	KindAuth Kind = iota
	KindRateLimited
	KindNetwork
	KindPayloadTooLarge
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindNetwork:
		return "network"
	case KindPayloadTooLarge:
		return "payload_too_large"
	default:
		return "server"
	}
}

// APIError is a failed upload attempt. Status is 0 when the request never
// reached the endpoint.
type APIError struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindAuth:
		return fmt.Sprintf("authorization failed (HTTP %d): check the API key", e.Status)
	case KindRateLimited:
		return "rate limited by the transcription endpoint"
	case KindNetwork:
		return fmt.Sprintf("request failed: %v", e.Err)
	case KindPayloadTooLarge:
		return "recording exceeds the provider upload limit"
	default:
		if e.Status != 0 {
			return fmt.Sprintf("endpoint returned HTTP %d: %s", e.Status, e.Body)
		}
		return fmt.Sprintf("endpoint failure: %s", e.Body)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Request carries one finished WAV payload plus recognition parameters.
// Immutable once handed to Transcribe.
type Request struct {
	Audio          []byte
	Model          string
	Language       string
	Temperature    float64
	Prompt         string
	ResponseFormat string
}

// Client uploads recordings to the transcription endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client. httpClient may be nil, in which case a default
// 30 second client is used.
func New(endpoint, apiKey string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("transcription endpoint is empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{endpoint: endpoint, apiKey: apiKey, httpClient: httpClient, logger: logger}, nil
}

// NewHTTPClient builds the tuned transport: bounded connect and handshake
// phases plus an overall deadline covering the whole upload.
func NewHTTPClient(connectTimeout, requestTimeout time.Duration, enableHTTP2, verifySSL bool) *http.Client {
	tr := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   connectTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if !verifySSL {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if enableHTTP2 {
		_ = http2.ConfigureTransport(tr)
	}
	return &http.Client{
		Transport: tr,
		Timeout:   requestTimeout,
	}
}

type transcription struct {
	Text string `json:"text"`
}

// Transcribe performs exactly one upload attempt. There is no retry here:
// a failed session simply ends, and pressing the hotkey again starts over.
// An empty transcript is a valid outcome, not an error.
func (c *Client) Transcribe(ctx context.Context, req Request) (string, error) {
	if len(req.Audio) > MaxPayloadBytes {
		return "", &APIError{Kind: KindPayloadTooLarge}
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "voice.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	_ = writer.WriteField("model", req.Model)
	if req.Language != "" {
		_ = writer.WriteField("language", req.Language)
	}
	_ = writer.WriteField("temperature", strconv.FormatFloat(req.Temperature, 'f', -1, 64))
	if req.ResponseFormat != "" {
		_ = writer.WriteField("response_format", req.ResponseFormat)
	}
	if req.Prompt != "" {
		_ = writer.WriteField("prompt", req.Prompt)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	httpReq.Header.Set("User-Agent", "dictate/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &APIError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	c.logger.Debug("upload finished",
		"status", resp.StatusCode,
		"bytes", len(req.Audio),
		"elapsed", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var doc transcription
		if err := json.Unmarshal(respBody, &doc); err != nil {
			// An unparseable text field is an empty transcript, the same
			// outcome as silence.
			c.logger.Warn("unparseable endpoint response", "body", truncate(respBody))
			return "", nil
		}
		return doc.Text, nil
	}

	apiErr := &APIError{Status: resp.StatusCode, Body: truncate(respBody)}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		apiErr.Kind = KindAuth
	case http.StatusTooManyRequests:
		apiErr.Kind = KindRateLimited
	case http.StatusRequestEntityTooLarge:
		apiErr.Kind = KindPayloadTooLarge
	default:
		apiErr.Kind = KindServer
	}
	return "", apiErr
}

func truncate(b []byte) string {
	const max = 500
	if !utf8.Valid(b) {
		return fmt.Sprintf("<binary %d bytes>", len(b))
	}
	s := string(b)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
