package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Client talks to the transactional-email API. Every send is a single
// timeout-bounded POST; there is no queue or retry here, callers decide
// whether a failed send is advisory or fatal.
type Client struct {
	apiURL      string
	apiKey      string
	senderName  string
	senderEmail string
	sendTimeout time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

type Config struct {
	APIURL      string
	APIKey      string
	SenderName  string
	SenderEmail string
	SendTimeout time.Duration
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		apiURL:      config.APIURL,
		apiKey:      config.APIKey,
		senderName:  config.SenderName,
		senderEmail: config.SenderEmail,
		sendTimeout: timeout,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

type wireAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

type sendRequest struct {
	FromName    string           `json:"from_name"`
	FromEmail   string           `json:"from_email"`
	To          string           `json:"to"`
	ToName      string           `json:"to_name,omitempty"`
	Subject     string           `json:"subject"`
	HTMLBody    string           `json:"html_body,omitempty"`
	TextBody    string           `json:"text_body,omitempty"`
	Attachments []wireAttachment `json:"attachments,omitempty"`
}

func (c *Client) Send(msg Message) error {
	payload := sendRequest{
		FromName:  c.senderName,
		FromEmail: c.senderEmail,
		To:        msg.To,
		ToName:    msg.ToName,
		Subject:   msg.Subject,
		HTMLBody:  msg.HTMLBody,
		TextBody:  msg.TextBody,
	}

	for _, a := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, wireAttachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Content:     base64.StdEncoding.EncodeToString(a.Content),
		})
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal mail request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.sendTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("mail send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	var apiResponse struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		// the provider accepted the message; a bad response body is not a send failure
		c.logger.Warn("mail API response could not be decoded", "error", err, "to", msg.To)
		return nil
	}

	c.logger.Info("mail sent",
		"to", msg.To,
		"subject", msg.Subject,
		"provider_message_id", apiResponse.Data.ID)

	return nil
}
