package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jswenson/regcal/internal/google"
)

// Client wraps the Gmail Users service.
type Client struct {
	svc *gmail.UsersService
}

// NewClient creates a new Gmail client with OAuth2 authentication using
// the file-based token provider. A cached token must exist; run
// 'regcal auth' to obtain one.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientWithProvider(ctx, google.NewFileTokenProvider())
}

// NewClientWithProvider creates a new Gmail client whose OAuth token is
// retrieved from the given token provider.
func NewClientWithProvider(ctx context.Context, provider google.TokenProvider) (*Client, error) {
	httpClient, err := google.GetHTTPClientWithProvider(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found: %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{svc: svc.Users}, nil
}

// ListMessageIDs lists message identifiers matching the query, up to
// maxResults, making multiple API calls if necessary. A maxResults of
// zero or less returns no identifiers without calling the API.
func (c *Client) ListMessageIDs(query string, maxResults int64) ([]string, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	var ids []string
	pageToken := ""

	for {
		remaining := maxResults - int64(len(ids))
		if remaining <= 0 {
			break
		}

		// Gmail API has a max page size, typically 100
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Messages.List("me").Q(query).MaxResults(pageSize)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}

		if res.NextPageToken == "" || int64(len(ids)) >= maxResults {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}

	return ids, nil
}

// GetMessage retrieves a full Gmail message with all its headers.
func (c *Client) GetMessage(messageID string) (*gmail.Message, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// MessageSubject fetches a message and returns its Subject header.
func (c *Client) MessageSubject(messageID string) (string, error) {
	msg, err := c.GetMessage(messageID)
	if err != nil {
		return "", err
	}
	return Subject(msg), nil
}

// HeaderValue extracts a header value from a Gmail message.
func HeaderValue(m *gmail.Message, header string) string {
	mpart := m.Payload
	if mpart == nil {
		return ""
	}
	for _, mph := range mpart.Headers {
		if mph.Name == header {
			return mph.Value
		}
	}
	return ""
}

// Subject returns the Subject header of a message, or the empty string
// if the message has none.
func Subject(m *gmail.Message) string {
	return HeaderValue(m, "Subject")
}
