package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
)

// TweetLimit is the maximum tweet length in characters
const TweetLimit = 280

// TwitterCredentials holds the OAuth 1.0a keys for the posting account
type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// ErrMissingTwitterCredentials is returned when any credential is empty
var ErrMissingTwitterCredentials = errors.New("missing required Twitter credentials")

// TwitterNotifier posts messages to Twitter as plain-text tweets
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a notifier signed with the given credentials
func NewTwitterNotifier(creds TwitterCredentials) (*TwitterNotifier, error) {
	if creds.APIKey == "" || creds.APISecret == "" || creds.AccessToken == "" || creds.AccessSecret == "" {
		return nil, ErrMissingTwitterCredentials
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := config.Client(oauth1.NoContext, token)

	return NewTwitterNotifierWithClient(httpClient), nil
}

// NewTwitterNotifierWithClient uses an already authorized HTTP client
func NewTwitterNotifierWithClient(httpClient *http.Client) *TwitterNotifier {
	return &TwitterNotifier{client: twitter.NewClient(httpClient)}
}

// Notify posts the message with its markup removed
func (n *TwitterNotifier) Notify(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tweet, err := FormatTweet(message)
	if err != nil {
		return err
	}

	if _, _, err := n.client.Statuses.Update(tweet, nil); err != nil {
		return fmt.Errorf("failed to post tweet: %w", err)
	}
	return nil
}

// FormatTweet strips HTML from a message and truncates it to TweetLimit
func FormatTweet(message string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(message))
	if err != nil {
		return "", fmt.Errorf("parsing message markup: %w", err)
	}
	tweet := strings.TrimSpace(doc.Text())

	// Twitter limit is 280 characters
	runes := []rune(tweet)
	if len(runes) > TweetLimit {
		// Truncate and add ellipsis
		tweet = string(runes[:TweetLimit-3]) + "..."
	}

	return tweet, nil
}
