// Package slack posts conversion and generation reports to an incoming
// webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"liora"
	"liora/convert"
)

// maxListed caps the rejections spelled out in one message.
const maxListed = 20

type Client struct {
	webhookURL string
	httpClient liora.HTTPClient
}

func NewClient(webhookURL string, httpClient liora.HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}
	return nil
}

// Notifier formats reports and sends them through a liora.SlackClient.
type Notifier struct {
	client  liora.SlackClient
	channel string
}

func NewNotifier(client liora.SlackClient, channel string) *Notifier {
	return &Notifier{client: client, channel: channel}
}

// PostRejections reports the recipes a conversion dropped. Nothing is sent
// when there are none.
func (n *Notifier) PostRejections(ctx context.Context, source string, rejections []convert.Rejection) error {
	if len(rejections) == 0 {
		return nil
	}
	if err := n.client.PostMessage(ctx, n.channel, RejectionReport(source, rejections)); err != nil {
		slog.Error("NOTIFY: Failed to post rejections", "source", source, "error", err)
		return fmt.Errorf("post rejections: %w", err)
	}
	slog.Info("NOTIFY: Posted rejections", "source", source, "count", len(rejections))
	return nil
}

// PostGenerated announces a generated recipe.
func (n *Notifier) PostGenerated(ctx context.Context, r liora.GeneratedRecipe) error {
	names := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		names[i] = ing.Name
	}
	msg := fmt.Sprintf(":cook: New %s recipe: *%s* with %s\n%s\nIngredients: %s",
		r.Category, r.Name, r.SideDish, r.ShortDescription, strings.Join(names, ", "))
	if err := n.client.PostMessage(ctx, n.channel, msg); err != nil {
		slog.Error("NOTIFY: Failed to post recipe", "recipe", r.Name, "error", err)
		return fmt.Errorf("post recipe: %w", err)
	}
	return nil
}

// RejectionReport renders the rejections as a Slack message.
func RejectionReport(source string, rejections []convert.Rejection) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":warning: %d recipe(s) from %s were not imported:\n", len(rejections), source)
	for i, r := range rejections {
		if i == maxListed {
			fmt.Fprintf(&b, "…and %d more\n", len(rejections)-maxListed)
			break
		}
		if len(r.Unresolved) > 0 {
			fmt.Fprintf(&b, "• *%s*: %s\n", r.Recipe, strings.Join(r.Unresolved, ", "))
			continue
		}
		fmt.Fprintf(&b, "• *%s*: %v\n", r.Recipe, r.Err)
	}
	return b.String()
}
