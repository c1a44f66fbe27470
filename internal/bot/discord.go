package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Notifier posts messages to a Discord webhook. A nil *Notifier (no
// webhook configured) silently drops everything.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

func NewNotifier(webhookURL string) *Notifier {
	if webhookURL == "" {
		return nil
	}
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookMessage struct {
	Content string `json:"content"`
}

// Send posts a message to the webhook.
func (n *Notifier) Send(ctx context.Context, content string) error {
	if n == nil {
		return nil
	}
	body, err := json.Marshal(webhookMessage{Content: content})
	if err != nil {
		return fmt.Errorf("encode webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// sendAsync fires a notification without blocking the request path.
// Delivery failures are logged and otherwise ignored.
func (n *Notifier) sendAsync(content string) {
	if n == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := n.Send(ctx, content); err != nil {
			log.Printf("discord notify: %v", err)
		}
	}()
}

// NotifyTransaction announces a new ledger entry.
func (n *Notifier) NotifyTransaction(txType, description string, value decimal.Decimal) {
	verb := "received"
	if txType == "output" {
		verb = "spent"
	}
	if description == "" {
		description = "no description"
	}
	n.sendAsync(fmt.Sprintf("💸 New transaction: %s %s (%s)", verb, value.StringFixed(2), description))
}

// NotifyInvoicePaid announces an invoice settlement.
func (n *Notifier) NotifyInvoicePaid(company string, value decimal.Decimal) {
	n.sendAsync(fmt.Sprintf("✅ Invoice paid: %s %s", company, value.StringFixed(2)))
}

// PullRequestEvent is the subset of the GitHub webhook payload the
// notifier forwards to Discord.
type PullRequestEvent struct {
	Action      string `json:"action"`
	PullRequest struct {
		Title   string `json:"title"`
		HTMLURL string `json:"html_url"`
		User    struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"pull_request"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// ForwardPullRequest relays a GitHub pull request event to the
// Discord channel.
func (n *Notifier) ForwardPullRequest(ctx context.Context, ev *PullRequestEvent) error {
	msg := fmt.Sprintf("🔀 [%s] pull request %s by %s: %s\n%s",
		ev.Repository.FullName,
		ev.Action,
		ev.PullRequest.User.Login,
		ev.PullRequest.Title,
		ev.PullRequest.HTMLURL,
	)
	return n.Send(ctx, msg)
}
