package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// DefaultSlackUsername is the bot name used when none is configured.
const DefaultSlackUsername = "berth"

// Slack attachment colors.
const (
	ColorGood    = "good"
	ColorWarning = "warning"
	ColorDanger  = "danger"
)

// slackField is a short key/value shown under an attachment.
type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// slackAttachment is a Slack message attachment.
type slackAttachment struct {
	Fallback string       `json:"fallback"`
	Title    string       `json:"title,omitempty"`
	Text     string       `json:"text"`
	Color    string       `json:"color,omitempty"`
	Footer   string       `json:"footer,omitempty"`
	Fields   []slackField `json:"fields,omitempty"`
}

// slackPayload is the incoming webhook payload.
type slackPayload struct {
	Channel     string            `json:"channel"`
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji"`
	Attachments []slackAttachment `json:"attachments"`
}

// SlackConfig configures a SlackProvider.
type SlackConfig struct {
	HookURL  string
	Channel  string
	Username string
}

// SlackProvider sends alerts via a Slack incoming webhook.
type SlackProvider struct {
	cfg    SlackConfig
	client *http.Client
}

// NewSlackProvider creates a new Slack provider.
func NewSlackProvider(cfg SlackConfig) *SlackProvider {
	if cfg.Username == "" {
		cfg.Username = DefaultSlackUsername
	}

	return &SlackProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the provider name.
func (s *SlackProvider) Name() string {
	return "slack"
}

// IsConfigured returns true if both the hook URL and channel are set.
func (s *SlackProvider) IsConfigured() bool {
	return s.cfg.HookURL != "" && s.cfg.Channel != ""
}

// Send posts an alert to Slack.
func (s *SlackProvider) Send(ctx context.Context, alert *Alert) error {
	if !s.IsConfigured() {
		return nil
	}

	text := alert.Message
	if alert.Link != "" {
		link, err := formatLink(alert.Link)
		if err != nil {
			return err
		}
		text += " " + link
	}

	attachment := slackAttachment{
		Fallback: alert.Message,
		Title:    alert.Title,
		Text:     text,
		Color:    severityToColor(alert.Severity),
		Footer:   "berth/" + alert.Source,
	}

	keys := make([]string, 0, len(alert.Metadata))
	for k, v := range alert.Metadata {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		attachment.Fields = append(attachment.Fields, slackField{
			Title: k,
			Value: alert.Metadata[k],
			Short: true,
		})
	}

	payload := slackPayload{
		Channel:     s.cfg.Channel,
		Username:    s.cfg.Username,
		IconEmoji:   ":ship:",
		Attachments: []slackAttachment{attachment},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.HookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}

// formatLink turns "url" or "url|description" into Slack link markup.
func formatLink(link string) (string, error) {
	parts := strings.Split(link, "|")
	switch len(parts) {
	case 1:
		return "<" + link + "|" + link + ">", nil
	case 2:
		return "<" + parts[0] + "|" + parts[1] + ">", nil
	default:
		return "", fmt.Errorf("link %q not in the form url|description", link)
	}
}

// severityToColor maps alert severity to a Slack attachment color.
func severityToColor(severity Severity) string {
	switch severity {
	case SeverityInfo:
		return ColorGood
	case SeverityWarning:
		return ColorWarning
	case SeverityError:
		return ColorDanger
	default:
		return ""
	}
}
