package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/devlane/offerwatch/internal/xrpl"
)

// OfferPayload is the data passed to sinks: one normalized offer plus the
// event it came from.
type OfferPayload struct {
	FeedID      string               `json:"feed_id"`
	TxHash      string               `json:"tx_hash"`
	LedgerIndex int64                `json:"ledger_index"`
	Offer       xrpl.NormalizedOffer `json:"offer"`
}

type Sender interface {
	Send(ctx context.Context, payload OfferPayload) error
}

type httpSender struct {
	url    string
	method string
	render *template.Template
	client *http.Client
}

// NewWebhookSender builds a generic HTTP sink. With no template the payload
// is posted as JSON; a template replaces the request body wholesale.
func NewWebhookSender(url, method, tmpl string) (Sender, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook url required")
	}
	if method == "" {
		method = http.MethodPost
	}
	var render *template.Template
	if tmpl != "" {
		t, err := parseTemplate(tmpl)
		if err != nil {
			return nil, err
		}
		render = t
	}
	return &httpSender{
		url:    url,
		method: strings.ToUpper(method),
		render: render,
		client: defaultClient(),
	}, nil
}

func (s *httpSender) Send(ctx context.Context, payload OfferPayload) error {
	var body []byte
	if s.render != nil {
		rendered, err := executeTemplate(s.render, payload)
		if err != nil {
			return err
		}
		body = []byte(rendered)
	} else {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		body = b
	}

	req, err := http.NewRequestWithContext(ctx, s.method, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sink http status %d", resp.StatusCode)
	}
	return nil
}

type logSender struct {
	log *slog.Logger
}

// NewLogSender builds a sink that writes offers to the process logger.
func NewLogSender(log *slog.Logger) Sender {
	return &logSender{log: log}
}

func (s *logSender) Send(ctx context.Context, payload OfferPayload) error {
	s.log.Info("offer",
		"feed", payload.FeedID,
		"tx_hash", payload.TxHash,
		"ledger_index", payload.LedgerIndex,
		"status", string(payload.Offer.Status),
		"account", payload.Offer.Account,
		"quality", payload.Offer.Quality,
		"taker_gets", payload.Offer.TakerGets.Value+" "+payload.Offer.TakerGets.Currency,
		"taker_pays", payload.Offer.TakerPays.Value+" "+payload.Offer.TakerPays.Currency,
	)
	return nil
}

func parseTemplate(tmpl string) (*template.Template, error) {
	funcs := template.FuncMap{
		"pretty_json": func(v any) string {
			out, _ := json.MarshalIndent(v, "", "  ")
			return string(out)
		},
		"short_acct": func(acct string) string {
			if len(acct) <= 10 {
				return acct
			}
			return acct[:6] + "..." + acct[len(acct)-4:]
		},
	}
	return template.New("msg").Funcs(funcs).Parse(tmpl)
}

func executeTemplate(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

func defaultClient() *http.Client {
	return &http.Client{
		Timeout: 8 * time.Second,
	}
}
