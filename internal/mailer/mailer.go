// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package mailer delivers lead form submissions through the EmailJS REST API.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultEndpoint is the EmailJS send endpoint.
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// ErrNotConfigured is returned when the service id or public key is missing.
var ErrNotConfigured = errors.New("mailer: EmailJS is not configured")

// Template identifies which EmailJS template a message is rendered with.
type Template int

const (
	TemplateContact Template = iota
	TemplateSamples
	TemplateNewsletter
)

// String returns the form name used in logs and metrics.
func (t Template) String() string {
	switch t {
	case TemplateContact:
		return "contact"
	case TemplateSamples:
		return "samples"
	case TemplateNewsletter:
		return "newsletter"
	}
	return "unknown"
}

// Sender sends one templated email. Params are passed verbatim to the
// template.
type Sender interface {
	Send(ctx context.Context, tmpl Template, params map[string]string) error
}

// Config holds the EmailJS account settings.
type Config struct {
	ServiceID          string
	ContactTemplate    string
	SamplesTemplate    string
	NewsletterTemplate string
	PublicKey          string
	PrivateKey         string // optional access token
	Endpoint           string // defaults to DefaultEndpoint
}

// Configured reports whether enough settings are present to send mail.
func (c Config) Configured() bool {
	return c.ServiceID != "" && c.PublicKey != ""
}

func (c Config) templateID(t Template) string {
	switch t {
	case TemplateContact:
		return c.ContactTemplate
	case TemplateSamples:
		return c.SamplesTemplate
	case TemplateNewsletter:
		return c.NewsletterTemplate
	}
	return ""
}

// EmailJS is a Sender backed by the EmailJS REST API.
type EmailJS struct {
	client *resty.Client
	cfg    Config
}

// sendRequest is the JSON body EmailJS expects.
type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// New creates an EmailJS client.
func New(cfg Config) *EmailJS {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &EmailJS{
		client: resty.New().SetTimeout(15 * time.Second),
		cfg:    cfg,
	}
}

// Send posts one message. EmailJS answers 200 with the body "OK" on
// success; any other status is a failure carrying the response text.
func (m *EmailJS) Send(ctx context.Context, tmpl Template, params map[string]string) error {
	if !m.cfg.Configured() {
		return ErrNotConfigured
	}
	templateID := m.cfg.templateID(tmpl)
	if templateID == "" {
		return fmt.Errorf("mailer: no template configured for %s: %w", tmpl, ErrNotConfigured)
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sendRequest{
			ServiceID:      m.cfg.ServiceID,
			TemplateID:     templateID,
			UserID:         m.cfg.PublicKey,
			AccessToken:    m.cfg.PrivateKey,
			TemplateParams: params,
		}).
		Post(m.cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("mailer: send %s: %w", tmpl, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("mailer: send %s: status %d: %s", tmpl, resp.StatusCode(), resp.String())
	}
	return nil
}
