// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jowam/internal/mailer"
	"jowam/internal/metrics"
)

// Contact is where lead emails go and what visitors are offered when
// sending fails.
type Contact struct {
	Recipient     string // to_email template param
	FallbackEmail string
	FallbackPhone string
}

// Forms handles the public lead forms. Submissions are forwarded as
// EmailJS template emails; nothing is stored.
type Forms struct {
	mailer  mailer.Sender
	contact Contact
	now     func() time.Time
}

// NewForms creates the form handler group.
func NewForms(sender mailer.Sender, contact Contact) *Forms {
	return &Forms{mailer: sender, contact: contact, now: time.Now}
}

// ContactForm is the general enquiry form.
type ContactForm struct {
	Name    string `json:"name" validate:"required,max=120"`
	Company string `json:"company" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Country string `json:"country" validate:"required,max=100"`
	Phone   string `json:"phone" validate:"max=40"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// SampleRequestForm asks for green coffee samples.
type SampleRequestForm struct {
	Name             string   `json:"name" validate:"required,max=120"`
	Company          string   `json:"company" validate:"required,max=200"`
	Email            string   `json:"email" validate:"required,email,max=254"`
	Phone            string   `json:"phone" validate:"max=40"`
	Website          string   `json:"website" validate:"omitempty,url,max=300"`
	Country          string   `json:"country" validate:"required,max=100"`
	City             string   `json:"city" validate:"required,max=100"`
	BusinessType     string   `json:"business_type" validate:"required,max=100"`
	DesiredGrades    []string `json:"desired_grades" validate:"min=1,max=10,dive,required,max=40"`
	PreferredRegion  string   `json:"preferred_region" validate:"max=100"`
	ProcessMethod    string   `json:"process_method" validate:"max=100"`
	RoastProfile     string   `json:"roast_profile" validate:"max=100"`
	QuantityInterest string   `json:"quantity_interest" validate:"max=100"`
	CurrentSuppliers string   `json:"current_suppliers" validate:"max=500"`
	Volume           string   `json:"volume_requirements" validate:"max=200"`
	Timeline         string   `json:"timeline" validate:"max=200"`
	SpecificRequests string   `json:"specific_requests" validate:"max=2000"`
	HeardAboutUs     string   `json:"hear_about_us" validate:"max=200"`
	MarketingConsent bool     `json:"marketing_consent"`
	FollowUpConsent  bool     `json:"follow_up_consent"`
}

// NewsletterForm is the footer subscription form.
type NewsletterForm struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func (f ContactForm) params(to string) map[string]string {
	return map[string]string{
		"from_name":    f.Name,
		"from_company": f.Company,
		"from_email":   f.Email,
		"from_country": f.Country,
		"from_phone":   orDefault(f.Phone, "Not provided"),
		"subject":      f.Subject,
		"message":      f.Message,
		"to_email":     to,
	}
}

func (f SampleRequestForm) params(to string) map[string]string {
	return map[string]string{
		"from_name":           f.Name,
		"from_company":        f.Company,
		"from_email":          f.Email,
		"from_phone":          orDefault(f.Phone, "Not provided"),
		"from_website":        orDefault(f.Website, "Not provided"),
		"from_country":        f.Country,
		"from_city":           f.City,
		"business_type":       f.BusinessType,
		"desired_grades":      strings.Join(f.DesiredGrades, ", "),
		"preferred_region":    orDefault(f.PreferredRegion, "No preference"),
		"process_method":      orDefault(f.ProcessMethod, "No preference"),
		"roast_profile":       orDefault(f.RoastProfile, "Not specified"),
		"quantity_interest":   orDefault(f.QuantityInterest, "Not specified"),
		"current_suppliers":   orDefault(f.CurrentSuppliers, "Not provided"),
		"volume_requirements": orDefault(f.Volume, "Not specified"),
		"timeline":            orDefault(f.Timeline, "Not specified"),
		"specific_requests":   orDefault(f.SpecificRequests, "None"),
		"hear_about_us":       orDefault(f.HeardAboutUs, "Not specified"),
		"marketing_consent":   yesNo(f.MarketingConsent),
		"follow_up_consent":   yesNo(f.FollowUpConsent),
		"to_email":            to,
	}
}

// Contact handles POST /contact.
func (f *Forms) Contact(w http.ResponseWriter, r *http.Request) {
	var form ContactForm
	if !decodeInput(w, r, &form) {
		return
	}
	trimStrings(&form)
	form.Email = strings.ToLower(form.Email)
	if !checkStruct(w, &form) {
		return
	}
	f.send(w, r, mailer.TemplateContact, form.params(f.contact.Recipient),
		"Thank you for your message. Our trading team will get back to you shortly.")
}

// RequestSamples handles POST /request-samples.
func (f *Forms) RequestSamples(w http.ResponseWriter, r *http.Request) {
	var form SampleRequestForm
	if !decodeInput(w, r, &form) {
		return
	}
	trimStrings(&form)
	form.Email = strings.ToLower(form.Email)
	grades := form.DesiredGrades[:0]
	for _, g := range form.DesiredGrades {
		if g = strings.TrimSpace(g); g != "" {
			grades = append(grades, g)
		}
	}
	form.DesiredGrades = grades
	if !checkStruct(w, &form) {
		return
	}
	f.send(w, r, mailer.TemplateSamples, form.params(f.contact.Recipient),
		"Thank you for your sample request. We will confirm availability and shipping details by email.")
}

// Newsletter handles POST /newsletter.
func (f *Forms) Newsletter(w http.ResponseWriter, r *http.Request) {
	var form NewsletterForm
	if !decodeInput(w, r, &form) {
		return
	}
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))
	if !checkStruct(w, &form) {
		return
	}
	f.send(w, r, mailer.TemplateNewsletter, map[string]string{
		"subscriber_email": form.Email,
		"to_email":         f.contact.Recipient,
		"signup_date":      f.now().Format("January 2, 2006"),
	}, "Successfully subscribed. You'll receive our latest coffee insights and harvest updates.")
}

// send forwards one submission. Any failure answers 502 with the direct
// contact details instead of the provider error.
func (f *Forms) send(w http.ResponseWriter, r *http.Request, tmpl mailer.Template, params map[string]string, okMsg string) {
	err := f.mailer.Send(r.Context(), tmpl, params)
	metrics.ObserveEmail(tmpl.String(), err)
	if err != nil {
		slog.Error("form email failed", "form", tmpl.String(), "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "We could not send your message. Please try again or contact us directly.",
			"email": f.contact.FallbackEmail,
			"phone": f.contact.FallbackPhone,
		})
		return
	}
	slog.Info("form email sent", "form", tmpl.String())
	writeJSON(w, http.StatusOK, map[string]string{"message": okMsg})
}
