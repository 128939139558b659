package webhook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/briefdesk/briefdesk/internal/model"
)

// RequestForwarder sends creative requests to the intake webhook.
type RequestForwarder struct {
	client *Client
	url    string
	now    func() time.Time
}

// NewRequestForwarder creates a forwarder posting to url.
func NewRequestForwarder(client *Client, url string) *RequestForwarder {
	return &RequestForwarder{client: client, url: url, now: time.Now}
}

// Configured reports whether an intake webhook URL is set.
func (f *RequestForwarder) Configured() bool {
	return f.url != ""
}

// requestPayload is the wire shape the intake webhook expects: the form
// fields with multi-select values flattened to comma separated text.
type requestPayload struct {
	Email                    string `json:"email"`
	TaskName                 string `json:"taskName"`
	Client                   string `json:"client"`
	CreativeType             string `json:"creativeType"`
	Briefing                 string `json:"briefing"`
	Location                 string `json:"location"`
	Product                  string `json:"product"`
	CommercialTriggers       string `json:"commercialTriggers"`
	CompetitiveDifferentials string `json:"competitiveDifferentials"`
	Triggers                 string `json:"triggers"`
	Intention                string `json:"intention"`
	ToneOfVoice              string `json:"toneOfVoice"`
	AwarenessLevel           string `json:"awarenessLevel"`
	CTA                      string `json:"cta"`
	StartDate                string `json:"startDate"`
	References               string `json:"references"`
	Timestamp                string `json:"timestamp"`
	UserName                 string `json:"userName"`
}

// Submit validates req and posts it to the intake webhook.
func (f *RequestForwarder) Submit(ctx context.Context, req model.CreativeRequest) error {
	if missing := req.RequiredFields(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}

	payload := requestPayload{
		Email:                    req.Email,
		TaskName:                 req.TaskName,
		Client:                   req.Client,
		CreativeType:             req.CreativeType,
		Briefing:                 req.Briefing,
		Location:                 req.Location,
		Product:                  req.Product,
		CommercialTriggers:       req.CommercialTriggers,
		CompetitiveDifferentials: strings.Join(req.CompetitiveDifferentials, ", "),
		Triggers:                 strings.Join(req.Triggers, ", "),
		Intention:                req.Intention,
		ToneOfVoice:              req.ToneOfVoice,
		AwarenessLevel:           req.AwarenessLevel,
		CTA:                      req.CTA,
		StartDate:                req.StartDate,
		References:               req.References,
		Timestamp:                f.now().UTC().Format(time.RFC3339),
		UserName:                 userName(req.Email),
	}

	if _, err := f.client.post(ctx, f.url, payload); err != nil {
		return err
	}
	return nil
}

// userName is the local part of an email address.
func userName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
