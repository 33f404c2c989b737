package mail

import (
	"bytes"
	"context"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/xavierca1/donor-crm/internal/entity"
	"github.com/xavierca1/donor-crm/internal/usecase"
)

//go:embed templates/*
var templateFS embed.FS

var (
	leadWelcomeHTML = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/lead_welcome.html"))
	leadWelcomeText = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/lead_welcome.txt"))
)

type leadWelcomeData struct {
	Name         string
	Organization string
	Product      string
}

// LeadWelcomeNotifier sends the landing-page welcome through any EmailSender.
type LeadWelcomeNotifier struct {
	sender  usecase.EmailSender
	product string
}

func NewLeadWelcomeNotifier(sender usecase.EmailSender, product string) *LeadWelcomeNotifier {
	return &LeadWelcomeNotifier{sender: sender, product: product}
}

func (n *LeadWelcomeNotifier) NotifyLeadCaptured(ctx context.Context, lead *entity.Lead) error {
	msg, err := n.render(lead)
	if err != nil {
		return err
	}
	_, err = n.sender.Send(ctx, msg)
	return err
}

func (n *LeadWelcomeNotifier) render(lead *entity.Lead) (usecase.OutboundEmail, error) {
	data := leadWelcomeData{Name: lead.Name, Organization: lead.Organization, Product: n.product}

	var html, text bytes.Buffer
	if err := leadWelcomeHTML.Execute(&html, data); err != nil {
		return usecase.OutboundEmail{}, err
	}
	if err := leadWelcomeText.Execute(&text, data); err != nil {
		return usecase.OutboundEmail{}, err
	}
	return usecase.OutboundEmail{
		To:      lead.Email,
		Subject: "Your " + n.product + " demo request",
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
