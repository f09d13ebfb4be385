package mailer

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/caterkita/caterkita-backend/pkg/config"
	"github.com/caterkita/caterkita-backend/pkg/logger"
)

// InvitationEmail carries everything needed to render an invite message.
type InvitationEmail struct {
	ToEmail      string
	ProviderName string
	Role         string
	Token        string
	InviterName  string
}

// Mailer is the outbound email surface used by the invitation service.
type Mailer interface {
	SendInvitation(ctx context.Context, email InvitationEmail) error
}

// SESMailer sends transactional mail through AWS SESv2.
type SESMailer struct {
	client    *sesv2.Client
	fromEmail string
	replyTo   string
	siteURL   string
	logg      *logger.Logger
}

// NewSES builds an SES-backed mailer from the ambient AWS credential chain.
func NewSES(ctx context.Context, cfg config.MailerConfig, siteURL string, logg *logger.Logger) (*SESMailer, error) {
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, fmt.Errorf("mailer from email is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return &SESMailer{
		client:    sesv2.NewFromConfig(awsCfg),
		fromEmail: cfg.FromEmail,
		replyTo:   cfg.ReplyTo,
		siteURL:   siteURL,
		logg:      logg,
	}, nil
}

// SendInvitation delivers the invite email with the accept link.
func (m *SESMailer) SendInvitation(ctx context.Context, email InvitationEmail) error {
	if strings.TrimSpace(email.ToEmail) == "" {
		return fmt.Errorf("recipient email is required")
	}

	subject := fmt.Sprintf("You're invited to join %s on CaterKita", email.ProviderName)
	body := renderInvitationHTML(email, AcceptLink(m.siteURL, email.Token))

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.fromEmail),
		Destination:      &sestypes.Destination{ToAddresses: []string{email.ToEmail}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body:    &sestypes.Body{Html: &sestypes.Content{Data: aws.String(body)}},
			},
		},
	}
	if m.replyTo != "" {
		input.ReplyToAddresses = []string{m.replyTo}
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("sending invitation email: %w", err)
	}
	if m.logg != nil {
		m.logg.Info(m.logg.WithField(ctx, "to", email.ToEmail), "invitation email sent")
	}
	return nil
}

// AcceptLink builds the public accept URL for an invitation token.
func AcceptLink(siteURL, token string) string {
	base := strings.TrimRight(siteURL, "/")
	return fmt.Sprintf("%s/invitations/accept?token=%s", base, url.QueryEscape(token))
}

// Noop discards all mail; used in development and tests.
type Noop struct {
	logg *logger.Logger
}

func NewNoop(logg *logger.Logger) *Noop {
	return &Noop{logg: logg}
}

func (n *Noop) SendInvitation(ctx context.Context, email InvitationEmail) error {
	if n.logg != nil {
		n.logg.Info(n.logg.WithField(ctx, "to", email.ToEmail), "invitation email suppressed (noop mailer)")
	}
	return nil
}
