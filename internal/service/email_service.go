package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService sends collaboration notifications via Amazon SES. When no
// sender address is configured the service runs disabled and every send is
// a logged no-op.
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendInvitationEmail notifies a user that they were added to a family tree
func (s *EmailService) SendInvitationEmail(ctx context.Context, toEmail, toName, familyName, role string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): invitation to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("You've been added to the %s family tree", familyName)
	htmlBody := fmt.Sprintf(`<p>Hi %s,</p>
<p>You have been added to the family tree <strong>%s</strong> as a %s.</p>
<p><a href="%s/families">Open your families</a></p>`, toName, familyName, role, s.appBaseURL)
	textBody := fmt.Sprintf("Hi %s,\n\nYou have been added to the family tree %q as a %s.\n\nOpen your families: %s/families\n",
		toName, familyName, role, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendAccessDecisionEmail notifies a user that their access request was
// approved or rejected
func (s *EmailService) SendAccessDecisionEmail(ctx context.Context, toEmail, toName, familyName string, approved bool) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): access decision to %s", toEmail)
		return nil
	}

	decision := "approved"
	if !approved {
		decision = "rejected"
	}
	subject := fmt.Sprintf("Your request to access %s was %s", familyName, decision)
	htmlBody := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your request to access the family tree <strong>%s</strong> has been %s.</p>
<p><a href="%s/families">Open your families</a></p>`, toName, familyName, decision, s.appBaseURL)
	textBody := fmt.Sprintf("Hi %s,\n\nYour request to access the family tree %q has been %s.\n\nOpen your families: %s/families\n",
		toName, familyName, decision, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
