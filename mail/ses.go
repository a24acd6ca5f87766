package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrDeliveryFailed wraps SES errors.
	ErrDeliveryFailed = errors.New("email delivery failed")
	// ErrNoRecipient is returned for an empty destination address.
	ErrNoRecipient = errors.New("email recipient required")
)

const charset = "UTF-8"

// SESAPI is the subset of the SES client used by [SES]. *ses.Client satisfies it.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SES sends mail from a verified source identity.
type SES struct {
	api    SESAPI
	source string
}

// NewSES returns a sender using source as the From address.
func NewSES(api SESAPI, source string) (*SES, error) {
	if api == nil {
		return nil, errors.New("ses client required")
	}
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("ses source address required")
	}
	return &SES{api: api, source: source}, nil
}

// Send delivers a text body to one recipient and returns once SES accepted it.
func (s *SES) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}

	_, err := s.api.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Charset: aws.String(charset), Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Charset: aws.String(charset), Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("%w: %s: %s", ErrDeliveryFailed, apiErr.ErrorCode(), apiErr.ErrorMessage())
		}
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}
