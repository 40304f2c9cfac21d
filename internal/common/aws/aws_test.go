package aws

import (
	"context"
	"fmt"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSES struct{ mock.Mock }

func (m *mockSES) SendEmail(ctx context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*ses.SendEmailOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSESClient_Send(t *testing.T) {
	api := &mockSES{}
	api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return awssdk.ToString(in.Source) == "noreply@portal.in" &&
			in.Destination.ToAddresses[0] == "ops@portal.in" &&
			in.ReplyToAddresses[0] == "asha@example.in" &&
			awssdk.ToString(in.Message.Subject.Data) == "New quote request" &&
			in.Message.Body.Html == nil
	})).Return(&ses.SendEmailOutput{MessageId: awssdk.String("msg-1")}, nil)

	client := NewSESClientWithAPI(api, "noreply@portal.in")
	id, err := client.Send(context.Background(), Email{
		To:       []string{"ops@portal.in"},
		ReplyTo:  []string{"asha@example.in"},
		Subject:  "New quote request",
		TextBody: "body",
	})

	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	api.AssertExpectations(t)
}

func TestSESClient_SendRequiresRecipient(t *testing.T) {
	client := NewSESClientWithAPI(&mockSES{}, "noreply@portal.in")
	_, err := client.Send(context.Background(), Email{Subject: "x"})
	assert.Error(t, err)
}

func TestSNSClient_SendSMS(t *testing.T) {
	api := &mockSNS{}
	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		_, hasSender := in.MessageAttributes["AWS.SNS.SMS.SenderID"]
		return awssdk.ToString(in.PhoneNumber) == "+919876543210" && hasSender
	})).Return(&sns.PublishOutput{MessageId: awssdk.String("sms-1")}, nil).Once()
	api.On("Publish", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("throttled")).Once()

	client := NewSNSClientWithAPI(api, "FINPTL")

	id, err := client.SendSMS(context.Background(), "9876543210", "Thanks")
	require.NoError(t, err)
	assert.Equal(t, "sms-1", id)

	_, err = client.SendSMS(context.Background(), "9876543210", "Thanks")
	assert.Error(t, err)
}

func TestE164India(t *testing.T) {
	assert.Equal(t, "+919876543210", E164India(" 9876543210 "))
	assert.Equal(t, "+447700900123", E164India("+447700900123"))
}
