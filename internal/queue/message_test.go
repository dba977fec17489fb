package queue

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func TestNewMessage(t *testing.T) {
	at := time.Date(2026, time.January, 30, 22, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	msg := NewMessage(TypeDocumentUploaded, "1700000000000-a.pdf", "req-1", at)

	if msg.ID == "" {
		t.Fatal("expected generated id")
	}
	if msg.OccurredAt != "2026-01-30T15:00:00Z" {
		t.Fatalf("expected UTC timestamp, got %s", msg.OccurredAt)
	}
	if msg.Version != 1 || msg.Type != TypeDocumentUploaded || msg.DocumentID != "1700000000000-a.pdf" {
		t.Fatalf("unexpected message %+v", msg)
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("decoded mismatch: got %+v want %+v", got, msg)
	}
}

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = in
	return &sqs.SendMessageOutput{}, f.err
}

func TestSQSClientSetsTypeAttribute(t *testing.T) {
	fake := &fakeSQS{}
	client := &SQSClient{client: fake, queueURL: "https://sqs.us-east-1.amazonaws.com/123/pdf-events"}

	msg := NewMessage(TypeDocumentDeleted, "1-a.pdf", "", time.Now())
	if err := client.Send(context.Background(), msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	if aws.ToString(fake.input.QueueUrl) != client.queueURL {
		t.Fatalf("unexpected queue url %q", aws.ToString(fake.input.QueueUrl))
	}
	if got := aws.ToString(fake.input.MessageAttributes["type"].StringValue); got != TypeDocumentDeleted {
		t.Fatalf("expected type attribute %q, got %q", TypeDocumentDeleted, got)
	}

	fake.err = errors.New("throttled")
	if err := client.Send(context.Background(), msg); err == nil {
		t.Fatal("expected send error")
	}
}

func TestNewSQSClientRequiresURL(t *testing.T) {
	if _, err := NewSQSClient(aws.Config{}, " "); err == nil {
		t.Fatal("expected error for empty queue url")
	}
}

func TestMemoryRecordsMessages(t *testing.T) {
	var m Memory
	_ = m.Send(context.Background(), Message{Type: TypeDocumentUploaded})
	_ = m.Send(context.Background(), Message{Type: TypeDocumentDeleted})
	if got := m.Messages(); len(got) != 2 || got[1].Type != TypeDocumentDeleted {
		t.Fatalf("unexpected messages %+v", got)
	}
}
