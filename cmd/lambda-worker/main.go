package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"pdf-assistant-api/internal/bootstrap"
	"pdf-assistant-api/internal/shared/config"
	"pdf-assistant-api/internal/shared/metrics"
	"pdf-assistant-api/internal/shared/telemetry"
	"pdf-assistant-api/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	proc     workerproc.Processor
)

func initApp() {
	cfg := config.Load()
	telemetry.Setup("")
	app, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	proc = workerproc.Processor{Documents: app.DocumentsService, Chats: app.ChatsService}
}

// handler reports only retryable failures so SQS redelivers them; malformed
// events are dropped.
func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": initErr})
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}

	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		metrics.IncWorkerEvent("received")
		err := proc.HandleMessage(ctx, record.Body)
		var procErr workerproc.ErrProcess
		switch {
		case err == nil:
			metrics.IncWorkerEvent("completed")
		case errors.As(err, &procErr):
			telemetry.Error("worker.event.failed", map[string]any{
				"sqs_message_id": record.MessageId,
				"document_id":    procErr.DocumentID,
				"request_id":     procErr.RequestID,
				"error":          err,
			})
			metrics.IncWorkerEvent("failed")
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		default:
			telemetry.Error("worker.event.discarded", map[string]any{
				"sqs_message_id": record.MessageId,
				"error":          err,
			})
			metrics.IncWorkerEvent("discarded")
		}
	}

	return events.SQSEventResponse{BatchItemFailures: failures}, nil
}

func main() {
	lambda.Start(handler)
}
