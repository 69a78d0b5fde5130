package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

const (
	logRetentionDays = 30
	// maxLogBatch stays well under the PutLogEvents limit of 10,000 events.
	maxLogBatch       = 500
	logFlushInterval  = 5 * time.Second
	logRequestTimeout = 5 * time.Second
)

type logsAPI interface {
	CreateLogGroup(ctx context.Context, in *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	PutRetentionPolicy(ctx context.Context, in *cloudwatchlogs.PutRetentionPolicyInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error)
	CreateLogStream(ctx context.Context, in *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, in *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// CloudWatchLogsClient buffers log lines and ships them to a CloudWatch Logs
// stream in batches. It is a zapcore.WriteSyncer: Sync flushes the buffer.
type CloudWatchLogsClient struct {
	api    logsAPI
	group  string
	stream string
	now    func() time.Time

	mu      sync.Mutex
	pending []types.InputLogEvent
	sendMu  sync.Mutex

	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewCloudWatchLogsClient ensures the log group exists, opens a stream named
// after the service and start time, and starts a background flusher.
func NewCloudWatchLogsClient(ctx context.Context, cfg sdkaws.Config, group, service string) (*CloudWatchLogsClient, error) {
	c, err := newCloudWatchLogsClient(ctx, cloudwatchlogs.NewFromConfig(cfg), group, service, time.Now)
	if err != nil {
		return nil, err
	}
	c.start(logFlushInterval)
	return c, nil
}

func newCloudWatchLogsClient(ctx context.Context, api logsAPI, group, service string, now func() time.Time) (*CloudWatchLogsClient, error) {
	if group == "" {
		group = "/jondu/api"
	}
	c := &CloudWatchLogsClient{
		api:    api,
		group:  group,
		stream: fmt.Sprintf("%s-%d", service, now().Unix()),
		now:    now,
	}

	if _, err := api.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{LogGroupName: sdkaws.String(group)}); err != nil {
		var exists *types.ResourceAlreadyExistsException
		if !errors.As(err, &exists) {
			return nil, fmt.Errorf("create log group %s: %w", group, err)
		}
	}
	if _, err := api.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    sdkaws.String(group),
		RetentionInDays: sdkaws.Int32(logRetentionDays),
	}); err != nil {
		return nil, fmt.Errorf("set retention on %s: %w", group, err)
	}
	if _, err := api.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  sdkaws.String(group),
		LogStreamName: sdkaws.String(c.stream),
	}); err != nil {
		return nil, fmt.Errorf("create log stream %s: %w", c.stream, err)
	}
	return c, nil
}

// Write queues one log line. A full batch is shipped immediately; shipping
// errors go to stderr and never fail the write.
func (c *CloudWatchLogsClient) Write(p []byte) (int, error) {
	c.mu.Lock()
	c.pending = append(c.pending, types.InputLogEvent{
		Message:   sdkaws.String(string(p)),
		Timestamp: sdkaws.Int64(c.now().UnixMilli()),
	})
	full := len(c.pending) >= maxLogBatch
	c.mu.Unlock()

	if full {
		if err := c.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "CloudWatch Logs flush failed: %v\n", err)
		}
	}
	return len(p), nil
}

// Sync ships every queued line.
func (c *CloudWatchLogsClient) Sync() error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), logRequestTimeout)
	defer cancel()
	_, err := c.api.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  sdkaws.String(c.group),
		LogStreamName: sdkaws.String(c.stream),
		LogEvents:     batch,
	})
	if err != nil {
		return fmt.Errorf("put %d log events: %w", len(batch), err)
	}
	return nil
}

func (c *CloudWatchLogsClient) start(interval time.Duration) {
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.Sync(); err != nil {
					fmt.Fprintf(os.Stderr, "CloudWatch Logs flush failed: %v\n", err)
				}
			case <-c.stop:
				return
			}
		}
	}()
}

// Close stops the background flusher and ships what is left.
func (c *CloudWatchLogsClient) Close() error {
	c.closeOnce.Do(func() {
		if c.stop != nil {
			close(c.stop)
			<-c.done
		}
	})
	return c.Sync()
}
