package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

const (
	DefaultLogGroup      = "/storefront/api"
	DefaultRetentionDays = 14
	logWriteTimeout      = 5 * time.Second
)

// retentionDays lists the values PutRetentionPolicy accepts.
var retentionDays = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 14: true, 30: true, 60: true, 90: true,
	120: true, 150: true, 180: true, 365: true, 400: true, 545: true, 731: true,
	1096: true, 1827: true, 2192: true, 2557: true, 2922: true, 3288: true, 3653: true,
}

// ValidRetentionDays reports whether CloudWatch Logs accepts days as a
// retention period. Zero means never expire.
func ValidRetentionDays(days int) bool {
	return days == 0 || retentionDays[days]
}

type logsAPI interface {
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	PutRetentionPolicy(ctx context.Context, params *cloudwatchlogs.PutRetentionPolicyInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// LogOptions configures where a LogWriter ships to.
type LogOptions struct {
	Group         string
	Service       string
	RetentionDays int
}

// LogWriter is an io.Writer that sends each write as one CloudWatch Logs
// event. The API process gets its own stream per host and start.
type LogWriter struct {
	client logsAPI
	group  string
	stream string
}

func NewCloudWatchLogsClient(cfg sdkaws.Config) *cloudwatchlogs.Client {
	return cloudwatchlogs.NewFromConfig(cfg)
}

// NewLogWriter makes sure the log group (with its retention) and this
// process's stream exist.
func NewLogWriter(ctx context.Context, client logsAPI, opts LogOptions) (*LogWriter, error) {
	if opts.Group == "" {
		opts.Group = DefaultLogGroup
	}
	if !ValidRetentionDays(opts.RetentionDays) {
		return nil, fmt.Errorf("unsupported log retention of %d days", opts.RetentionDays)
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown-host"
	}

	w := &LogWriter{
		client: client,
		group:  opts.Group,
		stream: logStreamName(opts.Service, host, os.Getpid(), time.Now()),
	}
	if err := w.ensureLogGroup(ctx, opts.RetentionDays); err != nil {
		return nil, fmt.Errorf("failed to ensure log group: %w", err)
	}
	_, err = client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  sdkaws.String(w.group),
		LogStreamName: sdkaws.String(w.stream),
	})
	if err != nil && !alreadyExists(err) {
		return nil, fmt.Errorf("failed to create log stream: %w", err)
	}
	return w, nil
}

// logStreamName groups streams by day, then service, then host.
func logStreamName(service, host string, pid int, now time.Time) string {
	if service == "" {
		service = "api"
	}
	return fmt.Sprintf("%s/%s/%s-%d", now.UTC().Format("2006/01/02"), service, host, pid)
}

func (w *LogWriter) ensureLogGroup(ctx context.Context, days int) error {
	_, err := w.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: sdkaws.String(w.group),
	})
	if err != nil && !alreadyExists(err) {
		return err
	}
	if days == 0 {
		return nil
	}
	_, err = w.client.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    sdkaws.String(w.group),
		RetentionInDays: sdkaws.Int32(int32(days)),
	})
	if err != nil {
		return fmt.Errorf("failed to set retention policy: %w", err)
	}
	return nil
}

func alreadyExists(err error) bool {
	var existsErr *types.ResourceAlreadyExistsException
	return errors.As(err, &existsErr)
}

// Stream returns the log stream this writer ships to.
func (w *LogWriter) Stream() string {
	return w.stream
}

// Write ships p as a single event. Failures go to stderr and never fail the
// caller's log call.
func (w *LogWriter) Write(p []byte) (int, error) {
	msg := bytes.TrimRight(p, "\n")
	if len(msg) == 0 {
		return len(p), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
	defer cancel()

	_, err := w.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  sdkaws.String(w.group),
		LogStreamName: sdkaws.String(w.stream),
		LogEvents: []types.InputLogEvent{{
			Message:   sdkaws.String(string(msg)),
			Timestamp: sdkaws.Int64(time.Now().UnixMilli()),
		}},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "CloudWatch write error: %v\n", err)
	}
	return len(p), nil
}
