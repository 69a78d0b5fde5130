package aws

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	logtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretsAPI struct {
	values map[string]string
	calls  int
}

func (f *fakeSecretsAPI) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	v, ok := f.values[*in.SecretId]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: sdkaws.String(v)}, nil
}

func TestSecretsClient_CachesUntilTTL(t *testing.T) {
	api := &fakeSecretsAPI{values: map[string]string{"jondu/JWT_SECRET": "s1"}}
	c := newSecretsClient(api, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	v, err := c.GetSecret(context.Background(), "jondu/JWT_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "s1", v)

	api.values["jondu/JWT_SECRET"] = "s2"
	v, _ = c.GetSecret(context.Background(), "jondu/JWT_SECRET")
	assert.Equal(t, "s1", v)
	assert.Equal(t, 1, api.calls)

	now = now.Add(2 * time.Minute)
	v, _ = c.GetSecret(context.Background(), "jondu/JWT_SECRET")
	assert.Equal(t, "s2", v)
	assert.Equal(t, 2, api.calls)

	_, err = c.GetSecret(context.Background(), "missing")
	assert.ErrorContains(t, err, "failed to get secret missing")
}

func TestSecretsClient_GetSecretMap(t *testing.T) {
	api := &fakeSecretsAPI{values: map[string]string{
		"jondu/DB_CREDENTIALS": `{"POSTGRES_USER":"jondu","POSTGRES_HOST":"db"}`,
		"plain":                "not-json",
	}}
	c := newSecretsClient(api, time.Minute)

	m, err := c.GetSecretMap(context.Background(), "jondu/DB_CREDENTIALS")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"POSTGRES_USER": "jondu", "POSTGRES_HOST": "db"}, m)

	_, err = c.GetSecretMap(context.Background(), "plain")
	assert.ErrorContains(t, err, "not a JSON object")
}

type fakeSNSAPI struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNSAPI) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{}, f.err
}

func TestSNSClient_Publish(t *testing.T) {
	api := &fakeSNSAPI{}
	c := &SNSClient{api: api}

	require.NoError(t, c.Publish(context.Background(), "arn:aws:sns:us-east-1:000000000000:orders", "order.placed", []byte(`{"id":1}`)))
	in := api.inputs[0]
	assert.Equal(t, `{"id":1}`, *in.Message)
	assert.Equal(t, "order.placed", *in.MessageAttributes[EventTypeAttribute].StringValue)
	assert.Nil(t, in.MessageGroupId)

	assert.ErrorIs(t, c.Publish(context.Background(), "", "order.placed", nil), ErrNoTopic)

	api.err = errors.New("throttled")
	err := c.Publish(context.Background(), "arn:aws:sns:us-east-1:000000000000:orders", "order.placed", nil)
	assert.ErrorContains(t, err, "throttled")
}

func TestSNSClient_FIFOTopic(t *testing.T) {
	api := &fakeSNSAPI{}
	c := &SNSClient{api: api}

	msg := []byte(`{"id":1}`)
	require.NoError(t, c.Publish(context.Background(), "arn:aws:sns:us-east-1:000000000000:orders.fifo", "order.placed", msg))
	require.NoError(t, c.Publish(context.Background(), "arn:aws:sns:us-east-1:000000000000:orders.fifo", "order.placed", msg))

	first, second := api.inputs[0], api.inputs[1]
	assert.Equal(t, "order.placed", *first.MessageGroupId)
	require.NotNil(t, first.MessageDeduplicationId)
	assert.Len(t, *first.MessageDeduplicationId, 64)
	assert.Equal(t, *first.MessageDeduplicationId, *second.MessageDeduplicationId)
}

type fakeCloudWatchAPI struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (f *fakeCloudWatchAPI) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestMetricsClient_PutMetric(t *testing.T) {
	api := &fakeCloudWatchAPI{}
	m := newMetricsClient(api, "", true)

	require.NoError(t, m.RecordCount(context.Background(), MetricOrdersCreated, map[string]string{"Service": "jondu-api", "BagType": "Nylon Bag"}))

	require.Len(t, api.inputs, 1)
	in := api.inputs[0]
	assert.Equal(t, "Jondu", *in.Namespace)
	datum := in.MetricData[0]
	assert.Equal(t, MetricOrdersCreated, *datum.MetricName)
	assert.Equal(t, 1.0, *datum.Value)
	require.Len(t, datum.Dimensions, 2)
	assert.Equal(t, "BagType", *datum.Dimensions[0].Name)
	assert.Equal(t, "Service", *datum.Dimensions[1].Name)

	disabled := newMetricsClient(api, "Jondu", false)
	require.NoError(t, disabled.RecordValue(context.Background(), MetricOrderValue, 10, nil))
	assert.Len(t, api.inputs, 1)
}

type fakeLogsAPI struct {
	mu           sync.Mutex
	groupErr     error
	streams      []string
	retention    int32
	batches      [][]logtypes.InputLogEvent
	putEventsErr error
}

func (f *fakeLogsAPI) CreateLogGroup(context.Context, *cloudwatchlogs.CreateLogGroupInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error) {
	return &cloudwatchlogs.CreateLogGroupOutput{}, f.groupErr
}

func (f *fakeLogsAPI) PutRetentionPolicy(_ context.Context, in *cloudwatchlogs.PutRetentionPolicyInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error) {
	f.retention = *in.RetentionInDays
	return &cloudwatchlogs.PutRetentionPolicyOutput{}, nil
}

func (f *fakeLogsAPI) CreateLogStream(_ context.Context, in *cloudwatchlogs.CreateLogStreamInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error) {
	f.streams = append(f.streams, *in.LogStreamName)
	return &cloudwatchlogs.CreateLogStreamOutput{}, nil
}

func (f *fakeLogsAPI) PutLogEvents(_ context.Context, in *cloudwatchlogs.PutLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, in.LogEvents)
	return &cloudwatchlogs.PutLogEventsOutput{}, f.putEventsErr
}

func fixedNow() time.Time { return time.Unix(1700000000, 0) }

func TestCloudWatchLogs_SetupAndBatching(t *testing.T) {
	api := &fakeLogsAPI{groupErr: &logtypes.ResourceAlreadyExistsException{}}
	c, err := newCloudWatchLogsClient(context.Background(), api, "", "jondu-api", fixedNow)
	require.NoError(t, err)

	assert.Equal(t, []string{"jondu-api-1700000000"}, api.streams)
	assert.Equal(t, int32(logRetentionDays), api.retention)

	_, _ = c.Write([]byte(`{"msg":"one"}`))
	_, _ = c.Write([]byte(`{"msg":"two"}`))
	assert.Empty(t, api.batches, "lines are buffered until Sync")

	require.NoError(t, c.Sync())
	require.Len(t, api.batches, 1)
	assert.Len(t, api.batches[0], 2)
	assert.Equal(t, `{"msg":"one"}`, *api.batches[0][0].Message)

	require.NoError(t, c.Sync())
	assert.Len(t, api.batches, 1, "empty buffer sends nothing")

	for i := 0; i < maxLogBatch; i++ {
		_, _ = c.Write([]byte(strings.Repeat("x", 10)))
	}
	assert.Len(t, api.batches, 2, "a full batch is shipped on write")

	require.NoError(t, c.Close())
}

func TestCloudWatchLogs_GroupError(t *testing.T) {
	api := &fakeLogsAPI{groupErr: errors.New("AccessDenied")}
	_, err := newCloudWatchLogsClient(context.Background(), api, "/jondu/api", "jondu-api", fixedNow)
	assert.ErrorContains(t, err, "AccessDenied")
}

func TestCloudWatchLogs_WriteNeverFails(t *testing.T) {
	api := &fakeLogsAPI{putEventsErr: errors.New("throttled")}
	c, err := newCloudWatchLogsClient(context.Background(), api, "", "jondu-api", fixedNow)
	require.NoError(t, err)

	n, err := c.Write([]byte("line"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Error(t, c.Sync())
}
