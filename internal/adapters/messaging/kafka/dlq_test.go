package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestDeadLetter(t *testing.T) {
	original := &kgo.Record{Topic: "payments.events", Key: []byte("pay_1"), Value: []byte("{oops")}

	dl := DeadLetter(original, "unmarshal_error", "unexpected end of JSON input")
	assert.Equal(t, "payments.events.dlq", dl.Topic)
	assert.Equal(t, original.Key, dl.Key)
	assert.Equal(t, original.Value, dl.Value)

	errorType, errorString := ErrorHeaders(dl.Headers)
	assert.Equal(t, "unmarshal_error", errorType)
	assert.Equal(t, "unexpected end of JSON input", errorString)
}

func TestErrorHeaders_Missing(t *testing.T) {
	errorType, errorString := ErrorHeaders(nil)
	assert.Equal(t, "N/A", errorType)
	assert.Equal(t, "N/A", errorString)
}

func TestParsePartitionOffset(t *testing.T) {
	partition, offset, err := ParsePartitionOffset("2:123")
	require.NoError(t, err)
	assert.Equal(t, int32(2), partition)
	assert.Equal(t, int64(123), offset)

	for _, bad := range []string{"", "1", "a:1", "1:b", "-1:3", "1:2:3"} {
		_, _, err := ParsePartitionOffset(bad)
		assert.Error(t, err, bad)
	}
}
