package kafka

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Headers attached to dead-lettered records.
const (
	HeaderErrorType     = "error_type"
	HeaderErrorString   = "error_string"
	HeaderOriginalTopic = "original_topic"
)

// DLQTopic names the dead-letter topic of topic.
func DLQTopic(topic string) string {
	return topic + ".dlq"
}

// DeadLetter copies original into a record for its dead-letter topic, with
// headers describing the failure.
func DeadLetter(original *kgo.Record, errorType, errorString string) *kgo.Record {
	return &kgo.Record{
		Topic: DLQTopic(original.Topic),
		Key:   original.Key,
		Value: original.Value,
		Headers: []kgo.RecordHeader{
			{Key: HeaderErrorType, Value: []byte(errorType)},
			{Key: HeaderErrorString, Value: []byte(errorString)},
			{Key: HeaderOriginalTopic, Value: []byte(original.Topic)},
		},
	}
}

// ErrorHeaders extracts the failure description of a dead-lettered record.
// Missing headers read as N/A.
func ErrorHeaders(headers []kgo.RecordHeader) (errorType, errorString string) {
	errorType, errorString = "N/A", "N/A"
	for _, h := range headers {
		switch h.Key {
		case HeaderErrorType:
			errorType = string(h.Value)
		case HeaderErrorString:
			errorString = string(h.Value)
		}
	}
	return errorType, errorString
}

// ParsePartitionOffset parses "partition:offset", for example "0:123".
func ParsePartitionOffset(arg string) (int32, int64, error) {
	parts := strings.Split(arg, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid position %q, expected partition:offset such as 0:123", arg)
	}
	partition, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil || partition < 0 {
		return 0, 0, fmt.Errorf("invalid partition %q", parts[0])
	}
	offset, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset %q", parts[1])
	}
	return int32(partition), offset, nil
}
