package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	DefaultNotificationsTopic = "scrimtime.notifications"
	DefaultCommandsTopic      = "scrimtime.commands"
	DefaultCommandsGroupID    = "scrimtime-scheduler"
	DefaultDLQTopic           = "scrimtime.dlq"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 100 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"

	DefaultConsumerMinBytes       = 1
	DefaultConsumerMaxBytes       = 10 << 20
	DefaultConsumerMaxWait        = 500 * time.Millisecond
	DefaultConsumerCommitInterval = time.Second
	DefaultConsumerMaxRetries     = 3
)
