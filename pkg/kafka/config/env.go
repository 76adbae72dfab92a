package kafka_config

const (
	EnvKafkaBrokers = "KAFKA_BROKERS"

	EnvKafkaNotificationsTopic = "KAFKA_NOTIFICATIONS_TOPIC"
	EnvKafkaCommandsTopic      = "KAFKA_COMMANDS_TOPIC"
	EnvKafkaCommandsGroupID    = "KAFKA_COMMANDS_GROUP_ID"
	EnvKafkaDLQTopic           = "KAFKA_DLQ_TOPIC"

	EnvKafkaProducerMaxAttempts  = "KAFKA_PRODUCER_MAX_ATTEMPTS"
	EnvKafkaProducerBatchTimeout = "KAFKA_PRODUCER_BATCH_TIMEOUT"
	EnvKafkaProducerRequireAcks  = "KAFKA_PRODUCER_REQUIRE_ACKS"
	EnvKafkaProducerCompression  = "KAFKA_PRODUCER_COMPRESSION"

	EnvKafkaConsumerMinBytes       = "KAFKA_CONSUMER_MIN_BYTES"
	EnvKafkaConsumerMaxBytes       = "KAFKA_CONSUMER_MAX_BYTES"
	EnvKafkaConsumerMaxWait        = "KAFKA_CONSUMER_MAX_WAIT"
	EnvKafkaConsumerCommitInterval = "KAFKA_CONSUMER_COMMIT_INTERVAL"
	EnvKafkaConsumerMaxRetries     = "KAFKA_CONSUMER_MAX_RETRIES"
)
