package common

const (
	RedisStreamSchedulerTaskExecution = "schedule.task.execution"

	RedisStreamGroup    = "ingestion-group"
	RedisStreamConsumer = "ingestion-consumer"

	// RedisStreamPayloadField is the stream message field carrying the JSON task.
	RedisStreamPayloadField = "payload"
)

const (
	AdminSessionCookie = "admin_session"
	AdminKeyHeader     = "X-Admin-Key"
)
