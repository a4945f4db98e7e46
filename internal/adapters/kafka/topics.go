package kafka

// Topic definitions for Kafka event streaming
const (
	// One message per AI provider attempt made during an analysis.
	TopicProviderAttempts = "analysis.provider_attempts"
)
