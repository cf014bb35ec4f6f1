package kafka_client

type KafkaConfig struct {
	Broker       string
	GroupID      string
	TicketsTopic string
	ResultsTopic string
}

// withDefaults fills empty topics with the package defaults.
func (c KafkaConfig) withDefaults() KafkaConfig {
	if c.TicketsTopic == "" {
		c.TicketsTopic = KAFKA_TOPIC_TICKETS
	}
	if c.ResultsTopic == "" {
		c.ResultsTopic = KAFKA_TOPIC_ANALYZED
	}
	return c
}
