package kafka_client

import "time"

const (
	KAFKA_TOPIC_TICKETS  = "tickets.incoming" // new tickets submitted outside the HTTP API
	KAFKA_TOPIC_ANALYZED = "tickets.analyzed" // one event per analyzed ticket
)

const (
	MAX_RETRIES   = 5
	RETRY_DELAY   = 2 * time.Second
	READ_TIMEOUT  = 100 * time.Millisecond
	FLUSH_TIMEOUT = 5000 // ms
)
