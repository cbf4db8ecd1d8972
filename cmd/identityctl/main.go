// identityctl publishes a single command envelope to the requests topic,
// for poking a running identity service by hand:
//
//	identityctl -action login -data '{"email":"a@b.com","password":"pw123456"}'
//
// It prints the generated request id so the response can be picked out
// of the responses topic.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/parleychat/parley/internal/identity/domain"
)

func main() {
	var (
		brokers = flag.String("brokers", "localhost:9092", "comma-separated Kafka brokers")
		topic   = flag.String("topic", "identity.requests", "requests topic")
		action  = flag.String("action", "", "action name, e.g. registration")
		data    = flag.String("data", "{}", "action payload as JSON")
	)
	flag.Parse()

	if *action == "" {
		log.Fatal("-action is required")
	}
	if !json.Valid([]byte(*data)) {
		log.Fatal("-data must be valid JSON")
	}

	requestID := uuid.NewString()
	envelope := domain.CommandEnvelope{
		RequestID: requestID,
		Message: domain.CommandMessage{
			Action: *action,
			Data:   json.RawMessage(*data),
		},
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		log.Fatalf("marshal envelope: %v", err)
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(*brokers, ",")...),
		Topic:    *topic,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(requestID),
		Value: value,
	}); err != nil {
		log.Fatalf("publish command: %v", err)
	}

	fmt.Println(requestID)
}
