package rabbitmq

import (
	"github.com/streadway/amqp"
)

// InitRabbitMQ opens a connection to the broker.
func InitRabbitMQ(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
