// Package amqpnotify moves domain events through a RabbitMQ topic exchange.
//
// Publisher is the shell.EventPublisher the command handlers publish to. Each event becomes one
// persistent JSON message routed by its event type. Relay consumes the queue bound to the exchange
// and hands each decoded event to another publisher, normally a notify.Dispatcher.
package amqpnotify
