// Package notify turns domain events into chat notices and hands them to a Sender.
//
// Only events addressed to a notification channel become notices: the borrowing confirmation,
// the overdue reminder and the all-clear message. Every other event is accepted and dropped.
// Dispatcher implements shell.EventPublisher, so command handlers can deliver directly, or the
// amqpnotify relay can feed it from the broker.
package notify
