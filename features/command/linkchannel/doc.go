// Package linkchannel ties a user to the chat channel that overdue reminders and borrowing notices are sent to.
package linkchannel
