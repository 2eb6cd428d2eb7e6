// Package smtp wraps net/smtp into a transport the mail sender can mock.
package smtp

import "io"

// Client is the subset of *smtp.Client the sender needs.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface connects to the SMTP server and exposes the
// configured sender address.
type TransportInterface interface {
	Connect() (Client, error)
	From() string
}
