package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/estafette/estafette-kernel-builder/config"
	"github.com/opentracing/opentracing-go"
	"github.com/rs/zerolog/log"
)

// Client sends the build notification through an smtp relay
//
//go:generate mockgen -package=mail -destination ./mock.go -source=client.go
type Client interface {
	SendBuildNotification(ctx context.Context, version string) (err error)
}

// NewClient returns a new mail.Client for the configured relay
func NewClient(mailConfig config.MailConfig) (Client, error) {
	return &client{
		mailConfig: mailConfig,
	}, nil
}

type client struct {
	mailConfig config.MailConfig
	tlsConfig  *tls.Config
}

func (c *client) SendBuildNotification(ctx context.Context, version string) (err error) {

	span, ctx := opentracing.StartSpanFromContext(ctx, "SendBuildNotification")
	defer span.Finish()

	address := net.JoinHostPort(c.mailConfig.Server, strconv.Itoa(c.mailConfig.Port))
	span.SetTag("server", address)

	log.Debug().Msgf("Connecting to mail server %v...", address)

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("connecting to mail server %v failed: %w", address, err)
	}

	smtpClient, err := smtp.NewClient(conn, c.mailConfig.Server)
	if err != nil {
		conn.Close()
		return fmt.Errorf("starting smtp session with %v failed: %w", address, err)
	}
	defer smtpClient.Close()

	tlsConfig := c.tlsConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: c.mailConfig.Server}
	}
	if err = smtpClient.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("starttls with %v failed: %w", address, err)
	}

	if err = smtpClient.Auth(smtp.PlainAuth("", c.mailConfig.User, c.mailConfig.Password, c.mailConfig.Server)); err != nil {
		return fmt.Errorf("authenticating with %v failed: %w", address, err)
	}

	if err = smtpClient.Mail(c.mailConfig.From); err != nil {
		return fmt.Errorf("setting sender %v failed: %w", c.mailConfig.From, err)
	}
	if err = smtpClient.Rcpt(c.mailConfig.To); err != nil {
		return fmt.Errorf("setting recipient %v failed: %w", c.mailConfig.To, err)
	}

	w, err := smtpClient.Data()
	if err != nil {
		return fmt.Errorf("opening message body failed: %w", err)
	}
	if _, err = w.Write(ComposeMessage(c.mailConfig.From, c.mailConfig.To, version, time.Now())); err != nil {
		w.Close()
		return fmt.Errorf("writing message body failed: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("sending message failed: %w", err)
	}

	log.Info().Msgf("Sent build notification for linux %v to %v", version, c.mailConfig.To)

	return smtpClient.Quit()
}

// Subject returns the subject line of the notification for version
func Subject(version string) string {
	return fmt.Sprintf("New kernel was successfully built: %v", version)
}

// ComposeMessage renders the headers and body of the notification
func ComposeMessage(from, to, version string, date time.Time) []byte {

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %v\r\n", from)
	fmt.Fprintf(&b, "To: %v\r\n", to)
	fmt.Fprintf(&b, "Subject: %v\r\n", Subject(version))
	fmt.Fprintf(&b, "Date: %v\r\n", date.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Debian packages for linux %v were built and are ready for installation.\r\n", version)

	return b.Bytes()
}
