package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"repost/internal/config"
	"repost/internal/logging"
)

// Service delivers run outcome notifications. Delivery problems are logged by
// callers, never escalated into pipeline failures.
type Service interface {
	NotifySuccess(ctx context.Context, report Report) error
	NotifyFailure(ctx context.Context, report Report) error
	SendTest(ctx context.Context) error
}

// Report carries the fields the notification body is built from.
type Report struct {
	ItemTitle        string
	DraftTitle       string
	DraftDescription string
	RecordPath       string
	ArtifactDir      string
	SourceURL        string
	SoftSuccess      bool
	Stage            string
	Reason           string
}

// NewService returns an SMTP-backed service, or a noop one when no SMTP host
// is configured.
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	log := logging.NewComponentLogger(logger, "mailer")
	if strings.TrimSpace(cfg.Mailer.Host) == "" {
		log.Debug("smtp not configured, notifications disabled")
		return noopService{}
	}
	return &smtpService{cfg: cfg.Mailer, logger: log}
}

type noopService struct{}

func (noopService) NotifySuccess(context.Context, Report) error { return nil }
func (noopService) NotifyFailure(context.Context, Report) error { return nil }
func (noopService) SendTest(context.Context) error              { return nil }

type smtpService struct {
	cfg    config.Mailer
	logger *slog.Logger
}

func (s *smtpService) NotifySuccess(ctx context.Context, report Report) error {
	subject := fmt.Sprintf("发布成功: %s", report.headline())
	if report.SoftSuccess {
		subject = fmt.Sprintf("发布提交(未确认): %s", report.headline())
	}
	return s.send(ctx, subject, successBody(report))
}

func (s *smtpService) NotifyFailure(ctx context.Context, report Report) error {
	subject := fmt.Sprintf("发布失败: %s", report.headline())
	return s.send(ctx, subject, failureBody(report))
}

func (s *smtpService) SendTest(ctx context.Context) error {
	return s.send(ctx, "repost notification test", testBody())
}

func (r Report) headline() string {
	if title := strings.TrimSpace(r.DraftTitle); title != "" {
		return title
	}
	if title := strings.TrimSpace(r.ItemTitle); title != "" {
		return title
	}
	return "(untitled)"
}

func (s *smtpService) send(ctx context.Context, subject, htmlBody string) error {
	timeout := 30 * time.Second
	if s.cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(s.cfg.TimeoutSeconds) * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	message := buildMessage(s.cfg.From, s.cfg.To, subject, htmlBody)

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("mailer: dial %s: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("mailer: set deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mailer: smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("mailer: starttls: %w", err)
		}
	}
	if strings.TrimSpace(s.cfg.Username) != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("mailer: auth: %w", err)
		}
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("mailer: mail from: %w", err)
	}
	for _, rcpt := range s.cfg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mailer: rcpt %s: %w", rcpt, err)
		}
	}
	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("mailer: data: %w", err)
	}
	if _, err := writer.Write(message); err != nil {
		writer.Close()
		return fmt.Errorf("mailer: write body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("mailer: finish body: %w", err)
	}
	if err := client.Quit(); err != nil {
		s.logger.Debug("smtp quit failed", logging.Error(err))
	}
	s.logger.Info("notification sent",
		logging.String("subject", subject),
		logging.String("to", strings.Join(s.cfg.To, ", ")),
	)
	return nil
}

func buildMessage(from string, to []string, subject, htmlBody string) []byte {
	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")
	return []byte(msg.String())
}
