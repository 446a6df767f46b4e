package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/logger"
	"gorm.io/gorm"
)

type EmailService struct {
	db        *gorm.DB
	configSvc *SystemConfigService
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func NewEmailService(db *gorm.DB) *EmailService {
	return &EmailService{
		db:        db,
		configSvc: NewSystemConfigService(db),
	}
}

func (s *EmailService) GetConfig() *EmailConfig {
	config := &EmailConfig{}

	var configs []models.SystemConfig
	s.db.Where("`group` = ?", "email").Find(&configs)

	for _, c := range configs {
		switch c.Key {
		case "email_enabled":
			config.Enabled = c.Value == "true"
		case "email_host":
			config.Host = c.Value
		case "email_port":
			if port, err := strconv.Atoi(c.Value); err == nil {
				config.Port = port
			}
		case "email_username":
			config.Username = c.Value
		case "email_password":
			config.Password = c.Value
		case "email_from":
			config.From = c.Value
		case "email_use_tls":
			config.UseTLS = c.Value == "true"
		}
	}

	if config.Port == 0 {
		config.Port = 587
	}

	return config
}

// ProcessEmailTask delivers the notification for a queued invitation. The
// invitation is re-read so a resend that happened after enqueueing uses the
// current token and expiry. Delivery problems are the queue's to retry; they
// never touch invitation state.
func (s *EmailService) ProcessEmailTask(ctx context.Context, task *EmailTask) error {
	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		return nil
	}

	var invitation models.Invitation
	if err := s.db.Preload("Project").Preload("Inviter").First(&invitation, task.InvitationID).Error; err != nil {
		logger.Warnf("[Email] Invitation %d no longer exists, dropping notification", task.InvitationID)
		return nil
	}

	if invitation.Status != models.InvitationPending {
		// Revoked or accepted while queued; nothing to deliver.
		return nil
	}

	subject := "[TaskHive] You have been invited"
	if invitation.Project != nil {
		subject = fmt.Sprintf("[TaskHive] You have been invited to %s", invitation.Project.Name)
	}

	body := s.buildInvitationBody(&invitation)

	if err := s.sendEmail(config, []string{invitation.Email}, subject, body); err != nil {
		// Delivery failure never touches lifecycle state; the queue retries.
		LogWarning("Email", "Send", "invitation email delivery failed: "+err.Error(),
			nil, "", "", map[string]interface{}{"invitation_id": invitation.ID})
		return err
	}
	return nil
}

func (s *EmailService) buildInvitationBody(inv *models.Invitation) string {
	projectName := "a project"
	if inv.Project != nil {
		projectName = inv.Project.Name
	}
	inviterName := "A project owner"
	if inv.Inviter != nil {
		if inv.Inviter.Nickname != "" {
			inviterName = inv.Inviter.Nickname
		} else {
			inviterName = inv.Inviter.Username
		}
	}

	baseURL := s.configSvc.GetWithDefault("invite_base_url", "http://localhost:8080")
	link := fmt.Sprintf("%s/invitations/accept?token=%s", strings.TrimSuffix(baseURL, "/"), inv.Token)

	var sb strings.Builder

	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString("<h2>Project Invitation</h2>")
	sb.WriteString(fmt.Sprintf("<p>%s has invited you to join <b>%s</b> as a <b>%s</b>.</p>",
		inviterName, projectName, inv.Role))
	sb.WriteString(fmt.Sprintf("<p><a href=\"%s\" style=\"background: #2563eb; color: #fff; padding: 10px 18px; border-radius: 4px; text-decoration: none;\">Accept invitation</a></p>", link))
	sb.WriteString(fmt.Sprintf("<p style=\"color: #555;\">This link expires on %s.</p>",
		inv.ExpiresAt.Format(time.RFC1123)))
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Powered by TaskHive</p>")
	sb.WriteString("</body></html>")

	return sb.String()
}

func (s *EmailService) sendEmail(config *EmailConfig, to []string, subject, body string) error {
	from := config.From
	if from == "" {
		from = config.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	var err error
	if config.UseTLS {
		err = s.sendEmailTLS(config, addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		return err
	}

	logger.Infof("[Email] Sent invitation notification to %v", to)
	return nil
}

func (s *EmailService) sendEmailTLS(config *EmailConfig, addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	_, err = w.Write([]byte(message))
	if err != nil {
		return err
	}

	return w.Close()
}
