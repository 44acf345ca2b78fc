package services

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/codingclub/hackportal/internal/models"
	"github.com/codingclub/hackportal/pkg/logger"
	"gorm.io/gorm"
)

// EmailService delivers notification mail over SMTP. Settings live in the
// email group of system_configs so admins can change them at runtime; when
// the group is disabled or unconfigured, Send is a silent no-op.
type EmailService struct {
	db *gorm.DB
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
	return &EmailService{db: db}
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

// Send delivers one message to the given recipients.
func (s *EmailService) Send(recipients []string, subject, body string) error {
	config := s.GetConfig()
	if !config.Enabled || config.Host == "" {
		return nil
	}
	if len(recipients) == 0 {
		return nil
	}
	return s.sendEmail(config, recipients, subject, body)
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
	headers["Content-Type"] = "text/plain; charset=UTF-8"

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
		logger.Infof("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent notification to %v", to)
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
