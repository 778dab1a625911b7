package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   []byte
	CORSOrigins []string
	// Timeout por request, em segundos. 0 desliga.
	RequestTimeoutSec int
	// Fuso da clínica. A agenda (janela 08:00–18:00, corte de horários
	// passados) é toda calculada nesse fuso.
	Timezone      string
	SMTPHost      string
	SMTPPort      string
	SMTPUser      string
	SMTPPass      string
	SMTPFromName  string
	SMTPFromEmail string
	AppPublicURL  string
	// WhatsApp (Twilio) para lembretes de sessão
	TwilioAccountSid   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	// Espelhamento best-effort da agenda no Google Calendar
	GoogleCalendarToken string
	GoogleCalendarID    string
	// Bootstrap da conta única da profissional
	AdminNome  string
	AdminEmail string
	AdminSenha string
}

func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if len(jwtSecret) < 32 {
		jwtSecret = "default-secret-min-32-chars-required!!"
	}
	cors := os.Getenv("CORS_ORIGINS")
	if cors == "" {
		cors = "http://localhost:5173"
	}
	var origins []string
	for _, o := range strings.Split(cors, ",") {
		if t := strings.TrimSpace(o); t != "" {
			origins = append(origins, t)
		}
	}
	timeoutSec := 30
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			timeoutSec = n
		}
	}
	return &Config{
		Port:                port,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           []byte(jwtSecret),
		CORSOrigins:         origins,
		RequestTimeoutSec:   timeoutSec,
		Timezone:            getEnv("CLINIC_TIMEZONE", "America/Sao_Paulo"),
		SMTPHost:            getEnv("SMTP_HOST", "localhost"),
		SMTPPort:            getEnv("SMTP_PORT", "1025"),
		SMTPUser:            os.Getenv("SMTP_USER"),
		SMTPPass:            os.Getenv("SMTP_PASS"),
		SMTPFromName:        getEnv("SMTP_FROM_NAME", "Soul Salutte"),
		SMTPFromEmail:       getEnv("SMTP_FROM_EMAIL", "noreply@localhost"),
		AppPublicURL:        getEnv("APP_PUBLIC_URL", "http://localhost:5173"),
		TwilioAccountSid:    os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom:  os.Getenv("TWILIO_WHATSAPP_FROM"),
		GoogleCalendarToken: os.Getenv("GOOGLE_CALENDAR_TOKEN"),
		GoogleCalendarID:    getEnv("GOOGLE_CALENDAR_ID", "primary"),
		AdminNome:           getEnv("ADMIN_NOME", "Mariana"),
		AdminEmail:          os.Getenv("ADMIN_EMAIL"),
		AdminSenha:          os.Getenv("ADMIN_SENHA"),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
