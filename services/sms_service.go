package services

import (
	"context"
	"log/slog"
)

// SmsSender абстрагирует доставку OTP. Реальной интеграции со шлюзом нет:
// боевой вариант подставляется этой же сигнатурой.
type SmsSender interface {
	SendOtp(ctx context.Context, phoneNumber, code string) error
}

// LogSmsSender пишет код в лог вместо отправки SMS.
type LogSmsSender struct {
	logger *slog.Logger
}

func NewLogSmsSender(logger *slog.Logger) *LogSmsSender {
	return &LogSmsSender{logger: logger}
}

func (s *LogSmsSender) SendOtp(ctx context.Context, phoneNumber, code string) error {
	s.logger.Info("sms otp (not delivered, log-only sender)",
		slog.String("phone", phoneNumber),
		slog.String("code", code),
	)
	return nil
}
