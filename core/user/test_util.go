package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
)

type ServiceMock struct {
	*service

	// LastCode records the most recently issued OTP so tests can confirm it.
	LastCode string
}

// NewServiceMock builds a service whose issued OTPs are observable.
func NewServiceMock(repo Repository, mailSvc core.EmailService, validate *validator.Validate, conf *core.Config) *ServiceMock {
	mock := &ServiceMock{service: NewService(repo, mailSvc, validate, conf)}
	mock.service.otps.onIssue = func(email, purpose, code string) {
		mock.LastCode = code
	}
	return mock
}
