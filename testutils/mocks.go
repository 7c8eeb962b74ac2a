package testutils

import (
	"context"

	"github.com/mateenikhtiyar/cim-backend/internal/mailer"
	"github.com/stretchr/testify/mock"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Send(ctx context.Context, to, recipientKind, subject, htmlBody string, attachments ...mailer.Attachment) error {
	args := m.Called(ctx, to, recipientKind, subject, htmlBody)
	return args.Error(0)
}
