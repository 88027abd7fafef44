package mocks

import (
	"context"

	"rutregistro/internal/apify"

	"github.com/stretchr/testify/mock"
)

type MockCorroborator struct {
	mock.Mock
}

func (m *MockCorroborator) Corroborate(ctx context.Context, canonicalRUT string) apify.Result {
	args := m.Called(ctx, canonicalRUT)
	return args.Get(0).(apify.Result)
}
