package service

import (
	"context"
	"testing"

	"github.com/firepit/infernos/internal/domain"
	"github.com/firepit/infernos/internal/mocks"
	"github.com/firepit/infernos/internal/storage/memory"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	svc      *Service
	users    *memory.UserMemoryStorage
	infernos *memory.InfernoMemoryStorage
	cults    *memory.CultMemoryStorage
	reval    *mocks.MockRevalidator
}

func newTestEnv() *testEnv {
	users := memory.NewUserMemoryStorage()
	infernos := memory.NewInfernoMemoryStorage()
	cults := memory.NewCultMemoryStorage()
	reval := mocks.NewMockRevalidator()
	return &testEnv{
		svc:      New(users, infernos, cults, reval, nil),
		users:    users,
		infernos: infernos,
		cults:    cults,
		reval:    reval,
	}
}

func (e *testEnv) mustSyncUser(t *testing.T, key, username, name string) *domain.User {
	t.Helper()
	u, err := e.svc.SyncUser(context.Background(), key, username, name, "", "", "")
	require.NoError(t, err)
	return u
}

func (e *testEnv) mustCreateCult(t *testing.T, key, username, name, creatorKey string) *domain.Cult {
	t.Helper()
	c, err := e.svc.CreateCult(context.Background(), key, name, username, "", "", creatorKey)
	require.NoError(t, err)
	return c
}
