package service

import (
	"context"
	"errors"
	"testing"

	"github.com/firepit/infernos/internal/domain"
	"github.com/firepit/infernos/internal/inferno"
	"github.com/firepit/infernos/internal/mocks"
	"github.com/firepit/infernos/internal/storage/memory"
	"github.com/firepit/infernos/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyUserStore fails selected link operations to simulate a crash between
// the idempotent steps of a multi-entity mutation.
type flakyUserStore struct {
	user.UserStorage
	failAttachInferno bool
	failAttachCult    bool
}

func (s *flakyUserStore) AttachInferno(ctx context.Context, userID, infernoID string) error {
	if s.failAttachInferno {
		return errors.New("user store unavailable")
	}
	return s.UserStorage.AttachInferno(ctx, userID, infernoID)
}

func (s *flakyUserStore) AttachCult(ctx context.Context, userID, cultID string) error {
	if s.failAttachCult {
		return errors.New("user store unavailable")
	}
	return s.UserStorage.AttachCult(ctx, userID, cultID)
}

type flakyInfernoStore struct {
	inferno.InfernoStorage
	failAppendChild  bool
	failDeleteByCult bool
}

func (s *flakyInfernoStore) AppendChild(ctx context.Context, parentID, childID string) error {
	if s.failAppendChild {
		return errors.New("inferno store unavailable")
	}
	return s.InfernoStorage.AppendChild(ctx, parentID, childID)
}

func (s *flakyInfernoStore) DeleteByCult(ctx context.Context, cultID string) error {
	if s.failDeleteByCult {
		return errors.New("inferno store unavailable")
	}
	return s.InfernoStorage.DeleteByCult(ctx, cultID)
}

func newFlakyEnv() (*testEnv, *flakyUserStore, *flakyInfernoStore) {
	users := memory.NewUserMemoryStorage()
	infernos := memory.NewInfernoMemoryStorage()
	cults := memory.NewCultMemoryStorage()
	reval := mocks.NewMockRevalidator()
	flakyUsers := &flakyUserStore{UserStorage: users}
	flakyInfernos := &flakyInfernoStore{InfernoStorage: infernos}
	env := &testEnv{
		svc:      New(flakyUsers, flakyInfernos, cults, reval, nil),
		users:    users,
		infernos: infernos,
		cults:    cults,
		reval:    reval,
	}
	return env, flakyUsers, flakyInfernos
}

func TestService_PartialFailureRecovery(t *testing.T) {
	ctx := context.Background()

	t.Run("Inferno created but author link fails", func(t *testing.T) {
		env, flakyUsers, _ := newFlakyEnv()
		author := env.mustSyncUser(t, "u1", "hellraiser", "Hell Raiser")

		flakyUsers.failAttachInferno = true
		orphan, err := env.svc.CreateInferno(ctx, "burn bright", "u1", "", "/feed")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPartialFailure)
		require.NotNil(t, orphan, "the created inferno is returned with the error")

		// the record exists but the author set was never updated, and the
		// view was not invalidated
		_, err = env.infernos.GetInfernoByID(orphan.ID)
		require.NoError(t, err)
		u, err := env.users.GetUserByID(author.ID)
		require.NoError(t, err)
		assert.Empty(t, u.InfernoIDs)
		assert.NotContains(t, env.reval.InvalidatedPaths(), "/feed")

		// once the store recovers the operation is re-runnable end to end
		flakyUsers.failAttachInferno = false
		retried, err := env.svc.CreateInferno(ctx, "burn bright", "u1", "", "/feed")
		require.NoError(t, err)
		u, err = env.users.GetUserByID(author.ID)
		require.NoError(t, err)
		assert.Contains(t, u.InfernoIDs, retried.ID)
		assert.Contains(t, env.reval.InvalidatedPaths(), "/feed")

		// the orphaned record's own link step converges too
		require.NoError(t, env.users.AttachInferno(ctx, author.ID, orphan.ID))
		u, err = env.users.GetUserByID(author.ID)
		require.NoError(t, err)
		assert.Contains(t, u.InfernoIDs, orphan.ID)
	})

	t.Run("Comment created but parent link fails", func(t *testing.T) {
		env, _, flakyInfernos := newFlakyEnv()
		env.mustSyncUser(t, "u1", "hellraiser", "Hell Raiser")
		root, err := env.svc.CreateInferno(ctx, "root", "u1", "", "")
		require.NoError(t, err)

		flakyInfernos.failAppendChild = true
		orphan, err := env.svc.AddComment(ctx, root.ID, "a reply", "u1", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPartialFailure)
		require.NotNil(t, orphan)

		parent, err := env.infernos.GetInfernoByID(root.ID)
		require.NoError(t, err)
		assert.Empty(t, parent.ChildIDs)

		flakyInfernos.failAppendChild = false
		retried, err := env.svc.AddComment(ctx, root.ID, "a reply", "u1", "")
		require.NoError(t, err)
		require.NoError(t, env.infernos.AppendChild(ctx, root.ID, orphan.ID))

		parent, err = env.infernos.GetInfernoByID(root.ID)
		require.NoError(t, err)
		assert.Contains(t, parent.ChildIDs, retried.ID)
		assert.Contains(t, parent.ChildIDs, orphan.ID)
	})

	t.Run("Half-applied join is completed on retry", func(t *testing.T) {
		env, flakyUsers, _ := newFlakyEnv()
		env.mustSyncUser(t, "u1", "hellraiser", "Hell Raiser")
		joiner := env.mustSyncUser(t, "u2", "ember", "Ember")
		cult := env.mustCreateCult(t, "c1", "devs", "Devs", "u1")

		flakyUsers.failAttachCult = true
		_, err := env.svc.JoinCult(ctx, "c1", "u2")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPartialFailure)

		// member set updated, roster not
		c, err := env.cults.GetCultByID(cult.ID)
		require.NoError(t, err)
		assert.Contains(t, c.MemberIDs, joiner.ID)
		u, err := env.users.GetUserByID(joiner.ID)
		require.NoError(t, err)
		assert.NotContains(t, u.CultIDs, cult.ID)

		// the retry completes the missing roster half instead of rejecting
		flakyUsers.failAttachCult = false
		joined, err := env.svc.JoinCult(ctx, "c1", "u2")
		require.NoError(t, err)
		assert.Contains(t, joined.MemberIDs, joiner.ID)
		u, err = env.users.GetUserByID(joiner.ID)
		require.NoError(t, err)
		assert.Contains(t, u.CultIDs, cult.ID)

		// a fully-linked duplicate is still rejected
		_, err = env.svc.JoinCult(ctx, "c1", "u2")
		assert.ErrorIs(t, err, domain.ErrAlreadyMember)
	})

	t.Run("Interrupted cascade converges when re-run", func(t *testing.T) {
		env, _, flakyInfernos := newFlakyEnv()
		env.mustSyncUser(t, "u1", "hellraiser", "Hell Raiser")
		env.mustCreateCult(t, "c1", "devs", "Devs", "u1")
		post, err := env.svc.CreateInferno(ctx, "doomed", "u1", "c1", "")
		require.NoError(t, err)

		flakyInfernos.failDeleteByCult = true
		deleted, err := env.svc.DeleteCult(ctx, "c1", "/cults")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrPartialFailure)
		require.NotNil(t, deleted)

		// the cult record is gone but its posts survived the interruption
		_, err = env.cults.GetCultByKey("c1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = env.infernos.GetInfernoByID(post.ID)
		require.NoError(t, err)
		assert.NotContains(t, env.reval.InvalidatedPaths(), "/cults")

		// the remaining step is idempotent and finishes the cleanup
		flakyInfernos.failDeleteByCult = false
		require.NoError(t, env.infernos.DeleteByCult(ctx, deleted.ID))
		_, err = env.infernos.GetInfernoByID(post.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
