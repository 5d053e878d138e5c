package postgres

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeyyedAliBargh/task-manager-api/internal/store"
)

// Constructors share the same contract: a nil database is a programmer
// error and panics, a nil logger falls back to slog.Default.
func TestStoreConstructors(t *testing.T) {
	t.Parallel()

	db := &sql.DB{}

	tests := []struct {
		name      string
		construct func(db store.DBTX) any
	}{
		{
			name: "profile_store",
			construct: func(db store.DBTX) any {
				return NewPostgresProfileStore(db, nil)
			},
		},
		{
			name: "verification_code_store",
			construct: func(db store.DBTX) any {
				return NewPostgresVerificationCodeStore(db, nil)
			},
		},
		{
			name: "project_store",
			construct: func(db store.DBTX) any {
				return NewPostgresProjectStore(db, nil)
			},
		},
		{
			name: "member_store",
			construct: func(db store.DBTX) any {
				return NewPostgresMemberStore(db, nil)
			},
		},
		{
			name: "task_store",
			construct: func(db store.DBTX) any {
				return NewPostgresTaskStore(db, nil)
			},
		},
		{
			name: "invitation_store",
			construct: func(db store.DBTX) any {
				return NewPostgresInvitationStore(db, nil)
			},
		},
		{
			name: "job_store",
			construct: func(db store.DBTX) any {
				return NewPostgresJobStore(db, nil)
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.NotNil(t, tc.construct(db))

			assert.Panics(t, func() {
				tc.construct(nil)
			})
		})
	}
}
