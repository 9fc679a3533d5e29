package audited

import (
	"context"
	"errors"
	"testing"

	"github.com/aanand-mishra/student-records/internal/audit"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	entries []audit.Entry
	err     error
}

func (s *recordingSink) Append(_ context.Context, e audit.Entry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func TestAdd_AppendsOnSuccessOnly(t *testing.T) {
	sink := &recordingSink{}
	r := New(memory.New(), sink, nil)

	require.NoError(t, r.Add(types.NewStudent("S1", "Ada", "2", "CS")))
	err := r.Add(types.NewStudent("S1", "Dup", "9", "X"))
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	assert.Equal(t, []audit.Entry{{ID: "S1", Name: "Ada", Year: "2", Department: "CS"}}, sink.entries)
}

func TestAdd_SinkFailureKeepsRecord(t *testing.T) {
	boom := errors.New("disk full")
	r := New(memory.New(), &recordingSink{err: boom}, nil)

	err := r.Add(types.NewStudent("S1", "Ada", "2", "CS"))
	assert.ErrorIs(t, err, ErrAudit)
	assert.ErrorIs(t, err, boom)

	_, err = r.Get("S1")
	assert.NoError(t, err)
}

func TestPassThrough(t *testing.T) {
	sink := &recordingSink{}
	r := New(memory.New(), sink, nil)
	require.NoError(t, r.Add(types.NewStudent("S1", "Ada", "2", "CS")))

	_, err := r.AssignCourse("S1", "Algorithms")
	require.NoError(t, err)
	_, err = r.Edit("S1", types.Details{Name: types.Ptr("Ada L.")})
	require.NoError(t, err)
	require.NoError(t, r.Delete("S1"))

	assert.Len(t, sink.entries, 1)
	assert.Empty(t, r.List())
}
