package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordSink struct {
	tasks       int
	completions int
	fail        bool
}

func (r *recordSink) RecordTask(TaskEvent) error {
	r.tasks++
	if r.fail {
		return errors.New("down")
	}
	return nil
}

func (r *recordSink) RecordCompletion(CompletionEvent) error {
	r.completions++
	return nil
}

type taskOnlySink struct{ tasks int }

func (s *taskOnlySink) RecordTask(TaskEvent) error { s.tasks++; return nil }

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{fail: true}
	s2 := &recordSink{}
	s3 := &taskOnlySink{}
	m := NewMultiSink(s1, s2, s3)

	assert.Error(t, m.RecordTask(TaskEvent{TaskID: 1}))
	assert.NoError(t, m.RecordCompletion(CompletionEvent{TaskID: 1}))
	assert.NoError(t, m.RecordDoubleCompletion(DoubleCompletionEvent{TaskID: 1}))

	assert.Equal(t, 1, s1.tasks)
	assert.Equal(t, 1, s2.tasks)
	assert.Equal(t, 1, s3.tasks)
	assert.Equal(t, 1, s1.completions)
	assert.Equal(t, 1, s2.completions)
}
