package systems

import (
	"errors"
	"sync"
	"testing"

	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidates(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)

	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(2, 4)
	require.NoError(t, err)

	var (
		mutex     sync.Mutex
		completed []interface{}
		failed    []error
		finished  int
	)
	boom := errors.New("boom")

	for i := 0; i < 4; i++ {
		require.NoError(t, js.Submit(metadata.JobTask{
			Name: "square",
			OnStart: func(params interface{}) (interface{}, error) {
				n := params.(int)
				if n == 3 {
					return nil, boom
				}
				return n * n, nil
			},
			OnComplete: func(result interface{}) {
				mutex.Lock()
				completed = append(completed, result)
				mutex.Unlock()
			},
			OnFailure: func(err error) {
				mutex.Lock()
				failed = append(failed, err)
				mutex.Unlock()
			},
			OnCompletionCallback: func() {
				mutex.Lock()
				finished++
				mutex.Unlock()
			},
			InputParams: i,
		}))
	}
	require.NoError(t, js.Shutdown())

	assert.ElementsMatch(t, []interface{}{0, 1, 4}, completed)
	assert.Equal(t, []error{boom}, failed)
	assert.Equal(t, 4, finished)

	assert.ErrorIs(t, js.Submit(metadata.JobTask{}), ErrJobSystemClosed)
	assert.NoError(t, js.Shutdown())
}
