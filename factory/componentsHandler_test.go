package factory

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/oxcrypt/oxprof/config"
	"github.com/stretchr/testify/assert"
)

func TestNewComponentsHandler(t *testing.T) {
	t.Parallel()

	handler, err := NewComponentsHandler(
		config.MonitorConfig{
			SampleIntervalInSeconds: 1,
			PollTimeoutInSeconds:    5,
			StatsCommand:            "oxcrypt",
			StatsArgs:               []string{"stats"},
		},
		&bytes.Buffer{})

	assert.NotNil(t, handler)
	assert.Nil(t, err)
}

func TestNewComponentsHandler_InvalidInterval(t *testing.T) {
	t.Parallel()

	handler, err := NewComponentsHandler(config.MonitorConfig{}, &bytes.Buffer{})

	assert.Nil(t, handler)
	assert.Error(t, err)
}

func TestComponentsHandlerMethods(t *testing.T) {
	t.Parallel()

	handler, _ := NewComponentsHandler(
		config.MonitorConfig{
			SampleIntervalInSeconds: 1,
			PollTimeoutInSeconds:    5,
			StatsCommand:            "oxcrypt",
			StatsArgs:               []string{"stats"},
		},
		&bytes.Buffer{})

	poller := handler.GetPoller()
	assert.Equal(t, "*sampler.statsPoller", fmt.Sprintf("%T", poller))

	engine := handler.GetEngine()
	assert.Equal(t, "*sampler.monitorEngine", fmt.Sprintf("%T", engine))
}
