package factory

import (
	"io"
	"time"

	"github.com/oxcrypt/oxprof/config"
	"github.com/oxcrypt/oxprof/sampler"
)

type componentsHandler struct {
	poller sampler.Poller
	engine Engine
}

// NewComponentsHandler creates the live monitor components out of the
// monitor configuration
func NewComponentsHandler(cfg config.MonitorConfig, out io.Writer) (*componentsHandler, error) {
	poll := sampler.NewStatsPoller(
		cfg.StatsCommand,
		cfg.StatsArgs,
		time.Duration(cfg.PollTimeoutInSeconds)*time.Second,
	)

	eng, err := sampler.NewMonitorEngine(poll, out, time.Duration(cfg.SampleIntervalInSeconds)*time.Second)
	if err != nil {
		return nil, err
	}

	return &componentsHandler{
		poller: poll,
		engine: eng,
	}, nil
}

// GetPoller returns the poller component
func (ch *componentsHandler) GetPoller() sampler.Poller {
	return ch.poller
}

// GetEngine returns the engine component
func (ch *componentsHandler) GetEngine() Engine {
	return ch.engine
}
