package provider

import (
	"sync/atomic"

	"github.com/torfstack/revsync/internal/logging"
)

const (
	LabelDownload = "remote-download"
	LabelUpload   = "remote-upload"
)

// Progress brackets long running remote operations.
type Progress interface {
	CountUp(label string)
	CountDown()
}

type NopProgress struct{}

func (NopProgress) CountUp(string) {}
func (NopProgress) CountDown()     {}

// LogProgress logs the number of running operations at debug level.
type LogProgress struct {
	active atomic.Int64
}

func (p *LogProgress) CountUp(label string) {
	n := p.active.Add(1)
	logging.Debugf("Started %s (%d running)", label, n)
}

func (p *LogProgress) CountDown() {
	n := p.active.Add(-1)
	logging.Debugf("Finished remote operation (%d running)", n)
}

func (p *LogProgress) Active() int64 {
	return p.active.Load()
}
