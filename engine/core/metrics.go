package core

import (
	"sync"
	"time"
)

const AVG_COUNT uint8 = 30

// PassKind distinguishes full traversals from per-mesh refreshes.
type PassKind uint8

const (
	PassFull PassKind = iota
	PassIncremental
)

// Metrics keeps a rolling average of binder pass durations and counts how
// many meshes each kind of pass touched.
type Metrics struct {
	mutex sync.Mutex

	avgCounter uint8
	msTimes    [AVG_COUNT]float64
	msAvg      float64

	fullPasses        uint64
	incrementalPasses uint64
	meshesTouched     uint64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordPass(kind PassKind, elapsed time.Duration, meshes int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	ms := float64(elapsed) / float64(time.Millisecond)
	m.msTimes[m.avgCounter] = ms
	if m.avgCounter == AVG_COUNT-1 {
		m.msAvg = 0
		for i := uint8(0); i < AVG_COUNT; i++ {
			m.msAvg += m.msTimes[i]
		}
		m.msAvg /= float64(AVG_COUNT)
	}
	m.avgCounter++
	m.avgCounter %= AVG_COUNT

	switch kind {
	case PassFull:
		m.fullPasses++
	case PassIncremental:
		m.incrementalPasses++
	}
	m.meshesTouched += uint64(meshes)
}

// Passes returns the number of full and incremental passes recorded.
func (m *Metrics) Passes() (uint64, uint64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.fullPasses, m.incrementalPasses
}

func (m *Metrics) MeshesTouched() uint64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.meshesTouched
}

// PassTime is the average pass duration in milliseconds over the last
// AVG_COUNT passes; zero until the window filled once.
func (m *Metrics) PassTime() float64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.msAvg
}
