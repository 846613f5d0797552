package sampler

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Source はタイムスタンプの取得元。取得できない場合は負の値を返す
type Source interface {
	CameraTimestamp() time.Duration
	IMUTimestamp() time.Duration
}

// Sampler はタイムスタンプを定期的に取得してリングバッファに保持する
type Sampler struct {
	source Source
	config Config

	buffer []Sample // リングバッファ
	next   int      // 次の書き込み位置
	count  int      // 保持しているサンプル数

	total          uint64
	cameraFailures uint64
	imuFailures    uint64
	lastSample     time.Time
	running        bool

	mu     sync.RWMutex
	logger *log.Entry
}

// New は新しいSamplerを作成する
func New(source Source, config Config, logger *log.Entry) *Sampler {
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}
	if config.BufferSize < 1 {
		config.BufferSize = 1
	}
	// 0以下の間隔ではティッカーを作れないためデフォルト値を使う
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	return &Sampler{
		source: source,
		config: config,
		buffer: make([]Sample, config.BufferSize),
		logger: logger.WithField("component", "sampler"),
	}
}

// Run はコンテキストがキャンセルされるまでポーリングを続ける。
// 無効化されている場合はすぐに戻る
func (s *Sampler) Run(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Infoln("サンプラーは無効です")
		return nil
	}

	s.setRunning(true)
	defer s.setRunning(false)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.config.Interval).Infoln("サンプラーを開始しました")

	for {
		select {
		case <-ctx.Done():
			s.logger.Infoln("サンプラーを停止しました")
			return nil
		case <-ticker.C:
			s.Collect()
		}
	}
}

// Collect はタイムスタンプを1回取得してバッファに追加する
func (s *Sampler) Collect() Sample {
	sample := Sample{
		Time:                time.Now(),
		CameraTimestampUsec: s.source.CameraTimestamp().Microseconds(),
		IMUTimestampUsec:    -1,
	}
	if s.config.UseIMU {
		sample.IMUTimestampUsec = s.source.IMUTimestamp().Microseconds()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffer[s.next] = sample
	s.next = (s.next + 1) % len(s.buffer)
	if s.count < len(s.buffer) {
		s.count++
	}

	s.total++
	s.lastSample = sample.Time
	if sample.CameraTimestampUsec < 0 {
		s.cameraFailures++
	}
	if s.config.UseIMU && sample.IMUTimestampUsec < 0 {
		s.imuFailures++
	}

	return sample
}

// GetSamples は保持しているサンプルを古い順に返す
func (s *Sampler) GetSamples() []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	samples := make([]Sample, 0, s.count)
	start := (s.next - s.count + len(s.buffer)) % len(s.buffer)
	for i := 0; i < s.count; i++ {
		samples = append(samples, s.buffer[(start+i)%len(s.buffer)])
	}
	return samples
}

// GetStatus はサンプラーの状態を取得する
func (s *Sampler) GetStatus() StatusInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := StatusStopped
	switch {
	case !s.config.Enabled:
		status = StatusDisabled
	case s.running:
		status = StatusRunning
	}

	return StatusInfo{
		Status:         status,
		Interval:       s.config.Interval.String(),
		BufferSize:     len(s.buffer),
		Buffered:       s.count,
		TotalSamples:   s.total,
		CameraFailures: s.cameraFailures,
		IMUFailures:    s.imuFailures,
		LastSample:     s.lastSample,
	}
}

// GetConfig は設定を取得する
func (s *Sampler) GetConfig() Config {
	return s.config
}

func (s *Sampler) setRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
}
