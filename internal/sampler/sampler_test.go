package sampler

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource は呼び出しごとに1ミリ秒進むタイムスタンプを返す
type fakeSource struct {
	mu         sync.Mutex
	camera     time.Duration
	imu        time.Duration
	failCamera bool
	imuCalls   int
}

func (f *fakeSource) CameraTimestamp() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCamera {
		return -time.Microsecond
	}
	f.camera += time.Millisecond
	return f.camera
}

func (f *fakeSource) IMUTimestamp() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imuCalls++
	f.imu += time.Millisecond
	return f.imu
}

func testLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return log.NewEntry(logger)
}

func TestSampler_CollectWithoutIMU(t *testing.T) {
	source := &fakeSource{}
	s := New(source, Config{Enabled: true, Interval: time.Second, BufferSize: 4}, testLogger())

	sample := s.Collect()

	assert.Equal(t, int64(1000), sample.CameraTimestampUsec)
	assert.Equal(t, int64(-1), sample.IMUTimestampUsec)
	assert.Zero(t, source.imuCalls, "IMU must not be polled when disabled")
}

func TestSampler_RingBuffer(t *testing.T) {
	source := &fakeSource{}
	s := New(source, Config{Enabled: true, Interval: time.Second, BufferSize: 3, UseIMU: true}, testLogger())

	for i := 0; i < 5; i++ {
		s.Collect()
	}

	samples := s.GetSamples()
	require.Len(t, samples, 3)

	// 古いサンプルから順に並ぶ
	assert.Equal(t, int64(3000), samples[0].CameraTimestampUsec)
	assert.Equal(t, int64(4000), samples[1].CameraTimestampUsec)
	assert.Equal(t, int64(5000), samples[2].CameraTimestampUsec)
	assert.Equal(t, int64(5000), samples[2].IMUTimestampUsec)

	status := s.GetStatus()
	assert.Equal(t, uint64(5), status.TotalSamples)
	assert.Equal(t, 3, status.Buffered)
	assert.Equal(t, 3, status.BufferSize)
}

func TestSampler_CountsFailures(t *testing.T) {
	source := &fakeSource{failCamera: true}
	s := New(source, Config{Enabled: true, Interval: time.Second, BufferSize: 10}, testLogger())

	s.Collect()
	s.Collect()

	status := s.GetStatus()
	assert.Equal(t, uint64(2), status.CameraFailures)
	assert.Zero(t, status.IMUFailures)
	for _, sample := range s.GetSamples() {
		assert.Equal(t, int64(-1), sample.CameraTimestampUsec)
	}
}

func TestSampler_RunUntilCancelled(t *testing.T) {
	source := &fakeSource{}
	s := New(source, Config{Enabled: true, Interval: 5 * time.Millisecond, BufferSize: 100}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return s.GetStatus().TotalSamples >= 3
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StatusRunning, s.GetStatus().Status)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("サンプラーの停止がタイムアウトしました")
	}
	assert.Equal(t, StatusStopped, s.GetStatus().Status)
}

func TestSampler_Disabled(t *testing.T) {
	s := New(&fakeSource{}, DefaultConfig(), testLogger())

	// 無効な場合はすぐに戻る
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, StatusDisabled, s.GetStatus().Status)
	assert.Empty(t, s.GetSamples())
}

func TestSampler_NonPositiveIntervalUsesDefault(t *testing.T) {
	s := New(&fakeSource{}, Config{Enabled: true, Interval: 0, BufferSize: 0}, testLogger())

	assert.Equal(t, DefaultConfig().Interval, s.GetConfig().Interval)
	assert.Equal(t, 1, s.GetConfig().BufferSize)

	// 0以下の間隔でもRunはパニックせずに動作する
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return s.GetStatus().Status == StatusRunning
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("サンプラーの停止がタイムアウトしました")
	}
}
