package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kinectbase/internal/config"
	"kinectbase/internal/generated"
	"kinectbase/internal/kinect"
	"kinectbase/internal/sampler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestServer はモックドライバーを使うテスト用サーバーを作成する
func newTestServer(t *testing.T, devices int, useIMU bool) (*Server, *kinect.MockDriver) {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Kinect.UseIMU = useIMU
	cfg.Kinect.CaptureTimeout = 10 * time.Millisecond
	cfg.Kinect.IMUTimeout = 10 * time.Millisecond

	driver := kinect.NewMockDriver(devices)
	srv, err := New(cfg, driver, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.session.Close() })
	return srv, driver
}

func doRequest(t *testing.T, srv *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

// TestServerEndpoints は参照系エンドポイントをテストする
func TestServerEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, 2, false)

	testCases := []struct {
		name           string
		endpoint       string
		expectedStatus int
	}{
		{"ヘルスチェックエンドポイント", "/health", http.StatusOK},
		{"ステータスエンドポイント", "/api/status", http.StatusOK},
		{"デバイス一覧エンドポイント", "/api/devices", http.StatusOK},
		{"デバイス数エンドポイント", "/api/devices/count", http.StatusOK},
		{"設定エンドポイント", "/api/kinect/config", http.StatusOK},
		{"キャリブレーション未取得", "/api/kinect/calibration", http.StatusNotFound},
		{"サンプラー状態エンドポイント", "/api/sampler/status", http.StatusOK},
		{"存在しないエンドポイント", "/api/unknown", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodGet, tc.endpoint, nil)
			assert.Equal(t, tc.expectedStatus, rec.Code, "予期しないステータスコード")
		})
	}

	devices := decode[generated.DevicesResponse](t, doRequest(t, srv, http.MethodGet, "/api/devices", nil))
	require.Len(t, devices.Devices, 2)
	assert.True(t, devices.Devices[0].InUse)
	assert.True(t, devices.Devices[1].Available)
	assert.False(t, devices.Devices[1].InUse)

	count := decode[generated.DeviceCountResponse](t, doRequest(t, srv, http.MethodGet, "/api/devices/count", nil))
	assert.Equal(t, uint32(2), count.Count)
}

func TestServer_Status(t *testing.T) {
	srv, _ := newTestServer(t, 1, true)

	status := decode[generated.StatusResponse](t, doRequest(t, srv, http.MethodGet, "/api/status", nil))

	assert.Equal(t, generated.StatusResponseStatus("running"), status.Status)
	assert.Equal(t, "127.0.0.1", status.Server.Host)
	assert.True(t, status.Session.Initialized)
	assert.True(t, status.Session.UseIMU)
	assert.NotEmpty(t, status.Session.ID)
	assert.Equal(t, kinect.StatusStopped, status.Session.CameraStatus)
	assert.Equal(t, kinect.DefaultConfig(), status.Session.Configuration)
}

func TestServer_CameraLifecycle(t *testing.T) {
	srv, driver := newTestServer(t, 1, true)

	rec := doRequest(t, srv, http.MethodPost, "/api/kinect/imu/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	control := decode[generated.ControlResponse](t, rec)
	assert.Equal(t, kinect.StatusRunning, control.CameraStatus)
	assert.Equal(t, kinect.StatusRunning, control.ImuStatus)

	// IMUを停止してもカメラは動作し続ける
	control = decode[generated.ControlResponse](t, doRequest(t, srv, http.MethodPost, "/api/kinect/imu/stop", nil))
	assert.Equal(t, kinect.StatusRunning, control.CameraStatus)
	assert.Equal(t, kinect.StatusStopped, control.ImuStatus)

	control = decode[generated.ControlResponse](t, doRequest(t, srv, http.MethodPost, "/api/kinect/camera/stop", nil))
	assert.Equal(t, kinect.StatusStopped, control.CameraStatus)

	handle, ok := driver.Handle(0)
	require.True(t, ok)
	assert.False(t, handle.CamerasActive())
	assert.False(t, handle.IMUActive())
}

func TestServer_StartFailure(t *testing.T) {
	srv, driver := newTestServer(t, 1, false)

	handle, _ := driver.Handle(0)
	handle.SetShouldFailStartCameras(true)

	rec := doRequest(t, srv, http.MethodPost, "/api/kinect/camera/start", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decode[generated.ErrorResponse](t, rec)
	assert.Equal(t, "start_failed", resp.Error)
	require.NotNil(t, resp.Details)
}

func TestServer_NoDevice(t *testing.T) {
	srv, _ := newTestServer(t, 0, true)

	rec := doRequest(t, srv, http.MethodPost, "/api/kinect/camera/start", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "device_not_initialized", decode[generated.ErrorResponse](t, rec).Error)

	ts := decode[generated.TimestampResponse](t, doRequest(t, srv, http.MethodGet, "/api/kinect/timestamp/camera", nil))
	assert.False(t, ts.Available)
	assert.Equal(t, int64(-1), ts.TimestampUsec)

	ts = decode[generated.TimestampResponse](t, doRequest(t, srv, http.MethodGet, "/api/kinect/timestamp/imu", nil))
	assert.False(t, ts.Available)
	assert.Equal(t, int64(-1), ts.TimestampUsec)

	rec = doRequest(t, srv, http.MethodGet, "/api/kinect/imu/sample", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/kinect/calibration", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_Timestamps(t *testing.T) {
	srv, _ := newTestServer(t, 1, true)

	camera := decode[generated.TimestampResponse](t, doRequest(t, srv, http.MethodGet, "/api/kinect/timestamp/camera", nil))
	assert.True(t, camera.Available)
	assert.Equal(t, generated.Camera, camera.Source)
	assert.Positive(t, camera.TimestampUsec)

	imu := decode[generated.TimestampResponse](t, doRequest(t, srv, http.MethodGet, "/api/kinect/timestamp/imu", nil))
	assert.True(t, imu.Available)
	assert.Positive(t, imu.TimestampUsec)

	sample := decode[kinect.IMUSample](t, doRequest(t, srv, http.MethodGet, "/api/kinect/imu/sample", nil))
	assert.Equal(t, sample.AccTimestampUsec, sample.GyroTimestampUsec)
}

func TestServer_PutConfig(t *testing.T) {
	srv, driver := newTestServer(t, 1, false)

	require.Equal(t, http.StatusOK, doRequest(t, srv, http.MethodPost, "/api/kinect/camera/start", nil).Code)

	body := []byte(`{"color_format":"MJPG","color_resolution":"1080P","depth_mode":"WFOV_2X2BINNED","camera_fps":15}`)
	rec := doRequest(t, srv, http.MethodPut, "/api/kinect/config", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	expected := kinect.NewConfig(
		kinect.WithColorFormat(kinect.ImageFormatMJPG),
		kinect.WithColorResolution(kinect.ColorResolution1080P),
		kinect.WithDepthMode(kinect.DepthModeWFOV2x2Binned),
		kinect.WithFPS(kinect.FPS15),
	)
	assert.Equal(t, expected, decode[kinect.Config](t, rec))
	assert.Equal(t, expected, decode[kinect.Config](t, doRequest(t, srv, http.MethodGet, "/api/kinect/config", nil)))

	// 設定変更でカメラは停止する
	status := decode[generated.StatusResponse](t, doRequest(t, srv, http.MethodGet, "/api/status", nil))
	assert.Equal(t, kinect.StatusStopped, status.Session.CameraStatus)
	handle, _ := driver.Handle(0)
	assert.False(t, handle.CamerasActive())
}

func TestServer_PutConfigInvalid(t *testing.T) {
	srv, _ := newTestServer(t, 1, false)

	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{"不正なJSON", `{"color_format":`, "invalid_request"},
		{"不明なフォーマット", `{"color_format":"PNG"}`, "invalid_request"},
		{"30fps非対応", `{"color_resolution":"3072P","camera_fps":30}`, "invalid_configuration"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPut, "/api/kinect/config", []byte(tc.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.expected, decode[generated.ErrorResponse](t, rec).Error)
		})
	}

	// 不正な設定は適用されない
	cfg := decode[kinect.Config](t, doRequest(t, srv, http.MethodGet, "/api/kinect/config", nil))
	assert.Equal(t, kinect.DefaultConfig(), cfg)
}

func TestServer_Calibration(t *testing.T) {
	srv, _ := newTestServer(t, 1, false)

	rec := doRequest(t, srv, http.MethodPost, "/api/kinect/calibration", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	calib := decode[kinect.Calibration](t, rec)
	assert.Equal(t, kinect.DepthModeNFOVUnbinned, calib.DepthMode)
	assert.Equal(t, 640, calib.Depth.Width)

	rec = doRequest(t, srv, http.MethodGet, "/api/kinect/calibration", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, calib, decode[kinect.Calibration](t, rec))
}

func TestServer_Sampler(t *testing.T) {
	srv, _ := newTestServer(t, 1, false)

	srv.sampler.Collect()
	srv.sampler.Collect()

	samples := decode[generated.SamplesResponse](t, doRequest(t, srv, http.MethodGet, "/api/sampler/samples", nil))
	require.Len(t, samples.Samples, 2)
	assert.Less(t, samples.Samples[0].CameraTimestampUsec, samples.Samples[1].CameraTimestampUsec)
	assert.Equal(t, int64(-1), samples.Samples[0].IMUTimestampUsec)

	status := decode[sampler.StatusInfo](t, doRequest(t, srv, http.MethodGet, "/api/sampler/status", nil))
	assert.Equal(t, sampler.StatusDisabled, status.Status)
	assert.Equal(t, uint64(2), status.TotalSamples)
}

// TestServerStartAndShutdown はサーバーの起動とシャットダウンをテストする
func TestServerStartAndShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0 // ランダムポートを使用
	cfg.Sampler.Enabled = true
	cfg.Sampler.Interval = 10 * time.Millisecond

	driver := kinect.NewMockDriver(1)
	srv, err := New(cfg, driver, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	// サンプラーが動作するまで待つ
	assert.Eventually(t, func() bool {
		return srv.sampler.GetStatus().TotalSamples > 0
	}, 3*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err, "サーバーの起動/停止でエラーが発生しました")
	case <-time.After(5 * time.Second):
		t.Fatal("サーバーの停止がタイムアウトしました")
	}

	// シャットダウン時にデバイスは解放される
	handle, ok := driver.Handle(0)
	require.True(t, ok)
	assert.True(t, handle.Closed())
}

// TestServer_ShutdownReleasesDeviceOnTimeout は接続が残ってシャットダウンが
// タイムアウトしてもデバイスが解放されることをテストする
func TestServer_ShutdownReleasesDeviceOnTimeout(t *testing.T) {
	srv, driver := newTestServer(t, 1, false)
	srv.shutdownTimeout = 100 * time.Millisecond
	srv.httpServer.ReadTimeout = 0

	accepted := make(chan struct{})
	var once sync.Once
	srv.httpServer.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateNew {
			once.Do(func() { close(accepted) })
		}
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.httpServer.Serve(ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	// リクエストを途中まで送り、接続を開いたままにする
	_, err = conn.Write([]byte("GET /health HTTP/1.1\r\n"))
	require.NoError(t, err)

	select {
	case <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("接続が受け付けられませんでした")
	}

	err = srv.Shutdown()
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	handle, ok := driver.Handle(0)
	require.True(t, ok)
	assert.True(t, handle.Closed(), "シャットダウンに失敗してもデバイスは解放される")

	var initialized bool
	srv.session.Do(func(m *kinect.Manager) {
		initialized = m.Status().Initialized
	})
	assert.False(t, initialized)
}

func TestServer_SamplesLimit(t *testing.T) {
	srv, _ := newTestServer(t, 1, false)

	for range 3 {
		srv.sampler.Collect()
	}

	all := decode[generated.SamplesResponse](t, doRequest(t, srv, http.MethodGet, "/api/sampler/samples", nil))
	require.Len(t, all.Samples, 3)

	// 最新のlimit件を古い順に返す
	latest := decode[generated.SamplesResponse](t, doRequest(t, srv, http.MethodGet, "/api/sampler/samples?limit=2", nil))
	require.Len(t, latest.Samples, 2)
	assert.Equal(t, all.Samples[1:], latest.Samples)

	more := decode[generated.SamplesResponse](t, doRequest(t, srv, http.MethodGet, "/api/sampler/samples?limit=10", nil))
	assert.Len(t, more.Samples, 3)

	for _, query := range []string{"limit=0", "limit=abc"} {
		t.Run(query, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodGet, "/api/sampler/samples?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_request", decode[generated.ErrorResponse](t, rec).Error)
		})
	}
}

func TestServer_PutConfigRejectedByDefinition(t *testing.T) {
	srv, driver := newTestServer(t, 1, false)

	require.Equal(t, http.StatusOK, doRequest(t, srv, http.MethodPost, "/api/kinect/camera/start", nil).Code)

	testCases := []struct {
		name string
		body string
	}{
		{"不明な深度モード", `{"depth_mode":"FAR"}`},
		{"真偽値でない", `{"synchronized_images_only":"yes"}`},
		{"不明なフレームレート名", `{"camera_fps":"60"}`},
		{"ボディなし", ``},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPut, "/api/kinect/config", []byte(tc.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_request", decode[generated.ErrorResponse](t, rec).Error)
		})
	}

	// 定義に一致しないリクエストではカメラは停止しない
	handle, _ := driver.Handle(0)
	assert.True(t, handle.CamerasActive())
}
