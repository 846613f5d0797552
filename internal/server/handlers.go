package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"kinectbase/internal/config"
	"kinectbase/internal/generated"
	"kinectbase/internal/kinect"
	"kinectbase/internal/sampler"
)

var _ generated.ServerInterface = (*KinectHandler)(nil)

// KinectHandler は生成されたServerInterfaceを実装する
type KinectHandler struct {
	config  *config.Config
	session *Session
	sampler *sampler.Sampler
	logger  *log.Entry
}

// HealthCheck はヘルスチェックエンドポイントの実装
func (h *KinectHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, generated.HealthResponse{
		Status:    generated.Healthy,
		Timestamp: time.Now(),
	})
}

// GetStatus はシステム状態取得エンドポイントの実装
func (h *KinectHandler) GetStatus(c *gin.Context) {
	var status kinect.SessionStatus
	h.session.Do(func(m *kinect.Manager) {
		status = m.Status()
	})

	c.JSON(http.StatusOK, generated.StatusResponse{
		Status: generated.Running,
		Server: generated.ServerInfo{
			Host: h.config.Server.Host,
			Port: h.config.Server.Port,
		},
		Session:   status,
		Timestamp: time.Now(),
	})
}

// GetDeviceCount は接続デバイス数取得エンドポイントの実装
func (h *KinectHandler) GetDeviceCount(c *gin.Context) {
	c.JSON(http.StatusOK, generated.DeviceCountResponse{Count: h.session.InstalledCount()})
}

// GetDevices はデバイス一覧取得エンドポイントの実装
func (h *KinectHandler) GetDevices(c *gin.Context) {
	devices, err := h.session.ScanDevices(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "scan_failed", "デバイスの検出に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, generated.DevicesResponse{Devices: devices})
}

// GetConfig は現在のストリーム設定を返す
func (h *KinectHandler) GetConfig(c *gin.Context) {
	var cfg kinect.Config
	h.session.Do(func(m *kinect.Manager) {
		cfg = m.Configuration()
	})
	c.JSON(http.StatusOK, cfg)
}

// PutConfig はストリーム設定を置き換える。動作中のカメラとIMUは停止される
func (h *KinectHandler) PutConfig(c *gin.Context) {
	// 省略された項目はデフォルト値になる
	cfg := kinect.DefaultConfig()
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "リクエストの形式が不正です", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_configuration", "設定が不正です", err)
		return
	}

	h.session.Do(func(m *kinect.Manager) {
		m.SetConfiguration(cfg)
	})
	h.logger.WithField("config", cfg).Infoln("ストリーム設定を更新しました")

	c.JSON(http.StatusOK, cfg)
}

// StartCamera はカメラ開始エンドポイントの実装
func (h *KinectHandler) StartCamera(c *gin.Context) {
	h.control(c, func(m *kinect.Manager) error { return m.StartCamera() })
}

// StopCamera はカメラ停止エンドポイントの実装。IMUも停止される
func (h *KinectHandler) StopCamera(c *gin.Context) {
	h.control(c, func(m *kinect.Manager) error {
		m.StopCamera()
		return nil
	})
}

// StartIMU はIMU開始エンドポイントの実装
func (h *KinectHandler) StartIMU(c *gin.Context) {
	h.control(c, func(m *kinect.Manager) error { return m.StartIMU() })
}

// StopIMU はIMU停止エンドポイントの実装
func (h *KinectHandler) StopIMU(c *gin.Context) {
	h.control(c, func(m *kinect.Manager) error {
		m.StopIMU()
		return nil
	})
}

// GetCameraTimestamp はカメラのデバイスタイムスタンプを返す
func (h *KinectHandler) GetCameraTimestamp(c *gin.Context) {
	c.JSON(http.StatusOK, newTimestampResponse(generated.Camera, h.session.CameraTimestamp()))
}

// GetIMUTimestamp はIMUのタイムスタンプを返す
func (h *KinectHandler) GetIMUTimestamp(c *gin.Context) {
	c.JSON(http.StatusOK, newTimestampResponse(generated.Imu, h.session.IMUTimestamp()))
}

// GetIMUSample はIMUサンプルを1件返す
func (h *KinectHandler) GetIMUSample(c *gin.Context) {
	var (
		sample kinect.IMUSample
		ok     bool
	)
	h.session.Do(func(m *kinect.Manager) {
		sample, ok = m.IMUSample()
	})

	if !ok {
		respondError(c, http.StatusServiceUnavailable, "sample_unavailable", "IMUサンプルを取得できませんでした", nil)
		return
	}
	c.JSON(http.StatusOK, sample)
}

// RefreshCalibration は現在の設定でキャリブレーションを再取得する
func (h *KinectHandler) RefreshCalibration(c *gin.Context) {
	var (
		calib kinect.Calibration
		err   error
	)
	h.session.Do(func(m *kinect.Manager) {
		calib, err = m.RefreshCalibration()
	})

	if err != nil {
		if errors.Is(err, kinect.ErrNotInitialized) {
			respondError(c, http.StatusConflict, "device_not_initialized", "デバイスが初期化されていません", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "calibration_failed", "キャリブレーションの取得に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, calib)
}

// GetCalibration は最後に取得したキャリブレーションを返す
func (h *KinectHandler) GetCalibration(c *gin.Context) {
	var (
		calib kinect.Calibration
		ok    bool
	)
	h.session.Do(func(m *kinect.Manager) {
		calib, ok = m.Calibration()
	})

	if !ok {
		respondError(c, http.StatusNotFound, "calibration_not_available", "キャリブレーションが取得されていません", nil)
		return
	}
	c.JSON(http.StatusOK, calib)
}

// GetSamples はサンプラーが保持しているサンプルを返す。
// limit が指定された場合は最新のlimit件に絞る
func (h *KinectHandler) GetSamples(c *gin.Context, params generated.GetSamplesParams) {
	samples := h.sampler.GetSamples()
	if params.Limit != nil && *params.Limit < len(samples) {
		samples = samples[len(samples)-*params.Limit:]
	}
	c.JSON(http.StatusOK, generated.SamplesResponse{Samples: samples})
}

// GetSamplerStatus はサンプラーの状態を返す
func (h *KinectHandler) GetSamplerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.sampler.GetStatus())
}

// ヘルパー関数

// control は開始・停止操作を実行し、操作後の状態を返す
func (h *KinectHandler) control(c *gin.Context, op func(m *kinect.Manager) error) {
	var (
		err      error
		response generated.ControlResponse
	)
	h.session.Do(func(m *kinect.Manager) {
		err = op(m)
		status := m.Status()
		response = generated.ControlResponse{
			CameraStatus: status.CameraStatus,
			ImuStatus:    status.IMUStatus,
		}
	})

	if err != nil {
		if errors.Is(err, kinect.ErrNotInitialized) {
			respondError(c, http.StatusConflict, "device_not_initialized", "デバイスが初期化されていません", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "start_failed", "開始に失敗しました", err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// newTimestampResponse はタイムスタンプのレスポンスを作成する
func newTimestampResponse(source generated.TimestampResponseSource, ts time.Duration) generated.TimestampResponse {
	return generated.TimestampResponse{
		Source:        source,
		TimestampUsec: ts.Microseconds(),
		Available:     ts != kinect.NoTimestamp,
	}
}

// respondError はエラーレスポンスを返す
func respondError(c *gin.Context, code int, errorCode, message string, err error) {
	response := generated.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		Timestamp: time.Now(),
	}
	if err != nil {
		response.Details = stringPtr(err.Error())
	}
	c.JSON(code, response)
}

// stringPtr は文字列のポインタを返すヘルパー関数
func stringPtr(s string) *string {
	return &s
}
