//go:build k4a && cgo

package kinect

/*
#cgo LDFLAGS: -lk4a
#include <stdlib.h>
#include <k4a/k4a.h>

static k4a_device_configuration_t kb_device_config(int color_format, int color_resolution, int depth_mode,
	int camera_fps, int synchronized_images_only, int32_t depth_delay_off_color_usec,
	int wired_sync_mode, uint32_t subordinate_delay_off_master_usec, int disable_streaming_indicator)
{
	k4a_device_configuration_t c = K4A_DEVICE_CONFIG_INIT_DISABLE_ALL;
	c.color_format = (k4a_image_format_t)color_format;
	c.color_resolution = (k4a_color_resolution_t)color_resolution;
	c.depth_mode = (k4a_depth_mode_t)depth_mode;
	c.camera_fps = (k4a_fps_t)camera_fps;
	c.synchronized_images_only = synchronized_images_only != 0;
	c.depth_delay_off_color_usec = depth_delay_off_color_usec;
	c.wired_sync_mode = (k4a_wired_sync_mode_t)wired_sync_mode;
	c.subordinate_delay_off_master_usec = subordinate_delay_off_master_usec;
	c.disable_streaming_indicator = disable_streaming_indicator != 0;
	return c;
}

static void kb_imu_vectors(const k4a_imu_sample_t *s, float *acc, float *gyro)
{
	acc[0] = s->acc_sample.xyz.x;
	acc[1] = s->acc_sample.xyz.y;
	acc[2] = s->acc_sample.xyz.z;
	gyro[0] = s->gyro_sample.xyz.x;
	gyro[1] = s->gyro_sample.xyz.y;
	gyro[2] = s->gyro_sample.xyz.z;
}

static void kb_intrinsics(const k4a_calibration_camera_t *cam, float *out)
{
	out[0] = cam->intrinsics.parameters.param.cx;
	out[1] = cam->intrinsics.parameters.param.cy;
	out[2] = cam->intrinsics.parameters.param.fx;
	out[3] = cam->intrinsics.parameters.param.fy;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"time"
	"unsafe"
)

// K4ADriver はlibk4aを使う実機用ドライバー
type K4ADriver struct{}

// NewK4ADriver は新しいK4ADriverを作成する
func NewK4ADriver() (Driver, error) {
	return &K4ADriver{}, nil
}

// InstalledCount は接続されているデバイス数を返す
func (d *K4ADriver) InstalledCount() uint32 {
	return uint32(C.k4a_device_get_installed_count())
}

// Open はデバイスを開く
func (d *K4ADriver) Open(index uint32) (Handle, error) {
	var dev C.k4a_device_t
	if C.k4a_device_open(C.uint32_t(index), &dev) != C.K4A_RESULT_SUCCEEDED {
		return nil, fmt.Errorf("k4a_device_open(%d) に失敗", index)
	}
	return &k4aHandle{dev: dev}, nil
}

type k4aHandle struct {
	dev C.k4a_device_t
}

func (h *k4aHandle) Close() error {
	if h.dev == nil {
		return errors.New("デバイスは既に閉じられています")
	}
	C.k4a_device_close(h.dev)
	h.dev = nil
	return nil
}

func (h *k4aHandle) StartCameras(cfg Config) error {
	config := C.kb_device_config(
		C.int(cfg.ColorFormat),
		C.int(cfg.ColorResolution),
		C.int(cfg.DepthMode),
		C.int(cfg.CameraFPS),
		boolToCInt(cfg.SynchronizedImagesOnly),
		C.int32_t(cfg.DepthDelayOffColorUsec),
		C.int(cfg.WiredSyncMode),
		C.uint32_t(cfg.SubordinateDelayOffMasterUsec),
		boolToCInt(cfg.DisableStreamingIndicator),
	)
	if C.k4a_device_start_cameras(h.dev, &config) != C.K4A_RESULT_SUCCEEDED {
		return errors.New("k4a_device_start_cameras に失敗")
	}
	return nil
}

func (h *k4aHandle) StopCameras() error {
	C.k4a_device_stop_cameras(h.dev)
	return nil
}

func (h *k4aHandle) StartIMU() error {
	if C.k4a_device_start_imu(h.dev) != C.K4A_RESULT_SUCCEEDED {
		return errors.New("k4a_device_start_imu に失敗")
	}
	return nil
}

func (h *k4aHandle) StopIMU() error {
	C.k4a_device_stop_imu(h.dev)
	return nil
}

func (h *k4aHandle) GetCapture(timeout time.Duration) (Capture, error) {
	var capture C.k4a_capture_t
	switch C.k4a_device_get_capture(h.dev, &capture, waitMillis(timeout)) {
	case C.K4A_WAIT_RESULT_SUCCEEDED:
	case C.K4A_WAIT_RESULT_TIMEOUT:
		return Capture{}, ErrCaptureTimeout
	default:
		return Capture{}, errors.New("k4a_device_get_capture に失敗")
	}
	defer C.k4a_capture_release(capture)

	return Capture{
		Color: imageFromK4A(C.k4a_capture_get_color_image(capture)),
		Depth: imageFromK4A(C.k4a_capture_get_depth_image(capture)),
		IR:    imageFromK4A(C.k4a_capture_get_ir_image(capture)),
	}, nil
}

func (h *k4aHandle) GetIMUSample(timeout time.Duration) (IMUSample, error) {
	var s C.k4a_imu_sample_t
	switch C.k4a_device_get_imu_sample(h.dev, &s, waitMillis(timeout)) {
	case C.K4A_WAIT_RESULT_SUCCEEDED:
	case C.K4A_WAIT_RESULT_TIMEOUT:
		return IMUSample{}, ErrSampleTimeout
	default:
		return IMUSample{}, errors.New("k4a_device_get_imu_sample に失敗")
	}

	var acc, gyro [3]C.float
	C.kb_imu_vectors(&s, &acc[0], &gyro[0])

	return IMUSample{
		Temperature:       float32(s.temperature),
		AccSample:         Float3{X: float32(acc[0]), Y: float32(acc[1]), Z: float32(acc[2])},
		AccTimestampUsec:  uint64(s.acc_timestamp_usec),
		GyroSample:        Float3{X: float32(gyro[0]), Y: float32(gyro[1]), Z: float32(gyro[2])},
		GyroTimestampUsec: uint64(s.gyro_timestamp_usec),
	}, nil
}

func (h *k4aHandle) Calibration(depthMode DepthMode, resolution ColorResolution) (Calibration, error) {
	var calib C.k4a_calibration_t
	result := C.k4a_device_get_calibration(h.dev,
		C.k4a_depth_mode_t(depthMode), C.k4a_color_resolution_t(resolution), &calib)
	if result != C.K4A_RESULT_SUCCEEDED {
		return Calibration{}, errors.New("k4a_device_get_calibration に失敗")
	}

	return Calibration{
		DepthMode:       depthMode,
		ColorResolution: resolution,
		Depth:           cameraCalibrationFromK4A(&calib.depth_camera_calibration),
		Color:           cameraCalibrationFromK4A(&calib.color_camera_calibration),
	}, nil
}

func (h *k4aHandle) SerialNumber() (string, error) {
	var size C.size_t
	if C.k4a_device_get_serialnum(h.dev, nil, &size) != C.K4A_BUFFER_RESULT_TOO_SMALL {
		return "", errors.New("シリアル番号の長さを取得できません")
	}

	buf := (*C.char)(C.malloc(size))
	defer C.free(unsafe.Pointer(buf))
	if C.k4a_device_get_serialnum(h.dev, buf, &size) != C.K4A_BUFFER_RESULT_SUCCEEDED {
		return "", errors.New("k4a_device_get_serialnum に失敗")
	}
	return C.GoString(buf), nil
}

func imageFromK4A(img C.k4a_image_t) *Image {
	if img == nil {
		return nil
	}
	defer C.k4a_image_release(img)

	return &Image{
		Format:          ImageFormat(C.k4a_image_get_format(img)),
		Width:           int(C.k4a_image_get_width_pixels(img)),
		Height:          int(C.k4a_image_get_height_pixels(img)),
		DeviceTimestamp: time.Duration(C.k4a_image_get_device_timestamp_usec(img)) * time.Microsecond,
	}
}

func cameraCalibrationFromK4A(cam *C.k4a_calibration_camera_t) CameraCalibration {
	var in [4]C.float
	C.kb_intrinsics(cam, &in[0])

	return CameraCalibration{
		Width:  int(cam.resolution_width),
		Height: int(cam.resolution_height),
		Intrinsics: Intrinsics{
			Cx: float32(in[0]),
			Cy: float32(in[1]),
			Fx: float32(in[2]),
			Fy: float32(in[3]),
		},
		MetricRadius: float32(cam.metric_radius),
	}
}

func waitMillis(timeout time.Duration) C.int32_t {
	if timeout < 0 {
		return C.K4A_WAIT_INFINITE
	}
	return C.int32_t(timeout.Milliseconds())
}

func boolToCInt(b bool) C.int {
	if b {
		return 1
	}
	return 0
}
