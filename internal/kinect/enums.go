package kinect

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// 列挙型は設定ファイルとAPIでは名前で表現する

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return strconv.Itoa(v)
	}
	return names[v]
}

// marshalEnum は名前を返す。範囲外の値は復元できないためエラーにする
func marshalEnum(kind string, names []string, v int) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("範囲外の%s: %d", kind, v)
	}
	return []byte(names[v]), nil
}

func parseEnum(kind string, names []string, text []byte) (int, error) {
	s := strings.TrimSpace(string(text))
	for i, name := range names {
		if strings.EqualFold(name, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("不明な%s: %q", kind, s)
}

func (f ImageFormat) String() string { return enumName(imageFormatNames, int(f)) }
func (f ImageFormat) valid() bool    { return f >= 0 && int(f) < len(imageFormatNames) }

// MarshalText は名前を返す。範囲外の値はエラー
func (f ImageFormat) MarshalText() ([]byte, error) {
	return marshalEnum("カラーフォーマット", imageFormatNames, int(f))
}

// UnmarshalText は名前から値を復元する
func (f *ImageFormat) UnmarshalText(text []byte) error {
	v, err := parseEnum("カラーフォーマット", imageFormatNames, text)
	if err != nil {
		return err
	}
	*f = ImageFormat(v)
	return nil
}

func (r ColorResolution) String() string { return enumName(colorResolutionNames, int(r)) }
func (r ColorResolution) valid() bool    { return r >= 0 && int(r) < len(colorResolutionNames) }

// MarshalText は名前を返す
func (r ColorResolution) MarshalText() ([]byte, error) {
	return marshalEnum("カラー解像度", colorResolutionNames, int(r))
}

// UnmarshalText は名前から値を復元する
func (r *ColorResolution) UnmarshalText(text []byte) error {
	v, err := parseEnum("カラー解像度", colorResolutionNames, text)
	if err != nil {
		return err
	}
	*r = ColorResolution(v)
	return nil
}

// Size はカラー画像の幅と高さを返す。OFFの場合は0
func (r ColorResolution) Size() (width, height int) {
	switch r {
	case ColorResolution720P:
		return 1280, 720
	case ColorResolution1080P:
		return 1920, 1080
	case ColorResolution1440P:
		return 2560, 1440
	case ColorResolution1536P:
		return 2048, 1536
	case ColorResolution2160P:
		return 3840, 2160
	case ColorResolution3072P:
		return 4096, 3072
	default:
		return 0, 0
	}
}

func (m DepthMode) String() string { return enumName(depthModeNames, int(m)) }
func (m DepthMode) valid() bool    { return m >= 0 && int(m) < len(depthModeNames) }

// MarshalText は名前を返す
func (m DepthMode) MarshalText() ([]byte, error) {
	return marshalEnum("深度モード", depthModeNames, int(m))
}

// UnmarshalText は名前から値を復元する
func (m *DepthMode) UnmarshalText(text []byte) error {
	v, err := parseEnum("深度モード", depthModeNames, text)
	if err != nil {
		return err
	}
	*m = DepthMode(v)
	return nil
}

// Size は深度（IR）画像の幅と高さを返す。OFFの場合は0
func (m DepthMode) Size() (width, height int) {
	switch m {
	case DepthModeNFOV2x2Binned:
		return 320, 288
	case DepthModeNFOVUnbinned:
		return 640, 576
	case DepthModeWFOV2x2Binned:
		return 512, 512
	case DepthModeWFOVUnbinned, DepthModePassiveIR:
		return 1024, 1024
	default:
		return 0, 0
	}
}

func (fps FPS) String() string { return enumName(fpsNames, int(fps)) }
func (fps FPS) valid() bool    { return fps >= 0 && int(fps) < len(fpsNames) }

// MarshalText は名前を返す
func (fps FPS) MarshalText() ([]byte, error) {
	return marshalEnum("フレームレート", fpsNames, int(fps))
}

// UnmarshalText は名前から値を復元する
func (fps *FPS) UnmarshalText(text []byte) error {
	v, err := parseEnum("フレームレート", fpsNames, text)
	if err != nil {
		return err
	}
	*fps = FPS(v)
	return nil
}

// UnmarshalJSON は数値と文字列のどちらでも受け付ける。nullは何もしない
func (fps *FPS) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return fps.UnmarshalText(bytes.Trim(data, `"`))
}

// Hz はフレームレートを数値で返す
func (fps FPS) Hz() int {
	switch fps {
	case FPS5:
		return 5
	case FPS15:
		return 15
	default:
		return 30
	}
}

func (m WiredSyncMode) String() string { return enumName(wiredSyncModeNames, int(m)) }
func (m WiredSyncMode) valid() bool    { return m >= 0 && int(m) < len(wiredSyncModeNames) }

// MarshalText は名前を返す
func (m WiredSyncMode) MarshalText() ([]byte, error) {
	return marshalEnum("同期モード", wiredSyncModeNames, int(m))
}

// UnmarshalText は名前から値を復元する
func (m *WiredSyncMode) UnmarshalText(text []byte) error {
	v, err := parseEnum("同期モード", wiredSyncModeNames, text)
	if err != nil {
		return err
	}
	*m = WiredSyncMode(v)
	return nil
}
