//go:build !k4a || !cgo

package kinect

import "fmt"

// NewK4ADriver はk4aビルドタグなしでビルドされた場合は常に失敗する
func NewK4ADriver() (Driver, error) {
	return nil, fmt.Errorf("k4aタグ付きでビルドされていません: %w", ErrDriverUnavailable)
}
