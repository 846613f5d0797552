// Package api はHTTP APIのOpenAPI定義を提供する。
// internal/generated のサーバーコードはこの定義から生成する
package api

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var spec []byte

// Spec はOpenAPI定義の原文を返す
func Spec() []byte {
	return spec
}

// Load はOpenAPI定義を読み込み、定義自体の妥当性を検証する
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("OpenAPI定義の読み込みに失敗: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("OpenAPI定義が不正です: %w", err)
	}
	return doc, nil
}
