package server

import (
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/gin-gonic/gin"
)

// openAPIValidator はリクエストをOpenAPI定義で検証するミドルウェア。
// 定義にないルートはそのまま通す
func openAPIValidator(doc *openapi3.T) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := findRoute(doc, c)
		if route == nil {
			c.Next()
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams(c),
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			respondError(c, http.StatusBadRequest, "invalid_request", "リクエストがAPI定義に一致しません", err)
			c.Abort()
			return
		}

		c.Next()
	}
}

// findRoute はginのルートに対応するOpenAPIの操作を返す
func findRoute(doc *openapi3.T, c *gin.Context) *routers.Route {
	fullPath := c.FullPath()
	if fullPath == "" {
		return nil
	}

	path := toOpenAPIPath(fullPath)
	item := doc.Paths.Find(path)
	if item == nil {
		return nil
	}
	op := item.GetOperation(c.Request.Method)
	if op == nil {
		return nil
	}

	return &routers.Route{
		Spec:      doc,
		Path:      path,
		PathItem:  item,
		Method:    c.Request.Method,
		Operation: op,
	}
}

// toOpenAPIPath は /devices/:index 形式のパスを /devices/{index} 形式に変換する
func toOpenAPIPath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "*") {
			segments[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

func pathParams(c *gin.Context) map[string]string {
	params := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Key] = p.Value
	}
	return params
}
