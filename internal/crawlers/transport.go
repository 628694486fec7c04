package crawlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/RecoveryAshes/HouseSpider/internal/utils"
)

// ErrBodyDecode 响应体完整收到但无法按Content-Encoding解压, 不重试
var ErrBodyDecode = errors.New("响应体解压失败")

// rawBodyTransport 在colly处理之前还原响应体
//   - 按Content-Encoding解压 gzip/deflate/br 并移除该头部
//   - 去掉Content-Type中的charset, colly不再转码, 缓存保存的是服务器原始字节
//
// 页面编码由解析阶段根据内容判断
type rawBodyTransport struct {
	base http.RoundTripper
}

func newRawBodyTransport(base http.RoundTripper) *rawBodyTransport {
	return &rawBodyTransport{base: base}
}

// RoundTrip 实现 http.RoundTripper
func (t *rawBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	stripCharset(resp.Header)

	encoding := resp.Header.Get("Content-Encoding")
	if encoding == "" || resp.Uncompressed {
		return resp, nil
	}

	compressed, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		// 读取中断属于连接层错误, 交给重试
		return nil, err
	}

	body, err := decompressBody(encoding, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w [%s]: %v", ErrBodyDecode, req.URL, err)
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	resp.Header.Del("Content-Encoding")
	resp.Uncompressed = true

	if len(body) != len(compressed) {
		utils.Debugf("成功解压响应 [%s] (编码=%s): 原始=%d bytes, 解压后=%d bytes", req.URL, encoding, len(compressed), len(body))
	}
	return resp, nil
}

// stripCharset 删除Content-Type中的charset参数
func stripCharset(header http.Header) {
	contentType := header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "charset") {
		return
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		header.Set("Content-Type", "text/html")
		return
	}
	delete(params, "charset")
	header.Set("Content-Type", mime.FormatMediaType(mediaType, params))
}
