package crawlers

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/RecoveryAshes/HouseSpider/internal/models"
	"github.com/RecoveryAshes/HouseSpider/internal/utils"
	"github.com/gocolly/colly/v2"
)

// Response 一次成功获取的页面
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
	Attempts   int // 包含成功那次在内的尝试次数
}

// Getter 页面获取接口
type Getter interface {
	Get(ctx context.Context, rawURL string) (*Response, error)
}

// FetcherConfig 获取器配置
type FetcherConfig struct {
	Timeout     time.Duration
	MaxBodySize int
	Retry       RetryPolicy
}

// Fetcher 基于Colly的HTTP获取器
// 每次请求克隆一个collector, 回调互不干扰
type Fetcher struct {
	collector      *colly.Collector
	headerProvider models.HeaderProvider
	policy         RetryPolicy
}

// NewFetcher 创建获取器
func NewFetcher(config FetcherConfig, headerProvider models.HeaderProvider) *Fetcher {
	// 公示网站证书经常过期, 跳过证书验证
	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	c.WithTransport(newRawBodyTransport(transport))
	if config.Timeout > 0 {
		c.SetRequestTimeout(config.Timeout)
	}
	if config.MaxBodySize > 0 {
		c.MaxBodySize = config.MaxBodySize
	}

	utils.Debugf("获取器: 超时=%v, 最大响应=%d bytes, 重试=%+v", config.Timeout, config.MaxBodySize, config.Retry)

	return &Fetcher{
		collector:      c,
		headerProvider: headerProvider,
		policy:         config.Retry,
	}
}

// Get 获取页面, 连接层失败按重试策略重试
// 非连接层错误(URL无效、头部错误等)不重试, 直接返回
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Response, error) {
	if err := models.ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("请求失败 [%s]: %w", rawURL, err)
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			resp.Attempts = attempt
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !isConnectionError(err) {
			return nil, fmt.Errorf("请求失败 [%s]: %w", rawURL, err)
		}

		utils.Warnf("连接失败 [%s] (第%d次): %v", rawURL, attempt, err)

		if f.policy.Exhausted(attempt) {
			return nil, &models.TransportError{URL: rawURL, Attempts: attempt, Err: err}
		}

		delay := f.policy.Delay(attempt)
		utils.Debugf("%v 后重试 [%s]", delay, rawURL)
		if err := SleepContext(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// fetchOnce 发起一次GET请求
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*Response, error) {
	var headers http.Header
	if f.headerProvider != nil {
		h, err := f.headerProvider.GetHeaders()
		if err != nil {
			return nil, fmt.Errorf("获取HTTP头部失败: %w", err)
		}
		headers = h
	}

	c := f.collector.Clone()
	c.Context = ctx

	var resp *Response

	c.OnRequest(func(r *colly.Request) {
		for name, values := range headers {
			if len(values) > 0 {
				r.Headers.Set(name, values[0])
			}
		}
		utils.Debugf("访问: %s", r.URL.String())
	})

	c.OnResponse(func(r *colly.Response) {
		requestURL := r.Request.URL.String()
		if r.StatusCode < 200 || r.StatusCode >= 300 {
			utils.Warnf("非2xx响应 [%s]: 状态码%d, 内容仍会保存", requestURL, r.StatusCode)
		}

		resp = &Response{
			URL:        requestURL,
			StatusCode: r.StatusCode,
			Body:       r.Body,
		}
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("未收到响应: %s", rawURL)
	}
	return resp, nil
}
