// Package crawlers 提供带重试的页面获取和本地页面缓存
//
// # 概述
//
// 公示网站的每个页面只需要下载一次: 第一次获取后原始内容写入本地缓存,
// 之后的运行直接读取缓存, 不再发起网络请求。缓存只增不删, 也不会覆盖已有文件。
//
// # 核心组件
//
// ## Fetcher
//
// 基于Colly的HTTP获取器。每次请求克隆一个collector, 发送固定的请求头,
// 并按Content-Encoding解压gzip/deflate/br响应体。连接层失败按RetryPolicy重试,
// 每次失败都会记录URL和尝试次数; URL无效等其他错误直接返回。
//
//	fetcher := NewFetcher(FetcherConfig{
//	    Timeout: 60 * time.Second,
//	    Retry:   DefaultRetryPolicy(),
//	}, headerManager)
//	resp, err := fetcher.Get(ctx, "http://bjjs.zjw.beijing.gov.cn/eportal/ui?pageId=320794")
//
// ## RetryPolicy
//
// MaxAttempts为0表示无限重试(只有ctx取消能中止); 大于0时尝试次数用尽后返回
// models.TransportError。两次尝试之间的等待从BaseDelay开始翻倍, 不超过MaxDelay。
//
// ## ResourceCache
//
// 以Key(路径片段列表)为索引的文件缓存, 基于afero便于测试。
// Key{"毓润嘉园", "buildings", "1"} 对应 <root>/毓润嘉园/buildings/1.html。
// 写入使用临时文件+重命名, 中断的运行不会留下不完整的缓存。
//
// ## CachedFetcher
//
// 组合ResourceCache和Fetcher:
//
//	cache := NewResourceCache(afero.NewOsFs(), "data")
//	cf := NewCachedFetcher(cache, fetcher)
//	data, err := cf.FetchAndCache(ctx, url, NewKey(project, project))
//
// Stats返回缓存命中、网络请求和重试次数, 用于生成爬取报告。
//
// # 并发安全
//
// Fetcher和CachedFetcher可以并发调用, 但爬取流程本身是严格顺序的。
package crawlers
