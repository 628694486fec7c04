package crawlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/RecoveryAshes/HouseSpider/internal/models"
	"github.com/RecoveryAshes/HouseSpider/internal/utils"
)

// CachedFetcher 先查缓存, 未命中再通过网络获取并写入缓存
type CachedFetcher struct {
	cache  *ResourceCache
	getter Getter

	mu    sync.Mutex
	stats models.TaskStats
}

// NewCachedFetcher 创建带缓存的获取器
func NewCachedFetcher(cache *ResourceCache, getter Getter) *CachedFetcher {
	return &CachedFetcher{
		cache:  cache,
		getter: getter,
	}
}

// FetchAndCache 返回url对应页面的原始内容
// 缓存命中时不发起网络请求; 未命中时获取页面, 写入缓存后返回
func (cf *CachedFetcher) FetchAndCache(ctx context.Context, rawURL string, key Key) ([]byte, error) {
	data, ok, err := cf.cache.Get(key)
	if err != nil {
		return nil, err
	}
	if ok {
		utils.Debugf("缓存命中 [%s]", key)
		cf.mu.Lock()
		cf.stats.CacheHits++
		cf.mu.Unlock()
		return data, nil
	}

	resp, err := cf.getter.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	cf.mu.Lock()
	cf.stats.NetworkFetches++
	if resp.Attempts > 1 {
		cf.stats.Retries += resp.Attempts - 1
	}
	cf.mu.Unlock()

	if err := cf.cache.Put(key, resp.Body); err != nil {
		return nil, fmt.Errorf("缓存页面失败 [%s]: %w", rawURL, err)
	}
	utils.Debugf("已缓存 [%s] -> %s (%d bytes)", rawURL, cf.cache.Path(key), len(resp.Body))

	return resp.Body, nil
}

// Stats 返回缓存命中/网络请求/重试统计
func (cf *CachedFetcher) Stats() models.TaskStats {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	return cf.stats
}
