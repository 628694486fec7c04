package crawlers

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/HouseSpider/internal/utils"
	"github.com/spf13/afero"
)

// cacheExt 缓存文件扩展名
const cacheExt = ".html"

// Key 缓存键, 由若干路径段组成, 如 {"毓润嘉园", "buildings", "0"}
type Key []string

// NewKey 创建缓存键
func NewKey(segments ...string) Key {
	return Key(segments)
}

// String 返回 "/" 连接的可读形式
func (k Key) String() string {
	return strings.Join(k, "/")
}

// RelPath 返回相对缓存根目录的文件路径
// 每个路径段都会清理分隔符, 最后一段追加 .html
func (k Key) RelPath() string {
	if len(k) == 0 {
		return "_" + cacheExt
	}

	parts := make([]string, len(k))
	for i, seg := range k {
		parts[i] = utils.SanitizeSegment(seg)
	}
	parts[len(parts)-1] += cacheExt
	return filepath.Join(parts...)
}

// ResourceCache 页面缓存
// 条目一旦写入就不会被覆盖, 也不会被淘汰
type ResourceCache struct {
	fs   afero.Fs
	root string
}

// NewResourceCache 创建缓存, root 为缓存根目录
func NewResourceCache(fsys afero.Fs, root string) *ResourceCache {
	return &ResourceCache{fs: fsys, root: root}
}

// Path 返回缓存键对应的完整路径
func (c *ResourceCache) Path(key Key) string {
	return filepath.Join(c.root, key.RelPath())
}

// Get 读取缓存, 不存在时 ok 为 false
func (c *ResourceCache) Get(key Key) (data []byte, ok bool, err error) {
	data, err = afero.ReadFile(c.fs, c.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("读取缓存失败 [%s]: %w", key, err)
	}
	return data, true, nil
}

// Put 写入缓存
// 先写临时文件再重命名, 中断时不会留下被误认为完整的文件; 已存在的条目保持不变
func (c *ResourceCache) Put(key Key, data []byte) error {
	path := c.Path(key)

	exists, err := afero.Exists(c.fs, path)
	if err != nil {
		return fmt.Errorf("检查缓存失败 [%s]: %w", key, err)
	}
	if exists {
		return nil
	}

	if err := utils.WriteFileAtomic(c.fs, path, data); err != nil {
		return fmt.Errorf("写入缓存失败 [%s]: %w", key, err)
	}
	return nil
}
