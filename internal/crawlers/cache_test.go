package crawlers

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestKey_RelPath(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{"项目首页", NewKey("毓润嘉园", "毓润嘉园"), filepath.Join("毓润嘉园", "毓润嘉园.html")},
		{"楼栋页按序号", NewKey("毓润嘉园", "buildings", "0"), filepath.Join("毓润嘉园", "buildings", "0.html")},
		{"房间号含斜杠", NewKey("安林嘉苑", "1号楼", "1/101"), filepath.Join("安林嘉苑", "1号楼", "1_101.html")},
		{"路径穿越", NewKey("..", "a"), filepath.Join("_", "a.html")},
		{"空段", NewKey("p", ""), filepath.Join("p", "_.html")},
		{"空键", NewKey(), "_.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.RelPath(); got != tt.want {
				t.Errorf("RelPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResourceCache_PutGet(t *testing.T) {
	fs := afero.NewMemMapFs()
	cache := NewResourceCache(fs, "data")
	key := NewKey("测试项目", "测试项目")

	if _, ok, err := cache.Get(key); err != nil || ok {
		t.Fatalf("空缓存应未命中: ok=%v err=%v", ok, err)
	}

	if err := cache.Put(key, []byte("<html>v1</html>")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	data, ok, err := cache.Get(key)
	if err != nil || !ok {
		t.Fatalf("写入后应命中: ok=%v err=%v", ok, err)
	}
	if string(data) != "<html>v1</html>" {
		t.Errorf("缓存内容 = %q", data)
	}

	exists, _ := afero.Exists(fs, filepath.Join("data", "测试项目", "测试项目.html"))
	if !exists {
		t.Error("缓存文件应位于 <root>/<project>/<project>.html")
	}
}

func TestResourceCache_NeverOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	cache := NewResourceCache(fs, "data")
	key := NewKey("p", "buildings", "0")

	if err := cache.Put(key, []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := cache.Put(key, []byte("second")); err != nil {
		t.Fatal(err)
	}

	data, _, _ := cache.Get(key)
	if string(data) != "first" {
		t.Errorf("已存在的缓存条目被覆盖: %q", data)
	}
}
