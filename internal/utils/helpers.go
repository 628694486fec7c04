package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/HouseSpider/internal/models"
	"github.com/spf13/afero"
)

// ReadProjectsFromFile 从文件中读取项目列表
// 每行一个项目, 格式为 "名称 URL" 或 "名称,URL"; 空行和 # 开头的行被忽略
func ReadProjectsFromFile(fs afero.Fs, path string) ([]models.ProjectDescriptor, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开项目文件失败: %w", err)
	}
	defer file.Close()

	projects := make([]models.ProjectDescriptor, 0)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// 跳过空行和注释行
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		project, err := parseProjectLine(line)
		if err != nil {
			Warnf("跳过无效项目 (行 %d): %s - %v", lineNum, line, err)
			continue
		}

		projects = append(projects, project)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取项目文件失败: %w", err)
	}

	if len(projects) == 0 {
		return nil, fmt.Errorf("项目文件中没有有效的项目")
	}

	Infof("从文件加载了 %d 个项目", len(projects))
	return projects, nil
}

// parseProjectLine 解析 "名称 URL" 或 "名称,URL"
func parseProjectLine(line string) (models.ProjectDescriptor, error) {
	name, rawURL, ok := strings.Cut(line, ",")
	if !ok {
		idx := strings.LastIndexFunc(line, func(r rune) bool { return r == ' ' || r == '\t' })
		if idx < 0 {
			return models.ProjectDescriptor{}, fmt.Errorf("缺少URL")
		}
		name, rawURL = line[:idx], line[idx+1:]
	}

	project := models.ProjectDescriptor{
		Name: strings.TrimSpace(name),
		URL:  strings.TrimSpace(rawURL),
	}
	if err := project.Validate(); err != nil {
		return models.ProjectDescriptor{}, err
	}
	return project, nil
}

// SanitizeSegment 将任意文本转换为单个安全的路径段
// 路径分隔符与NUL替换为下划线, 空串、"."、".." 替换为 "_"
func SanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, s)

	switch s {
	case "", ".", "..":
		return "_"
	}
	return s
}

// WriteFileAtomic 通过临时文件+重命名写入文件, 自动创建父目录
// 中断时不会留下内容不完整的目标文件
func WriteFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}

	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("重命名失败: %w", err)
	}
	_ = fs.Chmod(path, os.FileMode(0644))
	return nil
}
