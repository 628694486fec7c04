package main

import (
	"fmt"
)

// ValidateFlags 验证命令行标志
func ValidateFlags(projectFile string, maxRetries int) error {
	// -1 表示未指定, 使用配置文件
	if maxRetries < -1 {
		return fmt.Errorf("最大尝试次数不能小于0, 当前值: %d", maxRetries)
	}

	if projectFile != "" {
		if err := ValidateProjectFile(projectFile); err != nil {
			return err
		}
	}

	return nil
}

// ValidateProjectFile 验证项目文件路径
func ValidateProjectFile(path string) error {
	if path == "" {
		return fmt.Errorf("项目文件路径不能为空")
	}
	// 文件存在性检查将在运行时进行
	return nil
}
