package util

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// 读取配置文件并允许环境变量覆盖
// filePath为空或文件不存在时只使用defaults与环境变量
func ReadConfig(filePath string, out interface{}, defaults map[string]interface{}, envAliases map[string]string) error {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // for nested structure
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envAliases {
		// AutomaticEnv的名字（WIKI_DATE）优先于这里绑定的旧名字
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}

	if filePath != "" {
		v.SetConfigFile(filePath)
		if err := v.ReadInConfig(); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return err
			}
		}
	}

	if err := v.Unmarshal(out); err != nil {
		return err
	}

	return nil
}

// 按行读取，忽略空行以及#开头的注释
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// 去掉#之后的部分
func StripFragment(u string) string {
	if idx := strings.Index(u, "#"); idx >= 0 {
		return u[:idx]
	}
	return u
}
