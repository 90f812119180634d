// evrank 按用户偏好给电动车打分：Web UI、MCP stdio 服务与命令行工具。
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
