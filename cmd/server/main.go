// cmd/server/main.go
package main

import (
	"log"

	"github.com/Corphon/DramaForgeMCP/internal/app"
)

func main() {
	log.Println("启动 DramaForgeMCP 服务器...")

	if err := app.Initialize(); err != nil {
		log.Fatalf("初始化应用失败: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("运行应用失败: %v", err)
	}
}
