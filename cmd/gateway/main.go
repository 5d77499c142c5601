// API Gatewayサービスのエントリポイント。
// JWT認証・ロールベースの認可・リクエストルーティングを担当する。
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線となる。
package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/nao1215/cyclegate/internal/config"
	"github.com/nao1215/cyclegate/internal/gateway"
)

func main() {
	// .envは存在すれば読み込む（ローカル開発用）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	server := gateway.NewServer(cfg)
	log.Printf("Gatewayサービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("Gatewayサービスの起動に失敗: %v", err)
	}
}
