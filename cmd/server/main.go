// Code scaffolded in the teacher's goctl style. Safe to edit.
package main

import (
	"fmt"

	"github.com/zeromicro/go-zero/rest"

	"nof0-trading-agents/internal/config"
	"nof0-trading-agents/internal/handler"
	"nof0-trading-agents/internal/svc"
)

func main() {
	cfg := config.MustLoad()

	server := rest.MustNewServer(cfg.RestConf)
	defer server.Stop()

	ctx, err := svc.NewServiceContext(*cfg)
	if err != nil {
		panic(fmt.Errorf("server: build service context: %w", err))
	}
	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
