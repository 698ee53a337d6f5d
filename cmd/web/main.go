// @title           cabinet API
// @version         1.0
// @description     Биллинг: счета, подписки, сверка платежей шлюза.
// @host            localhost:4000
// @BasePath        /

package main

import (
	"cabinet_backend/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	// .env опционален: в контейнере все приходит из окружения.
	_ = godotenv.Load()
	app.Run()
}
