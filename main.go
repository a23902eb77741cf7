package main

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/tabishkhalil463/FeastDash/config"
	"github.com/tabishkhalil463/FeastDash/internal/api"
	"github.com/tabishkhalil463/FeastDash/internal/httpapi"
	"github.com/tabishkhalil463/FeastDash/internal/orders"
	"github.com/tabishkhalil463/FeastDash/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	redisClient := config.MustInitRedis()
	store := session.NewRedisStore(redisClient, cfg.SessionTTL)

	client := api.NewClient(cfg.BackendURL, &http.Client{Timeout: 30 * time.Second})
	sessions := session.NewService(store, client)

	qr := orders.TrackingQR{
		BaseURL: config.GetEnv("PUBLIC_URL", "http://localhost:"+cfg.Port),
	}

	h := httpapi.NewHandler(sessions, client, qr)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{config.GetEnv("FRONTEND_ORIGIN", "http://localhost:5173")},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	handler := c.Handler(h.Routes())

	log.Println("FeastDash gateway starting on port", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
