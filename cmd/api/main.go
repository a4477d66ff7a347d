package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/ConsultaVida01/consulta-scheduler/internal/config"
	"github.com/ConsultaVida01/consulta-scheduler/internal/db"
	"github.com/ConsultaVida01/consulta-scheduler/internal/middleware"
	"github.com/ConsultaVida01/consulta-scheduler/internal/routes"
)

func main() {
	cfg := config.Load()

	database := db.Connect(cfg)

	// Redis é opcional: sem ele o cálculo de horários roda sem cache
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, database, rdb, cfg)

	log.Println("listening on", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal(err)
	}
}
