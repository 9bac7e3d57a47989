package handlers

import (
	"github.com/brosora6/sora-sub000/internal/config"
	"github.com/brosora6/sora-sub000/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config
	Store  storage.Store
}
