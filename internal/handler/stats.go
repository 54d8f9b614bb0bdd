package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/spikeside/team-manager/internal/repository"
)

// statsCacheKey and statsCacheTTL control the Redis cache in front of
// the dashboard counts. The numbers drift by at most the TTL, which is
// fine for a landing-page widget.
const (
	statsCacheKey = "stats:overview"
	statsCacheTTL = 30 * time.Second
)

// StatsHandler serves the dashboard counters. A nil Redis client just
// disables caching.
type StatsHandler struct {
	Users *repository.UserRepo
	Teams *repository.TeamRepo
	RDB   *redis.Client
}

func NewStatsHandler(u *repository.UserRepo, t *repository.TeamRepo, rdb *redis.Client) *StatsHandler {
	return &StatsHandler{Users: u, Teams: t, RDB: rdb}
}

type statsResp struct {
	TotalUsers   uint64 `json:"total_users"`
	TotalTeams   uint64 `json:"total_teams"`
	TotalCoaches uint64 `json:"total_coaches"`
	TotalPlayers uint64 `json:"total_players"`
}

// Overview returns site-wide counts for the dashboard.
func (h *StatsHandler) Overview(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.RDB != nil {
		if raw, err := h.RDB.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var cached statsResp
			if json.Unmarshal(raw, &cached) == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSON(http.StatusOK, cached)
			}
		}
	}

	stats, err := h.collect(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if h.RDB != nil {
		if raw, err := json.Marshal(stats); err == nil {
			_ = h.RDB.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err()
		}
	}
	c.Response().Header().Set("X-Cache", "MISS")
	return c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) collect(ctx context.Context) (statsResp, error) {
	var (
		s   statsResp
		err error
	)
	if s.TotalUsers, err = h.Users.Count(ctx); err != nil {
		return s, err
	}
	if s.TotalTeams, err = h.Teams.Count(ctx); err != nil {
		return s, err
	}
	if s.TotalCoaches, err = h.Users.CountByRole(ctx, "coach"); err != nil {
		return s, err
	}
	if s.TotalPlayers, err = h.Users.CountByRole(ctx, "player"); err != nil {
		return s, err
	}
	return s, nil
}
