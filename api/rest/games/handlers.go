package games

import (
	"net/http"

	"codeberg.org/gamevault/server/internal/auth"
	"codeberg.org/gamevault/server/internal/errors"
	"codeberg.org/gamevault/server/internal/games"
	"codeberg.org/gamevault/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// ListGamesHandler godoc
// @Summary List games
// @Description Lists the enabled games offered by the provider
// @Tags games
// @Produce json
// @Success 200 {object} GamesListResponse
// @Failure 503 {object} errors.Response "E4001/E4002 provider unavailable"
// @Router /api/v1/games [get]
func ListGamesHandler(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := provider.ListGames(c.Request.Context())
		if err != nil {
			errors.Abort(c, err)
			return
		}

		if list == nil {
			list = []games.Game{}
		}

		c.JSON(http.StatusOK, GamesListResponse{Games: list})
	}
}

// LaunchGameHandler godoc
// @Summary Launch a game
// @Description Opens a provider session for the caller in the wallet currency
// @Tags games
// @Produce json
// @Param id path string true "Game ID"
// @Success 200 {object} LaunchResponse
// @Failure 400 {object} errors.Response "E2003 malformed game id"
// @Failure 404 {object} errors.Response "E3004 game unavailable"
// @Failure 503 {object} errors.Response
// @Router /api/v1/games/{id}/launch [post]
// @Security BearerAuth
func LaunchGameHandler(provider Provider, currency string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Abort(c, errors.Unauthenticated())
			return
		}

		gameID := c.Param("id")

		session, err := provider.Launch(c.Request.Context(), gameID, userID, currency)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		logger.FromContext(c.Request.Context()).Infow("game launched", "game_id", session.GameID)

		c.JSON(http.StatusOK, LaunchResponse{Session: session})
	}
}
