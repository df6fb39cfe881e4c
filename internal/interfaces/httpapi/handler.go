package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/usecase"
)

type Handler struct {
	playerService *usecase.PlayerQueryService
	logger        *logging.Logger
}

func NewHandler(playerService *usecase.PlayerQueryService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		playerService: playerService,
		logger:        logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	filter := usecase.PlayerFilter{
		TeamID: strings.TrimSpace(r.URL.Query().Get("team")),
		State:  strings.TrimSpace(r.URL.Query().Get("state")),
	}

	players, err := h.playerService.ListPlayers(ctx, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "team_id", filter.TeamID, "state", filter.State, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerListItemDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerToListItemDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	rec, err := h.playerService.GetPlayer(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDetailDTO(rec, rec.Games))
}

func (h *Handler) ListPlayerGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerGames")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a non-negative integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	games, err := h.playerService.PlayerGames(ctx, playerID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list player games failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameSummaryDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameToSummaryDTO(g))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListStateBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStateBreakdown")
	defer span.End()

	states, err := h.playerService.StateBreakdown(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "state breakdown failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, states)
}

func (h *Handler) ListReviewQueue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListReviewQueue")
	defer span.End()

	records, err := h.playerService.ReviewQueue(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "review queue failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerListItemDTO, 0, len(records))
	for _, rec := range records {
		items = append(items, playerToListItemDTO(rec))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.playerService.Teams(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, teams)
}
