package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/kelbrookafc/clubdraw/internal/cache"
	"github.com/kelbrookafc/clubdraw/internal/models"
	"github.com/kelbrookafc/clubdraw/internal/notify"
	"github.com/kelbrookafc/clubdraw/internal/random"
	"github.com/kelbrookafc/clubdraw/internal/service"
)

// --- Collaborator interfaces (satisfied by service/repository/notify) ---

type Conductor interface {
	Conduct(ctx context.Context, req service.ConductRequest) (*service.ConductResult, error)
	State() service.State
}

type Notifier interface {
	DispatchResults(ctx context.Context, draw *models.Draw, st *models.Settlement, includeSubscribers bool) notify.Report
}

type DrawReader interface {
	FindByID(ctx context.Context, id string) (*models.Draw, error)
	FindLatest(ctx context.Context, includeTest bool) (*models.Draw, error)
}

type EntryStore interface {
	Create(ctx context.Context, e *models.Entry) (*models.Entry, error)
	FindByDrawDate(ctx context.Context, date time.Time) ([]models.Entry, error)
	UpdateNumbers(ctx context.Context, entryID string, numbers []int) error
}

type WinnerReader interface {
	FindByDrawDate(ctx context.Context, date time.Time) ([]models.Result, error)
}

// --- Request / Response DTOs ---

type ConductDrawRequest struct {
	DrawDate      string `json:"drawDate"` // YYYY-MM-DD
	JackpotAmount int64  `json:"jackpotAmount"`
	IsTestDraw    bool   `json:"isTestDraw,omitempty"`
}

type drawResultBody struct {
	WinningNumbers  []int `json:"winningNumbers"`
	JackpotWinners  int   `json:"jackpotWinners"`
	LuckyDipWinners int   `json:"luckyDipWinners"`
}

type ConductDrawResponse struct {
	DrawResult drawResultBody `json:"drawResult"`
}

type NotifyWinner struct {
	UserID      string `json:"userId"`
	Matches     int    `json:"matches"`
	IsLuckyDip  bool   `json:"isLuckyDip"`
	PrizeAmount int64  `json:"prizeAmount"`
	Numbers     []int  `json:"numbers"`
}

type NotifyRequest struct {
	DrawID  string         `json:"drawId"`
	Winners []NotifyWinner `json:"winners"`
}

type NotifyResponse struct {
	Success         bool `json:"success"`
	JackpotWinners  int  `json:"jackpot_winners"`
	LuckyDipWinners int  `json:"lucky_dip_winners"`
	TotalWinners    int  `json:"total_winners"`
	EmailsAttempted int  `json:"emails_attempted"`
}

type CreateEntryRequest struct {
	SubscriberID   string `json:"subscriber_id"`
	DrawDate       string `json:"draw_date"` // YYYY-MM-DD
	Numbers        []int  `json:"numbers"`
	Origin         string `json:"origin"`
	SubscriptionID string `json:"subscription_id,omitempty"`
}

type UpdateEntryRequest struct {
	Numbers []int `json:"numbers"`
}

// --- Handler ---

type DrawHandler struct {
	conductor Conductor
	notifier  Notifier
	draws     DrawReader
	entries   EntryStore
	winners   WinnerReader
	cache     *cache.DrawCache
	log       *logrus.Logger
}

func NewDrawHandler(conductor Conductor, notifier Notifier, draws DrawReader, entries EntryStore, winners WinnerReader, drawCache *cache.DrawCache, log *logrus.Logger) *DrawHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DrawHandler{
		conductor: conductor,
		notifier:  notifier,
		draws:     draws,
		entries:   entries,
		winners:   winners,
		cache:     drawCache,
		log:       log,
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// ConductDraw handles POST /admin/draws: the operator-triggered draw.
func (h *DrawHandler) ConductDraw(w http.ResponseWriter, r *http.Request) {
	var req ConductDrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	date, err := time.Parse(models.DrawDateFormat, req.DrawDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid drawDate; use YYYY-MM-DD")
		return
	}
	if req.JackpotAmount <= 0 {
		writeError(w, http.StatusBadRequest, "jackpotAmount must be positive")
		return
	}

	result, err := h.conductor.Conduct(r.Context(), service.ConductRequest{
		DrawDate:      date,
		JackpotAmount: req.JackpotAmount,
		IsTest:        req.IsTestDraw,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateDraw):
			writeError(w, http.StatusConflict, "draw already conducted for this date")
		case errors.Is(err, service.ErrDrawInProgress):
			writeError(w, http.StatusConflict, "a draw is already in progress")
		case isProviderUnavailable(err):
			writeError(w, http.StatusBadGateway, "random number provider unavailable; please retry")
		default:
			h.log.WithError(err).Error("conduct draw failed")
			writeError(w, http.StatusInternalServerError, "internal_error")
		}
		return
	}

	if h.cache != nil {
		h.cache.Invalidate()
	}

	writeJSON(w, http.StatusOK, ConductDrawResponse{DrawResult: drawResultBody{
		WinningNumbers:  result.WinningNumbers,
		JackpotWinners:  result.JackpotWinners,
		LuckyDipWinners: result.LuckyDipWinners,
	}})
}

// DrawStatus handles GET /admin/draws/status.
func (h *DrawHandler) DrawStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"state": string(h.conductor.State())})
}

// NotifyWinners handles POST /admin/notifications: the externally-callable
// notification path, usable to re-send after a partial email outage.
func (h *DrawHandler) NotifyWinners(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.DrawID == "" {
		writeError(w, http.StatusBadRequest, "drawId required")
		return
	}

	draw, err := h.draws.FindByID(r.Context(), req.DrawID)
	if err != nil {
		h.log.WithError(err).Error("load draw failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if draw == nil {
		writeError(w, http.StatusNotFound, "draw not found")
		return
	}

	st := settlementFromWinners(req.Winners)
	report := h.notifier.DispatchResults(r.Context(), draw, st, !draw.IsTest)

	writeJSON(w, http.StatusOK, NotifyResponse{
		Success:         true,
		JackpotWinners:  report.JackpotWinners,
		LuckyDipWinners: report.LuckyDipWinners,
		TotalWinners:    report.TotalWinners,
		EmailsAttempted: report.EmailsAttempted,
	})
}

func settlementFromWinners(winners []NotifyWinner) *models.Settlement {
	st := &models.Settlement{}
	for _, win := range winners {
		tier := models.TierJackpot
		if win.IsLuckyDip {
			tier = models.TierLuckyDip
			st.LuckyDipWinners++
		} else {
			st.JackpotWinners++
		}
		st.Results = append(st.Results, models.Result{
			SubscriberID: win.UserID,
			Numbers:      win.Numbers,
			Matches:      win.Matches,
			Tier:         tier,
			PrizeAmount:  win.PrizeAmount,
		})
	}
	return st
}

// GetLatestDraw handles GET /draws/latest?include_test=.
func (h *DrawHandler) GetLatestDraw(w http.ResponseWriter, r *http.Request) {
	includeTest, _ := strconv.ParseBool(r.URL.Query().Get("include_test"))

	cacheKey := "latest"
	if includeTest {
		cacheKey = "latest_with_test"
	}
	if h.cache != nil {
		if draw, ok := h.cache.Get(cacheKey); ok {
			writeJSON(w, http.StatusOK, draw)
			return
		}
	}

	draw, err := h.draws.FindLatest(r.Context(), includeTest)
	if err != nil {
		h.log.WithError(err).Error("load latest draw failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if draw == nil {
		writeError(w, http.StatusNotFound, "no draws conducted yet")
		return
	}

	if h.cache != nil {
		h.cache.Set(cacheKey, draw)
	}
	writeJSON(w, http.StatusOK, draw)
}

// GetDrawWinners handles GET /draws/{date}/winners for the dashboard.
func (h *DrawHandler) GetDrawWinners(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(models.DrawDateFormat, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; use YYYY-MM-DD")
		return
	}

	results, err := h.winners.FindByDrawDate(r.Context(), date)
	if err != nil {
		h.log.WithError(err).Error("load winners failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if results == nil {
		results = []models.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"winners": results})
}

// CreateEntry handles POST /entries: registering a new line.
func (h *DrawHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	if req.SubscriberID == "" {
		writeError(w, http.StatusBadRequest, "subscriber_id required")
		return
	}
	if !models.ValidOrigin(req.Origin) {
		writeError(w, http.StatusBadRequest, "origin must be subscription or one_time")
		return
	}
	if err := models.ValidateLine(req.Numbers); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := time.Parse(models.DrawDateFormat, req.DrawDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid draw_date; use YYYY-MM-DD")
		return
	}
	if !models.DateOnly(date).After(models.DateOnly(time.Now())) {
		writeError(w, http.StatusBadRequest, "draw_date must be in the future")
		return
	}

	entry, err := h.entries.Create(r.Context(), &models.Entry{
		SubscriberID:   req.SubscriberID,
		DrawDate:       models.DateOnly(date),
		Numbers:        req.Numbers,
		Active:         true,
		Origin:         req.Origin,
		SubscriptionID: req.SubscriptionID,
	})
	if err != nil {
		h.log.WithError(err).Error("create entry failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// UpdateEntry handles PUT /entries/{id}: editing a line before its draw.
func (h *DrawHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")

	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if err := models.ValidateLine(req.Numbers); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.entries.UpdateNumbers(r.Context(), entryID, req.Numbers)
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "entry not found")
	case errors.Is(err, models.ErrEntryLocked):
		writeError(w, http.StatusConflict, "entry can no longer be edited")
	case err != nil:
		h.log.WithError(err).Error("update entry failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "entry_updated"})
	}
}

// ListEntries handles GET /entries?draw_date=.
func (h *DrawHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(models.DrawDateFormat, r.URL.Query().Get("draw_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "draw_date required; use YYYY-MM-DD")
		return
	}

	entries, err := h.entries.FindByDrawDate(r.Context(), date)
	if err != nil {
		h.log.WithError(err).Error("list entries failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	if entries == nil {
		entries = []models.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func isProviderUnavailable(err error) bool {
	return errors.Is(err, random.ErrProviderUnavailable)
}
