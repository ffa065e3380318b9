package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/clickforge/clicker-core/internal/config"
	"github.com/clickforge/clicker-core/internal/game"
	"github.com/clickforge/clicker-core/internal/upgrade"
)

type errResp struct {
	Err string `json:"err"`
}

type api struct {
	sess *game.Session
	log  *slog.Logger
	// latest valid balance seen on disk; applies on restart
	balance atomic.Pointer[config.Balance]
}

func newAPI(sess *game.Session, log *slog.Logger) *api {
	a := &api{sess: sess, log: log}
	bal := sess.Balance()
	a.balance.Store(&bal)
	return a
}

func (a *api) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /state", a.handleState)
	mux.HandleFunc("GET /balance", a.handleBalance)
	mux.HandleFunc("POST /click", a.handleClick)
	mux.HandleFunc("POST /purchase", a.handlePurchase)
	mux.HandleFunc("POST /tick", a.handleTick)
	mux.HandleFunc("POST /reset", a.handleReset)
	mux.HandleFunc("POST /capacity", a.handleCapacity)
	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseBool(r *http.Request, key string) (bool, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return false, false, ""
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false, "invalid " + key
	}
	return v, true, ""
}

func (a *api) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.sess.State())
}

func (a *api) handleBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.balance.Load())
}

func (a *api) handleClick(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.sess.Click())
}

// purchase?id=<upgrade>&qty=<n>; qty defaults to 1, -1 buys max
func (a *api) handlePurchase(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errResp{Err: "missing param id"})
		return
	}
	qty, ok, msg := parseInt(r, "qty")
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errResp{Err: msg})
		return
	}
	if !ok {
		qty = 1
	}

	res, err := a.sess.Purchase(id, qty)
	if errors.Is(err, upgrade.ErrUnknownUpgrade) {
		writeJSON(w, http.StatusNotFound, errResp{Err: err.Error()})
		return
	}
	if err != nil {
		a.log.Error("purchase failed", "id", id, "err", err)
		writeJSON(w, http.StatusInternalServerError, errResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, game.NewPurchaseView(res))
}

func (a *api) handleTick(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.sess.Tick())
}

func (a *api) handleReset(w http.ResponseWriter, r *http.Request) {
	a.sess.Reset()
	writeJSON(w, http.StatusOK, a.sess.State())
}

// capacity?enabled=true|false
func (a *api) handleCapacity(w http.ResponseWriter, r *http.Request) {
	on, ok, msg := parseBool(r, "enabled")
	if msg != "" || !ok {
		writeJSON(w, http.StatusBadRequest, errResp{Err: "missing/invalid param enabled"})
		return
	}
	a.sess.SetCapacityLimit(on)
	writeJSON(w, http.StatusOK, a.sess.State())
}

// onReload is the config watcher callback. Invalid files keep the previous
// balance.
func (a *api) onReload(b config.Balance, err error) {
	if err != nil {
		a.log.Warn("balance reload rejected", "err", err)
		return
	}
	a.balance.Store(&b)
	a.log.Info("balance reloaded; applies on restart", "version", b.Version)
}
