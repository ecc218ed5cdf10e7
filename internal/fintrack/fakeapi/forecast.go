package fakeapi

import (
	"net/http"

	"github.com/aussiebroadwan/fintrack/pkg/finsdk"
	"github.com/aussiebroadwan/fintrack/pkg/httpx"
)

func defaultForecast() []finsdk.CategoryForecast {
	return []finsdk.CategoryForecast{
		weekOf("Food", 420, 380, 455, 390, 510, 620, 575),
		weekOf("Transport", 120, 135, 110, 140, 125, 60, 45),
		weekOf("Utilities", 0, 0, 1450, 0, 0, 0, 0),
	}
}

func weekOf(category string, daily ...float64) finsdk.CategoryForecast {
	var total float64
	for _, v := range daily {
		total += v
	}
	return finsdk.CategoryForecast{Category: category, NextWeek: daily, WeekTotal: total}
}

// SetForecast replaces what the forecast endpoint returns.
func (s *Server) SetForecast(rows []finsdk.CategoryForecast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecast = rows
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rows := append([]finsdk.CategoryForecast(nil), s.forecast...)
	s.mu.Unlock()

	httpx.NoCache(w)
	httpx.WriteData(w, http.StatusOK, rows)
}
