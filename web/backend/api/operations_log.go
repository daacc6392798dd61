package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"smartfile/internal/database"
	"smartfile/web/backend/auth"
	"smartfile/web/backend/middleware"
)

// OperationsLogResponse is the API response for the operation journal
type OperationsLogResponse struct {
	Entries    []database.OperationRecord `json:"entries"`
	TotalCount int                        `json:"total_count"`
	PageSize   int                        `json:"page_size"`
	Page       int                        `json:"page"`
	HasMore    bool                       `json:"has_more"`
}

// GetOperationsLogHandler handles GET /api/v1/operations/log
func GetOperationsLogHandler(db *database.HistoryDB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r)
		if !ok || !auth.HasPermission(claims.Roles, auth.PermissionViewHistory) {
			respondError(w, "unauthorized", http.StatusForbidden)
			return
		}

		if db == nil {
			respondError(w, "operation history is not available", http.StatusServiceUnavailable)
			return
		}

		limit := 100
		page := 1
		action := r.URL.Query().Get("action")

		if lStr := r.URL.Query().Get("limit"); lStr != "" {
			if l, err := strconv.Atoi(lStr); err == nil && l > 0 && l <= 1000 {
				limit = l
			}
		}
		if pStr := r.URL.Query().Get("page"); pStr != "" {
			if p, err := strconv.Atoi(pStr); err == nil && p > 0 {
				page = p
			}
		}

		offset := (page - 1) * limit

		var (
			records    []database.OperationRecord
			totalCount int
			err        error
		)
		if action != "" {
			records, totalCount, err = db.GetOperationsByActionPaginated(action, limit, offset)
		} else {
			records, totalCount, err = db.GetRecentOperationsPaginated(limit, offset)
		}
		if err != nil {
			log.Printf("[GetOperationsLogHandler] Database query error: %v", err)
			respondError(w, fmt.Sprintf("failed to query database: %v", err), http.StatusInternalServerError)
			return
		}

		response := OperationsLogResponse{
			Entries:    records,
			TotalCount: totalCount,
			PageSize:   limit,
			Page:       page,
			HasMore:    offset+limit < totalCount,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
