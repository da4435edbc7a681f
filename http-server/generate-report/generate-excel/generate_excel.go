package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"ev-assembly/http-server/response"
)

type ExcelGenerator interface {
	GenerateOrderExcel(ctx context.Context, orderID int64) ([]byte, error)
}

// GenerateOrderExcel streams the order report as an xlsx attachment.
func GenerateOrderExcel(log *slog.Logger, gen ExcelGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.generate-report.GenerateOrderExcel"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		orderID, err := strconv.ParseInt(r.URL.Query().Get("order_id"), 10, 64)
		if err != nil || orderID <= 0 {
			response.Fail(w, r, http.StatusBadRequest, "BAD_REQUEST", "order_id is required")
			return
		}

		// report assembly plus rendering, give it more than the usual 5s
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, err := gen.GenerateOrderExcel(ctx, orderID)
		if err != nil {
			response.Err(w, r, log, err)
			return
		}

		fileName := fmt.Sprintf("Order_Report_%d_%s.xlsx", orderID, time.Now().Format("2006-01-02_150405"))

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Write(excelBytes)
	}
}
